package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/teaching-load-api/internal/models"
)

// ProgramRepository reads degree programs.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository constructs a ProgramRepository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// Search lists programs whose name contains query; an empty query lists all programs.
func (r *ProgramRepository) Search(ctx context.Context, query string) ([]models.Program, error) {
	var filter Predicate
	if q := strings.TrimSpace(query); q != "" {
		filter = Contains("program_name", q)
	}
	where, args := Build(filter, 0)

	stmt := `SELECT id, program_name, program_code FROM programs WHERE ` + where + ` ORDER BY program_name ASC`
	var programs []models.Program
	if err := r.db.SelectContext(ctx, &programs, stmt, args...); err != nil {
		return nil, fmt.Errorf("search programs: %w", err)
	}
	return programs, nil
}

// FindByID fetches a program by ID.
func (r *ProgramRepository) FindByID(ctx context.Context, id string) (*models.Program, error) {
	const query = `SELECT id, program_name, program_code FROM programs WHERE id = $1`
	var program models.Program
	if err := r.db.GetContext(ctx, &program, query, id); err != nil {
		return nil, err
	}
	return &program, nil
}
