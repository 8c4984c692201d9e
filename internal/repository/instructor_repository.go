package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/teaching-load-api/internal/models"
)

const instructorColumns = `id, first_name, middle_initial, last_name, employment_type, qualified_course`

// InstructorRepository reads the instructor directory.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository constructs an InstructorRepository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// Search matches every whitespace separated token against first name, middle initial and last name.
func (r *InstructorRepository) Search(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, error) {
	var employment Predicate
	if filter.EmploymentType != "" {
		employment = Eq("employment_type", string(filter.EmploymentType))
	}
	where, args := Build(And(
		employment,
		AnyTokenIn([]string{"first_name", "middle_initial", "last_name"}, Tokens(filter.Query)),
	), 0)

	query := `SELECT ` + instructorColumns + ` FROM instructors WHERE ` + where + ` ORDER BY last_name ASC, first_name ASC`
	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, query, args...); err != nil {
		return nil, fmt.Errorf("search instructors: %w", err)
	}
	return instructors, nil
}

// FindByID fetches an instructor by ID.
func (r *InstructorRepository) FindByID(ctx context.Context, id string) (*models.Instructor, error) {
	const query = `SELECT ` + instructorColumns + ` FROM instructors WHERE id = $1`
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, id); err != nil {
		return nil, err
	}
	return &instructor, nil
}
