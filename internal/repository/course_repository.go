package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/teaching-load-api/internal/models"
)

// CourseRepository reads the course catalogue.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// Search returns courses whose code or name contains any token of query.
func (r *CourseRepository) Search(ctx context.Context, query string) ([]models.Course, error) {
	where, args := Build(AnyTokenIn([]string{"course_code", "course_name"}, Tokens(query)), 0)

	stmt := `SELECT id, course_code, course_name, credit_hours, semester FROM courses WHERE ` + where + ` ORDER BY course_code ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, stmt, args...); err != nil {
		return nil, fmt.Errorf("search courses: %w", err)
	}
	return courses, nil
}

// FindByID fetches a course by ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, course_code, course_name, credit_hours, semester FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}
