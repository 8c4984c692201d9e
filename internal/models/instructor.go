package models

import "strings"

// EmploymentType classifies instructors for search filtering.
type EmploymentType string

const (
	EmploymentRegular EmploymentType = "REGULAR"
	EmploymentCOS     EmploymentType = "COS"
)

// Instructor represents a faculty member who can carry a teaching load.
type Instructor struct {
	ID              string         `db:"id" json:"instructor_id"`
	FirstName       string         `db:"first_name" json:"first_name"`
	MiddleInitial   *string        `db:"middle_initial" json:"middle_initial,omitempty"`
	LastName        string         `db:"last_name" json:"last_name"`
	EmploymentType  EmploymentType `db:"employment_type" json:"employment_type"`
	QualifiedCourse *string        `db:"qualified_course" json:"qualified_course,omitempty"`
}

// FullName joins first name, middle initial and last name.
func (i Instructor) FullName() string {
	parts := []string{i.FirstName}
	if i.MiddleInitial != nil && *i.MiddleInitial != "" {
		parts = append(parts, *i.MiddleInitial)
	}
	parts = append(parts, i.LastName)
	return strings.TrimSpace(strings.Join(parts, " "))
}

// InstructorFilter captures instructor search options. An empty EmploymentType means all.
type InstructorFilter struct {
	Query          string
	EmploymentType EmploymentType
}
