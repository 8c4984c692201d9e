package models

// Course represents a course an instructor can teach.
type Course struct {
	ID          string  `db:"id" json:"course_id"`
	Code        string  `db:"course_code" json:"course_code"`
	Name        string  `db:"course_name" json:"course_name"`
	CreditHours int     `db:"credit_hours" json:"credit_hours"`
	Semester    *string `db:"semester" json:"semester,omitempty"`
}
