package models

// Program represents a degree program whose sections are scheduled.
type Program struct {
	ID   string `db:"id" json:"program_id"`
	Name string `db:"program_name" json:"program_name"`
	Code string `db:"program_code" json:"program_code"`
}
