package models

import "time"

// Deadline checkpoint types.
const (
	DeadlineFirstSubmission = "FIRST_SUBMISSION"
	DeadlineFinalSubmission = "FINAL_SUBMISSION"
)

// FolderDeadline is advisory metadata for UI reminders. The state machine
// never consults it.
type FolderDeadline struct {
	DeadlineID   int       `gorm:"primaryKey;column:deadline_id" json:"deadline_id"`
	DeadlineType string    `gorm:"column:deadline_type;uniqueIndex:idx_type_term_dept" json:"deadline_type"`
	TermID       int       `gorm:"column:term_id;uniqueIndex:idx_type_term_dept" json:"term_id"`
	Department   *string   `gorm:"column:department;uniqueIndex:idx_type_term_dept" json:"department,omitempty"`
	DeadlineDate time.Time `gorm:"column:deadline_date" json:"deadline_date"`
	SetByID      *int      `gorm:"column:set_by" json:"set_by,omitempty"`
	Notes        string    `gorm:"column:notes" json:"notes"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (FolderDeadline) TableName() string {
	return "folder_deadlines"
}

// IsPassed reports whether the deadline is already behind now.
func (d *FolderDeadline) IsPassed(now time.Time) bool {
	return now.After(d.DeadlineDate)
}
