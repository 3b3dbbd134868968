package models

import "time"

// Course, Term and CourseAllocation are reference data owned elsewhere; the
// workflow only reads them to identify a folder and to route notifications.

type Course struct {
	CourseID   int    `gorm:"primaryKey;column:course_id" json:"course_id"`
	Code       string `gorm:"column:code" json:"code"`
	Title      string `gorm:"column:title" json:"title"`
	Department string `gorm:"column:department" json:"department"`
	Program    string `gorm:"column:program" json:"program"`
}

type Term struct {
	TermID      int       `gorm:"primaryKey;column:term_id" json:"term_id"`
	SessionTerm string    `gorm:"column:session_term" json:"session_term"`
	StartDate   time.Time `gorm:"column:start_date" json:"start_date"`
	EndDate     time.Time `gorm:"column:end_date" json:"end_date"`
	IsActive    bool      `gorm:"column:is_active" json:"is_active"`
}

// CourseAllocation ties one instructor to a course section in a term. Each
// allocation carries at most one folder per term.
type CourseAllocation struct {
	AllocationID int       `gorm:"primaryKey;column:allocation_id" json:"allocation_id"`
	CourseID     int       `gorm:"column:course_id" json:"course_id"`
	FacultyID    int       `gorm:"column:faculty_id" json:"faculty_id"`
	TermID       int       `gorm:"column:term_id" json:"term_id"`
	Section      string    `gorm:"column:section" json:"section"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`

	Course  *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Faculty *User   `gorm:"foreignKey:FacultyID" json:"faculty,omitempty"`
	Term    *Term   `gorm:"foreignKey:TermID" json:"term,omitempty"`
}

func (Course) TableName() string           { return "courses" }
func (Term) TableName() string             { return "terms" }
func (CourseAllocation) TableName() string { return "course_allocations" }
