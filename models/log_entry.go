package models

import "time"

// CourseLogEntry is one lecture row in the course log. Attendance proof may
// be attached per entry instead of uploaded as a folder component.
type CourseLogEntry struct {
	LogEntryID          int       `gorm:"primaryKey;column:log_entry_id" json:"log_entry_id"`
	FolderID            int       `gorm:"column:folder_id;uniqueIndex:idx_folder_lecture" json:"folder_id"`
	LectureNumber       int       `gorm:"column:lecture_number;uniqueIndex:idx_folder_lecture" json:"lecture_number"`
	Date                time.Time `gorm:"column:date" json:"date"`
	DurationMinutes     int       `gorm:"column:duration_minutes" json:"duration_minutes"`
	TopicsCovered       string    `gorm:"column:topics_covered" json:"topics_covered"`
	EvaluationInstrument string   `gorm:"column:evaluation_instrument" json:"evaluation_instrument"`
	AttendanceSheetPath string    `gorm:"column:attendance_sheet_path" json:"attendance_sheet_path"`
	CreatedAt           time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (CourseLogEntry) TableName() string {
	return "course_log_entries"
}
