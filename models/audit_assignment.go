package models

import (
	"time"

	"course-folder-api/jsondoc"
)

// AuditAssignment is one auditor's slot on a folder's audit panel. Created
// PENDING when the convener assigns the panel; the auditor may overwrite
// their decision until the folder reaches the HOD stage. Deleted only when
// the convener unassigns the whole panel.
type AuditAssignment struct {
	AuditAssignmentID int        `gorm:"primaryKey;column:audit_assignment_id" json:"audit_assignment_id"`
	FolderID          int        `gorm:"column:folder_id;uniqueIndex:idx_folder_auditor" json:"folder_id"`
	AuditorID         int        `gorm:"column:auditor_id;uniqueIndex:idx_folder_auditor" json:"auditor_id"`
	AssignedByID      int        `gorm:"column:assigned_by" json:"assigned_by"`
	AssignedAt        time.Time  `gorm:"column:assigned_at" json:"assigned_at"`
	Decision          string     `gorm:"column:decision" json:"decision"`
	Remarks           string     `gorm:"column:remarks" json:"remarks"`
	Ratings           jsondoc.Object `gorm:"column:ratings;type:json" json:"ratings"`
	ReportSubmitted   bool       `gorm:"column:report_submitted" json:"report_submitted"`
	ReportSubmittedAt *time.Time `gorm:"column:report_submitted_at" json:"report_submitted_at,omitempty"`
	FeedbackFilePath  string     `gorm:"column:feedback_file_path" json:"feedback_file_path"`

	Auditor *User         `gorm:"foreignKey:AuditorID" json:"auditor,omitempty"`
	Folder  *CourseFolder `gorm:"foreignKey:FolderID;references:FolderID" json:"folder,omitempty"`
}

func (AuditAssignment) TableName() string {
	return "audit_assignments"
}
