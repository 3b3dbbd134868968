package models

import "time"

// Folder component types.
const (
	ComponentCourseOutline  = "COURSE_OUTLINE"
	ComponentCourseLog      = "COURSE_LOG"
	ComponentAttendance     = "ATTENDANCE"
	ComponentReferenceBooks = "REFERENCE_BOOKS"
	ComponentFinalResult    = "FINAL_RESULT"
	ComponentModelSolution  = "MODEL_SOLUTION"
	ComponentAuditFeedback  = "AUDIT_FEEDBACK"
	ComponentOther          = "OTHER"
)

// FolderComponent is an individually uploaded document belonging to a folder.
type FolderComponent struct {
	ComponentID   int       `gorm:"primaryKey;column:component_id" json:"component_id"`
	FolderID      int       `gorm:"column:folder_id" json:"folder_id"`
	ComponentType string    `gorm:"column:component_type" json:"component_type"`
	Title         string    `gorm:"column:title" json:"title"`
	FilePath      string    `gorm:"column:file_path" json:"file_path"`
	FileSize      int64     `gorm:"column:file_size" json:"file_size"`
	Description   string    `gorm:"column:description" json:"description"`
	UploadedByID  int       `gorm:"column:uploaded_by" json:"uploaded_by"`
	DisplayOrder  int       `gorm:"column:display_order" json:"display_order"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (FolderComponent) TableName() string {
	return "folder_components"
}
