package models

import "time"

// Notification event types emitted by the workflow engine.
const (
	EventFolderSubmitted   = "FOLDER_SUBMITTED"
	EventFolderApproved    = "FOLDER_APPROVED"
	EventFolderReturned    = "FOLDER_RETURNED"
	EventAuditAssigned     = "AUDIT_ASSIGNED"
	EventArtifactGenerated = "ARTIFACT_GENERATED"
	EventFolderShared      = "FOLDER_SHARED"
)

type Notification struct {
	NotificationID int        `gorm:"primaryKey;column:notification_id" json:"notification_id"`
	UserID         int        `gorm:"column:user_id" json:"user_id"`
	EventType      string     `gorm:"column:event_type" json:"event_type"`
	Title          string     `gorm:"column:title" json:"title"`
	Message        string     `gorm:"column:message" json:"message"`
	FolderID       *int       `gorm:"column:folder_id" json:"folder_id,omitempty"`
	IsRead         bool       `gorm:"column:is_read" json:"is_read"`
	AcknowledgedAt *time.Time `gorm:"column:acknowledged_at" json:"acknowledged_at,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
