package models

import "time"

// FolderStatusHistory is the append-only audit trail: one row per successful
// transition. Rows are never updated or deleted.
type FolderStatusHistory struct {
	HistoryID   int       `gorm:"primaryKey;column:history_id" json:"history_id"`
	FolderID    int       `gorm:"column:folder_id" json:"folder_id"`
	Status      string    `gorm:"column:status" json:"status"`
	ChangedByID int       `gorm:"column:changed_by" json:"changed_by"`
	Notes       string    `gorm:"column:notes" json:"notes"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`

	ChangedBy *User `gorm:"foreignKey:ChangedByID" json:"changed_by_user,omitempty"`
}

func (FolderStatusHistory) TableName() string {
	return "folder_status_history"
}
