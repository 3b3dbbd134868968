package models

import (
	"time"

	"course-folder-api/jsondoc"
)

// ContentSnapshot preserves the folder's previous content document before
// every save, so an accidental overwrite can be recovered. Append-only;
// nothing in this service prunes them.
type ContentSnapshot struct {
	SnapshotID  int            `gorm:"primaryKey;column:snapshot_id" json:"snapshot_id"`
	FolderID    int            `gorm:"column:folder_id" json:"folder_id"`
	Data        jsondoc.Object `gorm:"column:data;type:json" json:"data"`
	CreatedByID int            `gorm:"column:created_by" json:"created_by"`
	CreatedAt   time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (ContentSnapshot) TableName() string {
	return "content_snapshots"
}
