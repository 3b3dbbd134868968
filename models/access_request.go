package models

import "time"

// Access request lifecycle states.
const (
	AccessPending  = "PENDING"
	AccessApproved = "APPROVED"
	AccessRejected = "REJECTED"
)

// FolderAccessRequest tracks a convener's or HOD's request to view an
// approved folder outside their own review duties. Admins grant or refuse;
// one live request per (folder, requester).
type FolderAccessRequest struct {
	AccessRequestID int        `gorm:"primaryKey;column:access_request_id" json:"access_request_id"`
	FolderID        int        `gorm:"column:folder_id;uniqueIndex:idx_folder_requester" json:"folder_id"`
	RequestedByID   int        `gorm:"column:requested_by;uniqueIndex:idx_folder_requester" json:"requested_by"`
	Status          string     `gorm:"column:status" json:"status"`
	RequestedAt     time.Time  `gorm:"column:requested_at" json:"requested_at"`
	DecidedByID     *int       `gorm:"column:decided_by" json:"decided_by,omitempty"`
	ApprovedAt      *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
	RejectedAt      *time.Time `gorm:"column:rejected_at" json:"rejected_at,omitempty"`
	AdminNotes      string     `gorm:"column:admin_notes" json:"admin_notes"`

	Folder      *CourseFolder `gorm:"foreignKey:FolderID;references:FolderID" json:"folder,omitempty"`
	RequestedBy *User         `gorm:"foreignKey:RequestedByID;references:UserID" json:"requested_by_user,omitempty"`
}

func (FolderAccessRequest) TableName() string {
	return "folder_access_requests"
}
