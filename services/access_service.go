package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"course-folder-api/models"

	"gorm.io/gorm"
)

// AccessService shares approved folders beyond the review chain: admins push
// a folder out to a department role, and conveners or HODs request access
// for an admin to grant or refuse. Sharing never changes the folder itself;
// everything here rides on notifications and the access-request table.
type AccessService struct {
	db     *gorm.DB
	events *EventPublisher
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{db: db, events: NewEventPublisher(db)}
}

// WithPublisher replaces the default event publisher.
func (s *AccessService) WithPublisher(p *EventPublisher) *AccessService {
	s.events = p
	return s
}

func (s *AccessService) loadFolder(folderID int) (*models.CourseFolder, error) {
	var folder models.CourseFolder
	err := s.db.Preload("Course").Preload("Faculty").
		Where("folder_id = ?", folderID).
		First(&folder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "folder"}
		}
		return nil, fmt.Errorf("failed to load folder: %w", err)
	}
	return &folder, nil
}

func (s *AccessService) loadActor(actorID int) (*models.User, error) {
	var actor models.User
	err := s.db.Where("user_id = ? AND deleted_at IS NULL", actorID).First(&actor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "user"}
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &actor, nil
}

// ShareWithRole notifies every active CONVENER or HOD in the folder's
// department that the approved folder is available to them. Returns the
// number of users notified.
func (s *AccessService) ShareWithRole(folderID, actorID int, role string) (int, error) {
	role = strings.ToUpper(strings.TrimSpace(role))
	if role != models.RoleConvener && role != models.RoleHOD {
		return 0, &ValidationFailureError{Reasons: []string{"Role must be CONVENER or HOD"}}
	}

	folder, err := s.loadFolder(folderID)
	if err != nil {
		return 0, err
	}
	actor, err := s.loadActor(actorID)
	if err != nil {
		return 0, err
	}
	if actor.Role != models.RoleAdmin {
		return 0, permissionDenied("Only admins can share folders")
	}
	if folder.Status != models.StatusApprovedByHOD {
		return 0, stateConflict(folder.Status, "Only approved folders can be shared")
	}

	var targets []models.User
	if err := s.db.Where("role = ? AND department = ? AND is_active = ? AND deleted_at IS NULL",
		role, folder.Department, true).Find(&targets).Error; err != nil {
		return 0, fmt.Errorf("failed to load share recipients: %w", err)
	}
	if len(targets) == 0 {
		return 0, &NotFoundError{Resource: fmt.Sprintf("active %s in department %s", role, folder.Department)}
	}

	fid := folder.FolderID
	for _, target := range targets {
		s.events.Publish(Event{
			Type:       models.EventFolderShared,
			Title:      fmt.Sprintf("Course Folder Shared - %s", folderLabel(folder)),
			Message:    fmt.Sprintf("An administrator has shared the approved course folder for %s with you. Instructor: %s.", folderLabel(folder), facultyName(folder)),
			FolderID:   &fid,
			Recipients: []int{target.UserID},
		})
	}
	return len(targets), nil
}

// RequestAccess records a convener's or HOD's request to view an approved
// folder. A pending or approved request blocks a duplicate; a rejected one
// is replaced so the requester can try again.
func (s *AccessService) RequestAccess(folderID, actorID int) (*models.FolderAccessRequest, error) {
	folder, err := s.loadFolder(folderID)
	if err != nil {
		return nil, err
	}
	actor, err := s.loadActor(actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleConvener && actor.Role != models.RoleHOD {
		return nil, permissionDenied("Only conveners and HODs can request folder access")
	}
	if folder.Status != models.StatusApprovedByHOD {
		return nil, stateConflict(folder.Status, "Only approved folders can be requested")
	}

	var existing models.FolderAccessRequest
	err = s.db.Where("folder_id = ? AND requested_by = ?", folder.FolderID, actorID).
		First(&existing).Error
	switch {
	case err == nil:
		switch existing.Status {
		case models.AccessPending:
			return nil, &ValidationFailureError{Reasons: []string{"You already have a pending request for this folder"}}
		case models.AccessApproved:
			return nil, &ValidationFailureError{Reasons: []string{"You already have access to this folder"}}
		default:
			// A refused request may be retried; the old row makes way.
			if err := s.db.Where("access_request_id = ?", existing.AccessRequestID).
				Delete(&models.FolderAccessRequest{}).Error; err != nil {
				return nil, fmt.Errorf("failed to clear rejected request: %w", err)
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, fmt.Errorf("failed to check existing request: %w", err)
	}

	request := models.FolderAccessRequest{
		FolderID:      folder.FolderID,
		RequestedByID: actorID,
		Status:        models.AccessPending,
		RequestedAt:   time.Now(),
	}
	if err := s.db.Create(&request).Error; err != nil {
		return nil, fmt.Errorf("failed to create access request: %w", err)
	}
	return &request, nil
}

// MyRequests lists the caller's access requests, newest first.
func (s *AccessService) MyRequests(actorID int) ([]models.FolderAccessRequest, error) {
	var requests []models.FolderAccessRequest
	err := s.db.Preload("Folder").Preload("Folder.Course").
		Where("requested_by = ?", actorID).
		Order("requested_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load access requests: %w", err)
	}
	return requests, nil
}

// ListRequests is the admin view over access requests, filtered by status.
func (s *AccessService) ListRequests(actorID int, status string) ([]models.FolderAccessRequest, error) {
	actor, err := s.loadActor(actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin {
		return nil, permissionDenied("Only admins can list access requests")
	}
	if status == "" {
		status = models.AccessPending
	}

	var requests []models.FolderAccessRequest
	err = s.db.Preload("Folder").Preload("Folder.Course").Preload("RequestedBy").
		Where("status = ?", status).
		Order("requested_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load access requests: %w", err)
	}
	return requests, nil
}

// Decide resolves an access request. Rejections require notes so the
// requester learns why.
func (s *AccessService) Decide(requestID, actorID int, action, notes string) (*models.FolderAccessRequest, error) {
	action = strings.ToLower(strings.TrimSpace(action))
	if action != "approve" && action != "reject" {
		return nil, &ValidationFailureError{Reasons: []string{"Action must be either 'approve' or 'reject'"}}
	}
	if action == "reject" && strings.TrimSpace(notes) == "" {
		return nil, &ValidationFailureError{Reasons: []string{"Notes are required when rejecting a request"}}
	}

	actor, err := s.loadActor(actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin {
		return nil, permissionDenied("Only admins can decide access requests")
	}

	var request models.FolderAccessRequest
	err = s.db.Where("access_request_id = ?", requestID).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "access request"}
		}
		return nil, fmt.Errorf("failed to load access request: %w", err)
	}

	folder, err := s.loadFolder(request.FolderID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":      models.AccessApproved,
		"decided_by":  actorID,
		"approved_at": now,
		"rejected_at": nil,
		"admin_notes": notes,
	}
	eventType := models.EventFolderApproved
	title := fmt.Sprintf("Folder Access Granted - %s", folderLabel(folder))
	message := fmt.Sprintf("Your request to access the folder %s has been approved.", folderLabel(folder))
	if action == "reject" {
		updates["status"] = models.AccessRejected
		updates["approved_at"] = nil
		updates["rejected_at"] = now
		eventType = models.EventFolderReturned
		title = fmt.Sprintf("Folder Access Request Rejected - %s", folderLabel(folder))
		message = fmt.Sprintf("Your request to access the folder %s has been rejected. Reason: %s", folderLabel(folder), notes)
	}

	if err := s.db.Model(&models.FolderAccessRequest{}).
		Where("access_request_id = ?", request.AccessRequestID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update access request: %w", err)
	}

	fid := folder.FolderID
	s.events.Publish(Event{
		Type:       eventType,
		Title:      title,
		Message:    message,
		FolderID:   &fid,
		Recipients: []int{request.RequestedByID},
	})

	var updated models.FolderAccessRequest
	if err := s.db.Where("access_request_id = ?", request.AccessRequestID).First(&updated).Error; err != nil {
		return nil, fmt.Errorf("failed to reload access request: %w", err)
	}
	return &updated, nil
}
