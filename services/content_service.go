package services

import (
	"errors"
	"fmt"
	"time"

	"course-folder-api/jsondoc"
	"course-folder-api/models"

	"gorm.io/gorm"
)

// ContentService owns the folder content document: every write goes through
// SaveContent, which snapshots the previous document before applying either a
// section replacement or a whole-document deep merge.
type ContentService struct {
	db *gorm.DB
}

func NewContentService(db *gorm.DB) *ContentService {
	return &ContentService{db: db}
}

// SaveContent applies a content change for the owning instructor.
//
// When section is non-empty, only that top-level key is replaced; the value is
// taken from patch[section] when the client wrapped it, otherwise the whole
// patch is treated as the section value. When section is empty the patch is
// deep-merged into the current document: nested objects merge recursively,
// lists and scalars are replaced wholesale.
func (s *ContentService) SaveContent(folderID, actorID int, section string, patch *jsondoc.Object) (*models.CourseFolder, error) {
	if patch == nil {
		return nil, &ValidationFailureError{Reasons: []string{"content payload is required"}}
	}

	var folder models.CourseFolder
	if err := s.db.Where("folder_id = ?", folderID).First(&folder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "folder"}
		}
		return nil, fmt.Errorf("failed to load folder: %w", err)
	}

	if folder.FacultyID != actorID {
		return nil, permissionDenied("You can only edit your own folders")
	}
	if !IsInstructorEditable(&folder) {
		return nil, stateConflict(folder.Status,
			"Cannot edit folder with status %s. Folder must be in DRAFT, a rejected status, or APPROVED_BY_HOD after the first cycle to edit.",
			folder.Status)
	}

	current := &folder.Content
	var updated *jsondoc.Object
	if section != "" {
		value := patch.Val(section)
		if value == nil {
			// Direct payload: the client sent the section value unwrapped.
			value = patch
		}
		updated = current.Clone()
		// Detach from the caller's payload: the folder document must not
		// change if the client mutates the patch after the save returns.
		updated.Set(section, jsondoc.CloneValue(value))
	} else {
		updated = jsondoc.Merge(current, patch)
	}

	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		snapshot := models.ContentSnapshot{
			FolderID:    folder.FolderID,
			Data:        *current.Clone(),
			CreatedByID: actorID,
			CreatedAt:   now,
		}
		if err := tx.Create(&snapshot).Error; err != nil {
			return fmt.Errorf("failed to snapshot content: %w", err)
		}

		if err := tx.Model(&models.CourseFolder{}).
			Where("folder_id = ?", folder.FolderID).
			Updates(map[string]interface{}{
				"content":    updated,
				"updated_at": now,
			}).Error; err != nil {
			return fmt.Errorf("failed to save content: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	folder.Content = *updated
	folder.UpdatedAt = now
	return &folder, nil
}

// Snapshots lists a folder's content snapshots, newest first.
func (s *ContentService) Snapshots(folderID int) ([]models.ContentSnapshot, error) {
	var snapshots []models.ContentSnapshot
	if err := s.db.Where("folder_id = ?", folderID).
		Order("created_at DESC").
		Find(&snapshots).Error; err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}
	return snapshots, nil
}
