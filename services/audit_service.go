package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"course-folder-api/jsondoc"
	"course-folder-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AuditService manages the audit panel: assignment, unassignment and report
// collection. Completion is always recomputed from the persisted assignment
// rows, never from counters on the folder.
type AuditService struct {
	db        *gorm.DB
	events    *EventPublisher
	composer  ReportComposer
	artifacts *ArtifactStore
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{
		db:        db,
		events:    NewEventPublisher(db),
		artifacts: NewArtifactStore(),
	}
}

// WithComposer attaches the external report composer.
func (s *AuditService) WithComposer(c ReportComposer) *AuditService {
	s.composer = c
	return s
}

// WithPublisher replaces the default event publisher.
func (s *AuditService) WithPublisher(p *EventPublisher) *AuditService {
	s.events = p
	return s
}

// AuditReportResult describes the panel's progress after one report
// submission.
type AuditReportResult struct {
	Submitted int    `json:"submitted"`
	Total     int    `json:"total"`
	Routed    bool   `json:"routed"`
	Status    string `json:"status"`
}

func (s *AuditService) loadFolder(folderID int) (*models.CourseFolder, error) {
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

func (s *AuditService) loadActor(actorID int) (*models.User, error) {
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

// AssignAudit places the folder under audit by the given panel members.
// Auditors must be active users and the HOD is excluded to keep the final
// decision independent of the audit.
func (s *AuditService) AssignAudit(folderID, actorID int, auditorIDs []int) (*models.CourseFolder, error) {
	if len(auditorIDs) == 0 {
		return nil, &ValidationFailureError{Reasons: []string{"At least one auditor must be selected"}}
	}

	folder, err := s.loadFolder(folderID)
	if err != nil {
		return nil, err
	}
	actor, err := s.loadActor(actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleConvener {
		return nil, permissionDenied("Only conveners can assign audit panels")
	}
	if !CanTransition(ActionAssignAudit, folder.Status) {
		return nil, stateConflict(folder.Status,
			"Cannot assign auditors to folder with status %s. Folder must be approved by the coordinator first.",
			folder.Status)
	}

	var auditors []models.User
	if err := s.db.Where("user_id IN ? AND is_active = ? AND deleted_at IS NULL", auditorIDs, true).
		Find(&auditors).Error; err != nil {
		return nil, fmt.Errorf("failed to load auditors: %w", err)
	}
	valid := make([]models.User, 0, len(auditors))
	for _, a := range auditors {
		if a.Role == models.RoleHOD {
			continue
		}
		valid = append(valid, a)
	}
	if len(valid) != len(auditorIDs) {
		return nil, &ValidationFailureError{Reasons: []string{
			"One or more selected auditors are invalid. Auditors must be active users and cannot be the HOD.",
		}}
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, auditor := range valid {
			assignment := models.AuditAssignment{
				FolderID:     folder.FolderID,
				AuditorID:    auditor.UserID,
				AssignedByID: actorID,
				AssignedAt:   now,
				Decision:     models.DecisionPending,
			}
			// Idempotent on the (folder, auditor) unique index; repeat
			// assignment keeps the existing row and any submitted report.
			if err := tx.Where("folder_id = ? AND auditor_id = ?", folder.FolderID, auditor.UserID).
				FirstOrCreate(&assignment).Error; err != nil {
				return fmt.Errorf("failed to create audit assignment: %w", err)
			}
		}

		applied, err := casStatus(tx, folder.FolderID, AllowedSources(ActionAssignAudit), map[string]interface{}{
			"status":               models.StatusUnderAudit,
			"convener_assigned_at": now,
			"convener_assigned_by": actorID,
			"updated_at":           now,
		})
		if err != nil {
			return err
		}
		if !applied {
			return stateConflict(s.freshStatus(folder.FolderID), "Folder status changed while assigning auditors; please refresh and retry")
		}

		names := make([]string, 0, len(valid))
		for _, a := range valid {
			names = append(names, a.FullName)
		}
		return appendHistory(tx, folder.FolderID, models.StatusUnderAudit, actorID,
			fmt.Sprintf("Audit panel assigned: %s", strings.Join(names, ", ")))
	})
	if err != nil {
		return nil, err
	}

	fid := folder.FolderID
	for _, auditor := range valid {
		s.events.Publish(Event{
			Type:       models.EventAuditAssigned,
			Title:      "Course Folder Audit Assigned",
			Message:    fmt.Sprintf("You have been assigned to audit the course folder for %s. Please submit your audit report.", folderLabel(folder)),
			FolderID:   &fid,
			Recipients: []int{auditor.UserID},
		})
	}

	return s.loadFolder(folder.FolderID)
}

// UnassignAudit dissolves the panel and returns the folder to the
// coordinator-approved stage. Any reports already submitted are discarded
// with the assignments.
func (s *AuditService) UnassignAudit(folderID, actorID int) (*models.CourseFolder, error) {
	folder, err := s.loadFolder(folderID)
	if err != nil {
		return nil, err
	}
	actor, err := s.loadActor(actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleConvener {
		return nil, permissionDenied("Only conveners can unassign audit panels")
	}
	if !CanTransition(ActionUnassignAudit, folder.Status) {
		return nil, stateConflict(folder.Status,
			"Cannot unassign auditors from folder with status %s. Folder must be under audit.",
			folder.Status)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("folder_id = ?", folder.FolderID).
			Delete(&models.AuditAssignment{}).Error; err != nil {
			return fmt.Errorf("failed to remove audit assignments: %w", err)
		}

		applied, err := casStatus(tx, folder.FolderID, AllowedSources(ActionUnassignAudit), map[string]interface{}{
			"status":               models.StatusApprovedCoordinator,
			"convener_assigned_at": nil,
			"convener_assigned_by": nil,
			"audit_completed_at":   nil,
			"updated_at":           time.Now(),
		})
		if err != nil {
			return err
		}
		if !applied {
			return stateConflict(s.freshStatus(folder.FolderID), "Folder status changed while unassigning auditors; please refresh and retry")
		}
		return appendHistory(tx, folder.FolderID, models.StatusApprovedCoordinator, actorID,
			"Audit panel unassigned; folder returned to coordinator-approved stage")
	})
	if err != nil {
		return nil, err
	}

	return s.loadFolder(folder.FolderID)
}

// SubmitAuditReport records one auditor's decision, remarks and ratings.
// A single rejection immediately routes the folder to the convener; otherwise
// the folder completes once every panel member has submitted. An auditor may
// resubmit until the folder moves past the audit stage; the latest submission
// wins.
func (s *AuditService) SubmitAuditReport(folderID, actorID int, decision, remarks string, ratings *jsondoc.Object, feedbackFile []byte) (*AuditReportResult, error) {
	if strings.TrimSpace(remarks) == "" {
		return nil, &ValidationFailureError{Reasons: []string{"Remarks are required when submitting an audit report"}}
	}

	var normalized string
	switch strings.ToUpper(strings.TrimSpace(decision)) {
	case "APPROVE", models.DecisionApproved:
		normalized = models.DecisionApproved
	case "REJECT", models.DecisionRejected:
		normalized = models.DecisionRejected
	case "":
		normalized = models.DecisionPending
	default:
		return nil, &ValidationFailureError{Reasons: []string{
			fmt.Sprintf("Decision must be %s or %s", models.DecisionApproved, models.DecisionRejected),
		}}
	}

	folder, err := s.loadFolder(folderID)
	if err != nil {
		return nil, err
	}
	if IsAuditClosed(folder.Status) {
		return nil, stateConflict(folder.Status, "The audit stage for this folder is closed; reports can no longer be changed")
	}
	if !CanTransition(ActionSubmitAuditReport, folder.Status) {
		return nil, stateConflict(folder.Status, "Cannot submit an audit report for folder with status %s", folder.Status)
	}

	var assignment models.AuditAssignment
	err = s.db.Where("folder_id = ? AND auditor_id = ?", folder.FolderID, actorID).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, permissionDenied("You are not assigned to audit this folder")
		}
		return nil, fmt.Errorf("failed to load audit assignment: %w", err)
	}

	feedbackPath := assignment.FeedbackFilePath
	if len(feedbackFile) > 0 {
		feedbackPath, err = s.artifacts.Save("audit-feedback", ".pdf", feedbackFile)
		if err != nil {
			return nil, fmt.Errorf("failed to store audit feedback file: %w", err)
		}
	}

	now := time.Now()
	result := &AuditReportResult{}
	transitioned := false

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Lock the folder row first: overlapping submissions serialize here,
		// so the recount below always sees every committed report and exactly
		// one deciding submission performs the completion transition.
		var locked models.CourseFolder
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("status").
			Where("folder_id = ?", folder.FolderID).
			First(&locked).Error; err != nil {
			return fmt.Errorf("failed to lock folder: %w", err)
		}
		if IsAuditClosed(locked.Status) {
			return stateConflict(locked.Status, "The audit stage for this folder is closed; reports can no longer be changed")
		}

		updates := map[string]interface{}{
			"decision":            normalized,
			"remarks":             remarks,
			"report_submitted":    true,
			"report_submitted_at": now,
			"feedback_file_path":  feedbackPath,
		}
		if ratings != nil {
			updates["ratings"] = ratings
		}
		if err := tx.Model(&models.AuditAssignment{}).
			Where("audit_assignment_id = ?", assignment.AuditAssignmentID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to record audit report: %w", err)
		}

		// Rejection short-circuits: the folder routes to the convener without
		// waiting for the remaining panel members.
		if normalized == models.DecisionRejected {
			applied, err := casStatus(tx, folder.FolderID, []string{models.StatusUnderAudit}, map[string]interface{}{
				"status":             models.StatusAuditCompleted,
				"audit_completed_at": now,
				"updated_at":         now,
			})
			if err != nil {
				return err
			}
			if applied {
				if err := appendHistory(tx, folder.FolderID, models.StatusAuditCompleted, actorID,
					"Audit routed to Convener early due to a rejection"); err != nil {
					return err
				}
				result.Routed = true
				transitioned = true
			}
		}

		// Progress is recounted from the persisted rows under the folder lock.
		var fresh []models.AuditAssignment
		if err := tx.Where("folder_id = ?", folder.FolderID).Find(&fresh).Error; err != nil {
			return fmt.Errorf("failed to recount audit reports: %w", err)
		}
		result.Total = len(fresh)
		for i := range fresh {
			if fresh[i].ReportSubmitted {
				result.Submitted++
			}
		}

		if normalized != models.DecisionRejected && result.Submitted == result.Total {
			applied, err := casStatus(tx, folder.FolderID, []string{models.StatusUnderAudit}, map[string]interface{}{
				"status":             models.StatusAuditCompleted,
				"audit_completed_at": now,
				"updated_at":         now,
			})
			if err != nil {
				return err
			}
			if applied {
				if err := appendHistory(tx, folder.FolderID, models.StatusAuditCompleted, actorID,
					fmt.Sprintf("All %d audit reports submitted", result.Total)); err != nil {
					return err
				}
				transitioned = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Lazily render this auditor's report when no file was uploaded, so the
	// consolidated merge has something to include. Best-effort.
	if feedbackPath == "" && s.composer != nil {
		s.renderAuditorReport(folder, assignment.AuditAssignmentID)
	}

	result.Status = s.freshStatus(folder.FolderID)
	// Only the submission that actually moved the folder notifies the
	// convener; a report overwrite on an already-routed folder stays quiet.
	if transitioned {
		s.publishAuditProgress(folder, result)
	}
	return result, nil
}

func (s *AuditService) renderAuditorReport(folder *models.CourseFolder, assignmentID int) {
	var assignment models.AuditAssignment
	if err := s.db.Where("audit_assignment_id = ?", assignmentID).First(&assignment).Error; err != nil {
		log.Printf("failed to reload audit assignment %d: %v", assignmentID, err)
		return
	}
	data, err := s.composer.ComposeAuditorReport(folder, &assignment)
	if err != nil {
		log.Printf("failed to render auditor report for folder %d: %v", folder.FolderID, err)
		return
	}
	path, err := s.artifacts.Save("audit-feedback", ".pdf", data)
	if err != nil {
		log.Printf("failed to store rendered auditor report for folder %d: %v", folder.FolderID, err)
		return
	}
	if err := s.db.Model(&models.AuditAssignment{}).
		Where("audit_assignment_id = ?", assignmentID).
		Update("feedback_file_path", path).Error; err != nil {
		log.Printf("failed to record rendered auditor report for folder %d: %v", folder.FolderID, err)
	}
}

func (s *AuditService) publishAuditProgress(folder *models.CourseFolder, result *AuditReportResult) {
	if result.Status != models.StatusAuditCompleted {
		return
	}

	fid := folder.FolderID
	convener := s.departmentConvener(folder.Department)
	if convener == nil {
		return
	}

	if result.Routed {
		s.events.Publish(Event{
			Type:       models.EventFolderSubmitted,
			Title:      "Audit Report Requires Attention",
			Message:    fmt.Sprintf("The course folder for %s was rejected by an auditor and has been routed to you for review.", folderLabel(folder)),
			FolderID:   &fid,
			Recipients: []int{convener.UserID},
		})
		return
	}

	summary, err := s.Summary(folder.FolderID)
	if err != nil {
		log.Printf("failed to summarize audit for folder %d: %v", folder.FolderID, err)
		return
	}
	message := fmt.Sprintf("All audit reports for %s are in with no rejections. The folder is ready to forward to the HOD.", folderLabel(folder))
	if summary.HasRejections() {
		message = fmt.Sprintf("All audit reports for %s are in; one or more auditors rejected the folder. Please review before deciding.", folderLabel(folder))
	}
	s.events.Publish(Event{
		Type:       models.EventFolderSubmitted,
		Title:      "Audit Completed",
		Message:    message,
		FolderID:   &fid,
		Recipients: []int{convener.UserID},
	})
}

func (s *AuditService) departmentConvener(department string) *models.User {
	var user models.User
	err := s.db.Where("role = ? AND department = ? AND is_active = ? AND deleted_at IS NULL",
		models.RoleConvener, department, true).First(&user).Error
	if err != nil {
		return nil
	}
	return &user
}

// Summary aggregates the persisted audit assignments for a folder.
func (s *AuditService) Summary(folderID int) (*AuditSummary, error) {
	var assignments []models.AuditAssignment
	if err := s.db.Where("folder_id = ?", folderID).Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to load audit assignments: %w", err)
	}
	summary := SummarizeAudit(assignments)
	return &summary, nil
}

// Queue lists the folders an auditor still has open assignments for.
func (s *AuditService) Queue(auditorID int) ([]models.AuditAssignment, error) {
	var assignments []models.AuditAssignment
	err := s.db.Preload("Folder").Preload("Folder.Course").
		Where("auditor_id = ?", auditorID).
		Order("assigned_at DESC").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load audit queue: %w", err)
	}
	return assignments, nil
}

func (s *AuditService) freshStatus(folderID int) string {
	var folder models.CourseFolder
	if err := s.db.Select("status").Where("folder_id = ?", folderID).First(&folder).Error; err != nil {
		return ""
	}
	return folder.Status
}
