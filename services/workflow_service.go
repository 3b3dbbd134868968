package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"course-folder-api/models"

	"gorm.io/gorm"
)

// WorkflowService orchestrates the review pipeline: permission check, state
// guard, domain mutation, history append and event emission, in that order.
// Side effects (consolidated report, notifications) are best-effort and never
// roll back a committed transition.
type WorkflowService struct {
	db        *gorm.DB
	events    *EventPublisher
	composer  ReportComposer
	artifacts *ArtifactStore
}

func NewWorkflowService(db *gorm.DB) *WorkflowService {
	return &WorkflowService{
		db:        db,
		events:    NewEventPublisher(db),
		artifacts: NewArtifactStore(),
	}
}

// WithComposer attaches the external report composer.
func (s *WorkflowService) WithComposer(c ReportComposer) *WorkflowService {
	s.composer = c
	return s
}

// WithPublisher replaces the default event publisher.
func (s *WorkflowService) WithPublisher(p *EventPublisher) *WorkflowService {
	s.events = p
	return s
}

// HodDecisionResult is returned by HodFinalDecision.
type HodDecisionResult struct {
	Folder              *models.CourseFolder
	CheckpointCompleted bool
	SecondCycle         bool
}

func (s *WorkflowService) loadFolder(folderID int) (*models.CourseFolder, error) {
	var folder models.CourseFolder
	err := s.db.Preload("Course").Preload("Faculty").Preload("Term").
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

func (s *WorkflowService) loadActor(actorID int) (*models.User, error) {
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

func folderLabel(folder *models.CourseFolder) string {
	code := ""
	if folder.Course != nil {
		code = folder.Course.Code
	}
	if code == "" {
		return fmt.Sprintf("folder #%d", folder.FolderID)
	}
	return fmt.Sprintf("%s - %s", code, folder.Section)
}

func facultyName(folder *models.CourseFolder) string {
	if folder.Faculty != nil {
		return folder.Faculty.FullName
	}
	return "The instructor"
}

// casStatus performs the compare-and-set transition: the update applies only
// while the folder still sits in one of the expected source statuses. A zero
// row count means another actor won the race.
func casStatus(tx *gorm.DB, folderID int, from []string, updates map[string]interface{}) (bool, error) {
	result := tx.Model(&models.CourseFolder{}).
		Where("folder_id = ? AND status IN ?", folderID, from).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update folder status: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func appendHistory(tx *gorm.DB, folderID int, status string, actorID int, notes string) error {
	entry := models.FolderStatusHistory{
		FolderID:    folderID,
		Status:      status,
		ChangedByID: actorID,
		Notes:       notes,
		CreatedAt:   time.Now(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record status history: %w", err)
	}
	return nil
}

func (s *WorkflowService) freshStatus(folderID int) string {
	var folder models.CourseFolder
	if err := s.db.Select("status").Where("folder_id = ?", folderID).First(&folder).Error; err != nil {
		return ""
	}
	return folder.Status
}

// coordinatorQuery returns the active coordinator assignments covering this
// folder's course, either term-scoped or term-agnostic.
func (s *WorkflowService) coordinatorQuery(folder *models.CourseFolder) *gorm.DB {
	return s.db.Model(&models.CourseCoordinatorAssignment{}).
		Where("course_id = ? AND is_active = ? AND deleted_at IS NULL", folder.CourseID, true).
		Where("term_id = ? OR term_id IS NULL", folder.TermID)
}

func (s *WorkflowService) isCoordinatorFor(actorID int, folder *models.CourseFolder) (bool, error) {
	var count int64
	if err := s.coordinatorQuery(folder).Where("coordinator_id = ?", actorID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check coordinator assignment: %w", err)
	}
	return count > 0, nil
}

func (s *WorkflowService) primaryCoordinator(folder *models.CourseFolder) *models.User {
	var assignment models.CourseCoordinatorAssignment
	err := s.coordinatorQuery(folder).Order("assignment_id ASC").First(&assignment).Error
	if err != nil {
		return nil
	}
	var user models.User
	if err := s.db.Where("user_id = ? AND deleted_at IS NULL", assignment.CoordinatorID).First(&user).Error; err != nil {
		return nil
	}
	return &user
}

func (s *WorkflowService) departmentUser(role, department string) *models.User {
	var user models.User
	err := s.db.Where("role = ? AND department = ? AND is_active = ? AND deleted_at IS NULL",
		role, department, true).First(&user).Error
	if err != nil {
		return nil
	}
	return &user
}

// buildCompletenessInput gathers the validator's inputs from the folder and
// its child records.
func (s *WorkflowService) buildCompletenessInput(folder *models.CourseFolder) (CompletenessInput, error) {
	in := CompletenessInput{
		Status:              folder.Status,
		CheckpointCompleted: folder.CheckpointCompleted,
		Content:             &folder.Content,

		CLOAssessmentUploaded: folder.CLOAssessmentPath != "",
		ProjectReportUploaded: folder.ProjectReportPath != "",
		CourseResultUploaded:  folder.CourseResultPath != "",
		ReviewReportUploaded:  folder.ReviewReportPath != "",
	}

	var totalLogs, logsMissingAttendance int64
	if err := s.db.Model(&models.CourseLogEntry{}).
		Where("folder_id = ?", folder.FolderID).
		Count(&totalLogs).Error; err != nil {
		return in, fmt.Errorf("failed to count log entries: %w", err)
	}
	if err := s.db.Model(&models.CourseLogEntry{}).
		Where("folder_id = ? AND (attendance_sheet_path IS NULL OR attendance_sheet_path = '')", folder.FolderID).
		Count(&logsMissingAttendance).Error; err != nil {
		return in, fmt.Errorf("failed to count log attendance: %w", err)
	}
	in.HasLogEntryRows = totalLogs > 0
	in.AllLogRowsHaveAttendance = totalLogs > 0 && logsMissingAttendance == 0

	var attendanceComponents int64
	if err := s.db.Model(&models.FolderComponent{}).
		Where("folder_id = ? AND component_type = ? AND file_path <> ''", folder.FolderID, models.ComponentAttendance).
		Count(&attendanceComponents).Error; err != nil {
		return in, fmt.Errorf("failed to count attendance components: %w", err)
	}
	in.HasAttendanceComponent = attendanceComponents > 0

	return in, nil
}

// CheckCompleteness runs the completeness validator without submitting.
func (s *WorkflowService) CheckCompleteness(folderID int) (bool, []string, error) {
	folder, err := s.loadFolder(folderID)
	if err != nil {
		return false, nil, err
	}
	in, err := s.buildCompletenessInput(folder)
	if err != nil {
		return false, nil, err
	}
	ok, reasons := ValidateCompleteness(in)
	return ok, reasons, nil
}

// Submit moves an instructor's folder to SUBMITTED once the completeness
// validator passes and a coordinator exists to receive it.
func (s *WorkflowService) Submit(folderID, actorID int) (*models.CourseFolder, error) {
	folder, err := s.loadFolder(folderID)
	if err != nil {
		return nil, err
	}

	if folder.FacultyID != actorID {
		return nil, permissionDenied("You do not have permission to submit this folder")
	}
	if !CanTransition(ActionSubmit, folder.Status) {
		return nil, stateConflict(folder.Status,
			"Cannot submit folder with status %s. Folder must be in DRAFT, a rejected status, or APPROVED_BY_HOD to submit.",
			folder.Status)
	}

	var coordinators int64
	if err := s.coordinatorQuery(folder).Count(&coordinators).Error; err != nil {
		return nil, fmt.Errorf("failed to check coordinator assignment: %w", err)
	}
	if coordinators == 0 {
		return nil, &ValidationFailureError{Reasons: []string{
			"No active coordinator is mapped to this course. Please contact your department before submitting the folder.",
		}}
	}

	in, err := s.buildCompletenessInput(folder)
	if err != nil {
		return nil, err
	}
	if ok, reasons := ValidateCompleteness(in); !ok {
		return nil, &ValidationFailureError{Reasons: reasons}
	}

	secondCycle := CheckpointFor(folder.Status, folder.CheckpointCompleted) == CheckpointSecond
	now := time.Now()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		applied, err := casStatus(tx, folder.FolderID, AllowedSources(ActionSubmit), map[string]interface{}{
			"status":       models.StatusSubmitted,
			"submitted_at": now,
			"updated_at":   now,
		})
		if err != nil {
			return err
		}
		if !applied {
			return stateConflict(s.freshStatus(folder.FolderID), "Folder status changed while submitting; please refresh and retry")
		}

		note := "Folder submitted to Coordinator for review (first submission after midterm)"
		if secondCycle {
			note = "Folder submitted to Coordinator for review (second submission after final term - full approval cycle will repeat)"
		}
		return appendHistory(tx, folder.FolderID, models.StatusSubmitted, actorID, note)
	})
	if err != nil {
		return nil, err
	}

	folderID = folder.FolderID
	recipients := []int{}
	if coordinator := s.primaryCoordinator(folder); coordinator != nil {
		recipients = append(recipients, coordinator.UserID)
	}
	s.events.Publish(Event{
		Type:       models.EventFolderSubmitted,
		Title:      "New Course Folder Submitted",
		Message:    fmt.Sprintf("%s has submitted the course folder for %s for review", facultyName(folder), folderLabel(folder)),
		FolderID:   &folderID,
		Recipients: recipients,
		Broadcast:  true,
	})

	return s.loadFolder(folder.FolderID)
}

// CoordinatorReview records the coordinator's approve/reject decision. A
// previously recorded decision may only be edited by the coordinator who
// made it.
func (s *WorkflowService) CoordinatorReview(folderID, actorID int, decision, notes string) (*models.CourseFolder, error) {
	decision = strings.ToLower(strings.TrimSpace(decision))
	if decision != "approve" && decision != "reject" {
		return nil, &ValidationFailureError{Reasons: []string{"Decision must be either 'approve' or 'reject'"}}
	}

	folder, err := s.loadFolder(folderID)
	if err != nil {
		return nil, err
	}

	isCoordinator, err := s.isCoordinatorFor(actorID, folder)
	if err != nil {
		return nil, err
	}
	if !isCoordinator {
		return nil, permissionDenied("Only course coordinators assigned to this course can review folders")
	}

	if !CanTransition(ActionCoordinatorReview, folder.Status) {
		return nil, stateConflict(folder.Status, "Cannot review folder with status %s", folder.Status)
	}

	isEditing := folder.Status == models.StatusApprovedCoordinator || folder.Status == models.StatusRejectedCoordinator
	if isEditing && (folder.CoordinatorReviewedByID == nil || *folder.CoordinatorReviewedByID != actorID) {
		return nil, permissionDenied("Only the coordinator who reviewed this folder can change the decision")
	}

	target := models.StatusApprovedCoordinator
	structured := models.DecisionApproved
	if decision == "reject" {
		target = models.StatusRejectedCoordinator
		structured = models.DecisionRejected
	}

	previousStatus := folder.Status
	now := time.Now()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		applied, err := casStatus(tx, folder.FolderID, []string{previousStatus}, map[string]interface{}{
			"status":                  target,
			"coordinator_reviewed_at": now,
			"coordinator_reviewed_by": actorID,
			"coordinator_decision":    structured,
			"coordinator_notes":       notes,
			"updated_at":              now,
		})
		if err != nil {
			return err
		}
		if !applied {
			return stateConflict(s.freshStatus(folder.FolderID), "Folder status changed while reviewing; please refresh and retry")
		}

		note := fmt.Sprintf("Approved by Coordinator: %s", notes)
		if target == models.StatusRejectedCoordinator {
			note = fmt.Sprintf("Rejected by Coordinator: %s", notes)
		}
		if isEditing {
			note = "Decision changed - " + note
		}
		return appendHistory(tx, folder.FolderID, target, actorID, note)
	})
	if err != nil {
		return nil, err
	}

	s.publishCoordinatorOutcome(folder, target, isEditing, previousStatus)
	return s.loadFolder(folder.FolderID)
}

func (s *WorkflowService) publishCoordinatorOutcome(folder *models.CourseFolder, target string, isEditing bool, previousStatus string) {
	folderID := folder.FolderID
	suffix := ""
	if isEditing {
		suffix = " (Decision updated)"
	}

	if target == models.StatusApprovedCoordinator {
		// Skip duplicate notifications when an approval is re-saved unchanged.
		if isEditing && previousStatus == models.StatusApprovedCoordinator {
			return
		}
		s.events.Publish(Event{
			Type:       models.EventFolderApproved,
			Title:      "Course Folder Approved by Coordinator",
			Message:    fmt.Sprintf("Your course folder for %s has been approved by the Course Coordinator.%s", folderLabel(folder), suffix),
			FolderID:   &folderID,
			Recipients: []int{folder.FacultyID},
		})
		if convener := s.departmentUser(models.RoleConvener, folder.Department); convener != nil {
			s.events.Publish(Event{
				Type:       models.EventFolderApproved,
				Title:      "Course Folder Approved - Awaiting Audit Assignment",
				Message:    fmt.Sprintf("Course folder for %s has been approved by the coordinator. Please assign an audit panel.%s", folderLabel(folder), suffix),
				FolderID:   &folderID,
				Recipients: []int{convener.UserID},
			})
		}
		return
	}

	s.events.Publish(Event{
		Type:       models.EventFolderReturned,
		Title:      "Course Folder Rejected by Coordinator",
		Message:    fmt.Sprintf("Your course folder for %s was rejected by the Course Coordinator. Please check the remarks and resubmit.%s", folderLabel(folder), suffix),
		FolderID:   &folderID,
		Recipients: []int{folder.FacultyID},
	})
}

// ConvenerReview forwards an audited folder to the HOD or rejects it back to
// the instructor. Forwarding triggers the consolidated-report side effect.
func (s *WorkflowService) ConvenerReview(folderID, actorID int, action, notes string) (*models.CourseFolder, error) {
	action = strings.ToLower(strings.TrimSpace(action))
	if action != "forward" && action != "reject" {
		return nil, &ValidationFailureError{Reasons: []string{"Action must be either 'forward' or 'reject'"}}
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
		return nil, permissionDenied("Only conveners can review audit reports")
	}
	if !CanTransition(ActionConvenerReview, folder.Status) {
		return nil, stateConflict(folder.Status,
			"Cannot review folder with status %s. Folder must be in the audit review stage or awaiting HOD decision.",
			folder.Status)
	}

	now := time.Now()
	previousStatus := folder.Status

	if action == "reject" {
		if strings.TrimSpace(notes) == "" {
			return nil, &ValidationFailureError{Reasons: []string{"Remarks are required when rejecting a folder"}}
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			applied, err := casStatus(tx, folder.FolderID, []string{previousStatus}, map[string]interface{}{
				"status":         models.StatusRejectedByConvener,
				"convener_notes": notes,
				"updated_at":     now,
			})
			if err != nil {
				return err
			}
			if !applied {
				return stateConflict(s.freshStatus(folder.FolderID), "Folder status changed while reviewing; please refresh and retry")
			}
			return appendHistory(tx, folder.FolderID, models.StatusRejectedByConvener, actorID, fmt.Sprintf("Rejected by Convener: %s", notes))
		})
		if err != nil {
			return nil, err
		}

		fid := folder.FolderID
		s.events.Publish(Event{
			Type:       models.EventFolderReturned,
			Title:      "Course Folder Rejected After Audit",
			Message:    fmt.Sprintf("Your course folder for %s was rejected after audit review. Please update it and resubmit.", folderLabel(folder)),
			FolderID:   &fid,
			Recipients: []int{folder.FacultyID},
		})
		return s.loadFolder(folder.FolderID)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		applied, err := casStatus(tx, folder.FolderID, []string{previousStatus}, map[string]interface{}{
			"status":         models.StatusSubmittedToHOD,
			"convener_notes": notes,
			"updated_at":     now,
		})
		if err != nil {
			return err
		}
		if !applied {
			return stateConflict(s.freshStatus(folder.FolderID), "Folder status changed while reviewing; please refresh and retry")
		}
		return appendHistory(tx, folder.FolderID, models.StatusSubmittedToHOD, actorID, fmt.Sprintf("Forwarded to HOD: %s", notes))
	})
	if err != nil {
		return nil, err
	}

	// Consolidated report is best-effort: a failure is recorded on the
	// folder, never propagated to the committed transition.
	s.ensureConsolidatedReport(folder, actorID)

	fid := folder.FolderID
	if hod := s.departmentUser(models.RoleHOD, folder.Department); hod != nil {
		s.events.Publish(Event{
			Type:       models.EventFolderSubmitted,
			Title:      "Course Folder Awaiting Final Approval",
			Message:    fmt.Sprintf("Course folder for %s has passed audit review and is awaiting your final decision.", folderLabel(folder)),
			FolderID:   &fid,
			Recipients: []int{hod.UserID},
		})
	}

	return s.loadFolder(folder.FolderID)
}

// ensureConsolidatedReport builds the cover-plus-merge consolidated artifact
// once the folder is forwarded to the HOD, unless one already exists.
func (s *WorkflowService) ensureConsolidatedReport(folder *models.CourseFolder, actorID int) {
	if folder.ConsolidatedPath != "" {
		return
	}

	markFailed := func(reason error) {
		log.Printf("consolidated report generation failed for folder %d: %v", folder.FolderID, reason)
		if err := s.db.Model(&models.CourseFolder{}).
			Where("folder_id = ?", folder.FolderID).
			Update("report_generation_status", models.ReportFailed).Error; err != nil {
			log.Printf("failed to record report failure for folder %d: %v", folder.FolderID, err)
		}
	}

	if s.composer == nil {
		markFailed(ErrComposerUnavailable)
		return
	}

	var assignments []models.AuditAssignment
	if err := s.db.Where("folder_id = ?", folder.FolderID).Find(&assignments).Error; err != nil {
		markFailed(err)
		return
	}

	summary := SummarizeAudit(assignments)
	cover, err := s.composer.ComposeCover(folder, summary)
	if err != nil {
		markFailed(err)
		return
	}

	parts := [][]byte{cover}
	for i := range assignments {
		if assignments[i].FeedbackFilePath == "" {
			continue
		}
		data, err := s.artifacts.Read(assignments[i].FeedbackFilePath)
		if err != nil {
			log.Printf("skipping unreadable auditor report %s: %v", assignments[i].FeedbackFilePath, err)
			continue
		}
		parts = append(parts, data)
	}

	merged, err := s.composer.MergeReports(parts)
	if err != nil {
		markFailed(err)
		return
	}

	path, err := s.artifacts.Save("consolidated", ".pdf", merged)
	if err != nil {
		markFailed(err)
		return
	}

	now := time.Now()
	if err := s.db.Model(&models.CourseFolder{}).
		Where("folder_id = ?", folder.FolderID).
		Updates(map[string]interface{}{
			"consolidated_path":        path,
			"report_generated_at":      now,
			"report_generation_status": models.ReportCompleted,
		}).Error; err != nil {
		log.Printf("failed to record consolidated report for folder %d: %v", folder.FolderID, err)
		return
	}

	fid := folder.FolderID
	s.events.Publish(Event{
		Type:       models.EventArtifactGenerated,
		Title:      "Consolidated Audit Report Generated",
		Message:    fmt.Sprintf("The consolidated audit report for %s is ready.", folderLabel(folder)),
		FolderID:   &fid,
		Recipients: []int{actorID},
	})
}

// HodFinalDecision records the HOD's approve/reject decision. The first
// approval completes the first checkpoint and re-opens the folder for its
// second submission cycle; the flag never reverts.
func (s *WorkflowService) HodFinalDecision(folderID, actorID int, decision, notes, finalFeedback string) (*HodDecisionResult, error) {
	decision = strings.ToLower(strings.TrimSpace(decision))
	if decision != "approve" && decision != "reject" {
		return nil, &ValidationFailureError{Reasons: []string{"Decision must be either 'approve' or 'reject'"}}
	}

	folder, err := s.loadFolder(folderID)
	if err != nil {
		return nil, err
	}
	actor, err := s.loadActor(actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleHOD {
		return nil, permissionDenied("Only the HOD can make the final approval decision")
	}
	if !CanTransition(ActionHodFinalDecision, folder.Status) {
		return nil, stateConflict(folder.Status,
			"Cannot review folder with status %s. Folder must be submitted to HOD or carry a previous HOD decision.",
			folder.Status)
	}

	now := time.Now()
	previousStatus := folder.Status
	firstApproval := false

	if decision == "approve" {
		firstApproval = !folder.CheckpointCompleted

		err = s.db.Transaction(func(tx *gorm.DB) error {
			updates := map[string]interface{}{
				"status":             models.StatusApprovedByHOD,
				"hod_reviewed_at":    now,
				"hod_reviewed_by":    actorID,
				"hod_decision":       models.DecisionApproved,
				"hod_notes":          notes,
				"hod_final_feedback": finalFeedback,
				"updated_at":         now,
			}
			// checkpoint_completed is monotonic; only ever written true.
			if firstApproval {
				updates["checkpoint_completed"] = true
			}
			applied, err := casStatus(tx, folder.FolderID, []string{previousStatus}, updates)
			if err != nil {
				return err
			}
			if !applied {
				return stateConflict(s.freshStatus(folder.FolderID), "Folder status changed while deciding; please refresh and retry")
			}

			cycle := "First submission"
			if !firstApproval {
				cycle = "Second submission"
			}
			note := fmt.Sprintf("%s - Final approval by HOD", cycle)
			if notes != "" {
				note = fmt.Sprintf("%s: %s", note, notes)
			}
			return appendHistory(tx, folder.FolderID, models.StatusApprovedByHOD, actorID, note)
		})
		if err != nil {
			return nil, err
		}

		fid := folder.FolderID
		if firstApproval {
			s.events.Publish(Event{
				Type:       models.EventFolderApproved,
				Title:      "First Cycle Completed - Ready for Final Submission",
				Message:    fmt.Sprintf("Your course folder for %s has been approved by the HOD. The first cycle is complete; you can now add final-term content and submit again.", folderLabel(folder)),
				FolderID:   &fid,
				Recipients: []int{folder.FacultyID},
			})
		} else {
			s.events.Publish(Event{
				Type:       models.EventFolderApproved,
				Title:      "Course Folder Approved - Final",
				Message:    fmt.Sprintf("Your course folder for %s has been approved by the HOD. The review process is complete.", folderLabel(folder)),
				FolderID:   &fid,
				Recipients: []int{folder.FacultyID},
			})
		}
	} else {
		err = s.db.Transaction(func(tx *gorm.DB) error {
			applied, err := casStatus(tx, folder.FolderID, []string{previousStatus}, map[string]interface{}{
				"status":             models.StatusRejectedByHOD,
				"hod_reviewed_at":    now,
				"hod_reviewed_by":    actorID,
				"hod_decision":       models.DecisionRejected,
				"hod_notes":          notes,
				"hod_final_feedback": finalFeedback,
				"updated_at":         now,
			})
			if err != nil {
				return err
			}
			if !applied {
				return stateConflict(s.freshStatus(folder.FolderID), "Folder status changed while deciding; please refresh and retry")
			}

			note := "Rejected by HOD"
			if notes != "" {
				note = fmt.Sprintf("Rejected by HOD: %s", notes)
			}
			return appendHistory(tx, folder.FolderID, models.StatusRejectedByHOD, actorID, note)
		})
		if err != nil {
			return nil, err
		}

		fid := folder.FolderID
		s.events.Publish(Event{
			Type:       models.EventFolderReturned,
			Title:      "Course Folder Rejected by HOD",
			Message:    fmt.Sprintf("Your course folder for %s has been rejected by the HOD. Please check the remarks and correct it.", folderLabel(folder)),
			FolderID:   &fid,
			Recipients: []int{folder.FacultyID},
		})
	}

	updated, err := s.loadFolder(folder.FolderID)
	if err != nil {
		return nil, err
	}
	return &HodDecisionResult{
		Folder:              updated,
		CheckpointCompleted: updated.CheckpointCompleted,
		SecondCycle:         !firstApproval && decision == "approve",
	}, nil
}
