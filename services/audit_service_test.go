package services

import (
	"database/sql/driver"
	"errors"
	"testing"

	"course-folder-api/models"
)

var assignmentColumns = []string{
	"audit_assignment_id", "folder_id", "auditor_id", "assigned_by",
	"decision", "remarks", "report_submitted",
}

func assignmentRow(id, auditorID int64, decision string, submitted int64) []driver.Value {
	return []driver.Value{id, int64(1), auditorID, int64(5), decision, "", submitted}
}

// auditFolderSteps scripts the folder read for AuditService, which preloads
// Course and Faculty only.
func auditFolderSteps(status string) []*queryStep {
	return []*queryStep{
		queryExpect(`SELECT \* FROM .course_folders. WHERE folder_id = \?`, folderColumns, folderRow(status, "{}")),
		queryExpect(`SELECT \* FROM .courses.`, []string{"course_id", "code"}),
		queryExpect(`SELECT \* FROM .users.`, []string{"user_id", "full_name"}),
	}
}

// folderLockStep scripts the row lock every report submission takes at the
// top of its transaction. The anchored pattern fails the test if the read
// ever loses its locking clause.
func folderLockStep(status string) *queryStep {
	return queryExpect(`SELECT .status. FROM .course_folders. WHERE folder_id = \?.*FOR UPDATE$`,
		[]string{"status"}, []driver.Value{status})
}

func TestAssignAuditCreatesPanelAndMovesUnderAudit(t *testing.T) {
	steps := auditFolderSteps(models.StatusApprovedCoordinator)
	steps = append(steps,
		actorStep(models.RoleConvener),
		queryExpect(`SELECT \* FROM .users. WHERE user_id IN`,
			[]string{"user_id", "role", "full_name"},
			[]driver.Value{int64(7), models.RoleFaculty, "Auditor One"},
			[]driver.Value{int64(8), models.RoleFaculty, "Auditor Two"}),
		// One idempotent lookup-then-create per panel member.
		queryExpect(`SELECT \* FROM .audit_assignments. WHERE folder_id = \? AND auditor_id = \?`, assignmentColumns),
		execExpect(`INSERT INTO .audit_assignments.`, 1),
		queryExpect(`SELECT \* FROM .audit_assignments. WHERE folder_id = \? AND auditor_id = \?`, assignmentColumns),
		execExpect(`INSERT INTO .audit_assignments.`, 1),
		execExpect(`UPDATE .course_folders. SET .* WHERE folder_id = \? AND status IN`, 1),
		execExpect(`INSERT INTO .folder_status_history.`, 1),
	)
	steps = append(steps, auditFolderSteps(models.StatusUnderAudit)...)

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewAuditService(gormDB).WithPublisher(&EventPublisher{})
	folder, err := service.AssignAudit(1, 6, []int{7, 8})
	if err != nil {
		t.Fatalf("AssignAudit failed: %v", err)
	}
	if folder.Status != models.StatusUnderAudit {
		t.Errorf("status = %s, want UNDER_AUDIT", folder.Status)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestAssignAuditRejectsHodPanelist(t *testing.T) {
	steps := auditFolderSteps(models.StatusApprovedCoordinator)
	steps = append(steps,
		actorStep(models.RoleConvener),
		// The HOD comes back from the lookup but is filtered out, so the
		// panel no longer matches the requested ids.
		queryExpect(`SELECT \* FROM .users. WHERE user_id IN`,
			[]string{"user_id", "role", "full_name"},
			[]driver.Value{int64(7), models.RoleFaculty, "Auditor One"},
			[]driver.Value{int64(9), models.RoleHOD, "Department Head"}),
	)
	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewAuditService(gormDB).WithPublisher(&EventPublisher{})
	_, err := service.AssignAudit(1, 6, []int{7, 9})
	var failure *ValidationFailureError
	if !errors.As(err, &failure) {
		t.Fatalf("expected ValidationFailureError, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestUnassignAuditRestoresCoordinatorStage(t *testing.T) {
	steps := auditFolderSteps(models.StatusUnderAudit)
	steps = append(steps,
		actorStep(models.RoleConvener),
		execExpect(`DELETE FROM .audit_assignments. WHERE folder_id = \?`, 2),
		execExpect(`UPDATE .course_folders. SET .* WHERE folder_id = \? AND status IN`, 1),
		execExpect(`INSERT INTO .folder_status_history.`, 1),
	)
	steps = append(steps, auditFolderSteps(models.StatusApprovedCoordinator)...)

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewAuditService(gormDB).WithPublisher(&EventPublisher{})
	folder, err := service.UnassignAudit(1, 6)
	if err != nil {
		t.Fatalf("UnassignAudit failed: %v", err)
	}
	if folder.Status != models.StatusApprovedCoordinator {
		t.Errorf("status = %s, want APPROVED_COORDINATOR", folder.Status)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestSubmitAuditReportRejectionRoutesEarly(t *testing.T) {
	steps := auditFolderSteps(models.StatusUnderAudit)
	steps = append(steps,
		queryExpect(`SELECT \* FROM .audit_assignments. WHERE folder_id = \? AND auditor_id = \?`,
			assignmentColumns, assignmentRow(11, 7, models.DecisionPending, 0)),
		folderLockStep(models.StatusUnderAudit),
		execExpect(`UPDATE .audit_assignments. SET`, 1),
		// Rejection short-circuits ahead of the panel: the folder routes to
		// the convener without waiting for the second auditor.
		execExpect(`UPDATE .course_folders. SET .* WHERE folder_id = \? AND status IN`, 1),
		execExpect(`INSERT INTO .folder_status_history.`, 1),
		queryExpect(`SELECT \* FROM .audit_assignments. WHERE folder_id = \?`, assignmentColumns,
			assignmentRow(11, 7, models.DecisionRejected, 1),
			assignmentRow(12, 8, models.DecisionPending, 0)),
		queryExpect(`SELECT .status. FROM .course_folders.`, []string{"status"}, []driver.Value{models.StatusAuditCompleted}),
		// Convener lookup for the routed notification; none configured here.
		queryExpect(`SELECT \* FROM .users. WHERE role = \?`, []string{"user_id"}),
	)

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewAuditService(gormDB).WithPublisher(&EventPublisher{})
	result, err := service.SubmitAuditReport(1, 7, "reject", "missing solutions throughout", nil, nil)
	if err != nil {
		t.Fatalf("SubmitAuditReport failed: %v", err)
	}
	if !result.Routed {
		t.Error("a rejection should route the folder immediately")
	}
	if result.Submitted != 1 || result.Total != 2 {
		t.Errorf("progress = %d/%d, want 1/2", result.Submitted, result.Total)
	}
	if result.Status != models.StatusAuditCompleted {
		t.Errorf("status = %s, want AUDIT_COMPLETED", result.Status)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestSubmitAuditReportFinalSubmissionCompletesPanel(t *testing.T) {
	steps := auditFolderSteps(models.StatusUnderAudit)
	steps = append(steps,
		queryExpect(`SELECT \* FROM .audit_assignments. WHERE folder_id = \? AND auditor_id = \?`,
			assignmentColumns, assignmentRow(12, 8, models.DecisionPending, 0)),
		// The folder lock serializes the two final submissions; this one
		// acquires it second and its recount sees the peer's committed row.
		folderLockStep(models.StatusUnderAudit),
		execExpect(`UPDATE .audit_assignments. SET`, 1),
		// Completion is recomputed from the persisted rows; with the last
		// report in, all panel members have submitted.
		queryExpect(`SELECT \* FROM .audit_assignments. WHERE folder_id = \?`, assignmentColumns,
			assignmentRow(11, 7, models.DecisionApproved, 1),
			assignmentRow(12, 8, models.DecisionApproved, 1)),
		execExpect(`UPDATE .course_folders. SET .* WHERE folder_id = \? AND status IN`, 1),
		execExpect(`INSERT INTO .folder_status_history.`, 1),
		queryExpect(`SELECT .status. FROM .course_folders.`, []string{"status"}, []driver.Value{models.StatusAuditCompleted}),
		queryExpect(`SELECT \* FROM .users. WHERE role = \?`, []string{"user_id"}),
	)

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewAuditService(gormDB).WithPublisher(&EventPublisher{})
	result, err := service.SubmitAuditReport(1, 8, "approve", "well organized folder", nil, nil)
	if err != nil {
		t.Fatalf("SubmitAuditReport failed: %v", err)
	}
	if result.Routed {
		t.Error("approval should not route early")
	}
	if result.Submitted != 2 || result.Total != 2 {
		t.Errorf("progress = %d/%d, want 2/2", result.Submitted, result.Total)
	}
	if result.Status != models.StatusAuditCompleted {
		t.Errorf("status = %s, want AUDIT_COMPLETED", result.Status)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestSubmitAuditReportPartialPanelStaysUnderAudit(t *testing.T) {
	steps := auditFolderSteps(models.StatusUnderAudit)
	steps = append(steps,
		queryExpect(`SELECT \* FROM .audit_assignments. WHERE folder_id = \? AND auditor_id = \?`,
			assignmentColumns, assignmentRow(11, 7, models.DecisionPending, 0)),
		folderLockStep(models.StatusUnderAudit),
		execExpect(`UPDATE .audit_assignments. SET`, 1),
		queryExpect(`SELECT \* FROM .audit_assignments. WHERE folder_id = \?`, assignmentColumns,
			assignmentRow(11, 7, models.DecisionApproved, 1),
			assignmentRow(12, 8, models.DecisionPending, 0)),
		queryExpect(`SELECT .status. FROM .course_folders.`, []string{"status"}, []driver.Value{models.StatusUnderAudit}),
	)

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewAuditService(gormDB).WithPublisher(&EventPublisher{})
	result, err := service.SubmitAuditReport(1, 7, "approve", "fine so far", nil, nil)
	if err != nil {
		t.Fatalf("SubmitAuditReport failed: %v", err)
	}
	if result.Routed || result.Status != models.StatusUnderAudit {
		t.Errorf("partial panel should stay under audit, got routed=%v status=%s", result.Routed, result.Status)
	}
	if result.Submitted != 1 || result.Total != 2 {
		t.Errorf("progress = %d/%d, want 1/2", result.Submitted, result.Total)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestSubmitAuditReportRequiresRemarks(t *testing.T) {
	gormDB, state, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	service := NewAuditService(gormDB).WithPublisher(&EventPublisher{})
	_, err := service.SubmitAuditReport(1, 7, "approve", "   ", nil, nil)
	var failure *ValidationFailureError
	if !errors.As(err, &failure) {
		t.Fatalf("expected ValidationFailureError, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestSubmitAuditReportAfterEscalationIsFrozen(t *testing.T) {
	steps := auditFolderSteps(models.StatusSubmittedToHOD)
	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewAuditService(gormDB).WithPublisher(&EventPublisher{})
	_, err := service.SubmitAuditReport(1, 7, "approve", "late change of mind", nil, nil)
	var conflict *StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected StateConflictError, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestSubmitAuditReportConflictUnderLock(t *testing.T) {
	steps := auditFolderSteps(models.StatusUnderAudit)
	steps = append(steps,
		queryExpect(`SELECT \* FROM .audit_assignments. WHERE folder_id = \? AND auditor_id = \?`,
			assignmentColumns, assignmentRow(11, 7, models.DecisionPending, 0)),
		// The convener forwarded the folder between the optimistic status
		// check and the transaction; the locked read sees the hand-off and
		// the submission stops before touching the assignment.
		folderLockStep(models.StatusSubmittedToHOD),
	)
	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewAuditService(gormDB).WithPublisher(&EventPublisher{})
	_, err := service.SubmitAuditReport(1, 7, "approve", "looks complete", nil, nil)
	var conflict *StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected StateConflictError, got %v", err)
	}
	if conflict.CurrentStatus != models.StatusSubmittedToHOD {
		t.Errorf("CurrentStatus = %s, want SUBMITTED_TO_HOD", conflict.CurrentStatus)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestSubmitAuditReportRejectionResubmitDoesNotReroute(t *testing.T) {
	steps := auditFolderSteps(models.StatusAuditCompleted)
	steps = append(steps,
		queryExpect(`SELECT \* FROM .audit_assignments. WHERE folder_id = \? AND auditor_id = \?`,
			assignmentColumns, assignmentRow(11, 7, models.DecisionRejected, 1)),
		folderLockStep(models.StatusAuditCompleted),
		execExpect(`UPDATE .audit_assignments. SET`, 1),
		// The routing transition already happened; the conditional update
		// matches no rows and no history entry is written.
		execExpect(`UPDATE .course_folders. SET .* WHERE folder_id = \? AND status IN`, 0),
		queryExpect(`SELECT \* FROM .audit_assignments. WHERE folder_id = \?`, assignmentColumns,
			assignmentRow(11, 7, models.DecisionRejected, 1),
			assignmentRow(12, 8, models.DecisionApproved, 1)),
		queryExpect(`SELECT .status. FROM .course_folders.`, []string{"status"}, []driver.Value{models.StatusAuditCompleted}),
	)
	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewAuditService(gormDB).WithPublisher(&EventPublisher{})
	result, err := service.SubmitAuditReport(1, 7, "reject", "still missing the model solutions", nil, nil)
	if err != nil {
		t.Fatalf("SubmitAuditReport failed: %v", err)
	}
	if result.Routed {
		t.Error("an overwrite on an already-routed folder must not report routing again")
	}
	if result.Status != models.StatusAuditCompleted {
		t.Errorf("status = %s, want AUDIT_COMPLETED", result.Status)
	}
	// No convener lookup was scripted: the routed notification is not
	// re-published when the transition did not occur in this call.
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestSubmitAuditReportRejectsUnassignedAuditor(t *testing.T) {
	steps := auditFolderSteps(models.StatusUnderAudit)
	steps = append(steps,
		queryExpect(`SELECT \* FROM .audit_assignments. WHERE folder_id = \? AND auditor_id = \?`, assignmentColumns),
	)
	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewAuditService(gormDB).WithPublisher(&EventPublisher{})
	_, err := service.SubmitAuditReport(1, 42, "approve", "not my folder", nil, nil)
	var denied *PermissionDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected PermissionDeniedError, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}
