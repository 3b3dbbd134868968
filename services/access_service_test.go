package services

import (
	"database/sql/driver"
	"errors"
	"testing"

	"course-folder-api/models"
)

var accessRequestColumns = []string{
	"access_request_id", "folder_id", "requested_by", "status",
}

func TestRequestAccessBlocksDuplicatePending(t *testing.T) {
	steps := auditFolderSteps(models.StatusApprovedByHOD)
	steps = append(steps,
		actorStep(models.RoleConvener),
		queryExpect(`SELECT \* FROM .folder_access_requests. WHERE folder_id = \? AND requested_by = \?`,
			accessRequestColumns, []driver.Value{int64(4), int64(1), int64(6), models.AccessPending}),
	)
	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewAccessService(gormDB).WithPublisher(&EventPublisher{})
	_, err := service.RequestAccess(1, 6)
	var failure *ValidationFailureError
	if !errors.As(err, &failure) {
		t.Fatalf("expected ValidationFailureError, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestRequestAccessReplacesRejectedRequest(t *testing.T) {
	steps := auditFolderSteps(models.StatusApprovedByHOD)
	steps = append(steps,
		actorStep(models.RoleConvener),
		queryExpect(`SELECT \* FROM .folder_access_requests. WHERE folder_id = \? AND requested_by = \?`,
			accessRequestColumns, []driver.Value{int64(4), int64(1), int64(6), models.AccessRejected}),
		// A refused request is replaced, not resurrected.
		execExpect(`DELETE FROM .folder_access_requests. WHERE access_request_id = \?`, 1),
		execExpect(`INSERT INTO .folder_access_requests.`, 1),
	)
	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewAccessService(gormDB).WithPublisher(&EventPublisher{})
	request, err := service.RequestAccess(1, 6)
	if err != nil {
		t.Fatalf("RequestAccess failed: %v", err)
	}
	if request.Status != models.AccessPending {
		t.Errorf("status = %s, want PENDING", request.Status)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestRequestAccessRequiresApprovedFolder(t *testing.T) {
	steps := auditFolderSteps(models.StatusUnderAudit)
	steps = append(steps, actorStep(models.RoleConvener))
	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewAccessService(gormDB).WithPublisher(&EventPublisher{})
	_, err := service.RequestAccess(1, 6)
	var conflict *StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected StateConflictError, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestShareWithRoleRequiresAdmin(t *testing.T) {
	steps := auditFolderSteps(models.StatusApprovedByHOD)
	steps = append(steps, actorStep(models.RoleConvener))
	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewAccessService(gormDB).WithPublisher(&EventPublisher{})
	_, err := service.ShareWithRole(1, 6, models.RoleHOD)
	var denied *PermissionDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected PermissionDeniedError, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestDecideRejectRequiresNotes(t *testing.T) {
	gormDB, state, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	service := NewAccessService(gormDB).WithPublisher(&EventPublisher{})
	_, err := service.Decide(4, 6, "reject", "   ")
	var failure *ValidationFailureError
	if !errors.As(err, &failure) {
		t.Fatalf("expected ValidationFailureError, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestDecideApproveRecordsDecision(t *testing.T) {
	steps := []*queryStep{
		actorStep(models.RoleAdmin),
		queryExpect(`SELECT \* FROM .folder_access_requests. WHERE access_request_id = \?`,
			accessRequestColumns, []driver.Value{int64(4), int64(1), int64(9), models.AccessPending}),
	}
	steps = append(steps, auditFolderSteps(models.StatusApprovedByHOD)...)
	steps = append(steps,
		execExpect(`UPDATE .folder_access_requests. SET`, 1),
		queryExpect(`SELECT \* FROM .folder_access_requests. WHERE access_request_id = \?`,
			accessRequestColumns, []driver.Value{int64(4), int64(1), int64(9), models.AccessApproved}),
	)
	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewAccessService(gormDB).WithPublisher(&EventPublisher{})
	request, err := service.Decide(4, 6, "approve", "granted for department review")
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if request.Status != models.AccessApproved {
		t.Errorf("status = %s, want APPROVED", request.Status)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}
