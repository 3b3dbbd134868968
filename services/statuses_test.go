package services

import (
	"testing"

	"course-folder-api/models"
)

func TestCanTransitionTable(t *testing.T) {
	cases := []struct {
		action Action
		from   string
		want   bool
	}{
		{ActionSubmit, models.StatusDraft, true},
		{ActionSubmit, models.StatusRejectedCoordinator, true},
		{ActionSubmit, models.StatusRejectedByConvener, true},
		{ActionSubmit, models.StatusRejectedByHOD, true},
		{ActionSubmit, models.StatusApprovedByHOD, true},
		{ActionSubmit, models.StatusSubmitted, false},
		{ActionSubmit, models.StatusUnderAudit, false},

		{ActionCoordinatorReview, models.StatusSubmitted, true},
		{ActionCoordinatorReview, models.StatusApprovedCoordinator, true},
		{ActionCoordinatorReview, models.StatusRejectedCoordinator, true},
		{ActionCoordinatorReview, models.StatusDraft, false},
		{ActionCoordinatorReview, models.StatusUnderAudit, false},

		{ActionAssignAudit, models.StatusApprovedCoordinator, true},
		{ActionAssignAudit, models.StatusSubmitted, false},
		{ActionAssignAudit, models.StatusUnderAudit, false},

		{ActionUnassignAudit, models.StatusUnderAudit, true},
		{ActionUnassignAudit, models.StatusAuditCompleted, false},

		{ActionSubmitAuditReport, models.StatusUnderAudit, true},
		{ActionSubmitAuditReport, models.StatusAuditCompleted, true},
		{ActionSubmitAuditReport, models.StatusSubmittedToHOD, false},

		{ActionConvenerReview, models.StatusAuditCompleted, true},
		{ActionConvenerReview, models.StatusSubmittedToHOD, true},
		{ActionConvenerReview, models.StatusRejectedByConvener, true},
		{ActionConvenerReview, models.StatusUnderAudit, false},

		{ActionHodFinalDecision, models.StatusSubmittedToHOD, true},
		{ActionHodFinalDecision, models.StatusApprovedByHOD, true},
		{ActionHodFinalDecision, models.StatusRejectedByHOD, true},
		{ActionHodFinalDecision, models.StatusAuditCompleted, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.action, tc.from); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.action, tc.from, got, tc.want)
		}
	}
}

func TestTransitionSourcesAreValidStatuses(t *testing.T) {
	for action, sources := range transitionSources {
		if len(sources) == 0 {
			t.Errorf("action %s has no allowed sources", action)
		}
		for _, s := range sources {
			if !models.IsValidStatus(s) {
				t.Errorf("action %s allows unknown status %q", action, s)
			}
		}
	}
}

func TestAllowedSourcesReturnsCopy(t *testing.T) {
	sources := AllowedSources(ActionSubmit)
	if len(sources) == 0 {
		t.Fatal("expected at least one source for submit")
	}
	sources[0] = "TAMPERED"
	if AllowedSources(ActionSubmit)[0] == "TAMPERED" {
		t.Error("AllowedSources exposes internal slice")
	}
}

func TestIsInstructorEditable(t *testing.T) {
	editable := []string{
		models.StatusDraft,
		models.StatusRejectedCoordinator,
		models.StatusRejectedByConvener,
		models.StatusRejectedByHOD,
	}
	for _, s := range editable {
		folder := &models.CourseFolder{Status: s}
		if !IsInstructorEditable(folder) {
			t.Errorf("status %s should be editable", s)
		}
	}

	locked := []string{
		models.StatusSubmitted,
		models.StatusApprovedCoordinator,
		models.StatusUnderAudit,
		models.StatusAuditCompleted,
		models.StatusSubmittedToHOD,
	}
	for _, s := range locked {
		folder := &models.CourseFolder{Status: s, CheckpointCompleted: true}
		if IsInstructorEditable(folder) {
			t.Errorf("status %s should not be editable", s)
		}
	}

	// APPROVED_BY_HOD only opens the second-cycle editing window after the
	// first checkpoint completed.
	folder := &models.CourseFolder{Status: models.StatusApprovedByHOD}
	if IsInstructorEditable(folder) {
		t.Error("APPROVED_BY_HOD without completed checkpoint should not be editable")
	}
	folder.CheckpointCompleted = true
	if !IsInstructorEditable(folder) {
		t.Error("APPROVED_BY_HOD with completed checkpoint should be editable")
	}
}

func TestIsAuditClosed(t *testing.T) {
	closed := []string{
		models.StatusSubmittedToHOD,
		models.StatusApprovedByHOD,
		models.StatusRejectedByHOD,
	}
	for _, s := range closed {
		if !IsAuditClosed(s) {
			t.Errorf("status %s should close the audit stage", s)
		}
	}
	open := []string{
		models.StatusUnderAudit,
		models.StatusAuditCompleted,
		models.StatusRejectedByConvener,
	}
	for _, s := range open {
		if IsAuditClosed(s) {
			t.Errorf("status %s should not close the audit stage", s)
		}
	}
}

func TestCheckpointFor(t *testing.T) {
	if CheckpointFor(models.StatusDraft, false) != CheckpointFirst {
		t.Error("draft without checkpoint should validate against the first cycle")
	}
	if CheckpointFor(models.StatusApprovedByHOD, true) != CheckpointSecond {
		t.Error("approved folder with completed checkpoint should validate against the second cycle")
	}
	// The flag alone is not enough; the folder must sit at APPROVED_BY_HOD.
	if CheckpointFor(models.StatusRejectedCoordinator, true) != CheckpointFirst {
		t.Error("rejected folder should re-validate against the first cycle")
	}
}
