package services

import (
	"course-folder-api/models"
)

// Action names every guarded transition the workflow engine exposes.
type Action string

const (
	ActionSubmit            Action = "SUBMIT"
	ActionCoordinatorReview Action = "COORDINATOR_REVIEW"
	ActionAssignAudit       Action = "ASSIGN_AUDIT"
	ActionUnassignAudit     Action = "UNASSIGN_AUDIT"
	ActionSubmitAuditReport Action = "SUBMIT_AUDIT_REPORT"
	ActionConvenerReview    Action = "CONVENER_REVIEW"
	ActionHodFinalDecision  Action = "HOD_FINAL_DECISION"
)

// transitionSources maps each action to the statuses it may start from.
// Resubmission, decision editing and audit re-submission windows are encoded
// here; everything else is a state conflict.
var transitionSources = map[Action][]string{
	ActionSubmit: {
		models.StatusDraft,
		models.StatusRejectedCoordinator,
		models.StatusRejectedByConvener,
		models.StatusRejectedByHOD,
		models.StatusApprovedByHOD,
	},
	ActionCoordinatorReview: {
		models.StatusSubmitted,
		models.StatusApprovedCoordinator,
		models.StatusRejectedCoordinator,
	},
	ActionAssignAudit: {
		models.StatusApprovedCoordinator,
	},
	ActionUnassignAudit: {
		models.StatusUnderAudit,
	},
	ActionSubmitAuditReport: {
		models.StatusUnderAudit,
		models.StatusAuditCompleted,
	},
	ActionConvenerReview: {
		models.StatusAuditCompleted,
		models.StatusSubmittedToHOD,
		models.StatusRejectedByConvener,
	},
	ActionHodFinalDecision: {
		models.StatusSubmittedToHOD,
		models.StatusApprovedByHOD,
		models.StatusRejectedByHOD,
	},
}

// AllowedSources returns the statuses from which the action may start.
func AllowedSources(action Action) []string {
	sources := transitionSources[action]
	out := make([]string, len(sources))
	copy(out, sources)
	return out
}

// CanTransition reports whether action may start from the given status.
func CanTransition(action Action, from string) bool {
	for _, s := range transitionSources[action] {
		if s == from {
			return true
		}
	}
	return false
}

// instructorEditableStatuses are the statuses in which SaveContent is allowed
// unconditionally. APPROVED_BY_HOD additionally requires the completed first
// checkpoint (second-cycle editing window), checked in IsInstructorEditable.
var instructorEditableStatuses = []string{
	models.StatusDraft,
	models.StatusRejectedCoordinator,
	models.StatusRejectedByConvener,
	models.StatusRejectedByHOD,
}

// IsInstructorEditable reports whether the folder's content may be modified
// by its instructor right now.
func IsInstructorEditable(folder *models.CourseFolder) bool {
	for _, s := range instructorEditableStatuses {
		if folder.Status == s {
			return true
		}
	}
	return folder.Status == models.StatusApprovedByHOD && folder.CheckpointCompleted
}

// auditClosedStatuses are the statuses from which an auditor can no longer
// change a submitted decision: the folder has escalated past the audit stage.
var auditClosedStatuses = []string{
	models.StatusSubmittedToHOD,
	models.StatusApprovedByHOD,
	models.StatusRejectedByHOD,
}

// IsAuditClosed reports whether auditor decisions are frozen for this status.
func IsAuditClosed(status string) bool {
	for _, s := range auditClosedStatuses {
		if status == s {
			return true
		}
	}
	return false
}
