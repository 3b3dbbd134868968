package models

import (
	"time"

	"course-folder-api/jsondoc"
)

// Course folder statuses. The workflow engine only ever writes these values;
// anything else in the column is a data error.
const (
	StatusDraft               = "DRAFT"
	StatusSubmitted           = "SUBMITTED"
	StatusApprovedCoordinator = "APPROVED_COORDINATOR"
	StatusRejectedCoordinator = "REJECTED_COORDINATOR"
	StatusUnderAudit          = "UNDER_AUDIT"
	StatusAuditCompleted      = "AUDIT_COMPLETED"
	StatusRejectedByConvener  = "REJECTED_BY_CONVENER"
	StatusSubmittedToHOD      = "SUBMITTED_TO_HOD"
	StatusApprovedByHOD       = "APPROVED_BY_HOD"
	StatusRejectedByHOD       = "REJECTED_BY_HOD"
)

// Review decisions recorded per stage.
const (
	DecisionPending  = "PENDING"
	DecisionApproved = "APPROVED"
	DecisionRejected = "REJECTED"
)

// Consolidated report generation states.
const (
	ReportPending    = "PENDING"
	ReportProcessing = "PROCESSING"
	ReportCompleted  = "COMPLETED"
	ReportFailed     = "FAILED"
)

// CourseFolder is the reviewed document bundle for one course allocation in
// one term. Its content document, status and review metadata are mutated only
// through the workflow services.
type CourseFolder struct {
	FolderID     int    `gorm:"primaryKey;column:folder_id" json:"folder_id"`
	AllocationID int    `gorm:"column:allocation_id" json:"allocation_id"`
	CourseID     int    `gorm:"column:course_id" json:"course_id"`
	FacultyID    int    `gorm:"column:faculty_id" json:"faculty_id"`
	TermID       int    `gorm:"column:term_id" json:"term_id"`
	Section      string `gorm:"column:section" json:"section"`
	Department   string `gorm:"column:department" json:"department"`

	Status      string     `gorm:"column:status" json:"status"`
	SubmittedAt *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	// True once the first review cycle (after midterm) has been approved by
	// the HOD. Monotonic: never reset to false.
	CheckpointCompleted bool `gorm:"column:checkpoint_completed" json:"checkpoint_completed"`

	// Coordinator review
	CoordinatorReviewedAt   *time.Time     `gorm:"column:coordinator_reviewed_at" json:"coordinator_reviewed_at,omitempty"`
	CoordinatorReviewedByID *int           `gorm:"column:coordinator_reviewed_by" json:"coordinator_reviewed_by,omitempty"`
	CoordinatorDecision     *string        `gorm:"column:coordinator_decision" json:"coordinator_decision,omitempty"`
	CoordinatorNotes        string         `gorm:"column:coordinator_notes" json:"coordinator_notes"`
	CoordinatorFeedback     jsondoc.Object `gorm:"column:coordinator_feedback;type:json" json:"coordinator_feedback"`

	// Convener / audit stage
	ConvenerAssignedAt   *time.Time     `gorm:"column:convener_assigned_at" json:"convener_assigned_at,omitempty"`
	ConvenerAssignedByID *int           `gorm:"column:convener_assigned_by" json:"convener_assigned_by,omitempty"`
	ConvenerNotes        string         `gorm:"column:convener_notes" json:"convener_notes"`
	AuditCompletedAt     *time.Time     `gorm:"column:audit_completed_at" json:"audit_completed_at,omitempty"`
	AuditMemberFeedback  jsondoc.Object `gorm:"column:audit_member_feedback;type:json" json:"audit_member_feedback"`

	// HOD final decision
	HodReviewedAt    *time.Time `gorm:"column:hod_reviewed_at" json:"hod_reviewed_at,omitempty"`
	HodReviewedByID  *int       `gorm:"column:hod_reviewed_by" json:"hod_reviewed_by,omitempty"`
	HodDecision      *string    `gorm:"column:hod_decision" json:"hod_decision,omitempty"`
	HodNotes         string     `gorm:"column:hod_notes" json:"hod_notes"`
	HodFinalFeedback string     `gorm:"column:hod_final_feedback" json:"hod_final_feedback"`

	// Content document (outline text, assessments, log entries, records),
	// insertion-ordered. See jsondoc.
	Content jsondoc.Object `gorm:"column:content;type:json" json:"content"`

	// Uploaded artifacts, recorded as stored paths.
	CLOAssessmentPath    string `gorm:"column:clo_assessment_path" json:"clo_assessment_path"`
	ProjectReportPath    string `gorm:"column:project_report_path" json:"project_report_path"`
	CourseResultPath     string `gorm:"column:course_result_path" json:"course_result_path"`
	ReviewReportPath     string `gorm:"column:review_report_path" json:"review_report_path"`
	ConsolidatedPath     string `gorm:"column:consolidated_path" json:"consolidated_path"`
	UploadedFolderPath   string `gorm:"column:uploaded_folder_path" json:"uploaded_folder_path"`
	UploadedFolderStatus jsondoc.Object `gorm:"column:uploaded_folder_status;type:json" json:"uploaded_folder_status"`

	ReportGeneratedAt      *time.Time `gorm:"column:report_generated_at" json:"report_generated_at,omitempty"`
	ReportGenerationStatus string     `gorm:"column:report_generation_status" json:"report_generation_status"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Course           *Course           `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Faculty          *User             `gorm:"foreignKey:FacultyID" json:"faculty,omitempty"`
	Term             *Term             `gorm:"foreignKey:TermID" json:"term,omitempty"`
	AuditAssignments []AuditAssignment `gorm:"foreignKey:FolderID" json:"audit_assignments,omitempty"`
	StatusHistory    []FolderStatusHistory `gorm:"foreignKey:FolderID" json:"status_history,omitempty"`
}

func (CourseFolder) TableName() string {
	return "course_folders"
}

// AllStatuses lists every legal folder status.
func AllStatuses() []string {
	return []string{
		StatusDraft,
		StatusSubmitted,
		StatusApprovedCoordinator,
		StatusRejectedCoordinator,
		StatusUnderAudit,
		StatusAuditCompleted,
		StatusRejectedByConvener,
		StatusSubmittedToHOD,
		StatusApprovedByHOD,
		StatusRejectedByHOD,
	}
}

// IsValidStatus reports whether s is a member of the status enumeration.
func IsValidStatus(s string) bool {
	for _, known := range AllStatuses() {
		if s == known {
			return true
		}
	}
	return false
}
