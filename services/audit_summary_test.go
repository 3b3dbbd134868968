package services

import (
	"encoding/json"
	"math"
	"testing"

	"course-folder-api/jsondoc"
	"course-folder-api/models"
)

func ratingsDoc(t *testing.T, src string) jsondoc.Object {
	t.Helper()
	var doc jsondoc.Object
	if err := json.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("failed to parse ratings: %v", err)
	}
	return doc
}

func TestSummarizeAuditHistogram(t *testing.T) {
	assignments := []models.AuditAssignment{
		{Decision: models.DecisionApproved},
		{Decision: models.DecisionApproved},
		{Decision: models.DecisionPending},
		{Decision: "GARBAGE"},
	}

	summary := SummarizeAudit(assignments)
	if summary.Total != 4 {
		t.Errorf("Total = %d, want 4", summary.Total)
	}
	if summary.Decisions[models.DecisionApproved] != 2 {
		t.Errorf("approved = %d, want 2", summary.Decisions[models.DecisionApproved])
	}
	// Unknown decision values are bucketed as pending.
	if summary.Decisions[models.DecisionPending] != 2 {
		t.Errorf("pending = %d, want 2", summary.Decisions[models.DecisionPending])
	}
	if summary.Overall != models.DecisionPending {
		t.Errorf("Overall = %s, want PENDING while reports are outstanding", summary.Overall)
	}
	if summary.HasRejections() {
		t.Error("no rejections were recorded")
	}
}

func TestSummarizeAuditOverallPrecedence(t *testing.T) {
	// A single rejection dominates regardless of pending reports.
	summary := SummarizeAudit([]models.AuditAssignment{
		{Decision: models.DecisionApproved},
		{Decision: models.DecisionRejected},
		{Decision: models.DecisionPending},
	})
	if summary.Overall != models.DecisionRejected {
		t.Errorf("Overall = %s, want REJECTED", summary.Overall)
	}
	if !summary.HasRejections() {
		t.Error("HasRejections should report the rejection")
	}

	summary = SummarizeAudit([]models.AuditAssignment{
		{Decision: models.DecisionApproved},
		{Decision: models.DecisionApproved},
	})
	if summary.Overall != models.DecisionApproved {
		t.Errorf("Overall = %s, want APPROVED", summary.Overall)
	}

	summary = SummarizeAudit(nil)
	if summary.Overall != models.DecisionPending {
		t.Errorf("Overall for empty panel = %s, want PENDING", summary.Overall)
	}
}

func TestSummarizeAuditAverageRatings(t *testing.T) {
	assignments := []models.AuditAssignment{
		{
			Decision: models.DecisionApproved,
			Ratings:  ratingsDoc(t, `{"organization": 4, "coverage": 5}`),
		},
		{
			Decision: models.DecisionApproved,
			Ratings:  ratingsDoc(t, `{"organization": 3, "coverage": "4", "notes": "thorough"}`),
		},
		{
			// No ratings supplied at all; must not drag averages down.
			Decision: models.DecisionApproved,
		},
	}

	summary := SummarizeAudit(assignments)
	if got := summary.AverageRatings["organization"]; math.Abs(got-3.5) > 1e-9 {
		t.Errorf("organization average = %v, want 3.5", got)
	}
	// Numeric strings participate; free-text values are skipped.
	if got := summary.AverageRatings["coverage"]; math.Abs(got-4.5) > 1e-9 {
		t.Errorf("coverage average = %v, want 4.5", got)
	}
	if _, ok := summary.AverageRatings["notes"]; ok {
		t.Error("non-numeric rating category should not be averaged")
	}
}
