package services

import (
	"encoding/json"
	"strconv"

	"course-folder-api/models"
)

// AuditSummary is the aggregate derived from a folder's audit panel.
type AuditSummary struct {
	Total          int                `json:"total_assignments"`
	Decisions      map[string]int     `json:"decisions"`
	Overall        string             `json:"overall_decision"`
	AverageRatings map[string]float64 `json:"average_ratings"`
}

// HasRejections reports whether any auditor recorded a rejection.
func (s AuditSummary) HasRejections() bool {
	return s.Decisions[models.DecisionRejected] > 0
}

// SummarizeAudit computes the decision histogram and per-category rating
// means across a panel's assignments. Ratings are averaged only over the
// submissions that supplied a numeric value for the category; anything
// non-numeric is ignored.
func SummarizeAudit(assignments []models.AuditAssignment) AuditSummary {
	summary := AuditSummary{
		Total: len(assignments),
		Decisions: map[string]int{
			models.DecisionApproved: 0,
			models.DecisionRejected: 0,
			models.DecisionPending:  0,
		},
		AverageRatings: make(map[string]float64),
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)

	for i := range assignments {
		a := &assignments[i]
		decision := a.Decision
		if _, known := summary.Decisions[decision]; !known {
			decision = models.DecisionPending
		}
		summary.Decisions[decision]++

		for _, category := range a.Ratings.Keys() {
			value, ok := ratingValue(a.Ratings.Val(category))
			if !ok {
				continue
			}
			sums[category] += value
			counts[category]++
		}
	}

	for category, sum := range sums {
		summary.AverageRatings[category] = sum / float64(counts[category])
	}

	switch {
	case summary.Decisions[models.DecisionRejected] > 0:
		summary.Overall = models.DecisionRejected
	case summary.Decisions[models.DecisionPending] > 0:
		summary.Overall = models.DecisionPending
	case summary.Decisions[models.DecisionApproved] > 0:
		summary.Overall = models.DecisionApproved
	default:
		summary.Overall = models.DecisionPending
	}

	return summary
}

func ratingValue(v interface{}) (float64, bool) {
	switch tv := v.(type) {
	case json.Number:
		f, err := tv.Float64()
		return f, err == nil
	case float64:
		return tv, true
	case int:
		return float64(tv), true
	case string:
		f, err := strconv.ParseFloat(tv, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
