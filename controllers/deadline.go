package controllers

import (
	"net/http"
	"time"

	"course-folder-api/config"
	"course-folder-api/models"

	"github.com/gin-gonic/gin"
)

// SetDeadline creates or updates an advisory submission deadline for one
// checkpoint, term and optional department. The state machine never enforces
// these; they drive UI reminders only.
func SetDeadline(c *gin.Context) {
	var req struct {
		DeadlineType string  `json:"deadline_type" binding:"required"`
		TermID       int     `json:"term_id" binding:"required"`
		Department   *string `json:"department"`
		DeadlineDate string  `json:"deadline_date" binding:"required"`
		Notes        string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.DeadlineType != models.DeadlineFirstSubmission && req.DeadlineType != models.DeadlineFinalSubmission {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deadline_type must be FIRST_SUBMISSION or FINAL_SUBMISSION"})
		return
	}

	date, err := time.Parse("2006-01-02", req.DeadlineDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deadline_date must be YYYY-MM-DD"})
		return
	}

	userID := currentUserID(c)
	now := time.Now()

	deadline := models.FolderDeadline{
		DeadlineType: req.DeadlineType,
		TermID:       req.TermID,
		Department:   req.Department,
		CreatedAt:    now,
	}
	query := config.DB.Where("deadline_type = ? AND term_id = ?", req.DeadlineType, req.TermID)
	if req.Department != nil {
		query = query.Where("department = ?", *req.Department)
	} else {
		query = query.Where("department IS NULL")
	}
	if err := query.FirstOrCreate(&deadline).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save deadline"})
		return
	}

	if err := config.DB.Model(&deadline).Updates(map[string]interface{}{
		"deadline_date": date,
		"set_by":        userID,
		"notes":         req.Notes,
		"updated_at":    now,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save deadline"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deadline": deadline})
}

// GetDeadlines lists deadlines, optionally filtered by term.
func GetDeadlines(c *gin.Context) {
	query := config.DB.Model(&models.FolderDeadline{})
	if term := c.Query("term_id"); term != "" {
		query = query.Where("term_id = ?", term)
	}

	var deadlines []models.FolderDeadline
	if err := query.Order("deadline_date ASC").Find(&deadlines).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch deadlines"})
		return
	}

	now := time.Now()
	items := make([]gin.H, 0, len(deadlines))
	for i := range deadlines {
		items = append(items, gin.H{
			"deadline": deadlines[i],
			"passed":   deadlines[i].IsPassed(now),
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deadlines": items, "total": len(items)})
}
