package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"course-folder-api/config"
	"course-folder-api/jsondoc"
	"course-folder-api/services"

	"github.com/gin-gonic/gin"
)

// AssignAudit places a folder under audit by the selected panel members.
func AssignAudit(c *gin.Context) {
	folderID, ok := folderIDParam(c)
	if !ok {
		return
	}

	var req struct {
		AuditorIDs []int `json:"auditor_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service := services.NewAuditService(config.DB)
	folder, err := service.AssignAudit(folderID, currentUserID(c), req.AuditorIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "folder": folder})
}

// UnassignAudit dissolves the audit panel and returns the folder to the
// coordinator-approved stage.
func UnassignAudit(c *gin.Context) {
	folderID, ok := folderIDParam(c)
	if !ok {
		return
	}

	service := services.NewAuditService(config.DB)
	folder, err := service.UnassignAudit(folderID, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "folder": folder})
}

// SubmitAuditReport records one auditor's decision, remarks and ratings.
// Accepts either JSON or multipart form with an optional feedback file.
func SubmitAuditReport(c *gin.Context) {
	folderID, ok := folderIDParam(c)
	if !ok {
		return
	}

	var decision, remarks string
	var ratings *jsondoc.Object
	var feedbackFile []byte

	if form, err := c.MultipartForm(); err == nil && form != nil {
		decision = c.PostForm("decision")
		remarks = c.PostForm("remarks")
		if raw := c.PostForm("ratings"); raw != "" {
			var doc jsondoc.Object
			if err := json.Unmarshal([]byte(raw), &doc); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "ratings must be a JSON object"})
				return
			}
			ratings = &doc
		}
		if fileHeader, err := c.FormFile("feedback_file"); err == nil {
			f, err := fileHeader.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read feedback file"})
				return
			}
			defer f.Close()
			feedbackFile, err = io.ReadAll(f)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read feedback file"})
				return
			}
		}
	} else {
		var req struct {
			Decision string          `json:"decision"`
			Remarks  string          `json:"remarks" binding:"required"`
			Ratings  *jsondoc.Object `json:"ratings"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		decision, remarks, ratings = req.Decision, req.Remarks, req.Ratings
	}

	service := services.NewAuditService(config.DB).WithComposer(reportComposer)
	result, err := service.SubmitAuditReport(folderID, currentUserID(c), decision, remarks, ratings, feedbackFile)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"submitted": result.Submitted,
		"total":     result.Total,
		"routed":    result.Routed,
		"status":    result.Status,
	})
}

// GetAuditSummary returns the decision histogram and rating averages for a
// folder's audit panel.
func GetAuditSummary(c *gin.Context) {
	folderID, ok := folderIDParam(c)
	if !ok {
		return
	}

	service := services.NewAuditService(config.DB)
	summary, err := service.Summary(folderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary})
}

// GetAuditQueue lists the current auditor's assignments.
func GetAuditQueue(c *gin.Context) {
	service := services.NewAuditService(config.DB)
	assignments, err := service.Queue(currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "assignments": assignments, "total": len(assignments)})
}
