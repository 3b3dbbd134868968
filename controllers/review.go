package controllers

import (
	"io"
	"net/http"
	"time"

	"course-folder-api/config"
	"course-folder-api/jsondoc"
	"course-folder-api/models"
	"course-folder-api/services"

	"github.com/gin-gonic/gin"
)

// SubmitFolder pushes the instructor's folder into review once the
// completeness validator passes.
func SubmitFolder(c *gin.Context) {
	folderID, ok := folderIDParam(c)
	if !ok {
		return
	}

	service := services.NewWorkflowService(config.DB).WithComposer(reportComposer)
	folder, err := service.Submit(folderID, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Folder submitted for review",
		"folder":  folder,
	})
}

// CoordinatorReview records the coordinator's approve/reject decision.
func CoordinatorReview(c *gin.Context) {
	folderID, ok := folderIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Decision string `json:"decision" binding:"required"`
		Notes    string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service := services.NewWorkflowService(config.DB)
	folder, err := service.CoordinatorReview(folderID, currentUserID(c), req.Decision, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "folder": folder})
}

// SaveCoordinatorFeedback stores the coordinator's per-section feedback notes
// on the folder without changing its status.
func SaveCoordinatorFeedback(c *gin.Context) {
	saveFeedbackDocument(c, "coordinator_feedback")
}

// SaveAuditMemberFeedback stores an audit member's per-section notes.
func SaveAuditMemberFeedback(c *gin.Context) {
	saveFeedbackDocument(c, "audit_member_feedback")
}

func saveFeedbackDocument(c *gin.Context, column string) {
	folderID, ok := folderIDParam(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body is required"})
		return
	}
	var feedback jsondoc.Object
	if err := feedback.UnmarshalJSON(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Body must be a JSON object"})
		return
	}

	result := config.DB.Model(&models.CourseFolder{}).
		Where("folder_id = ?", folderID).
		Updates(map[string]interface{}{
			column:       &feedback,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save feedback"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Feedback saved"})
}

// ConvenerReview forwards an audited folder to the HOD or rejects it back to
// the instructor.
func ConvenerReview(c *gin.Context) {
	folderID, ok := folderIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Action string `json:"action" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service := services.NewWorkflowService(config.DB).WithComposer(reportComposer)
	folder, err := service.ConvenerReview(folderID, currentUserID(c), req.Action, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "folder": folder})
}

// HodFinalDecision records the HOD's final approve/reject decision.
func HodFinalDecision(c *gin.Context) {
	folderID, ok := folderIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Decision      string `json:"decision" binding:"required"`
		Notes         string `json:"notes"`
		FinalFeedback string `json:"final_feedback"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service := services.NewWorkflowService(config.DB)
	result, err := service.HodFinalDecision(folderID, currentUserID(c), req.Decision, req.Notes, req.FinalFeedback)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"folder":               result.Folder,
		"checkpoint_completed": result.CheckpointCompleted,
		"second_cycle":         result.SecondCycle,
	})
}

// GetReviewQueue lists the folders waiting at a given review stage. The stage
// is selected by ?status=; reviewers use it for their work queues.
func GetReviewQueue(c *gin.Context) {
	status := c.Query("status")
	if status == "" || !models.IsValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid status filter is required"})
		return
	}

	var folders []models.CourseFolder
	if err := config.DB.Preload("Course").Preload("Faculty").Preload("Term").
		Where("status = ?", status).
		Order("updated_at ASC").
		Find(&folders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch folders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "folders": folders, "total": len(folders)})
}
