package controllers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"course-folder-api/config"
	"course-folder-api/jsondoc"
	"course-folder-api/models"
	"course-folder-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateFolder opens a DRAFT folder for one of the instructor's course
// allocations. Each allocation carries at most one folder.
func CreateFolder(c *gin.Context) {
	var req struct {
		AllocationID int `json:"allocation_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := currentUserID(c)

	var allocation models.CourseAllocation
	if err := config.DB.Preload("Course").
		Where("allocation_id = ?", req.AllocationID).
		First(&allocation).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Allocation not found"})
		return
	}
	if allocation.FacultyID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only create folders for your own allocations"})
		return
	}

	var existing models.CourseFolder
	err := config.DB.Where("allocation_id = ?", allocation.AllocationID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "A folder already exists for this allocation",
			"folder_id": existing.FolderID,
		})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing folder"})
		return
	}

	department := ""
	if allocation.Course != nil {
		department = allocation.Course.Department
	}

	now := time.Now()
	folder := models.CourseFolder{
		AllocationID:           allocation.AllocationID,
		CourseID:               allocation.CourseID,
		FacultyID:              allocation.FacultyID,
		TermID:                 allocation.TermID,
		Section:                allocation.Section,
		Department:             department,
		Status:                 models.StatusDraft,
		Content:                *jsondoc.New(),
		ReportGenerationStatus: models.ReportPending,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if err := config.DB.Create(&folder).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create folder"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "folder": folder})
}

// GetMyFolders lists the current instructor's folders.
func GetMyFolders(c *gin.Context) {
	var folders []models.CourseFolder
	if err := config.DB.Preload("Course").Preload("Term").
		Where("faculty_id = ?", currentUserID(c)).
		Order("updated_at DESC").
		Find(&folders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch folders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "folders": folders, "total": len(folders)})
}

// GetFolder returns one folder with its review trail.
func GetFolder(c *gin.Context) {
	folderID, ok := folderIDParam(c)
	if !ok {
		return
	}

	var folder models.CourseFolder
	err := config.DB.Preload("Course").Preload("Faculty").Preload("Term").
		Preload("AuditAssignments").Preload("AuditAssignments.Auditor").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("folder_id = ?", folderID).
		First(&folder).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "folder": folder})
}

// SaveContent applies a content patch to the folder document. An optional
// ?section= query scopes the write to one top-level key; without it the body
// is deep-merged into the current document.
func SaveContent(c *gin.Context) {
	folderID, ok := folderIDParam(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body is required"})
		return
	}

	var patch jsondoc.Object
	if err := patch.UnmarshalJSON(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Body must be a JSON object"})
		return
	}

	service := services.NewContentService(config.DB)
	folder, err := service.SaveContent(folderID, currentUserID(c), c.Query("section"), &patch)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "folder": folder})
}

// CheckCompleteness runs the submission validator without submitting.
func CheckCompleteness(c *gin.Context) {
	folderID, ok := folderIDParam(c)
	if !ok {
		return
	}

	service := services.NewWorkflowService(config.DB)
	complete, reasons, err := service.CheckCompleteness(folderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"complete": complete,
		"reasons":  reasons,
	})
}

// GetSnapshots lists a folder's content snapshots, newest first.
func GetSnapshots(c *gin.Context) {
	folderID, ok := folderIDParam(c)
	if !ok {
		return
	}

	service := services.NewContentService(config.DB)
	snapshots, err := service.Snapshots(folderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "snapshots": snapshots, "total": len(snapshots)})
}

// GetStatusHistory returns the append-only status trail for a folder.
func GetStatusHistory(c *gin.Context) {
	folderID, ok := folderIDParam(c)
	if !ok {
		return
	}

	var history []models.FolderStatusHistory
	if err := config.DB.Where("folder_id = ?", folderID).
		Order("created_at ASC").
		Find(&history).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch status history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "history": history, "total": len(history)})
}
