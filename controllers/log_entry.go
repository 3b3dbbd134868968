package controllers

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"course-folder-api/config"
	"course-folder-api/models"
	"course-folder-api/services"

	"github.com/gin-gonic/gin"
)

// ListLogEntries returns a folder's course log in lecture order.
func ListLogEntries(c *gin.Context) {
	folderID, ok := folderIDParam(c)
	if !ok {
		return
	}

	var entries []models.CourseLogEntry
	if err := config.DB.Where("folder_id = ?", folderID).
		Order("lecture_number ASC").
		Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch log entries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "entries": entries, "total": len(entries)})
}

// SaveLogEntry creates or updates one lecture's log row, keyed by the
// (folder, lecture number) pair.
func SaveLogEntry(c *gin.Context) {
	folderID, ok := folderIDParam(c)
	if !ok {
		return
	}
	if _, ok := loadOwnedEditableFolder(c, folderID); !ok {
		return
	}

	var req struct {
		LectureNumber        int    `json:"lecture_number" binding:"required"`
		Date                 string `json:"date" binding:"required"`
		DurationMinutes      int    `json:"duration_minutes"`
		TopicsCovered        string `json:"topics_covered" binding:"required"`
		EvaluationInstrument string `json:"evaluation_instrument"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	now := time.Now()
	entry := models.CourseLogEntry{
		FolderID:      folderID,
		LectureNumber: req.LectureNumber,
		CreatedAt:     now,
	}
	err = config.DB.Where("folder_id = ? AND lecture_number = ?", folderID, req.LectureNumber).
		FirstOrCreate(&entry).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save log entry"})
		return
	}

	if err := config.DB.Model(&entry).Updates(map[string]interface{}{
		"date":                  date,
		"duration_minutes":      req.DurationMinutes,
		"topics_covered":        req.TopicsCovered,
		"evaluation_instrument": req.EvaluationInstrument,
		"updated_at":            now,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save log entry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "entry": entry})
}

// UploadLogAttendance attaches an attendance sheet to one log entry.
func UploadLogAttendance(c *gin.Context) {
	folderID, ok := folderIDParam(c)
	if !ok {
		return
	}
	if _, ok := loadOwnedEditableFolder(c, folderID); !ok {
		return
	}

	entryID, err := strconv.Atoi(c.Param("entryId"))
	if err != nil || entryID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid log entry ID"})
		return
	}

	var entry models.CourseLogEntry
	if err := config.DB.Where("log_entry_id = ? AND folder_id = ?", entryID, folderID).
		First(&entry).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Log entry not found"})
		return
	}

	filename, data, ok := readUpload(c, "file")
	if !ok {
		return
	}

	store := services.NewArtifactStore()
	path, err := store.Save("attendance", strings.ToLower(filepath.Ext(filename)), data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	if err := config.DB.Model(&entry).Updates(map[string]interface{}{
		"attendance_sheet_path": path,
		"updated_at":            time.Now(),
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record attendance sheet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "path": path})
}
