package controllers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"course-folder-api/config"
	"course-folder-api/jsondoc"
	"course-folder-api/models"
	"course-folder-api/services"
	"course-folder-api/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Artifact slots an instructor can upload into, keyed by URL segment.
var artifactColumns = map[string]string{
	"clo-assessment": "clo_assessment_path",
	"project-report": "project_report_path",
	"course-result":  "course_result_path",
	"review-report":  "review_report_path",
}

func readUpload(c *gin.Context, field string) (string, []byte, bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return "", nil, false
	}
	if ok, reason := utils.ValidateUploadFilename(fileHeader.Filename); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": reason})
		return "", nil, false
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return "", nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return "", nil, false
	}
	return fileHeader.Filename, data, true
}

func loadOwnedEditableFolder(c *gin.Context, folderID int) (*models.CourseFolder, bool) {
	var folder models.CourseFolder
	if err := config.DB.Where("folder_id = ?", folderID).First(&folder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load folder"})
		}
		return nil, false
	}
	if folder.FacultyID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only upload to your own folders"})
		return nil, false
	}
	if !services.IsInstructorEditable(&folder) {
		c.JSON(http.StatusConflict, gin.H{
			"error":          "Folder is not editable in its current status",
			"current_status": folder.Status,
		})
		return nil, false
	}
	return &folder, true
}

// UploadArtifact stores one of the named artifact files (CLO assessment,
// project report, course result, review report) for a folder.
func UploadArtifact(c *gin.Context) {
	folderID, ok := folderIDParam(c)
	if !ok {
		return
	}

	kind := c.Param("kind")
	column, known := artifactColumns[kind]
	if !known {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown artifact kind"})
		return
	}

	if _, ok := loadOwnedEditableFolder(c, folderID); !ok {
		return
	}

	filename, data, ok := readUpload(c, "file")
	if !ok {
		return
	}

	store := services.NewArtifactStore()
	path, err := store.Save(kind, strings.ToLower(filepath.Ext(filename)), data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	if err := config.DB.Model(&models.CourseFolder{}).
		Where("folder_id = ?", folderID).
		Updates(map[string]interface{}{
			column:       path,
			"updated_at": time.Now(),
		}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "path": path})
}

// UploadFolderPDF stores a self-assembled folder PDF along with the outcome
// of its structure validation, supplied by the client-side checker.
func UploadFolderPDF(c *gin.Context) {
	folderID, ok := folderIDParam(c)
	if !ok {
		return
	}
	if _, ok := loadOwnedEditableFolder(c, folderID); !ok {
		return
	}

	filename, data, ok := readUpload(c, "file")
	if !ok {
		return
	}
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Folder upload must be a PDF"})
		return
	}

	var status jsondoc.Object
	if raw := c.PostForm("validation_status"); raw != "" {
		if err := status.UnmarshalJSON([]byte(raw)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation_status must be a JSON object"})
			return
		}
	}

	store := services.NewArtifactStore()
	path, err := store.Save("uploaded-folder", ".pdf", data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	if err := config.DB.Model(&models.CourseFolder{}).
		Where("folder_id = ?", folderID).
		Updates(map[string]interface{}{
			"uploaded_folder_path":   path,
			"uploaded_folder_status": &status,
			"updated_at":             time.Now(),
		}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "path": path})
}

// UploadComponent attaches an individually uploaded document (attendance
// sheet, reference books, model solution, ...) to a folder.
func UploadComponent(c *gin.Context) {
	folderID, ok := folderIDParam(c)
	if !ok {
		return
	}
	if _, ok := loadOwnedEditableFolder(c, folderID); !ok {
		return
	}

	componentType := c.PostForm("component_type")
	switch componentType {
	case models.ComponentCourseOutline, models.ComponentCourseLog, models.ComponentAttendance,
		models.ComponentReferenceBooks, models.ComponentFinalResult, models.ComponentModelSolution,
		models.ComponentAuditFeedback, models.ComponentOther:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid component type"})
		return
	}

	filename, data, ok := readUpload(c, "file")
	if !ok {
		return
	}

	store := services.NewArtifactStore()
	path, err := store.Save("components", strings.ToLower(filepath.Ext(filename)), data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	now := time.Now()
	component := models.FolderComponent{
		FolderID:      folderID,
		ComponentType: componentType,
		Title:         c.PostForm("title"),
		FilePath:      path,
		FileSize:      int64(len(data)),
		Description:   c.PostForm("description"),
		UploadedByID:  currentUserID(c),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := config.DB.Create(&component).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record component"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "component": component})
}

// ListComponents returns a folder's uploaded components.
func ListComponents(c *gin.Context) {
	folderID, ok := folderIDParam(c)
	if !ok {
		return
	}

	var components []models.FolderComponent
	if err := config.DB.Where("folder_id = ?", folderID).
		Order("display_order ASC, created_at ASC").
		Find(&components).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch components"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "components": components, "total": len(components)})
}
