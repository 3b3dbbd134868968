package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"course-folder-api/services"

	"github.com/gin-gonic/gin"
)

func currentUserID(c *gin.Context) int {
	v, _ := c.Get("userID")
	id, _ := v.(int)
	return id
}

func currentRole(c *gin.Context) string {
	v, _ := c.Get("role")
	role, _ := v.(string)
	return role
}

func folderIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid folder ID"})
		return 0, false
	}
	return id, true
}

// respondServiceError translates the service error types to HTTP statuses.
// Validation failures carry every unmet requirement back to the client.
func respondServiceError(c *gin.Context, err error) {
	var validation *services.ValidationFailureError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Validation failed",
			"reasons": validation.Reasons,
		})
		return
	}

	var denied *services.PermissionDeniedError
	if errors.As(err, &denied) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": denied.Message})
		return
	}

	var conflict *services.StateConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{
			"success":        false,
			"error":          conflict.Error(),
			"current_status": conflict.CurrentStatus,
		})
		return
	}

	var notFound *services.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": notFound.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
}
