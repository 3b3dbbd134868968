package controllers

import (
	"net/http"
	"strconv"

	"course-folder-api/config"
	"course-folder-api/services"

	"github.com/gin-gonic/gin"
)

// ShareFolderWithRole pushes an approved folder out to every CONVENER or HOD
// in its department.
func ShareFolderWithRole(c *gin.Context) {
	folderID, ok := folderIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role is required"})
		return
	}

	notified, err := services.NewAccessService(config.DB).ShareWithRole(folderID, currentUserID(c), req.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Folder shared",
		"notified": notified,
	})
}

// RequestFolderAccess records the caller's request to view an approved folder.
func RequestFolderAccess(c *gin.Context) {
	folderID, ok := folderIDParam(c)
	if !ok {
		return
	}

	request, err := services.NewAccessService(config.DB).RequestAccess(folderID, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "request": request})
}

// MyAccessRequests lists the caller's access requests.
func MyAccessRequests(c *gin.Context) {
	requests, err := services.NewAccessService(config.DB).MyRequests(currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "requests": requests})
}

// ListAccessRequests is the admin view. ?status= filters; defaults to PENDING.
func ListAccessRequests(c *gin.Context) {
	requests, err := services.NewAccessService(config.DB).ListRequests(currentUserID(c), c.Query("status"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "requests": requests})
}

// DecideAccessRequest approves or rejects a pending access request.
func DecideAccessRequest(c *gin.Context) {
	requestID, err := strconv.Atoi(c.Param("requestId"))
	if err != nil || requestID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	var req struct {
		Action string `json:"action" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action is required"})
		return
	}

	request, err := services.NewAccessService(config.DB).Decide(requestID, currentUserID(c), req.Action, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "request": request})
}
