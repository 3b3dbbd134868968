package controllers

import (
	"net/http"

	"course-folder-api/config"
	"course-folder-api/models"

	"github.com/gin-gonic/gin"
)

// GetStatusCounts returns the folder count per workflow status, scoped to the
// caller's view: instructors see their own folders, reviewers see their
// department.
func GetStatusCounts(c *gin.Context) {
	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}

	query := config.DB.Model(&models.CourseFolder{})
	switch currentRole(c) {
	case models.RoleConvener, models.RoleHOD:
		var user models.User
		if err := config.DB.Where("user_id = ?", currentUserID(c)).First(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
			return
		}
		query = query.Where("department = ?", user.Department)
	case models.RoleAdmin:
		// Admins see everything.
	default:
		query = query.Where("faculty_id = ?", currentUserID(c))
	}

	var rows []statusCount
	if err := query.Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch status counts"})
		return
	}

	counts := make(map[string]int64, len(models.AllStatuses()))
	for _, s := range models.AllStatuses() {
		counts[s] = 0
	}
	var total int64
	for _, row := range rows {
		counts[row.Status] = row.Count
		total += row.Count
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "counts": counts, "total": total})
}
