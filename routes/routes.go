package routes

import (
	"course-folder-api/controllers"
	"course-folder-api/middleware"
	"course-folder-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/login", controllers.Login)

			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Course Folder API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}

			// Dashboard
			protected.GET("/dashboard/status-counts", controllers.GetStatusCounts)

			// Deadlines: HOD sets, everyone reads
			deadlines := protected.Group("/deadlines")
			{
				deadlines.GET("", controllers.GetDeadlines)
				deadlines.POST("", middleware.RequireRole(models.RoleHOD, models.RoleAdmin), controllers.SetDeadline)
			}

			// Course folders
			folders := protected.Group("/folders")
			{
				folders.POST("", middleware.RequireRole(models.RoleFaculty, models.RoleConvener, models.RoleHOD), controllers.CreateFolder)
				folders.GET("/mine", controllers.GetMyFolders)
				folders.GET("/queue", controllers.GetReviewQueue)
				folders.GET("/:id", controllers.GetFolder)
				folders.GET("/:id/history", controllers.GetStatusHistory)
				folders.GET("/:id/snapshots", controllers.GetSnapshots)

				// Instructor editing surface. Ownership and the editable
				// status window are enforced in the services.
				folders.PUT("/:id/content", controllers.SaveContent)
				folders.GET("/:id/check-completeness", controllers.CheckCompleteness)
				folders.POST("/:id/submit", controllers.SubmitFolder)

				// Uploads
				folders.POST("/:id/artifacts/:kind", controllers.UploadArtifact)
				folders.POST("/:id/folder-pdf", controllers.UploadFolderPDF)
				folders.POST("/:id/components", controllers.UploadComponent)
				folders.GET("/:id/components", controllers.ListComponents)

				// Course log
				folders.GET("/:id/log", controllers.ListLogEntries)
				folders.PUT("/:id/log", controllers.SaveLogEntry)
				folders.POST("/:id/log/:entryId/attendance", controllers.UploadLogAttendance)

				// Review decisions. Coordinator capability is not a role;
				// the workflow service checks the assignment table.
				folders.POST("/:id/coordinator-review", controllers.CoordinatorReview)
				folders.PUT("/:id/coordinator-feedback", controllers.SaveCoordinatorFeedback)
				folders.POST("/:id/convener-review", middleware.RequireRole(models.RoleConvener), controllers.ConvenerReview)
				folders.POST("/:id/hod-decision", middleware.RequireRole(models.RoleHOD), controllers.HodFinalDecision)

				// Audit panel
				folders.POST("/:id/audit/assign", middleware.RequireRole(models.RoleConvener), controllers.AssignAudit)
				folders.DELETE("/:id/audit/assign", middleware.RequireRole(models.RoleConvener), controllers.UnassignAudit)
				folders.POST("/:id/audit/report", controllers.SubmitAuditReport)
				folders.PUT("/:id/audit/feedback", controllers.SaveAuditMemberFeedback)
				folders.GET("/:id/audit/summary", controllers.GetAuditSummary)

				// Post-approval sharing
				folders.POST("/:id/share-with-role", middleware.RequireRole(models.RoleAdmin), controllers.ShareFolderWithRole)
				folders.POST("/:id/request-access", controllers.RequestFolderAccess)
			}

			// Auditor work queue
			protected.GET("/audit/queue", controllers.GetAuditQueue)

			// Folder access requests
			accessRequests := protected.Group("/access-requests")
			{
				accessRequests.GET("/mine", controllers.MyAccessRequests)
				accessRequests.GET("", middleware.RequireRole(models.RoleAdmin), controllers.ListAccessRequests)
				accessRequests.POST("/:requestId/decide", middleware.RequireRole(models.RoleAdmin), controllers.DecideAccessRequest)
			}
		}
	}

	// 404 handler
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Route not found"})
	})
}
