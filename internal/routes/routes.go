package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/openconf/editorial-backend/internal/handler"
	"github.com/openconf/editorial-backend/internal/middleware"
	"github.com/openconf/editorial-backend/pkg/jwt"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	authHandler *handler.AuthHandler,
	editableHandler *handler.EditableHandler,
	managementHandler *handler.ManagementHandler,
	attachmentHandler *handler.AttachmentHandler,
	jwtManager *jwt.Manager,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")

	// Authentication endpoints (no auth required)
	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.GET("/me", middleware.JWTAuth(jwtManager), authHandler.Me)

	events := api.Group("/events/:event_id", middleware.JWTAuth(jwtManager))

	// Editable timeline and workflow, scoped to one contribution
	editing := events.Group("/contributions/:contribution_id/editing/:type")
	{
		editing.GET("", editableHandler.GetTimeline)
		editing.POST("", editableHandler.CreateEditable)
		editing.DELETE("", editableHandler.Delete)
		editing.POST("/revisions", editableHandler.CreateRevision)
		editing.POST("/review", editableHandler.Review)
		editing.POST("/confirm", editableHandler.ConfirmChanges)
		editing.POST("/undo", editableHandler.UndoReview)
		editing.POST("/reset", editableHandler.Reset)
		editing.PUT("/editor", editableHandler.AssignEditor)
		editing.PUT("/editor/self", editableHandler.AssignSelf)
		editing.DELETE("/editor", editableHandler.UnassignEditor)
		editing.POST("/revisions/:revision_id/comments", editableHandler.CreateComment)
		editing.PATCH("/comments/:comment_id", editableHandler.UpdateComment)
		editing.DELETE("/comments/:comment_id", editableHandler.DeleteComment)
	}

	// Event-level editing management
	management := events.Group("/editing/:type")
	{
		management.GET("/editables", editableHandler.ListEditables)
		management.GET("/file-types", managementHandler.ListFileTypes)
		management.POST("/file-types", managementHandler.CreateFileType)
		management.PATCH("/file-types/:file_type_id", managementHandler.UpdateFileType)
		management.DELETE("/file-types/:file_type_id", managementHandler.DeleteFileType)
		management.GET("/review-conditions", managementHandler.ListReviewConditions)
		management.POST("/review-conditions", managementHandler.CreateReviewCondition)
		management.PATCH("/review-conditions/:condition_id", managementHandler.UpdateReviewCondition)
		management.DELETE("/review-conditions/:condition_id", managementHandler.DeleteReviewCondition)
		management.GET("/settings", managementHandler.GetSettings)
		management.PATCH("/settings", managementHandler.ToggleSetting)
		management.GET("/editors", managementHandler.ListEditors)
		management.PUT("/editors", managementHandler.SetEditors)
		management.GET("/not-submitted", managementHandler.CountNotSubmitted)
	}

	// Session ACLs
	sessionACL := events.Group("/sessions/:session_id/acl")
	{
		sessionACL.GET("", managementHandler.ListSessionACL)
		sessionACL.PUT("", managementHandler.SetSessionACLEntry)
		sessionACL.DELETE("/:principal_id", managementHandler.DeleteSessionACLEntry)
	}

	// Event display settings
	events.GET("/layout", managementHandler.GetLayoutSettings)
	events.PATCH("/layout", managementHandler.SetLayoutSetting)
	events.DELETE("/layout/:name", managementHandler.ResetLayoutSetting)

	// Attachments
	attachments := events.Group("/attachments")
	{
		attachments.GET("", attachmentHandler.List)
		attachments.POST("", attachmentHandler.Upload)
		attachments.DELETE("/:attachment_id", attachmentHandler.Delete)
		attachments.GET("/:attachment_id/download", attachmentHandler.Download)
		attachments.GET("/:attachment_id/preview", attachmentHandler.Preview)
	}
}
