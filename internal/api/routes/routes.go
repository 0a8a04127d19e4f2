package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/castlehq/checkmate/internal/api/handlers"
	"github.com/castlehq/checkmate/internal/api/middleware"
)

type Deps struct {
	JWTSecret string

	Auth         *handlers.AuthHandler
	Resume       *handlers.ResumeHandler
	Interview    *handlers.InterviewHandler
	Conversation *handlers.ConversationHandler
	Export       *handlers.ExportHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.POST("/auth/register", d.Auth.Register)
	r.POST("/auth/login", d.Auth.Login)
	r.POST("/auth/google", d.Auth.Google)

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth(d.JWTSecret))

	auth.POST("/auth/logout", d.Auth.Logout)

	auth.POST("/resumes", d.Resume.Upload)
	auth.GET("/resumes", d.Resume.List)
	auth.GET("/resumes/:id", d.Resume.Get)

	auth.POST("/interviews", d.Interview.Create)
	auth.GET("/interviews", d.Interview.List)
	auth.GET("/interviews/:id", d.Interview.Get)
	auth.PATCH("/interviews/:id/end", d.Interview.End)
	auth.PATCH("/interviews/:id/cancel", d.Interview.Cancel)

	auth.GET("/interviews/:id/messages", d.Conversation.List)
	auth.POST("/interviews/:id/messages", d.Conversation.Post)

	auth.GET("/export/interviews", d.Export.Interviews)
	auth.GET("/export/interviews/:id/messages", d.Export.Messages)
	auth.GET("/export/all", middleware.RequireAdmin(), d.Export.All)
}
