package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/LonelyOmen/retrolearn/controllers"
	"github.com/LonelyOmen/retrolearn/middleware"
	"github.com/LonelyOmen/retrolearn/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/logingoogle", controllers.GoogleLogin)
	}

	// Proxy Wikipedia không cần đăng nhập
	api.POST("/wikipedia", controllers.WikipediaProxy)

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(), middleware.DBMiddleware(db))
	{
		// Ghi chú
		authed.POST("/notes", controllers.CreateNote)
		authed.GET("/notes", controllers.GetNotes)
		authed.GET("/notes/:id", controllers.GetNoteDetail)
		authed.DELETE("/notes/:id", controllers.DeleteNote)
		authed.POST("/notes/upload-image", controllers.UploadNoteImage)
		authed.POST("/notes/import-document", controllers.ImportDocument)
		authed.GET("/notes/:id/audio", controllers.GetNoteAudio)

		// Pipeline AI
		authed.POST("/ai/process-notes", controllers.ProcessNotes)
		authed.POST("/ai/extract-text", controllers.ExtractText)
		authed.POST("/ai/transcribe", controllers.TranscribeAudio)

		// Quiz
		authed.POST("/quizzes/generate", controllers.GenerateQuiz)
		authed.GET("/quizzes", controllers.GetQuizzes)
		authed.GET("/quizzes/:id", controllers.GetQuizDetail)
		authed.DELETE("/quizzes/:id", controllers.DeleteQuiz)
		authed.PATCH("/quizzes/:id/visibility", controllers.ToggleQuizVisibility)
		authed.POST("/quizzes/:id/attempts", controllers.SubmitQuizAttempt)

		// Phòng học nhóm
		authed.POST("/rooms", controllers.CreateRoom)
		authed.GET("/rooms", controllers.GetRooms)
		authed.POST("/rooms/join", controllers.JoinRoom)
		authed.GET("/rooms/:id/messages", controllers.GetRoomMessages)
		authed.POST("/rooms/:id/messages", controllers.SendRoomMessage)
		authed.POST("/rooms/:id/share-note", controllers.ShareNoteToRoom)
		authed.GET("/rooms/:id/notes", controllers.GetRoomSharedNotes)
	}

	// WebSocket: auth bằng token trên query string
	r.GET("/ws/rooms/:id", ws.HandleRoomWebSocket)
	r.GET("/ws/status", ws.HandleStatusWebSocket)

	return r
}
