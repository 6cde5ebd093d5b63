package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/LonelyOmen/retrolearn/config"
	"github.com/LonelyOmen/retrolearn/controllers"
	"github.com/LonelyOmen/retrolearn/routes"
	"github.com/LonelyOmen/retrolearn/services"
	"github.com/LonelyOmen/retrolearn/ws"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("Không tìm thấy file .env")
	}

	config.InitDB()

	aiCfg := config.LoadAI()
	controllers.InitAI(aiCfg, config.DB)
	ws.Notify = services.NewNotifier(aiCfg.NotificationAPISecret)

	r := gin.Default()

	// CORS mở cho mọi origin để frontend deploy ở đâu cũng gọi được
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	// Gọi SetupRouter để đăng ký route
	r = routes.SetupRouter(r, config.DB)

	// Route test server
	r.GET("/", func(c *gin.Context) {
		c.String(200, "RetroLearn server is running")
	})

	// Lấy PORT từ env
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // mặc định nếu không có PORT
	}

	log.Println("Server running at Port:" + port)
	r.Run(":" + port)
}
