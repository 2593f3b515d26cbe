package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"comment-service/config"
	"comment-service/controllers"
	"comment-service/middleware"
	"comment-service/routes"
	"comment-service/services"
	"comment-service/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found (checking system env vars)")
	}

	var commentStore storage.CommentStore
	var userStore storage.UserStore

	if os.Getenv("STORAGE_TYPE") == "in-memory" {
		mem := storage.NewMemoryStorage()
		commentStore = mem
		userStore = mem
		log.Println("Using in-memory storage")
	} else {
		config.ConnectDB()
		commentStore = storage.NewMongoCommentStore(config.DB)
		userStore = storage.NewMongoUserStore(config.DB)
	}

	var notifier services.Notifier
	if client := config.NewPusherClient(); client != nil {
		notifier = services.NewPusherNotifier(client)
	} else {
		log.Println("Pusher credentials missing, real-time events disabled")
		notifier = services.NoopNotifier{}
	}

	commentService := services.NewCommentService(commentStore, userStore, notifier)
	commentController := controllers.NewCommentController(commentService)
	authController := controllers.NewAuthController(userStore)

	r := gin.Default()
	r.Use(middleware.RateLimiter(100, 15*time.Minute))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Comment System API is running",
			"version": "1.0.0",
			"endpoints": gin.H{
				"health":   "/api/health",
				"auth":     "/api/auth",
				"comments": "/api/comments",
			},
		})
	})

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Server is running",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Manual push verification: triggers a test event and reports timing.
	r.GET("/api/pusher/test", func(c *gin.Context) {
		payload := gin.H{"message": "hello world", "ts": time.Now().Format(time.RFC3339)}
		start := time.Now()
		if err := notifier.Publish(services.NotificationChannel, services.EventCommentCreated, payload); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success":     false,
				"error":       err.Error(),
				"duration_ms": time.Since(start).Milliseconds(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"duration_ms": time.Since(start).Milliseconds(),
			"payload":     payload,
		})
	})

	routes.AuthRoutes(r, authController)
	routes.CommentRoutes(r, commentController)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
	})

	corsHandler := cors.New(cors.Options{
		AllowOriginFunc:  allowOrigin,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
	}).Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("Server running on port " + port)
	if err := http.ListenAndServe(":"+port, corsHandler); err != nil {
		log.Fatal("Server failed:", err)
	}
}

// allowOrigin mirrors the browser client allow-list: local dev servers, the
// configured client URL, and vercel preview deployments.
func allowOrigin(origin string) bool {
	allowed := []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}
	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		allowed = append(allowed, clientURL)
	}
	for _, candidate := range allowed {
		if origin == candidate {
			return true
		}
	}
	return strings.HasSuffix(origin, ".vercel.app")
}
