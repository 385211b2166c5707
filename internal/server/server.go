package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/makershowcase/backend/internal/database"
	"github.com/makershowcase/backend/internal/handlers"
	"github.com/makershowcase/backend/internal/middleware"
)

type Server struct {
	db      database.Service
	handler *handlers.Handler
}

// NewServer creates and configures a new server
func NewServer() *http.Server {
	// Initialize database
	db := database.New()

	// Bootstrap reviewer account from the environment, if configured
	if err := handlers.SeedReviewer(db.GetDB()); err != nil {
		log.Fatalf("Failed to seed reviewer: %v", err)
	}

	// Create unified handler
	handler := handlers.NewHandler(db.GetDB())

	// Create server instance
	newServer := &Server{
		db:      db,
		handler: handler,
	}

	// Configure Gin router
	router := newServer.RegisterRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // local dev fallback
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("🚀 Server starting on port %s\n", port)
	fmt.Println("📝 Press Ctrl+C to stop the server")

	return server
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", "X-Voter-Hint"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.db.Health())
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/login", s.handler.Auth.Login)

		// Entry routes (public)
		api.POST("/entries", s.handler.Entry.CreateEntry)
		api.GET("/entries", s.handler.Entry.GetEntries)
		api.GET("/entries/:id", s.handler.Entry.GetEntry)
		api.POST("/entries/:id/vote", s.handler.Entry.VoteEntry)

		// Protected routes (reviewer authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Auth protected routes
			protected.GET("/me", s.handler.Auth.GetMe)

			// Moderation routes
			protected.GET("/moderation/pending", s.handler.Moderation.GetPending)
			protected.POST("/moderation/entries/:id/approve", s.handler.Moderation.ApproveEntry)
			protected.POST("/moderation/entries/:id/reject", s.handler.Moderation.RejectEntry)
			protected.POST("/moderation/entries/approve-batch", s.handler.Moderation.BulkApprove)
		}
	}

	return r
}
