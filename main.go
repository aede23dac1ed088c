package main

import (
	"log"

	"popularchoice/config"
	"popularchoice/handlers"
	"popularchoice/middleware"
	"popularchoice/models"
	"popularchoice/routes"
	"popularchoice/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate the question bank
	err = db.AutoMigrate(
		&models.BankQuestion{},
		&models.BankAnswer{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize services
	store := services.NewRedisSessionStore(redisClient)
	questionService := services.NewQuestionService(db)
	generateService := services.NewGenerateService(cfg.GeminiAPIKey, cfg.GeminiModel)

	// Initialize WebSocket hub and the session controller on top of it
	hub := services.NewHub()
	sessions := services.NewSessionController(store, hub)
	hub.SetStates(sessions)
	go hub.Run()

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(sessions)
	questionHandler := handlers.NewQuestionHandler(questionService, generateService)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	// Setup routes
	routes.SetupRoutes(router, sessionHandler, questionHandler, hub)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
