package routes

import (
	"log"
	"net/http"

	"popularchoice/handlers"
	"popularchoice/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Cross-origin boards are expected; CORS handles the REST side
	},
}

func SetupRoutes(
	router *gin.Engine,
	sessionHandler *handlers.SessionHandler,
	questionHandler *handlers.QuestionHandler,
	hub *services.Hub,
) {
	// Host control surface
	router.POST("/connectGameCode", sessionHandler.Connect)
	router.POST("/gameStatus", sessionHandler.Status)
	router.POST("/gameSetup", sessionHandler.Setup)
	router.POST("/gameTeams", sessionHandler.Teams)
	router.POST("/gameScores", sessionHandler.SetScores)
	router.POST("/gameQuestion", sessionHandler.AddQuestion)
	router.POST("/gameCountdown", sessionHandler.SetCountdown)
	router.POST("/gameControl", sessionHandler.StartControl)
	router.POST("/updateGameBoard", sessionHandler.UpdateRound)
	router.POST("/endRound", sessionHandler.EndRound)

	// Board surface
	router.POST("/boardStatus", sessionHandler.BoardStatus)

	// Question catalog
	router.GET("/questions", questionHandler.List)
	router.GET("/categories", questionHandler.Categories)
	router.POST("/questions", questionHandler.Create)
	router.GET("/generateQuestions", questionHandler.Generate)

	// WebSocket endpoint boards connect to; subscription to a code happens
	// through generate_code / join_board messages after the upgrade
	router.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
			return
		}

		hub.RegisterClient(conn)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
