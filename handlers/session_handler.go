package handlers

import (
	"errors"
	"net/http"

	"popularchoice/models"
	"popularchoice/services"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessions *services.SessionController
}

func NewSessionHandler(sessions *services.SessionController) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type codeRequest struct {
	Code string `json:"code" binding:"required"`
}

type setupRequest struct {
	Code  string      `json:"code" binding:"required"`
	Title string      `json:"title"`
	TeamA models.Team `json:"team_a"`
	TeamB models.Team `json:"team_b"`
}

type scoresRequest struct {
	Code   string `json:"code" binding:"required"`
	ScoreA int    `json:"score_a"`
	ScoreB int    `json:"score_b"`
}

type questionRequest struct {
	Code     string          `json:"code" binding:"required"`
	Question models.Question `json:"question"`
}

type countdownRequest struct {
	Code    string `json:"code" binding:"required"`
	Seconds int    `json:"seconds"`
}

type controlRequest struct {
	Code       string `json:"code" binding:"required"`
	ActiveTeam int    `json:"active_team"`
}

type roundUpdateRequest struct {
	Code string `json:"code" binding:"required"`
	services.RoundUpdate
}

// respondSessionError maps the error taxonomy onto HTTP statuses.
func respondSessionError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var phaseErr *services.PhaseError

	switch {
	case errors.Is(err, services.ErrInvalidCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Reason})
	case errors.As(err, &phaseErr):
		c.JSON(http.StatusConflict, gin.H{"error": phaseErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *SessionHandler) Connect(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessions.Connect(c.Request.Context(), req.Code); err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Connected to board"})
}

func (h *SessionHandler) Status(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	phase, err := h.sessions.Status(c.Request.Context(), req.Code)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": phase})
}

func (h *SessionHandler) BoardStatus(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	info, err := h.sessions.BoardStatus(c.Request.Context(), req.Code)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"gameInfo": info})
}

func (h *SessionHandler) Setup(c *gin.Context) {
	var req setupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessions.Configure(c.Request.Context(), req.Code, req.Title, req.TeamA, req.TeamB)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Game setup saved", "status": session.Phase})
}

func (h *SessionHandler) Teams(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	teams, err := h.sessions.Teams(c.Request.Context(), req.Code)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

func (h *SessionHandler) SetScores(c *gin.Context) {
	var req scoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessions.SetScores(c.Request.Context(), req.Code, req.ScoreA, req.ScoreB)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Scores updated", "team_a": session.TeamA, "team_b": session.TeamB})
}

func (h *SessionHandler) AddQuestion(c *gin.Context) {
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessions.AddQuestion(c.Request.Context(), req.Code, req.Question)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question set", "status": session.Phase})
}

func (h *SessionHandler) SetCountdown(c *gin.Context) {
	var req countdownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := h.sessions.SetCountdown(c.Request.Context(), req.Code, req.Seconds)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Countdown set"})
}

func (h *SessionHandler) StartControl(c *gin.Context) {
	var req controlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessions.StartControl(c.Request.Context(), req.Code, req.ActiveTeam)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Round control started", "status": session.Phase})
}

func (h *SessionHandler) UpdateRound(c *gin.Context) {
	var req roundUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := h.sessions.UpdateRound(c.Request.Context(), req.Code, req.RoundUpdate)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Board updated"})
}

func (h *SessionHandler) EndRound(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessions.EndRound(c.Request.Context(), req.Code)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Round ended", "status": session.Phase})
}
