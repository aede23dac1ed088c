package handlers

import (
	"net/http"
	"strconv"

	"popularchoice/services"

	"github.com/gin-gonic/gin"
)

type QuestionHandler struct {
	questions *services.QuestionService
	generator *services.GenerateService
}

func NewQuestionHandler(questions *services.QuestionService, generator *services.GenerateService) *QuestionHandler {
	return &QuestionHandler{
		questions: questions,
		generator: generator,
	}
}

func (h *QuestionHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	category := c.Query("category")
	search := c.Query("search")

	result, err := h.questions.List(page, perPage, category, search)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load questions"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *QuestionHandler) Categories(c *gin.Context) {
	categories, err := h.questions.Categories()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *QuestionHandler) Create(c *gin.Context) {
	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.questions.Create(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, question)
}

func (h *QuestionHandler) Generate(c *gin.Context) {
	topic := c.Query("topic")
	if topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The 'topic' parameter is required"})
		return
	}

	if !h.generator.IsAvailable() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Question generation is not configured"})
		return
	}

	questions, err := h.generator.Generate(topic)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"questions": questions})
}
