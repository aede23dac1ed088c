package services

import (
	"errors"
	"strings"

	"popularchoice/models"

	"gorm.io/gorm"
)

type QuestionService struct {
	db *gorm.DB
}

func NewQuestionService(db *gorm.DB) *QuestionService {
	return &QuestionService{db: db}
}

type CreateQuestionRequest struct {
	Category string                `json:"category" binding:"required"`
	Text     string                `json:"text" binding:"required"`
	Answers  []CreateAnswerRequest `json:"answers" binding:"required,min=1"`
}

type CreateAnswerRequest struct {
	Text   string `json:"text" binding:"required"`
	Points int    `json:"points" binding:"min=0"`
}

type QuestionPage struct {
	Questions  []models.BankQuestion `json:"questions"`
	TotalPages int                   `json:"totalPages"`
}

// List returns one page of the catalog, optionally narrowed to a
// category and a text search over the question.
func (s *QuestionService) List(page, perPage int, category, search string) (*QuestionPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	query := s.db.Model(&models.BankQuestion{})

	if category != "" && !strings.EqualFold(category, "all") {
		query = query.Where("LOWER(category) = ?", strings.ToLower(category))
	}
	if search != "" {
		query = query.Where("LOWER(text) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var questions []models.BankQuestion
	err := query.
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("bank_answers.order")
		}).
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&questions).Error
	if err != nil {
		return nil, err
	}

	return &QuestionPage{
		Questions:  questions,
		TotalPages: int((total + int64(perPage) - 1) / int64(perPage)),
	}, nil
}

// Categories returns the distinct category names in the catalog.
func (s *QuestionService) Categories() ([]string, error) {
	var categories []string
	err := s.db.Model(&models.BankQuestion{}).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	return categories, err
}

// Create stores a question with its ordered answers in one transaction.
func (s *QuestionService) Create(req *CreateQuestionRequest) (*models.BankQuestion, error) {
	for _, a := range req.Answers {
		if a.Points < 0 {
			return nil, errors.New("answer points must be non-negative")
		}
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	question := models.BankQuestion{
		Category: req.Category,
		Text:     req.Text,
	}

	if err := tx.Create(&question).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for i, aReq := range req.Answers {
		answer := models.BankAnswer{
			QuestionID: question.ID,
			Text:       aReq.Text,
			Points:     aReq.Points,
			Order:      i,
		}

		if err := tx.Create(&answer).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return s.GetByID(question.ID)
}

func (s *QuestionService) GetByID(id uint) (*models.BankQuestion, error) {
	var question models.BankQuestion
	err := s.db.
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("bank_answers.order")
		}).
		First(&question, id).Error
	return &question, err
}
