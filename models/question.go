package models

import (
	"time"

	"gorm.io/gorm"
)

type BankQuestion struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Category  string         `json:"category" gorm:"not null;index"`
	Text      string         `json:"text" gorm:"not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Answers []BankAnswer `json:"answers,omitempty" gorm:"foreignKey:QuestionID"`
}

type BankAnswer struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	QuestionID uint           `json:"question_id" gorm:"not null"`
	Text       string         `json:"text" gorm:"not null"`
	Points     int            `json:"points" gorm:"not null"`
	Order      int            `json:"order" gorm:"not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Question BankQuestion `json:"question,omitempty"`
}
