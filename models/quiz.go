package models

import (
	"time"

	"github.com/google/uuid"
)

type Quiz struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`

	CreatorID uuid.UUID `gorm:"type:uuid;not null;index" json:"creator_id"`
	Creator   User      `gorm:"foreignKey:CreatorID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`

	IsPublic  bool      `gorm:"default:true" json:"is_public"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Questions []QuizQuestion `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

// QuizQuestion: đúng 10 câu mỗi quiz, question_number 1..10 theo thứ tự sinh
type QuizQuestion struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	QuizID uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Quiz   Quiz      `gorm:"foreignKey:QuizID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`

	QuestionText  string `gorm:"type:text;not null" json:"question_text"`
	OptionA       string `gorm:"type:text;not null" json:"option_a"`
	OptionB       string `gorm:"type:text;not null" json:"option_b"`
	OptionC       string `gorm:"type:text;not null" json:"option_c"`
	OptionD       string `gorm:"type:text;not null" json:"option_d"`
	CorrectAnswer string `gorm:"type:varchar(1);not null" json:"correct_answer"`

	QuestionNumber int `gorm:"not null" json:"question_number"`
}

type QuizAttempt struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	QuizID uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Quiz   Quiz      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   User      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`

	Score   float64   `gorm:"type:numeric(5,2)" json:"score"`
	TakenAt time.Time `gorm:"autoCreateTime" json:"taken_at"`
}
