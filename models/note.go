package models

import (
	"time"

	"github.com/google/uuid"
)

type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusError      ProcessingStatus = "error"
)

// FlashcardPair là một thẻ ghi nhớ sinh bởi AI (mặt trước / mặt sau)
type FlashcardPair struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Note lưu ghi chú gốc của người dùng và toàn bộ tài liệu học tập sinh ra.
// Các cột summary/key_points/generated_* chỉ được ghi cùng nhau khi
// processing_status = completed.
type Note struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   User      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`

	Title           string           `gorm:"size:255" json:"title"`
	OriginalContent string           `gorm:"type:text" json:"original_content"`
	ImageURLs       []string         `gorm:"serializer:json" json:"image_urls,omitempty"`
	ProcessingStatus ProcessingStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"processing_status"`

	EnhancedWithInternet bool `gorm:"default:false" json:"enhanced_with_internet"`

	Summary             *string         `gorm:"type:text" json:"summary,omitempty"`
	KeyPoints           []string        `gorm:"serializer:json" json:"key_points,omitempty"`
	GeneratedFlashcards []FlashcardPair `gorm:"serializer:json" json:"generated_flashcards,omitempty"`
	GeneratedQA         []QAPair        `gorm:"serializer:json" json:"generated_qa,omitempty"`

	AudioURL      *string  `gorm:"type:text" json:"audio_url,omitempty"`
	AudioDuration *float64 `json:"audio_duration,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
