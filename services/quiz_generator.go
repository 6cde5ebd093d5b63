package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LonelyOmen/retrolearn/config"
	"github.com/LonelyOmen/retrolearn/models"
	"github.com/LonelyOmen/retrolearn/utils"
)

const quizQuestionCount = 10

// QuizStore là cổng persistence của pipeline quiz. Tách riêng để test
// được thuộc tính rollback mà không cần Postgres.
type QuizStore interface {
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	CreateQuestions(ctx context.Context, questions []models.QuizQuestion) error
	DeleteQuiz(ctx context.Context, quizID uuid.UUID) error
}

type GormQuizStore struct {
	DB *gorm.DB
}

func (s *GormQuizStore) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	return s.DB.WithContext(ctx).Create(quiz).Error
}

func (s *GormQuizStore) CreateQuestions(ctx context.Context, questions []models.QuizQuestion) error {
	return s.DB.WithContext(ctx).Create(&questions).Error
}

func (s *GormQuizStore) DeleteQuiz(ctx context.Context, quizID uuid.UUID) error {
	return s.DB.WithContext(ctx).Delete(&models.Quiz{}, "id = ?", quizID).Error
}

type GeneratedQuestion struct {
	QuestionText  string `json:"question_text"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectAnswer string `json:"correct_answer"`
}

type generatedQuiz struct {
	Questions []GeneratedQuestion `json:"questions"`
}

type GenerateQuizInput struct {
	Title       string
	Description string
	Topic       string
	CreatorID   uuid.UUID
}

// QuizGenerator sinh quiz 10 câu trắc nghiệm bằng một lời gọi Gemini
// duy nhất. Không có chuỗi fallback — lỗi provider hay parse báo thẳng.
type QuizGenerator struct {
	cfg   config.AIConfig
	gen   ContentGenerator
	store QuizStore
}

func NewQuizGenerator(cfg config.AIConfig, gen ContentGenerator, store QuizStore) *QuizGenerator {
	return &QuizGenerator{cfg: cfg, gen: gen, store: store}
}

// Generate tạo quiz từ topic và lưu header + 10 câu hỏi. Nếu lưu câu hỏi
// thất bại sau khi header đã tạo thì xoá header — không để quiz rỗng mồ côi.
func (g *QuizGenerator) Generate(ctx context.Context, input GenerateQuizInput) (*models.Quiz, error) {
	log.Println("Generating quiz for topic:", input.Topic)

	lctx, cancel := context.WithTimeout(ctx, g.cfg.LLMCallTimeout)
	defer cancel()

	resp, err := g.gen.Generate(lctx, g.cfg.GeminiAPIKey, g.cfg.LightModel, GenerateRequest{
		Prompt:          buildQuizPrompt(input.Topic),
		Temperature:     0.7,
		MaxOutputTokens: 4000,
	})
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	questions, err := parseQuizQuestions(resp)
	if err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		Title:     input.Title,
		CreatorID: input.CreatorID,
		IsPublic:  true,
	}
	if input.Description != "" {
		quiz.Description = &input.Description
	}
	if err := g.store.CreateQuiz(ctx, quiz); err != nil {
		return nil, fmt.Errorf("không tạo được quiz: %w", err)
	}
	log.Println("Quiz created:", quiz.ID)

	rows := make([]models.QuizQuestion, 0, quizQuestionCount)
	for i, q := range questions {
		rows = append(rows, models.QuizQuestion{
			QuizID:         quiz.ID,
			QuestionText:   q.QuestionText,
			OptionA:        q.OptionA,
			OptionB:        q.OptionB,
			OptionC:        q.OptionC,
			OptionD:        q.OptionD,
			CorrectAnswer:  q.CorrectAnswer,
			QuestionNumber: i + 1,
		})
	}

	if err := g.store.CreateQuestions(ctx, rows); err != nil {
		// Dọn header để không còn quiz rỗng
		if delErr := g.store.DeleteQuiz(ctx, quiz.ID); delErr != nil {
			log.Println("Không xoá được quiz header sau lỗi câu hỏi:", delErr)
		}
		return nil, fmt.Errorf("không tạo được câu hỏi quiz: %w", err)
	}

	log.Println("Quiz questions created successfully")
	quiz.Questions = rows
	return quiz, nil
}

// parseQuizQuestions cắt JSON, parse và kiểm tra cấu trúc: đúng 10 câu,
// đủ 4 phương án, correct_answer thuộc {A,B,C,D}. Không tự sửa dữ liệu lệch.
func parseQuizQuestions(resp string) ([]GeneratedQuestion, error) {
	jsonText, err := utils.ExtractJSON(resp)
	if err != nil {
		return nil, fmt.Errorf("Failed to parse AI response: %w", err)
	}

	var quiz generatedQuiz
	if err := json.Unmarshal([]byte(jsonText), &quiz); err != nil {
		return nil, fmt.Errorf("Failed to parse AI response: %w", err)
	}

	if len(quiz.Questions) != quizQuestionCount {
		return nil, fmt.Errorf("AI generated invalid quiz structure: có %d câu hỏi, cần đúng %d", len(quiz.Questions), quizQuestionCount)
	}

	for i, q := range quiz.Questions {
		if q.QuestionText == "" || q.OptionA == "" || q.OptionB == "" || q.OptionC == "" || q.OptionD == "" {
			return nil, fmt.Errorf("câu hỏi %d thiếu nội dung hoặc phương án", i+1)
		}
		switch q.CorrectAnswer {
		case "A", "B", "C", "D":
		default:
			return nil, errors.New("correct_answer phải là A, B, C hoặc D")
		}
	}
	return quiz.Questions, nil
}

func buildQuizPrompt(topic string) string {
	return fmt.Sprintf(`You are a quiz generator. Create exactly 10 multiple choice questions with 4 options each (A, B, C, D).
Each question should be challenging but fair, and cover different aspects of the topic.

Format your response as a JSON object with this exact structure:
{
  "questions": [
    {
      "question_text": "The question text here?",
      "option_a": "First option",
      "option_b": "Second option",
      "option_c": "Third option",
      "option_d": "Fourth option",
      "correct_answer": "A"
    }
  ]
}

Make sure:
- Exactly 10 questions
- correct_answer is always one of: A, B, C, or D
- Questions are varied and comprehensive
- All options are plausible but only one is correct

Create a quiz about: %s`, topic)
}
