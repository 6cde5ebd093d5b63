package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/LonelyOmen/retrolearn/config"
	"github.com/LonelyOmen/retrolearn/models"
)

func testCfg() config.AIConfig {
	return config.AIConfig{
		GeminiAPIKey:          "key-primary",
		GeminiAPIKeySecondary: "key-secondary",
		PrimaryModel:          "gemini-1.5-pro",
		FallbackModels:        []string{"gemini-1.5-flash", "gemini-1.5-flash-8b"},
		LightModel:            "gemini-1.5-flash",
		LLMCallTimeout:        time.Second,
		SearchCallTimeout:     time.Second,
		PipelineTimeout:       5 * time.Second,
	}
}

type genCall struct {
	APIKey string
	Model  string
	Prompt string
}

// fakeGen ghi lại từng lời gọi và trả kết quả theo hàm respond
type fakeGen struct {
	mu      sync.Mutex
	calls   []genCall
	respond func(call genCall) (string, error)
}

func (f *fakeGen) Generate(ctx context.Context, apiKey string, model string, req GenerateRequest) (string, error) {
	f.mu.Lock()
	call := genCall{APIKey: apiKey, Model: model, Prompt: req.Prompt}
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	return f.respond(call)
}

func (f *fakeGen) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeNoteStore struct {
	mu        sync.Mutex
	statuses  []models.ProcessingStatus
	completed *StudyMaterials
	enhanced  bool
}

func (s *fakeNoteStore) SetStatus(ctx context.Context, noteID uuid.UUID, status models.ProcessingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
	return nil
}

func (s *fakeNoteStore) Complete(ctx context.Context, noteID uuid.UUID, m StudyMaterials, enhanced bool) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = &m
	s.enhanced = enhanced
	note := &models.Note{
		ID:                   noteID,
		ProcessingStatus:     models.StatusCompleted,
		Summary:              &m.Summary,
		KeyPoints:            m.KeyPoints,
		GeneratedFlashcards:  m.Flashcards,
		GeneratedQA:          m.QA,
		EnhancedWithInternet: enhanced,
	}
	return note, nil
}

type fakeSearcher struct {
	respond func(query string) (string, error)
}

func (f *fakeSearcher) Search(ctx context.Context, query string) (string, error) {
	return f.respond(query)
}

type fakeQuizStore struct {
	mu           sync.Mutex
	createdQuiz  *models.Quiz
	questions    []models.QuizQuestion
	deleted      []uuid.UUID
	questionsErr error
}

func (s *fakeQuizStore) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz.ID = uuid.New()
	s.createdQuiz = quiz
	return nil
}

func (s *fakeQuizStore) CreateQuestions(ctx context.Context, questions []models.QuizQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.questionsErr != nil {
		return s.questionsErr
	}
	s.questions = questions
	return nil
}

func (s *fakeQuizStore) DeleteQuiz(ctx context.Context, quizID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, quizID)
	return nil
}
