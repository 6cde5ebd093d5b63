package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quizJSON(n int) string {
	questions := make([]GeneratedQuestion, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, GeneratedQuestion{
			QuestionText:  fmt.Sprintf("Câu hỏi %d?", i+1),
			OptionA:       "a", OptionB: "b", OptionC: "c", OptionD: "d",
			CorrectAnswer: "A",
		})
	}
	data, _ := json.Marshal(map[string]interface{}{"questions": questions})
	return string(data)
}

func TestQuizGenerateHappyPath(t *testing.T) {
	gen := &fakeGen{respond: func(call genCall) (string, error) {
		return "```json\n" + quizJSON(10) + "\n```", nil
	}}
	store := &fakeQuizStore{}
	g := NewQuizGenerator(testCfg(), gen, store)

	creator := uuid.New()
	quiz, err := g.Generate(context.Background(), GenerateQuizInput{
		Title:     "Quiz quang hợp",
		Topic:     "photosynthesis",
		CreatorID: creator,
	})

	require.NoError(t, err)
	require.NotNil(t, store.createdQuiz)
	assert.True(t, store.createdQuiz.IsPublic)
	assert.Equal(t, creator, store.createdQuiz.CreatorID)
	assert.Nil(t, store.createdQuiz.Description)

	// 10 câu, đánh số liên tục 1..10 theo thứ tự model trả về
	require.Len(t, quiz.Questions, 10)
	for i, q := range quiz.Questions {
		assert.Equal(t, i+1, q.QuestionNumber)
		assert.Equal(t, store.createdQuiz.ID, q.QuizID)
	}

	// dùng model nhẹ, một lời gọi duy nhất, không fallback
	assert.Equal(t, 1, gen.callCount())
	assert.Equal(t, "gemini-1.5-flash", gen.calls[0].Model)
}

func TestQuizGenerateWrongQuestionCount(t *testing.T) {
	for _, n := range []int{9, 11} {
		gen := &fakeGen{respond: func(call genCall) (string, error) {
			return quizJSON(n), nil
		}}
		store := &fakeQuizStore{}
		g := NewQuizGenerator(testCfg(), gen, store)

		_, err := g.Generate(context.Background(), GenerateQuizInput{Title: "t", Topic: "x", CreatorID: uuid.New()})
		require.Error(t, err, "phải từ chối quiz %d câu", n)
		// không được tạo gì trong DB khi số câu sai
		assert.Nil(t, store.createdQuiz)
	}
}

func TestQuizGenerateBadCorrectAnswer(t *testing.T) {
	questions := make([]GeneratedQuestion, 10)
	for i := range questions {
		questions[i] = GeneratedQuestion{
			QuestionText: "q", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d",
			CorrectAnswer: "A",
		}
	}
	questions[4].CorrectAnswer = "E"
	data, _ := json.Marshal(map[string]interface{}{"questions": questions})

	gen := &fakeGen{respond: func(call genCall) (string, error) {
		return string(data), nil
	}}
	store := &fakeQuizStore{}
	g := NewQuizGenerator(testCfg(), gen, store)

	_, err := g.Generate(context.Background(), GenerateQuizInput{Title: "t", Topic: "x", CreatorID: uuid.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "correct_answer")
	assert.Nil(t, store.createdQuiz)
}

// Lưu câu hỏi fail sau khi header đã tạo: header phải bị xoá (rollback)
func TestQuizGenerateRollbackOnQuestionFailure(t *testing.T) {
	gen := &fakeGen{respond: func(call genCall) (string, error) {
		return quizJSON(10), nil
	}}
	store := &fakeQuizStore{questionsErr: assert.AnError}
	g := NewQuizGenerator(testCfg(), gen, store)

	_, err := g.Generate(context.Background(), GenerateQuizInput{Title: "t", Topic: "x", CreatorID: uuid.New()})
	require.Error(t, err)

	require.NotNil(t, store.createdQuiz)
	require.Len(t, store.deleted, 1)
	assert.Equal(t, store.createdQuiz.ID, store.deleted[0])
}

func TestQuizGenerateProviderError(t *testing.T) {
	gen := &fakeGen{respond: func(call genCall) (string, error) {
		return "", assert.AnError
	}}
	store := &fakeQuizStore{}
	g := NewQuizGenerator(testCfg(), gen, store)

	_, err := g.Generate(context.Background(), GenerateQuizInput{Title: "t", Topic: "x", CreatorID: uuid.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Gemini API error")
	assert.Nil(t, store.createdQuiz)
}

func TestQuizGenerateUnparseableResponse(t *testing.T) {
	gen := &fakeGen{respond: func(call genCall) (string, error) {
		return "Sorry, I cannot create a quiz about that topic.", nil
	}}
	store := &fakeQuizStore{}
	g := NewQuizGenerator(testCfg(), gen, store)

	_, err := g.Generate(context.Background(), GenerateQuizInput{Title: "t", Topic: "x", CreatorID: uuid.New()})
	require.Error(t, err)
	assert.Nil(t, store.createdQuiz)
}

func TestQuizGenerateKeepsDescription(t *testing.T) {
	gen := &fakeGen{respond: func(call genCall) (string, error) {
		return quizJSON(10), nil
	}}
	store := &fakeQuizStore{}
	g := NewQuizGenerator(testCfg(), gen, store)

	_, err := g.Generate(context.Background(), GenerateQuizInput{
		Title:       "t",
		Description: "mô tả quiz",
		Topic:       "x",
		CreatorID:   uuid.New(),
	})
	require.NoError(t, err)
	require.NotNil(t, store.createdQuiz.Description)
	assert.Equal(t, "mô tả quiz", *store.createdQuiz.Description)
}
