package services

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LonelyOmen/retrolearn/models"
)

const validStudyJSON = `{
  "summary": "Tóm tắt chi tiết về quang hợp",
  "keyPoints": ["điểm 1", "điểm 2", "điểm 3", "điểm 4", "điểm 5"],
  "flashcards": [
    {"front": "f1", "back": "b1"}, {"front": "f2", "back": "b2"},
    {"front": "f3", "back": "b3"}, {"front": "f4", "back": "b4"},
    {"front": "f5", "back": "b5"}, {"front": "f6", "back": "b6"},
    {"front": "f7", "back": "b7"}, {"front": "f8", "back": "b8"}
  ],
  "qa": [
    {"question": "q1", "answer": "a1"}, {"question": "q2", "answer": "a2"},
    {"question": "q3", "answer": "a3"}, {"question": "q4", "answer": "a4"},
    {"question": "q5", "answer": "a5"}, {"question": "q6", "answer": "a6"}
  ]
}`

func newTestProcessor(gen ContentGenerator, store NoteStore) *NoteProcessor {
	return NewNoteProcessor(testCfg(), gen, store, nil)
}

func TestProcessHappyPath(t *testing.T) {
	gen := &fakeGen{respond: func(call genCall) (string, error) {
		return "```json\n" + validStudyJSON + "\n```", nil
	}}
	store := &fakeNoteStore{}
	p := newTestProcessor(gen, store)

	noteID := uuid.New()
	result, perr := p.Process(context.Background(), ProcessRequest{
		NoteID:  noteID.String(),
		Content: "Quang hợp là quá trình...",
	})

	require.Nil(t, perr)
	require.NotNil(t, result.Note)
	assert.Equal(t, models.StatusCompleted, result.Note.ProcessingStatus)
	assert.False(t, result.EnhancedWithInternet)

	// status đi đúng đường: processing rồi completed (qua Complete)
	assert.Equal(t, []models.ProcessingStatus{models.StatusProcessing}, store.statuses)
	require.NotNil(t, store.completed)
	assert.Len(t, store.completed.KeyPoints, 5)
	assert.Len(t, store.completed.Flashcards, 8)
	assert.Len(t, store.completed.QA, 6)
}

// Chỉ có ảnh, không có text: vẫn hợp lệ, prompt chuyển sang nhánh image-only
func TestProcessImageOnly(t *testing.T) {
	var prompt string
	gen := &fakeGen{}
	gen.respond = func(call genCall) (string, error) {
		prompt = call.Prompt
		return validStudyJSON, nil
	}
	store := &fakeNoteStore{}
	p := newTestProcessor(gen, store)

	img := base64.StdEncoding.EncodeToString([]byte("fake-png-bytes"))
	_, perr := p.Process(context.Background(), ProcessRequest{
		NoteID: uuid.New().String(),
		Images: []ImagePayload{{Data: img, MimeType: "image/png"}},
	})

	require.Nil(t, perr)
	assert.Contains(t, prompt, "No text notes provided - analyze the images only.")
}

// Input rỗng bị chặn trước khi đụng tới provider hay DB
func TestProcessEmptyInputRejectedBeforeProviders(t *testing.T) {
	gen := &fakeGen{respond: func(call genCall) (string, error) {
		t.Fatal("không được gọi provider với input rỗng")
		return "", nil
	}}
	store := &fakeNoteStore{}
	p := newTestProcessor(gen, store)

	_, perr := p.Process(context.Background(), ProcessRequest{NoteID: uuid.New().String()})
	require.NotNil(t, perr)
	assert.Equal(t, CodeInvalidInput, perr.Code)
	assert.Empty(t, store.statuses)
}

func TestProcessBadNoteID(t *testing.T) {
	gen := &fakeGen{respond: func(call genCall) (string, error) { return "", nil }}
	p := newTestProcessor(gen, &fakeNoteStore{})

	_, perr := p.Process(context.Background(), ProcessRequest{NoteID: "not-a-uuid", Content: "x"})
	require.NotNil(t, perr)
	assert.Equal(t, CodeInvalidInput, perr.Code)
}

func TestProcessBadImageBase64(t *testing.T) {
	gen := &fakeGen{respond: func(call genCall) (string, error) { return "", nil }}
	p := newTestProcessor(gen, &fakeNoteStore{})

	_, perr := p.Process(context.Background(), ProcessRequest{
		NoteID: uuid.New().String(),
		Images: []ImagePayload{{Data: "!!!not-base64!!!", MimeType: "image/png"}},
	})
	require.NotNil(t, perr)
	assert.Equal(t, CodeInvalidInput, perr.Code)
}

// Chuỗi fallback cạn vì quota: note phải về error, code GEMINI_QUOTA, status 429
func TestProcessChainExhaustedQuota(t *testing.T) {
	gen := &fakeGen{respond: func(call genCall) (string, error) {
		return "", errQuota
	}}
	store := &fakeNoteStore{}
	p := newTestProcessor(gen, store)

	_, perr := p.Process(context.Background(), ProcessRequest{
		NoteID:  uuid.New().String(),
		Content: "nội dung",
	})

	require.NotNil(t, perr)
	assert.Equal(t, CodeGeminiQuota, perr.Code)
	assert.Equal(t, 429, perr.ProviderStatus)
	assert.Equal(t,
		[]models.ProcessingStatus{models.StatusProcessing, models.StatusError},
		store.statuses)
	assert.Nil(t, store.completed)
}

// Lỗi provider không phải quota: code GEMINI_ERROR, vẫn về error status
func TestProcessNonQuotaProviderError(t *testing.T) {
	gen := &fakeGen{respond: func(call genCall) (string, error) {
		return "", assert.AnError
	}}
	store := &fakeNoteStore{}
	p := newTestProcessor(gen, store)

	_, perr := p.Process(context.Background(), ProcessRequest{
		NoteID:  uuid.New().String(),
		Content: "nội dung",
	})

	require.NotNil(t, perr)
	assert.Equal(t, CodeGeminiError, perr.Code)
	assert.Equal(t, 1, gen.callCount())
	assert.Contains(t, store.statuses, models.StatusError)
}

// Response thiếu trường bắt buộc là PARSE_ERROR, không ghi kết quả dở dang
func TestProcessIncompleteMaterialsRejected(t *testing.T) {
	gen := &fakeGen{respond: func(call genCall) (string, error) {
		return `{"summary": "có", "keyPoints": ["x"], "flashcards": [], "qa": []}`, nil
	}}
	store := &fakeNoteStore{}
	p := newTestProcessor(gen, store)

	_, perr := p.Process(context.Background(), ProcessRequest{
		NoteID:  uuid.New().String(),
		Content: "nội dung",
	})

	require.NotNil(t, perr)
	assert.Equal(t, CodeParseError, perr.Code)
	assert.Nil(t, store.completed)
	assert.Contains(t, store.statuses, models.StatusError)
}

// Có researcher + enhanceWithInternet: research context phải vào prompt
// và cờ enhanced_with_internet chỉ bật khi context thật sự khác rỗng
func TestProcessWithResearchEnrichment(t *testing.T) {
	var synthesisPrompt string
	gen := &fakeGen{}
	gen.respond = func(call genCall) (string, error) {
		if call.Model == "gemini-1.5-flash" && call.APIKey == "key-primary" &&
			len(call.Prompt) > 0 && call.Prompt[0] == 'E' {
			// lời gọi trích topic
			return "Photosynthesis", nil
		}
		synthesisPrompt = call.Prompt
		return validStudyJSON, nil
	}
	search := &fakeSearcher{respond: func(query string) (string, error) {
		return "Quang hợp chuyển quang năng thành hoá năng.", nil
	}}

	cfg := testCfg()
	researcher := NewResearcher(cfg, gen, search)
	store := &fakeNoteStore{}
	p := NewNoteProcessor(cfg, gen, store, researcher)

	result, perr := p.Process(context.Background(), ProcessRequest{
		NoteID:              uuid.New().String(),
		Content:             "Ghi chú về quang hợp",
		EnhanceWithInternet: true,
	})

	require.Nil(t, perr)
	assert.True(t, result.EnhancedWithInternet)
	assert.True(t, store.enhanced)
	assert.Contains(t, synthesisPrompt, "Additional Research Context:")
	assert.Contains(t, synthesisPrompt, `## Research on "Photosynthesis":`)
}
