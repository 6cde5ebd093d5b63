package services

import (
	"context"
	"encoding/base64"
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

// Mã lỗi máy đọc được, trả kèm response cho client phân biệt
// "thử lại sau" (quota) / "input xử lý không được" (parse) / lỗi hệ thống
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeGeminiQuota  = "GEMINI_QUOTA"
	CodeGeminiError  = "GEMINI_ERROR"
	CodeParseError   = "PARSE_ERROR"
	CodeDBError      = "DB_ERROR"
)

type ProcessError struct {
	Code           string
	ProviderStatus int
	Message        string
}

func (e *ProcessError) Error() string { return e.Message }

// ImagePayload là ảnh client gửi lên (base64 + MIME type)
type ImagePayload struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

type ProcessRequest struct {
	NoteID              string         `json:"noteId"`
	Content             string         `json:"content"`
	Images              []ImagePayload `json:"images"`
	EnhanceWithInternet bool           `json:"enhanceWithInternet"`
}

type ProcessResult struct {
	Note                 *models.Note
	EnhancedWithInternet bool
	ResearchOutcomes     []TopicOutcome
}

// StudyMaterials là shape JSON bắt buộc của response synthesis
type StudyMaterials struct {
	Summary    string                 `json:"summary"`
	KeyPoints  []string               `json:"keyPoints"`
	Flashcards []models.FlashcardPair `json:"flashcards"`
	QA         []models.QAPair        `json:"qa"`
}

// NoteStore là cổng persistence của pipeline. Chỉ hai thao tác:
// chuyển status và ghi kết quả hoàn chỉnh (một lần ghi duy nhất —
// không bao giờ ghi tài liệu sinh ra khi pipeline chưa thành công trọn vẹn).
type NoteStore interface {
	SetStatus(ctx context.Context, noteID uuid.UUID, status models.ProcessingStatus) error
	Complete(ctx context.Context, noteID uuid.UUID, materials StudyMaterials, enhanced bool) (*models.Note, error)
}

type GormNoteStore struct {
	DB *gorm.DB
}

func (s *GormNoteStore) SetStatus(ctx context.Context, noteID uuid.UUID, status models.ProcessingStatus) error {
	return s.DB.WithContext(ctx).Model(&models.Note{}).
		Where("id = ?", noteID).
		Update("processing_status", status).Error
}

func (s *GormNoteStore) Complete(ctx context.Context, noteID uuid.UUID, m StudyMaterials, enhanced bool) (*models.Note, error) {
	updates := map[string]interface{}{
		"processing_status":      models.StatusCompleted,
		"summary":                m.Summary,
		"key_points":             m.KeyPoints,
		"generated_flashcards":   m.Flashcards,
		"generated_qa":           m.QA,
		"enhanced_with_internet": enhanced,
	}
	if err := s.DB.WithContext(ctx).Model(&models.Note{}).
		Where("id = ?", noteID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	var note models.Note
	if err := s.DB.WithContext(ctx).First(&note, "id = ?", noteID).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

// NoteProcessor điều phối pipeline xử lý ghi chú:
// pending -> processing -> (research) -> synthesis (có fallback) -> completed/error
type NoteProcessor struct {
	cfg        config.AIConfig
	gen        ContentGenerator
	store      NoteStore
	researcher *Researcher // nil nếu không cấu hình search
}

func NewNoteProcessor(cfg config.AIConfig, gen ContentGenerator, store NoteStore, researcher *Researcher) *NoteProcessor {
	return &NoteProcessor{cfg: cfg, gen: gen, store: store, researcher: researcher}
}

// Process chạy trọn pipeline cho một ghi chú. Mọi lỗi fatal đều set
// status = error trước khi trả về — không được để note kẹt ở processing.
func (p *NoteProcessor) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, *ProcessError) {
	// Validate trước, chưa đụng tới provider nào
	noteID, err := uuid.Parse(req.NoteID)
	if err != nil {
		return nil, &ProcessError{Code: CodeInvalidInput, Message: "noteId không hợp lệ"}
	}
	if req.Content == "" && len(req.Images) == 0 {
		return nil, &ProcessError{Code: CodeInvalidInput, Message: "Cần có content hoặc ít nhất một ảnh"}
	}

	images := make([]InlineImage, 0, len(req.Images))
	for _, img := range req.Images {
		data, err := base64.StdEncoding.DecodeString(img.Data)
		if err != nil {
			return nil, &ProcessError{Code: CodeInvalidInput, Message: "Ảnh không phải base64 hợp lệ"}
		}
		images = append(images, InlineImage{Data: data, MIMEType: img.MimeType})
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.PipelineTimeout)
	defer cancel()

	if err := p.store.SetStatus(ctx, noteID, models.StatusProcessing); err != nil {
		return nil, &ProcessError{Code: CodeDBError, Message: "Không cập nhật được trạng thái note"}
	}

	// Bước 1: research enrichment (best-effort, lỗi chỉ log)
	var additionalContext string
	var outcomes []TopicOutcome
	if req.EnhanceWithInternet && req.Content != "" && p.researcher != nil {
		log.Println("Enhancing with internet research...")
		additionalContext, outcomes = p.researcher.Enrich(ctx, req.Content)
	}

	// Bước 2: synthesis qua chuỗi fallback
	log.Println("Generating study materials...")
	genReq := GenerateRequest{
		Prompt:          buildStudyPrompt(req.Content, additionalContext),
		Images:          images,
		Temperature:     0.7,
		MaxOutputTokens: 4000,
	}

	text, chainErr := runFallbackChain(ctx, p.cfg, p.gen, genReq)
	if chainErr != nil {
		p.markError(noteID)
		var ce *ChainError
		if errors.As(chainErr, &ce) {
			code := CodeGeminiError
			if ce.QuotaShaped {
				code = CodeGeminiQuota
			}
			status := ProviderStatus(ce.LastErr)
			if status == 0 {
				status = ProviderStatus(ce.FirstErr)
			}
			return nil, &ProcessError{Code: code, ProviderStatus: status, Message: ce.Error()}
		}
		return nil, &ProcessError{Code: CodeGeminiError, Message: chainErr.Error()}
	}

	// Bước 3: parse + validate shape
	materials, perr := parseStudyMaterials(text)
	if perr != nil {
		log.Println("Parse study materials thất bại:", perr)
		p.markError(noteID)
		return nil, &ProcessError{Code: CodeParseError, Message: "Failed to parse study materials from response"}
	}

	// Bước 4: ghi kết quả — một lần ghi duy nhất
	enhanced := req.EnhanceWithInternet && additionalContext != ""
	note, err := p.store.Complete(ctx, noteID, *materials, enhanced)
	if err != nil {
		p.markError(noteID)
		return nil, &ProcessError{Code: CodeDBError, Message: "Không lưu được tài liệu học tập"}
	}

	log.Println("Successfully processed note:", noteID)
	return &ProcessResult{Note: note, EnhancedWithInternet: enhanced, ResearchOutcomes: outcomes}, nil
}

// markError ghi status = error. Dùng context mới vì context pipeline
// có thể đã hết hạn — lần ghi này không được phép bị kéo chết theo.
func (p *NoteProcessor) markError(noteID uuid.UUID) {
	if err := p.store.SetStatus(context.Background(), noteID, models.StatusError); err != nil {
		log.Println("Không set được status error cho note", noteID, ":", err)
	}
}

func buildStudyPrompt(content, additionalContext string) string {
	prompt := `You are an expert educator creating comprehensive study materials. Analyze the provided text notes and any images to create:
1. A clear, structured summary (include information from both text and images)
2. Key points (5-8 bullet points covering content from both sources)
3. Flashcards (8-12 cards with front/back, incorporating visual and text content)
4. Q&A pairs (6-10 questions with detailed answers based on all provided content)

Format your response as JSON with this structure:
{
  "summary": "detailed summary text",
  "keyPoints": ["point 1", "point 2", ...],
  "flashcards": [{"front": "question", "back": "answer"}, ...],
  "qa": [{"question": "question text", "answer": "detailed answer"}, ...]
}

Make the content educational, engaging, and comprehensive. If images are provided, analyze them and incorporate their content into the study materials.

`
	if content != "" {
		prompt += fmt.Sprintf("Original Notes:\n%s", content)
	} else {
		prompt += "No text notes provided - analyze the images only."
	}
	if additionalContext != "" {
		prompt += fmt.Sprintf("\n\nAdditional Research Context:%s", additionalContext)
	}
	return prompt
}

// parseStudyMaterials cắt JSON khỏi text và kiểm tra đủ bốn trường.
// Thiếu trường nào cũng là lỗi synthesis — không chấp nhận kết quả dở dang.
func parseStudyMaterials(text string) (*StudyMaterials, error) {
	jsonText, err := utils.ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var m StudyMaterials
	if err := json.Unmarshal([]byte(jsonText), &m); err != nil {
		return nil, err
	}

	if m.Summary == "" || len(m.KeyPoints) == 0 || len(m.Flashcards) == 0 || len(m.QA) == 0 {
		return nil, errors.New("response thiếu trường bắt buộc (summary/keyPoints/flashcards/qa)")
	}
	return &m, nil
}
