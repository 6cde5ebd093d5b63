package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// InlineImage là ảnh gửi kèm prompt (payload đã decode + MIME type)
type InlineImage struct {
	Data     []byte
	MIMEType string
}

type GenerateRequest struct {
	Prompt          string
	Images          []InlineImage
	Temperature     float32
	MaxOutputTokens int32
}

// ContentGenerator trừu tượng hoá lời gọi Gemini để pipeline test được
// mà không gọi mạng. Key truyền theo từng call vì chuỗi fallback đổi key.
type ContentGenerator interface {
	Generate(ctx context.Context, apiKey string, model string, req GenerateRequest) (string, error)
}

type GeminiGenerator struct{}

// Generate gọi Gemini với key/model chỉ định và trả text sinh ra.
// Tạo client theo từng call: client genai gắn chặt với một API key,
// còn chuỗi fallback cần đổi key giữa các lần thử.
func (GeminiGenerator) Generate(ctx context.Context, apiKey string, model string, req GenerateRequest) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("không thể tạo Gemini client: %w", err)
	}
	defer client.Close()

	m := client.GenerativeModel(model)
	if req.Temperature > 0 {
		m.SetTemperature(req.Temperature)
	}
	if req.MaxOutputTokens > 0 {
		m.SetMaxOutputTokens(req.MaxOutputTokens)
	}

	parts := []genai.Part{genai.Text(req.Prompt)}
	for _, img := range req.Images {
		parts = append(parts, genai.Blob{MIMEType: img.MIMEType, Data: img.Data})
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini không trả kết quả hợp lệ")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("gemini không trả text nào")
	}
	return sb.String(), nil
}

var quotaPattern = regexp.MustCompile(`(?i)quota|insufficient|exceed|rate`)

// IsQuotaError nhận diện lỗi dạng quota/rate-limit: HTTP 429 hoặc message
// chứa từ khoá quota. Chỉ loại lỗi này mới được phép kích hoạt fallback.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 {
			return true
		}
		return quotaPattern.MatchString(apiErr.Message)
	}
	return quotaPattern.MatchString(err.Error())
}

// ProviderStatus lấy HTTP status từ lỗi provider (0 nếu không xác định)
func ProviderStatus(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
