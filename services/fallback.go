package services

import (
	"context"
	"fmt"
	"log"

	"github.com/LonelyOmen/retrolearn/config"
)

// attempt là một cặp {API key, model} trong chuỗi fallback
type attempt struct {
	APIKey string
	Model  string
	Label  string
}

// ChainError: toàn bộ chuỗi fallback thất bại. Giữ lỗi thật đầu tiên để
// báo cáo, lỗi cuối để lấy message/status mới nhất, và cờ QuotaShaped
// (theo lỗi đầu tiên) để phân biệt GEMINI_QUOTA với GEMINI_ERROR.
type ChainError struct {
	QuotaShaped bool
	FirstErr    error
	LastErr     error
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("Gemini error: %v", e.LastErr)
}

func (e *ChainError) Unwrap() error { return e.FirstErr }

// runFallbackChain thử lần lượt các cặp key/model cho tới khi có kết quả.
// Chính sách (dừng ở lần thành công đầu tiên):
//  1. key chính + model chính
//  2. key phụ + model chính (chỉ khi lỗi đầu là dạng quota và có key phụ)
//  3. các model fallback, dùng key phụ nếu có và lỗi đầu dạng quota
//
// Lỗi không phải dạng quota ở lần đầu thì báo ngay, không leo thang.
// Các lần thử chạy tuần tự, không bao giờ song song — tránh gọi tính phí
// trùng và ghi kết quả trùng.
func runFallbackChain(ctx context.Context, cfg config.AIConfig, gen ContentGenerator, req GenerateRequest) (string, error) {
	try := func(a attempt) (string, error) {
		cctx, cancel := context.WithTimeout(ctx, cfg.LLMCallTimeout)
		defer cancel()
		return gen.Generate(cctx, a.APIKey, a.Model, req)
	}

	primary := attempt{APIKey: cfg.GeminiAPIKey, Model: cfg.PrimaryModel, Label: "primary key + " + cfg.PrimaryModel}
	text, firstErr := try(primary)
	if firstErr == nil {
		return text, nil
	}

	quotaLike := IsQuotaError(firstErr)
	log.Printf("Gemini lỗi ở %s (quotaLike=%v): %v\n", primary.Label, quotaLike, firstErr)
	if !quotaLike {
		return "", &ChainError{QuotaShaped: false, FirstErr: firstErr, LastErr: firstErr}
	}

	lastErr := firstErr
	for _, a := range buildFallbackAttempts(cfg, quotaLike) {
		log.Println("Thử fallback:", a.Label)
		text, err := try(a)
		if err == nil {
			return text, nil
		}
		log.Printf("Fallback %s lỗi: %v\n", a.Label, err)
		lastErr = err
	}

	return "", &ChainError{QuotaShaped: quotaLike, FirstErr: firstErr, LastErr: lastErr}
}

// buildFallbackAttempts dựng danh sách các lần thử còn lại sau khi lần
// đầu thất bại dạng quota, theo đúng thứ tự leo thang.
func buildFallbackAttempts(cfg config.AIConfig, quotaLike bool) []attempt {
	var attempts []attempt

	if cfg.GeminiAPIKeySecondary != "" {
		attempts = append(attempts, attempt{
			APIKey: cfg.GeminiAPIKeySecondary,
			Model:  cfg.PrimaryModel,
			Label:  "secondary key + " + cfg.PrimaryModel,
		})
	}

	fallbackKey := cfg.GeminiAPIKey
	keyLabel := "primary key"
	if quotaLike && cfg.GeminiAPIKeySecondary != "" {
		fallbackKey = cfg.GeminiAPIKeySecondary
		keyLabel = "secondary key"
	}
	for _, model := range cfg.FallbackModels {
		attempts = append(attempts, attempt{
			APIKey: fallbackKey,
			Model:  model,
			Label:  keyLabel + " + " + model,
		})
	}
	return attempts
}
