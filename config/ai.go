package config

import (
	"log"
	"os"
	"time"
)

// AIConfig gom toàn bộ cấu hình nhà cung cấp AI/search, đọc một lần khi
// khởi động và bất biến sau đó. Không đọc env rải rác trong services.
type AIConfig struct {
	GeminiAPIKey          string
	GeminiAPIKeySecondary string // key dự phòng khi key chính dính quota

	// Chuỗi model theo thứ tự ưu tiên của pipeline ghi chú
	PrimaryModel   string // chất lượng cao nhất
	FallbackModels []string // rẻ hơn, thử lần lượt khi hết quota

	// Model cho các tác vụ nhẹ (OCR ảnh, trích topic, sinh quiz)
	LightModel string

	TavilyAPIKey string

	CloudflareAccountID string
	CloudflareAPIToken  string

	NotificationAPISecret string

	GoogleCredentialsFile string // cho Text-to-Speech

	// Giới hạn thời gian cứng, tránh note kẹt ở trạng thái processing
	LLMCallTimeout    time.Duration
	SearchCallTimeout time.Duration
	PipelineTimeout   time.Duration
}

func LoadAI() AIConfig {
	cfg := AIConfig{
		GeminiAPIKey:          os.Getenv("GEMINI_API_KEY"),
		GeminiAPIKeySecondary: os.Getenv("GEMINI_API_KEY_SECONDARY"),
		PrimaryModel:          "gemini-1.5-pro",
		FallbackModels:        []string{"gemini-1.5-flash", "gemini-1.5-flash-8b"},
		LightModel:            "gemini-1.5-flash",
		TavilyAPIKey:          os.Getenv("TAVILY_API_KEY"),
		CloudflareAccountID:   os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
		CloudflareAPIToken:    os.Getenv("CLOUDFLARE_API_TOKEN"),
		NotificationAPISecret: os.Getenv("NOTIFICATIONAPI_SECRET_KEY"),
		GoogleCredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_JSON"),
		LLMCallTimeout:        90 * time.Second,
		SearchCallTimeout:     30 * time.Second,
		PipelineTimeout:       10 * time.Minute,
	}

	if m := os.Getenv("GEMINI_PRIMARY_MODEL"); m != "" {
		cfg.PrimaryModel = m
	}

	if cfg.GeminiAPIKey == "" {
		log.Println("Cảnh báo: GEMINI_API_KEY chưa cấu hình, các tính năng AI sẽ lỗi")
	}
	if cfg.TavilyAPIKey == "" {
		log.Println("Cảnh báo: TAVILY_API_KEY chưa cấu hình, bỏ qua bước research")
	}

	return cfg
}
