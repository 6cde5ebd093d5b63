package services

import (
	"context"
	"encoding/base64"
	"errors"
	"log"

	"github.com/LonelyOmen/retrolearn/config"
)

const extractTextPrompt = `Extract all text from this image. Please return only the extracted text content, maintaining the original formatting and structure as much as possible. If there are multiple sections, separate them clearly. If no text is found, return "No text detected in the image."`

// TextExtractor đọc chữ trong ảnh bằng model vision. Một lời gọi duy
// nhất, không retry — lỗi provider trả thẳng cho caller.
type TextExtractor struct {
	cfg config.AIConfig
	gen ContentGenerator
}

func NewTextExtractor(cfg config.AIConfig, gen ContentGenerator) *TextExtractor {
	return &TextExtractor{cfg: cfg, gen: gen}
}

func (e *TextExtractor) Extract(ctx context.Context, imageBase64 string, mimeType string) (string, error) {
	if imageBase64 == "" {
		return "", errors.New("No image provided")
	}

	data, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		return "", errors.New("Ảnh không phải base64 hợp lệ")
	}

	log.Println("Processing image for text extraction...")

	lctx, cancel := context.WithTimeout(ctx, e.cfg.LLMCallTimeout)
	defer cancel()

	text, err := e.gen.Generate(lctx, e.cfg.GeminiAPIKey, e.cfg.LightModel, GenerateRequest{
		Prompt: extractTextPrompt,
		Images: []InlineImage{{Data: data, MIMEType: mimeType}},
	})
	if err != nil {
		return "", err
	}

	log.Println("Text extraction completed successfully")
	return text, nil
}
