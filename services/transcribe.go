package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/LonelyOmen/retrolearn/config"
)

// ErrTranscribeQuota: hết hạn mức Whisper trong ngày
var ErrTranscribeQuota = errors.New("Daily voice limit reached — please try again tomorrow.")

// Transcriber chuyển giọng nói thành text qua Cloudflare Workers AI
// (model @cf/openai/whisper).
type Transcriber struct {
	cfg        config.AIConfig
	HTTPClient *http.Client
}

func NewTranscriber(cfg config.AIConfig) *Transcriber {
	return &Transcriber{
		cfg:        cfg,
		HTTPClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

type whisperResponse struct {
	Result struct {
		Text string `json:"text"`
	} `json:"result"`
	Success bool `json:"success"`
}

func (t *Transcriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if t.cfg.CloudflareAccountID == "" || t.cfg.CloudflareAPIToken == "" {
		return "", errors.New("Cloudflare credentials not configured")
	}

	// Workers AI nhận audio dưới dạng mảng byte trong JSON
	audioArray := make([]int, len(audio))
	for i, b := range audio {
		audioArray[i] = int(b)
	}
	body, err := json.Marshal(map[string]interface{}{"audio": audioArray})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("https://api.cloudflare.com/client/v4/accounts/%s/ai/run/@cf/openai/whisper", t.cfg.CloudflareAccountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+t.cfg.CloudflareAPIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errText, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusTooManyRequests ||
			strings.Contains(string(errText), "quota") ||
			strings.Contains(string(errText), "limit") {
			return "", ErrTranscribeQuota
		}
		return "", fmt.Errorf("Cloudflare API error: %d %s", resp.StatusCode, string(errText))
	}

	var out whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("không parse được response Whisper: %w", err)
	}
	return out.Result.Text, nil
}
