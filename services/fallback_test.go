package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

var errQuota = &googleapi.Error{Code: 429, Message: "Resource has been exhausted (e.g. check quota)."}

func TestFallbackChainSuccessFirstTry(t *testing.T) {
	gen := &fakeGen{respond: func(call genCall) (string, error) {
		return "ok", nil
	}}

	text, err := runFallbackChain(context.Background(), testCfg(), gen, GenerateRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 1, gen.callCount())
	assert.Equal(t, genCall{APIKey: "key-primary", Model: "gemini-1.5-pro", Prompt: "p"}, gen.calls[0])
}

// Quota dai dẳng: phải leo thang đủ 4 nấc theo đúng thứ tự, các nấc
// fallback model dùng key phụ vì lỗi đầu là dạng quota.
func TestFallbackChainEscalationOrderOnPersistentQuota(t *testing.T) {
	gen := &fakeGen{respond: func(call genCall) (string, error) {
		return "", errQuota
	}}

	_, err := runFallbackChain(context.Background(), testCfg(), gen, GenerateRequest{Prompt: "p"})
	require.Error(t, err)

	var ce *ChainError
	require.ErrorAs(t, err, &ce)
	assert.True(t, ce.QuotaShaped)

	require.Equal(t, 4, gen.callCount())
	assert.Equal(t, genCall{"key-primary", "gemini-1.5-pro", "p"}, gen.calls[0])
	assert.Equal(t, genCall{"key-secondary", "gemini-1.5-pro", "p"}, gen.calls[1])
	assert.Equal(t, genCall{"key-secondary", "gemini-1.5-flash", "p"}, gen.calls[2])
	assert.Equal(t, genCall{"key-secondary", "gemini-1.5-flash-8b", "p"}, gen.calls[3])
}

// Lỗi không phải quota (vd 400) phải dừng ngay, không được thử tiếp
func TestFallbackChainNonQuotaStopsImmediately(t *testing.T) {
	badReq := &googleapi.Error{Code: 400, Message: "invalid argument"}
	gen := &fakeGen{respond: func(call genCall) (string, error) {
		return "", badReq
	}}

	_, err := runFallbackChain(context.Background(), testCfg(), gen, GenerateRequest{Prompt: "p"})
	require.Error(t, err)

	var ce *ChainError
	require.ErrorAs(t, err, &ce)
	assert.False(t, ce.QuotaShaped)
	assert.Equal(t, 1, gen.callCount())
}

func TestFallbackChainRecoversOnSecondaryKey(t *testing.T) {
	gen := &fakeGen{}
	gen.respond = func(call genCall) (string, error) {
		if call.APIKey == "key-primary" {
			return "", errQuota
		}
		return "recovered", nil
	}

	text, err := runFallbackChain(context.Background(), testCfg(), gen, GenerateRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, 2, gen.callCount())
	assert.Equal(t, "key-secondary", gen.calls[1].APIKey)
}

// Không có key phụ: fallback model vẫn chạy bằng key chính
func TestFallbackChainWithoutSecondaryKey(t *testing.T) {
	cfg := testCfg()
	cfg.GeminiAPIKeySecondary = ""

	gen := &fakeGen{respond: func(call genCall) (string, error) {
		return "", errQuota
	}}

	_, err := runFallbackChain(context.Background(), cfg, gen, GenerateRequest{Prompt: "p"})
	require.Error(t, err)

	require.Equal(t, 3, gen.callCount())
	assert.Equal(t, genCall{"key-primary", "gemini-1.5-pro", "p"}, gen.calls[0])
	assert.Equal(t, genCall{"key-primary", "gemini-1.5-flash", "p"}, gen.calls[1])
	assert.Equal(t, genCall{"key-primary", "gemini-1.5-flash-8b", "p"}, gen.calls[2])
}

func TestIsQuotaError(t *testing.T) {
	assert.True(t, IsQuotaError(errQuota))
	assert.True(t, IsQuotaError(errors.New("rate limit hit")))
	assert.True(t, IsQuotaError(errors.New("Quota exceeded for requests")))
	assert.False(t, IsQuotaError(errors.New("connection refused")))
	assert.False(t, IsQuotaError(nil))
	assert.False(t, IsQuotaError(&googleapi.Error{Code: 400, Message: "bad request"}))
}

func TestProviderStatus(t *testing.T) {
	assert.Equal(t, 429, ProviderStatus(errQuota))
	assert.Equal(t, 0, ProviderStatus(errors.New("plain error")))
}
