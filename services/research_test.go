package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrichBuildsContextFromAnswers(t *testing.T) {
	gen := &fakeGen{respond: func(call genCall) (string, error) {
		return "Photosynthesis\nCalvin cycle\n", nil
	}}
	search := &fakeSearcher{respond: func(query string) (string, error) {
		return "Answer about " + query, nil
	}}

	r := NewResearcher(testCfg(), gen, search)
	ctx, outcomes := r.Enrich(context.Background(), "bài ghi chú sinh học")

	require.Len(t, outcomes, 2)
	assert.Contains(t, ctx, `## Research on "Photosynthesis":`)
	assert.Contains(t, ctx, "Answer about Photosynthesis")
	assert.Contains(t, ctx, `## Research on "Calvin cycle":`)
}

// Một topic fail không được chặn topic còn lại
func TestEnrichOneTopicFailureDoesNotBlockOthers(t *testing.T) {
	gen := &fakeGen{respond: func(call genCall) (string, error) {
		return "TopicA\nTopicB", nil
	}}
	search := &fakeSearcher{respond: func(query string) (string, error) {
		if query == "TopicA" {
			return "", errors.New("tavily timeout")
		}
		return "B answer", nil
	}}

	r := NewResearcher(testCfg(), gen, search)
	ctx, outcomes := r.Enrich(context.Background(), "nội dung")

	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].Skipped)
	assert.Equal(t, "tavily timeout", outcomes[0].Reason)
	assert.False(t, outcomes[1].Skipped)

	assert.NotContains(t, ctx, "TopicA")
	assert.Contains(t, ctx, `## Research on "TopicB":`)
}

// Trích topic lỗi thì bỏ qua enrich hoàn toàn, không gọi search
func TestEnrichTopicExtractionFailure(t *testing.T) {
	gen := &fakeGen{respond: func(call genCall) (string, error) {
		return "", errors.New("llm down")
	}}
	searchCalled := false
	search := &fakeSearcher{respond: func(query string) (string, error) {
		searchCalled = true
		return "", nil
	}}

	r := NewResearcher(testCfg(), gen, search)
	ctx, outcomes := r.Enrich(context.Background(), "nội dung")

	assert.Empty(t, ctx)
	assert.Nil(t, outcomes)
	assert.False(t, searchCalled)
}

// Tối đa 2 topic dù model trả nhiều hơn
func TestEnrichCapsTopics(t *testing.T) {
	gen := &fakeGen{respond: func(call genCall) (string, error) {
		return "One\nTwo\nThree\nFour", nil
	}}
	search := &fakeSearcher{respond: func(query string) (string, error) {
		return "ans", nil
	}}

	r := NewResearcher(testCfg(), gen, search)
	_, outcomes := r.Enrich(context.Background(), "nội dung")
	assert.Len(t, outcomes, 2)
}

// Answer rỗng = topic skipped, không chèn block rỗng vào context
func TestEnrichEmptyAnswerSkipped(t *testing.T) {
	gen := &fakeGen{respond: func(call genCall) (string, error) {
		return "Solo", nil
	}}
	search := &fakeSearcher{respond: func(query string) (string, error) {
		return "   ", nil
	}}

	r := NewResearcher(testCfg(), gen, search)
	ctx, outcomes := r.Enrich(context.Background(), "nội dung")

	assert.Empty(t, strings.TrimSpace(ctx))
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Skipped)
}
