package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONBare(t *testing.T) {
	out, err := ExtractJSON(`{"summary": "ok"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"summary": "ok"}`, out)
}

func TestExtractJSONFenced(t *testing.T) {
	input := "Here is the result:\n```json\n{\"summary\": \"ok\"}\n```\nHope it helps!"
	out, err := ExtractJSON(input)
	require.NoError(t, err)
	assert.Equal(t, `{"summary": "ok"}`, out)
}

func TestExtractJSONFencedNoLabel(t *testing.T) {
	input := "```\n{\"a\": 1}\n```"
	out, err := ExtractJSON(input)
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, out)
}

func TestExtractJSONSurroundedByProse(t *testing.T) {
	input := `Sure! The JSON you asked for is {"a": {"b": 2}} as requested.`
	out, err := ExtractJSON(input)
	require.NoError(t, err)
	assert.Equal(t, `{"a": {"b": 2}}`, out)
}

// Cắt một lần hay cắt nhiều lần phải ra cùng kết quả
func TestExtractJSONIdempotent(t *testing.T) {
	input := "```json\n{\"x\": [1, 2, 3]}\n```"
	once, err := ExtractJSON(input)
	require.NoError(t, err)

	twice, err := ExtractJSON(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestExtractJSONNoObject(t *testing.T) {
	_, err := ExtractJSON("no json here at all")
	assert.Error(t, err)

	_, err = ExtractJSON("")
	assert.Error(t, err)

	_, err = ExtractJSON("} backwards {")
	assert.Error(t, err)
}
