package utils

import (
	"errors"
	"strings"
)

// ExtractJSON cắt phần JSON object ra khỏi text trả về từ LLM.
// Model hay bọc JSON trong code fence hoặc kèm văn xuôi xung quanh.
// Thứ tự thử: code fence ```json ... ``` -> lát cắt từ '{' đầu tiên
// đến '}' cuối cùng. Không parse ở đây, chỉ cắt chuỗi; việc parse và
// kiểm tra shape thuộc về caller.
func ExtractJSON(text string) (string, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return "", errors.New("response rỗng")
	}

	if fenced, ok := extractFenced(s); ok {
		s = fenced
	}

	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first == -1 || last == -1 || last < first {
		return "", errors.New("không tìm thấy JSON object trong response")
	}
	return s[first : last+1], nil
}

func extractFenced(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start == -1 {
		return "", false
	}
	rest := s[start+3:]
	// bỏ nhãn ngôn ngữ ("json", "JSON", ...) ngay sau fence
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		label := strings.TrimSpace(rest[:nl])
		if label == "" || strings.EqualFold(label, "json") {
			rest = rest[nl+1:]
		}
	}
	end := strings.Index(rest, "```")
	if end == -1 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}
