package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Lấy user_id an toàn từ context (middleware set kiểu string)
func currentUserID(c *gin.Context) (uuid.UUID, error) {
	v, ok := c.Get("user_id")
	if !ok {
		return uuid.Nil, errors.New("không tìm thấy user_id")
	}

	switch val := v.(type) {
	case string:
		parsed, err := uuid.Parse(val)
		if err != nil {
			return uuid.Nil, errors.New("user_id không hợp lệ")
		}
		return parsed, nil
	case uuid.UUID:
		return val, nil
	default:
		return uuid.Nil, errors.New("kiểu user_id không hợp lệ")
	}
}
