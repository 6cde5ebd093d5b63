package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Notifier đẩy thông báo tin nhắn phòng học qua NotificationAPI.
// Push là best-effort: lỗi chỉ log phía caller, không chặn chat.
type Notifier struct {
	SecretKey  string
	HTTPClient *http.Client
}

func NewNotifier(secretKey string) *Notifier {
	return &Notifier{
		SecretKey:  secretKey,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SendRoomMessage gửi push "tin nhắn mới" cho kênh của phòng
// (roomId dùng làm định danh kênh phía NotificationAPI).
func (n *Notifier) SendRoomMessage(ctx context.Context, roomID, userID, message string) error {
	if n.SecretKey == "" {
		return nil // chưa cấu hình thì bỏ qua
	}

	payload := map[string]interface{}{
		"notificationId": "room_message",
		"userId":         roomID,
		"payload": map[string]interface{}{
			"message":   message,
			"userId":    userID,
			"roomId":    roomID,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
		"pushNotification": map[string]string{
			"title": "New message",
			"body":  message,
		},
		"inAppNotification": map[string]string{
			"title": "New message",
			"body":  message,
		},
	}

	return n.post(ctx, "https://api.notificationapi.com/v1/notification", payload)
}

// SyncUser đăng ký thành viên phòng với NotificationAPI
func (n *Notifier) SyncUser(ctx context.Context, userID, email, name string) error {
	if n.SecretKey == "" {
		return nil
	}
	return n.post(ctx, "https://api.notificationapi.com/v1/user", map[string]string{
		"userId": userID,
		"email":  email,
		"name":   name,
	})
}

func (n *Notifier) post(ctx context.Context, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+n.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("NotificationAPI trả lỗi: status=%d", resp.StatusCode)
	}
	return nil
}
