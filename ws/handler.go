package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/LonelyOmen/retrolearn/config"
	"github.com/LonelyOmen/retrolearn/models"
	"github.com/LonelyOmen/retrolearn/services"
	"github.com/LonelyOmen/retrolearn/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS allow-all theo yêu cầu deploy
	},
}

// Notify được set từ main; nil thì bỏ qua push
var Notify *services.Notifier

// gửi message dạng JSON qua WebSocket
func sendJSON(conn *websocket.Conn, data interface{}) {
	msg, err := json.Marshal(data)
	if err != nil {
		log.Println("Lỗi JSON marshal:", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		log.Println("Lỗi gửi message:", err)
	}
}

type inboundChat struct {
	Message string `json:"message"`
}

type outboundChat struct {
	Type    string             `json:"type"`
	Message models.RoomMessage `json:"message"`
}

// WebSocket chat theo phòng: tin nhắn gửi lên được lưu DB, phát lại cho
// cả phòng và đẩy push best-effort qua NotificationAPI.
func HandleRoomWebSocket(c *gin.Context) {
	roomID := c.Param("id")
	token := c.Query("token")

	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Thiếu token"})
		return
	}
	claims, err := utils.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token không hợp lệ hoặc hết hạn"})
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	// Chỉ thành viên phòng mới được kết nối
	var member models.RoomMember
	if err := config.DB.First(&member, "room_id = ? AND user_id = ?", roomID, userID).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không phải thành viên phòng này"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade thất bại:", err)
		return
	}

	log.Printf("Room WS connected: roomID=%s, userID=%s\n", roomID, userID)
	H.Register(roomID, conn)
	defer H.Unregister(roomID, conn)

	sendJSON(conn, gin.H{"type": "connected", "message": "Connected to room " + roomID})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var in inboundChat
		if err := json.Unmarshal(raw, &in); err != nil || strings.TrimSpace(in.Message) == "" {
			continue
		}

		roomUUID, err := uuid.Parse(roomID)
		if err != nil {
			continue
		}

		msg := models.RoomMessage{
			RoomID:  roomUUID,
			UserID:  userID,
			Message: strings.TrimSpace(in.Message),
		}
		if err := config.DB.Create(&msg).Error; err != nil {
			log.Println("Không lưu được tin nhắn:", err)
			continue
		}
		config.DB.Preload("User").First(&msg, "id = ?", msg.ID)

		BroadcastRoomMessage(roomID, outboundChat{Type: "room_message", Message: msg})

		if Notify != nil {
			go func(roomID, userID, text string) {
				ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				if err := Notify.SendRoomMessage(ctx, roomID, userID, text); err != nil {
					log.Println("Push NotificationAPI lỗi:", err)
				}
			}(roomID, userID.String(), msg.Message)
		}
	}

	log.Printf("Room WS disconnected: roomID=%s, userID=%s\n", roomID, userID)
}

// WebSocket kênh trạng thái chung (tiến trình xử lý ghi chú)
func HandleStatusWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Thiếu token"})
		return
	}
	claims, err := utils.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token không hợp lệ hoặc hết hạn"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade thất bại:", err)
		return
	}

	log.Printf("Status WS connected: userID=%s\n", claims.UserID)
	H.RegisterGlobal(conn)
	defer H.UnregisterGlobal(conn)

	sendJSON(conn, gin.H{"type": "connected", "message": "Connected to status WebSocket"})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	log.Printf("Status WS disconnected: userID=%s\n", claims.UserID)
}
