package controllers

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/LonelyOmen/retrolearn/config"
	"github.com/LonelyOmen/retrolearn/models"
	"github.com/LonelyOmen/retrolearn/ws"
)

type CreateRoomRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// invite code dạng "ten-phong-x7k2" để dễ đọc khi chia sẻ
func generateInviteCode(name string) string {
	suffix := fmt.Sprintf("%04x", rand.Intn(0x10000))
	return slug.Make(name) + "-" + suffix
}

// Tạo phòng học nhóm, creator tự động là thành viên
func CreateRoom(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room := models.WorkRoom{
		Name:        req.Name,
		Description: req.Description,
		InviteCode:  generateInviteCode(req.Name),
		CreatedBy:   userID,
	}
	if err := config.DB.Create(&room).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo phòng"})
		return
	}

	member := models.RoomMember{RoomID: room.ID, UserID: userID}
	if err := config.DB.Create(&member).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể thêm thành viên"})
		return
	}

	syncMemberForPush(userID)

	c.JSON(http.StatusCreated, gin.H{"room": room})
}

// Đăng ký thành viên với NotificationAPI để nhận push tin nhắn phòng.
// Best-effort: lỗi chỉ log.
func syncMemberForPush(userID uuid.UUID) {
	if ws.Notify == nil {
		return
	}
	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := ws.Notify.SyncUser(ctx, user.ID.String(), user.Email, user.FullName); err != nil {
			log.Println("Sync user với NotificationAPI lỗi:", err)
		}
	}()
}

// Danh sách phòng mà user là thành viên
func GetRooms(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var rooms []models.WorkRoom
	if err := config.DB.
		Joins("JOIN room_members ON room_members.room_id = work_rooms.id").
		Where("room_members.user_id = ?", userID).
		Order("work_rooms.created_at DESC").
		Find(&rooms).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách phòng"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

type JoinRoomRequest struct {
	InviteCode string `json:"invite_code" binding:"required"`
}

// Tham gia phòng bằng invite code
func JoinRoom(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var room models.WorkRoom
	if err := config.DB.First(&room, "invite_code = ?", strings.TrimSpace(req.InviteCode)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invite code không đúng"})
		return
	}

	// Đã là thành viên thì trả về luôn
	var existing models.RoomMember
	if err := config.DB.First(&existing, "room_id = ? AND user_id = ?", room.ID, userID).Error; err == nil {
		c.JSON(http.StatusOK, gin.H{"room": room, "message": "Bạn đã ở trong phòng này"})
		return
	}

	member := models.RoomMember{RoomID: room.ID, UserID: userID}
	if err := config.DB.Create(&member).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tham gia phòng"})
		return
	}

	syncMemberForPush(userID)

	c.JSON(http.StatusOK, gin.H{"room": room, "message": "Đã tham gia phòng"})
}

// kiểm tra user có trong phòng không, dùng chung cho các handler phòng
func requireMembership(c *gin.Context, userID uuid.UUID) (string, bool) {
	roomID := c.Param("id")
	var member models.RoomMember
	if err := config.DB.First(&member, "room_id = ? AND user_id = ?", roomID, userID).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không phải thành viên phòng này"})
		return "", false
	}
	return roomID, true
}

// Lịch sử chat của phòng, mới nhất trước
func GetRoomMessages(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	roomID, ok := requireMembership(c, userID)
	if !ok {
		return
	}

	var messages []models.RoomMessage
	if err := config.DB.Preload("User").
		Where("room_id = ?", roomID).
		Order("created_at DESC").Limit(100).
		Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy tin nhắn"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// Gửi tin nhắn qua REST (cho client không dùng WebSocket); vẫn broadcast
// cho các client WS đang trong phòng và đẩy push best-effort.
func SendRoomMessage(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	roomID, ok := requireMembership(c, userID)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu nội dung tin nhắn"})
		return
	}

	roomUUID, err := uuid.Parse(roomID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room id không hợp lệ"})
		return
	}

	msg := models.RoomMessage{
		RoomID:  roomUUID,
		UserID:  userID,
		Message: strings.TrimSpace(req.Message),
	}
	if err := config.DB.Create(&msg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lưu được tin nhắn"})
		return
	}
	config.DB.Preload("User").First(&msg, "id = ?", msg.ID)

	ws.BroadcastRoomMessage(roomID, gin.H{"type": "room_message", "message": msg})

	if ws.Notify != nil {
		go func(roomID, userID, text string) {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			ws.Notify.SendRoomMessage(ctx, roomID, userID, text)
		}(roomID, userID.String(), msg.Message)
	}

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

type ShareNoteRequest struct {
	NoteID string `json:"note_id" binding:"required"`
}

// Chia sẻ một ghi chú của mình vào phòng
func ShareNoteToRoom(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	roomID, ok := requireMembership(c, userID)
	if !ok {
		return
	}

	var req ShareNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	noteID, err := uuid.Parse(req.NoteID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "note_id không hợp lệ"})
		return
	}

	// Chỉ chia sẻ được ghi chú của chính mình
	var note models.Note
	if err := config.DB.First(&note, "id = ? AND user_id = ?", noteID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy ghi chú"})
		return
	}

	roomUUID, err := uuid.Parse(roomID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room id không hợp lệ"})
		return
	}

	shared := models.RoomSharedNote{
		RoomID:   roomUUID,
		NoteID:   noteID,
		SharedBy: userID,
	}
	if err := config.DB.Create(&shared).Error; err != nil {
		// uniqueIndex idx_room_note: mỗi ghi chú chỉ share một lần vào phòng
		c.JSON(http.StatusConflict, gin.H{"error": "Ghi chú đã được chia sẻ vào phòng này"})
		return
	}

	ws.BroadcastRoomMessage(roomID, gin.H{"type": "note_shared", "note_id": noteID, "shared_by": userID})

	c.JSON(http.StatusCreated, gin.H{"shared": shared})
}

// Danh sách ghi chú đã chia sẻ trong phòng
func GetRoomSharedNotes(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	roomID, ok := requireMembership(c, userID)
	if !ok {
		return
	}

	var shared []models.RoomSharedNote
	if err := config.DB.Preload("Note").
		Where("room_id = ?", roomID).
		Order("created_at DESC").
		Find(&shared).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy ghi chú đã chia sẻ"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"shared_notes": shared})
}
