package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkRoom: phòng học nhóm, tham gia bằng invite code
type WorkRoom struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"size:150;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	InviteCode  string    `gorm:"size:60;uniqueIndex;not null" json:"invite_code"`

	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	Creator   User      `gorm:"foreignKey:CreatedBy;references:ID;constraint:OnDelete:CASCADE;" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Members []RoomMember `gorm:"foreignKey:RoomID" json:"members,omitempty"`
}

type RoomMember struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RoomID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_room_user" json:"room_id"`
	Room   WorkRoom  `gorm:"foreignKey:RoomID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_room_user" json:"user_id"`
	User   User      `gorm:"constraint:OnDelete:CASCADE;" json:"user"`

	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

type RoomMessage struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RoomID uuid.UUID `gorm:"type:uuid;not null;index" json:"room_id"`
	Room   WorkRoom  `gorm:"foreignKey:RoomID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
	UserID uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	User   User      `gorm:"constraint:OnDelete:CASCADE;" json:"user"`

	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// RoomSharedNote: ghi chú được chia sẻ vào phòng
type RoomSharedNote struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RoomID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_room_note" json:"room_id"`
	Room   WorkRoom  `gorm:"foreignKey:RoomID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
	NoteID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_room_note" json:"note_id"`
	Note   Note      `gorm:"foreignKey:NoteID;references:ID;constraint:OnDelete:CASCADE;" json:"note"`

	SharedBy  uuid.UUID `gorm:"type:uuid;not null" json:"shared_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
