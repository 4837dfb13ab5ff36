package domain

import "time"

// Message kinds. System messages are synthesized by the server and are
// never persisted.
const (
	MessageKindText   = "text"
	MessageKindFile   = "file"
	MessageKindSystem = "system"
)

// Message is a chat message in a room. Immutable once created except for
// ReadBy appends; never deleted by the core.
type Message struct {
	ID         uint          `gorm:"primaryKey" json:"-"`
	RoomID     string        `gorm:"size:64;index;not null" json:"roomId"`
	SenderID   string        `gorm:"size:64;not null" json:"senderId"`
	SenderName string        `gorm:"size:191;not null" json:"senderName"`
	Content    string        `gorm:"type:text" json:"content"`
	Kind       string        `gorm:"size:16;not null;default:text" json:"type"`
	FileURL    string        `gorm:"type:text" json:"fileUrl,omitempty"`
	FileName   string        `gorm:"size:255" json:"fileName,omitempty"`
	ReadBy     []ReadReceipt `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"readBy"`
	CreatedAt  time.Time     `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt  time.Time     `gorm:"autoUpdateTime" json:"updatedAt"`
}

// ReadReceipt records that a user has read a message.
type ReadReceipt struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	MessageID uint      `gorm:"index;not null" json:"-"`
	UserID    string    `gorm:"size:64;not null" json:"userId"`
	ReadAt    time.Time `gorm:"autoCreateTime" json:"readAt"`
}
