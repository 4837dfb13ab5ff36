package domain

import "time"

// Call types as sent on the wire.
const (
	CallTypeVideo = "video"
	CallTypeVoice = "voice"
)

// CallSession is the single in-flight call tracked per room code. It lives
// only in the session registry; the durable record is the CallLog.
type CallSession struct {
	RoomCode string
	CallID   string
	CallerID string
	CallType string
}

// CallLog is the durable record of a call: created at call start, appended
// to as participants accept, closed when the call ends.
type CallLog struct {
	ID           uint              `gorm:"primaryKey" json:"-"`
	RoomID       string            `gorm:"size:64;index;not null" json:"roomId"`
	CallerID     string            `gorm:"size:64;not null" json:"callerId"`
	CallerName   string            `gorm:"size:191;not null" json:"callerName"`
	CallType     string            `gorm:"size:16;not null" json:"callType"`
	Participants []CallParticipant `gorm:"foreignKey:CallLogID;constraint:OnDelete:CASCADE" json:"participants"`
	StartedAt    time.Time         `gorm:"autoCreateTime" json:"startedAt"`
	EndedAt      *time.Time        `json:"endedAt,omitempty"`
	// Duration is elapsed whole seconds between StartedAt and EndedAt.
	Duration int64 `gorm:"default:0" json:"duration"`
}

// CallParticipant is one user's span inside a call.
type CallParticipant struct {
	ID        uint       `gorm:"primaryKey" json:"-"`
	CallLogID uint       `gorm:"index;not null" json:"-"`
	UserID    string     `gorm:"size:64;not null" json:"userId"`
	Name      string     `gorm:"size:191;not null" json:"name"`
	JoinedAt  time.Time  `gorm:"autoCreateTime" json:"joinedAt"`
	LeftAt    *time.Time `json:"leftAt,omitempty"`
}
