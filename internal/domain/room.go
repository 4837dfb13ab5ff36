// Package domain defines the persistent and transient entities of the
// chat/call signaling core.
package domain

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"
)

// Room is a named, coded chat/call session with a host and participant set.
// The code uniquely identifies at most one active room at a time and is
// always stored uppercase.
type Room struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	Name         string        `gorm:"size:191;not null" json:"name"`
	Code         string        `gorm:"uniqueIndex;size:32;not null" json:"code"`
	HostConnID   string        `gorm:"size:64;not null" json:"hostId"`
	HostName     string        `gorm:"size:191;not null" json:"hostName"`
	Participants []Participant `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"participants"`
	IsActive     bool          `gorm:"default:true;index" json:"isActive"`
	CreatedAt    time.Time     `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time     `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Participant is a room member, keyed by its connection id. It exists only
// while the connection is a member of the room.
type Participant struct {
	ID       uint      `gorm:"primaryKey" json:"-"`
	RoomID   uint      `gorm:"index;not null" json:"-"`
	ConnID   string    `gorm:"size:64;not null;index" json:"socketId"`
	Name     string    `gorm:"size:191;not null" json:"name"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joinedAt"`
}

// codeAlphabet omits 0/O and 1/I so codes survive being read aloud.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateCode returns a random room code of the given length.
func GenerateCode(length int) string {
	if length <= 0 {
		length = 6
	}
	b := make([]byte, length)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken.
			b[i] = codeAlphabet[int(time.Now().UnixNano())%len(codeAlphabet)]
			continue
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b)
}

// NormalizeCode uppercases a room code. Every lookup and every stored code
// goes through this so codes compare by exact string match.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// HasParticipant reports whether connID is already in the participant set.
func (r *Room) HasParticipant(connID string) bool {
	for _, p := range r.Participants {
		if p.ConnID == connID {
			return true
		}
	}
	return false
}

// RemoveParticipant drops connID from the participant set, if present.
func (r *Room) RemoveParticipant(connID string) {
	kept := r.Participants[:0]
	for _, p := range r.Participants {
		if p.ConnID != connID {
			kept = append(kept, p)
		}
	}
	r.Participants = kept
}
