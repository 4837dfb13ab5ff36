package domain

import "time"

// Join request statuses. Pending is the only non-terminal state: a request
// that reached Approved or Rejected never transitions again.
const (
	JoinStatusPending  = "pending"
	JoinStatusApproved = "approved"
	JoinStatusRejected = "rejected"
)

// JoinRequest is a pending ask from a non-host connection to enter a room,
// subject to host approval. The id is generated by the coordinator (UUID)
// so that durable and registry-only requests share one id space. RoomID
// holds the durable room id when one exists, otherwise the room code
// (one-time-link placeholder rooms).
type JoinRequest struct {
	ID            string    `gorm:"primaryKey;size:64" json:"requestId"`
	RoomID        string    `gorm:"size:64;index;not null" json:"roomId"`
	RequesterID   string    `gorm:"size:64;not null" json:"requesterId"`
	RequesterName string    `gorm:"size:191;not null" json:"requesterName"`
	Status        string    `gorm:"size:16;not null;default:pending" json:"status"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Terminal reports whether the request reached a terminal status.
func (jr *JoinRequest) Terminal() bool {
	return jr.Status == JoinStatusApproved || jr.Status == JoinStatusRejected
}
