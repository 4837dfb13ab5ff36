package service

import (
	"time"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/dto"
)

// Notifier delivers outbound events to an audience. The hub implements it.
// Chat-room membership and call membership are independent relations: a
// connection can be in a room's chat group without being in its call group.
type Notifier interface {
	// Broadcast sends to every connection in the room's chat group,
	// including whoever triggered the event.
	Broadcast(roomCode string, event dto.Outbound)

	// BroadcastExcept sends to the room's chat group minus one connection.
	BroadcastExcept(roomCode, exceptConnID string, event dto.Outbound)

	// BroadcastCallExcept sends to the room's call group minus one
	// connection.
	BroadcastCallExcept(roomCode, exceptConnID string, event dto.Outbound)

	// SendTo sends to a single connection. Unknown connection ids are
	// dropped silently; a late-resolving handler whose sender is gone must
	// degrade gracefully.
	SendTo(connID string, event dto.Outbound)
}

// TaskQueue defers housekeeping work to the background worker. A nil
// TaskQueue is valid and simply skips the enqueue.
type TaskQueue interface {
	// EnqueueRoomDeactivation schedules a deactivation check for roomID
	// after delay.
	EnqueueRoomDeactivation(roomID uint, delay time.Duration) error
}
