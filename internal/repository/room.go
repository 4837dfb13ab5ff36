// Package repository defines the Durable Store Adapter: every operation
// may fail independently of registry state, and every caller owns an
// explicit fallback or error-emission path.
package repository

import (
	"context"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/domain"
)

// RoomRepository stores and retrieves rooms and their participant sets.
type RoomRepository interface {
	// Create persists a new room. Returns ErrDuplicateEntry when the code
	// is already taken by an active room.
	Create(ctx context.Context, room *domain.Room) error

	// FindByCode returns the active room stored under the normalized code,
	// participants included. Returns ErrRoomNotFound when absent.
	FindByCode(ctx context.Context, code string) (*domain.Room, error)

	// AddParticipant appends a participant to the room's durable record,
	// deduplicating by connection id.
	AddParticipant(ctx context.Context, roomID uint, p domain.Participant) error

	// RemoveParticipant removes the participant with connID from the room
	// identified by its normalized code. Missing rows are not an error.
	RemoveParticipant(ctx context.Context, code, connID string) error

	// Deactivate clears the active flag on a room when it has no
	// participants left. Used by the background sweep, not the core.
	Deactivate(ctx context.Context, roomID uint) error

	// DeactivateStale clears the active flag on every empty room whose
	// last update is older than the cutoff. Returns the number affected.
	DeactivateStale(ctx context.Context, cutoffSeconds int64) (int64, error)
}
