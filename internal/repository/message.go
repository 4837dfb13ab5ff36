package repository

import (
	"context"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/domain"
)

// MessageRepository stores chat messages and read receipts.
type MessageRepository interface {
	// Create persists msg and fills in its id and timestamps.
	Create(ctx context.Context, msg *domain.Message) error

	// ListByRoom returns up to limit messages for roomID, oldest first,
	// read receipts included.
	ListByRoom(ctx context.Context, roomID string, limit int) ([]domain.Message, error)

	// AppendRead adds a read receipt to the message. Returns
	// ErrMessageNotFound when the message id does not resolve.
	AppendRead(ctx context.Context, messageID uint, userID string) error
}
