package repository

import (
	"context"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/domain"
)

// JoinRequestRepository stores join requests. Status updates must respect
// the Pending -> Approved|Rejected state machine: a terminal request never
// transitions again.
type JoinRequestRepository interface {
	// Create persists a new request with its caller-assigned id.
	Create(ctx context.Context, req *domain.JoinRequest) error

	// UpdateStatus moves a pending request to status. Requests already in
	// a terminal status are left untouched; a missing id returns
	// ErrRequestNotFound.
	UpdateStatus(ctx context.Context, id, status string) error
}
