package repository

import (
	"context"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/domain"
)

// CallLogRepository stores call logs and their participant spans.
type CallLogRepository interface {
	// Create persists a new call log and fills in its id and StartedAt.
	Create(ctx context.Context, log *domain.CallLog) error

	// FindByID returns the call log with its participants. Returns
	// ErrCallLogNotFound when absent.
	FindByID(ctx context.Context, id uint) (*domain.CallLog, error)

	// AddParticipant appends a participant span to the call log.
	AddParticipant(ctx context.Context, callLogID uint, p domain.CallParticipant) error

	// Save writes back the call log and its participant spans (EndedAt,
	// Duration, LeftAt stamps).
	Save(ctx context.Context, log *domain.CallLog) error
}
