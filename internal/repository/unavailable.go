package repository

import (
	"context"
	"errors"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/domain"
)

// ErrStoreUnavailable is what the null adapters return for every call.
// Callers treat it like any other store failure and use their fallback.
var ErrStoreUnavailable = errors.New("repository: durable store unavailable")

// Unavailable adapters stand in for the real ones when the database could
// not be reached at startup. The process still serves traffic; everything
// runs off the session registry until a restart with a healthy store.

type UnavailableRoomRepository struct{}

func (UnavailableRoomRepository) Create(context.Context, *domain.Room) error {
	return ErrStoreUnavailable
}

func (UnavailableRoomRepository) FindByCode(context.Context, string) (*domain.Room, error) {
	return nil, ErrStoreUnavailable
}

func (UnavailableRoomRepository) AddParticipant(context.Context, uint, domain.Participant) error {
	return ErrStoreUnavailable
}

func (UnavailableRoomRepository) RemoveParticipant(context.Context, string, string) error {
	return ErrStoreUnavailable
}

func (UnavailableRoomRepository) Deactivate(context.Context, uint) error {
	return ErrStoreUnavailable
}

func (UnavailableRoomRepository) DeactivateStale(context.Context, int64) (int64, error) {
	return 0, ErrStoreUnavailable
}

type UnavailableMessageRepository struct{}

func (UnavailableMessageRepository) Create(context.Context, *domain.Message) error {
	return ErrStoreUnavailable
}

func (UnavailableMessageRepository) ListByRoom(context.Context, string, int) ([]domain.Message, error) {
	return nil, ErrStoreUnavailable
}

func (UnavailableMessageRepository) AppendRead(context.Context, uint, string) error {
	return ErrStoreUnavailable
}

type UnavailableJoinRequestRepository struct{}

func (UnavailableJoinRequestRepository) Create(context.Context, *domain.JoinRequest) error {
	return ErrStoreUnavailable
}

func (UnavailableJoinRequestRepository) UpdateStatus(context.Context, string, string) error {
	return ErrStoreUnavailable
}

type UnavailableCallLogRepository struct{}

func (UnavailableCallLogRepository) Create(context.Context, *domain.CallLog) error {
	return ErrStoreUnavailable
}

func (UnavailableCallLogRepository) FindByID(context.Context, uint) (*domain.CallLog, error) {
	return nil, ErrStoreUnavailable
}

func (UnavailableCallLogRepository) AddParticipant(context.Context, uint, domain.CallParticipant) error {
	return ErrStoreUnavailable
}

func (UnavailableCallLogRepository) Save(context.Context, *domain.CallLog) error {
	return ErrStoreUnavailable
}
