package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/domain"
)

// MessageRepository is a mock of repository.MessageRepository.
type MessageRepository struct {
	mock.Mock
}

func (m *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MessageRepository) ListByRoom(ctx context.Context, roomID string, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, roomID, limit)
	var msgs []domain.Message
	if args.Get(0) != nil {
		msgs = args.Get(0).([]domain.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepository) AppendRead(ctx context.Context, messageID uint, userID string) error {
	args := m.Called(ctx, messageID, userID)
	return args.Error(0)
}
