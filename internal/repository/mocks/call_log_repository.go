package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/domain"
)

// CallLogRepository is a mock of repository.CallLogRepository.
type CallLogRepository struct {
	mock.Mock
}

func (m *CallLogRepository) Create(ctx context.Context, log *domain.CallLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *CallLogRepository) FindByID(ctx context.Context, id uint) (*domain.CallLog, error) {
	args := m.Called(ctx, id)
	var log *domain.CallLog
	if args.Get(0) != nil {
		log = args.Get(0).(*domain.CallLog)
	}
	return log, args.Error(1)
}

func (m *CallLogRepository) AddParticipant(ctx context.Context, callLogID uint, p domain.CallParticipant) error {
	args := m.Called(ctx, callLogID, p)
	return args.Error(0)
}

func (m *CallLogRepository) Save(ctx context.Context, log *domain.CallLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}
