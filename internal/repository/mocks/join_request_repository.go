package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/domain"
)

// JoinRequestRepository is a mock of repository.JoinRequestRepository.
type JoinRequestRepository struct {
	mock.Mock
}

func (m *JoinRequestRepository) Create(ctx context.Context, req *domain.JoinRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *JoinRequestRepository) UpdateStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
