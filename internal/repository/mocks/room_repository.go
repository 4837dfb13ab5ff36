// Package mocks provides testify mocks for the repository interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/domain"
)

// RoomRepository is a mock of repository.RoomRepository.
type RoomRepository struct {
	mock.Mock
}

func (m *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *RoomRepository) FindByCode(ctx context.Context, code string) (*domain.Room, error) {
	args := m.Called(ctx, code)
	var room *domain.Room
	if args.Get(0) != nil {
		room = args.Get(0).(*domain.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepository) AddParticipant(ctx context.Context, roomID uint, p domain.Participant) error {
	args := m.Called(ctx, roomID, p)
	return args.Error(0)
}

func (m *RoomRepository) RemoveParticipant(ctx context.Context, code, connID string) error {
	args := m.Called(ctx, code, connID)
	return args.Error(0)
}

func (m *RoomRepository) Deactivate(ctx context.Context, roomID uint) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

func (m *RoomRepository) DeactivateStale(ctx context.Context, cutoffSeconds int64) (int64, error) {
	args := m.Called(ctx, cutoffSeconds)
	return args.Get(0).(int64), args.Error(1)
}
