package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/domain"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/dto"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/registry"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/repository"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/repository/mocks"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/service"
)

var errStoreDown = errors.New("dial tcp: connection refused")

func newRoomService(t *testing.T) (*service.RoomService, *mocks.RoomRepository, *mocks.JoinRequestRepository, *registry.Registry, *fakeNotifier, *fakeQueue) {
	t.Helper()
	roomRepo := new(mocks.RoomRepository)
	reqRepo := new(mocks.JoinRequestRepository)
	reg := registry.New()
	notifier := &fakeNotifier{}
	queue := &fakeQueue{}
	svc := service.NewRoomService(roomRepo, reqRepo, reg, notifier, queue)
	return svc, roomRepo, reqRepo, reg, notifier, queue
}

func TestRoomService_CreateRoom_DuplicateCode(t *testing.T) {
	svc, roomRepo, _, _, _, _ := newRoomService(t)
	ctx := context.Background()

	roomRepo.On("Create", ctx, mock.AnythingOfType("*domain.Room")).
		Return(repository.ErrDuplicateEntry).Once()

	room, err := svc.CreateRoom(ctx, "Standup", "AB12CD", "conn-host", "Alice")

	assert.ErrorIs(t, err, service.ErrRoomCodeTaken)
	assert.Nil(t, room)
	roomRepo.AssertExpectations(t)
}

func TestRoomService_CreateRoom_StoreDownFallsBackToRegistry(t *testing.T) {
	svc, roomRepo, _, _, _, _ := newRoomService(t)
	ctx := context.Background()

	roomRepo.On("Create", ctx, mock.AnythingOfType("*domain.Room")).
		Return(errStoreDown).Once()
	roomRepo.On("FindByCode", ctx, "AB12CD").
		Return(nil, errStoreDown)

	room, err := svc.CreateRoom(ctx, "Standup", "ab12cd", "conn-host", "Alice")
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, "AB12CD", room.Code)

	// The room must remain findable, case-varied, with the store still down.
	found, err := svc.FindRoom(ctx, "Ab12Cd")
	require.NoError(t, err)
	assert.Equal(t, "AB12CD", found.Code)
	assert.Equal(t, "Standup", found.Name)
	roomRepo.AssertExpectations(t)
}

func TestRoomService_CreateRoom_DefaultsName(t *testing.T) {
	svc, roomRepo, _, _, _, _ := newRoomService(t)
	ctx := context.Background()

	roomRepo.On("Create", ctx, mock.MatchedBy(func(room *domain.Room) bool {
		return room.Name == "Room XY99ZZ" && room.IsActive
	})).Return(nil).Once()

	room, err := svc.CreateRoom(ctx, "", "xy99zz", "conn-host", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Room XY99ZZ", room.Name)
	roomRepo.AssertExpectations(t)
}

func TestRoomService_JoinRoom_DeduplicatesParticipants(t *testing.T) {
	svc, roomRepo, _, reg, notifier, _ := newRoomService(t)
	ctx := context.Background()

	stored := &domain.Room{
		ID:   7,
		Code: "AB12CD",
		Name: "Standup",
		Participants: []domain.Participant{
			{ConnID: "conn-host", Name: "Alice"},
		},
	}
	roomRepo.On("FindByCode", ctx, "AB12CD").Return(stored, nil)
	roomRepo.On("AddParticipant", ctx, uint(7), mock.AnythingOfType("domain.Participant")).Return(nil)

	svc.JoinRoom(ctx, "conn-bob", "AB12CD", "Bob", false)
	svc.JoinRoom(ctx, "conn-bob", "AB12CD", "Bob", false)

	room, ok := reg.FindRoomByCode("AB12CD")
	require.True(t, ok)
	count := 0
	for _, p := range room.Participants {
		if p.ConnID == "conn-bob" {
			count++
		}
	}
	assert.Equal(t, 1, count, "rejoining must not duplicate the participant")

	// Every join still announces to the rest of the room.
	joins := notifier.byEvent(dto.EvUserJoined)
	assert.Len(t, joins, 2)
	for _, e := range joins {
		assert.Equal(t, "broadcast_except", e.kind)
		assert.Equal(t, "conn-bob", e.target)
	}
}

func TestRoomService_JoinRoom_UnknownRoomStillRegistersPresence(t *testing.T) {
	svc, roomRepo, _, reg, _, _ := newRoomService(t)
	ctx := context.Background()

	roomRepo.On("FindByCode", ctx, "NOPE42").Return(nil, repository.ErrRoomNotFound)

	room := svc.JoinRoom(ctx, "conn-x", "nope42", "Xavier", false)
	assert.Nil(t, room)

	p, ok := reg.GetPresence("conn-x")
	require.True(t, ok)
	assert.Equal(t, "NOPE42", p.RoomCode)
}

func TestRoomService_SubmitJoinRequest_RoomNotFound(t *testing.T) {
	svc, roomRepo, _, _, _, _ := newRoomService(t)
	ctx := context.Background()

	roomRepo.On("FindByCode", ctx, "NOPE42").Return(nil, repository.ErrRoomNotFound)

	req, err := svc.SubmitJoinRequest(ctx, "conn-x", "NOPE42", "Xavier", false)
	assert.ErrorIs(t, err, service.ErrRoomNotFound)
	assert.Nil(t, req)
}

func TestRoomService_SubmitJoinRequest_OneTimeLinkRoutesAnyway(t *testing.T) {
	svc, roomRepo, reqRepo, _, notifier, _ := newRoomService(t)
	ctx := context.Background()

	roomRepo.On("FindByCode", ctx, "NOPE42").Return(nil, repository.ErrRoomNotFound)
	reqRepo.On("Create", ctx, mock.AnythingOfType("*domain.JoinRequest")).Return(nil).Once()

	req, err := svc.SubmitJoinRequest(ctx, "conn-x", "NOPE42", "Xavier", true)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, domain.JoinStatusPending, req.Status)
	assert.NotEmpty(t, req.ID)

	received := notifier.byEvent(dto.EvJoinRequestRecv)
	require.Len(t, received, 1)
	assert.Equal(t, "NOPE42", received[0].room)
	reqRepo.AssertExpectations(t)
}

func TestRoomService_ApproveJoin_NotifiesBothSides(t *testing.T) {
	svc, roomRepo, reqRepo, _, notifier, _ := newRoomService(t)
	ctx := context.Background()

	roomRepo.On("FindByCode", ctx, "AB12CD").
		Return(&domain.Room{ID: 7, Code: "AB12CD", Name: "Standup"}, nil)
	reqRepo.On("UpdateStatus", ctx, "req-1", domain.JoinStatusApproved).Return(nil).Once()

	err := svc.ApproveJoin(ctx, "conn-host", "req-1", "conn-bob", "AB12CD", "Bob")
	require.NoError(t, err)

	approved := notifier.byEvent(dto.EvJoinApproved)
	require.Len(t, approved, 1)
	assert.Equal(t, "send_to", approved[0].kind)
	assert.Equal(t, "conn-bob", approved[0].target)

	notified := notifier.byEvent(dto.EvJoinApprovedNotif)
	require.Len(t, notified, 1)
	assert.Equal(t, "conn-host", notified[0].target)
	reqRepo.AssertExpectations(t)
}

func TestRoomService_ApproveJoin_RoomGone(t *testing.T) {
	svc, roomRepo, reqRepo, _, notifier, _ := newRoomService(t)
	ctx := context.Background()

	roomRepo.On("FindByCode", ctx, "AB12CD").Return(nil, repository.ErrRoomNotFound)
	reqRepo.On("UpdateStatus", ctx, "req-1", domain.JoinStatusApproved).Return(nil).Once()

	err := svc.ApproveJoin(ctx, "conn-host", "req-1", "conn-bob", "AB12CD", "Bob")
	assert.ErrorIs(t, err, service.ErrRoomNotFound)
	assert.Empty(t, notifier.byEvent(dto.EvJoinApproved), "no approval may reach the requester without a room")
}

func TestRoomService_RejectJoin_TerminalInFallback(t *testing.T) {
	svc, roomRepo, reqRepo, reg, notifier, _ := newRoomService(t)
	ctx := context.Background()

	// Store down throughout: the request lives only in the registry.
	roomRepo.On("FindByCode", ctx, "AB12CD").Return(nil, errStoreDown)
	reg.UpsertRoom(&domain.Room{Code: "AB12CD", Name: "Standup"})
	reqRepo.On("Create", ctx, mock.AnythingOfType("*domain.JoinRequest")).Return(errStoreDown)
	reqRepo.On("UpdateStatus", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(errStoreDown)

	req, err := svc.SubmitJoinRequest(ctx, "conn-bob", "AB12CD", "Bob", false)
	require.NoError(t, err)

	svc.RejectJoin(ctx, req.ID, "conn-bob")
	stored, ok := reg.GetJoinRequest(req.ID)
	require.True(t, ok)
	assert.Equal(t, domain.JoinStatusRejected, stored.Status)

	// A later approval attempt must not move the request out of rejected.
	notifier.reset()
	_ = svc.ApproveJoin(ctx, "conn-host", req.ID, "conn-bob", "AB12CD", "Bob")
	stored, _ = reg.GetJoinRequest(req.ID)
	assert.Equal(t, domain.JoinStatusRejected, stored.Status)
}

func TestRoomService_LeaveRoom_Idempotent(t *testing.T) {
	svc, _, _, _, notifier, _ := newRoomService(t)

	// No presence record: leaving must be a silent no-op.
	svc.LeaveRoom(context.Background(), "conn-ghost")
	assert.Empty(t, notifier.sent)
}

func TestRoomService_LeaveRoom_EnqueuesDeactivationWhenEmptied(t *testing.T) {
	svc, roomRepo, _, reg, notifier, queue := newRoomService(t)
	ctx := context.Background()

	reg.RegisterPresence("conn-bob", "AB12CD", "Bob", false)
	reg.UpsertRoom(&domain.Room{
		ID:   7,
		Code: "AB12CD",
		Participants: []domain.Participant{
			{ConnID: "conn-bob", Name: "Bob", JoinedAt: time.Now()},
		},
	})
	roomRepo.On("RemoveParticipant", ctx, "AB12CD", "conn-bob").Return(nil).Once()

	svc.LeaveRoom(ctx, "conn-bob")

	left := notifier.byEvent(dto.EvUserLeft)
	require.Len(t, left, 1)
	assert.Equal(t, "conn-bob", left[0].target)

	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, uint(7), queue.enqueued[0].roomID)

	_, ok := reg.GetPresence("conn-bob")
	assert.False(t, ok, "presence must be cleared on leave")
	roomRepo.AssertExpectations(t)

	// Second leave for the same connection changes nothing.
	svc.LeaveRoom(ctx, "conn-bob")
	assert.Len(t, queue.enqueued, 1)
}
