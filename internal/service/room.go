// Package service implements the coordination core: the room coordinator,
// the messaging relay, and the call signaling relay. Every durable-store
// call site here has an explicit fallback or error-emission path; the
// session registry alone is always sufficient to answer "does this room
// exist".
package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/domain"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/dto"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/registry"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/repository"
)

// How long an emptied room may linger before the worker deactivates it.
const roomDeactivateDelay = 10 * time.Minute

// RoomService owns room lifecycle, participant membership, and the
// join-request approval state machine.
type RoomService struct {
	rooms    repository.RoomRepository
	requests repository.JoinRequestRepository
	reg      *registry.Registry
	notifier Notifier
	queue    TaskQueue // may be nil
}

// NewRoomService creates a RoomService. The task queue is optional.
func NewRoomService(rooms repository.RoomRepository, requests repository.JoinRequestRepository, reg *registry.Registry, notifier Notifier, queue TaskQueue) *RoomService {
	if rooms == nil || requests == nil {
		panic("repositories cannot be nil for RoomService")
	}
	if reg == nil {
		panic("registry cannot be nil for RoomService")
	}
	if notifier == nil {
		panic("notifier cannot be nil for RoomService")
	}
	return &RoomService{rooms: rooms, requests: requests, reg: reg, notifier: notifier, queue: queue}
}

// CreateRoom persists a new room, falling back to the registry when the
// durable store is unreachable. The room is visible to subsequent FindRoom
// calls by some backing before this returns.
func (s *RoomService) CreateRoom(ctx context.Context, name, code, hostConnID, hostName string) (*domain.Room, error) {
	code = domain.NormalizeCode(code)
	if name == "" {
		name = "Room " + code
	}
	logCtx := logrus.WithFields(logrus.Fields{"room_code": code, "host_conn": hostConnID})

	room := &domain.Room{
		Name:       name,
		Code:       code,
		HostConnID: hostConnID,
		HostName:   hostName,
		IsActive:   true,
		Participants: []domain.Participant{
			{ConnID: hostConnID, Name: hostName, JoinedAt: time.Now()},
		},
	}

	err := s.rooms.Create(ctx, room)
	switch {
	case err == nil:
		logCtx.WithField("room_id", room.ID).Info("Room created in durable store")
	case errors.Is(err, repository.ErrDuplicateEntry):
		return nil, ErrRoomCodeTaken
	default:
		// Store unavailable: register the equivalent room in the registry.
		logCtx.WithError(err).Warn("Durable store unavailable, registering room in memory")
		now := time.Now()
		room.CreatedAt = now
		room.UpdatedAt = now
		s.reg.UpsertRoom(room)
	}
	return room, nil
}

// RegisterHost binds the creating connection to its room: presence, a
// registry backing for the room, and the re-create-is-a-noop semantics of
// the socket-level create_room event.
func (s *RoomService) RegisterHost(ctx context.Context, connID, code, userName, roomName string) (*domain.Room, error) {
	code = domain.NormalizeCode(code)

	room, err := s.FindRoom(ctx, code)
	if errors.Is(err, ErrRoomNotFound) {
		room, err = s.CreateRoom(ctx, roomName, code, connID, userName)
		if errors.Is(err, ErrRoomCodeTaken) {
			// Raced with the HTTP create; the room exists now.
			room, err = s.FindRoom(ctx, code)
		}
	}
	if err != nil {
		return nil, err
	}

	s.reg.RegisterPresence(connID, code, userName, true)
	s.reg.UpsertRoom(room)
	return room, nil
}

// FindRoom resolves a room by code: durable lookup first, registry on
// failure or miss. Returns ErrRoomNotFound when absent in both.
func (s *RoomService) FindRoom(ctx context.Context, code string) (*domain.Room, error) {
	code = domain.NormalizeCode(code)

	room, err := s.rooms.FindByCode(ctx, code)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		logrus.WithError(err).WithField("room_code", code).
			Warn("Durable room lookup failed, checking registry")
	}
	if room, ok := s.reg.FindRoomByCode(code); ok {
		return room, nil
	}
	return nil, ErrRoomNotFound
}

// JoinRoom registers presence, appends the joiner to the room's membership
// unless they are the host, and notifies existing members. The returned
// room is nil when the code resolves nowhere; joining still succeeds at
// the connection level (mirrors the relaxed socket semantics).
func (s *RoomService) JoinRoom(ctx context.Context, connID, code, userName string, isHost bool) *domain.Room {
	code = domain.NormalizeCode(code)
	logCtx := logrus.WithFields(logrus.Fields{"room_code": code, "conn_id": connID, "is_host": isHost})

	s.reg.RegisterPresence(connID, code, userName, isHost)

	room, err := s.FindRoom(ctx, code)
	if err != nil {
		logCtx.Debug("Joined a room with no resolvable record")
		room = nil
	}

	if room != nil && !isHost && !room.HasParticipant(connID) {
		p := domain.Participant{RoomID: room.ID, ConnID: connID, Name: userName, JoinedAt: time.Now()}
		room.Participants = append(room.Participants, p)
		if room.ID != 0 {
			if err := s.rooms.AddParticipant(ctx, room.ID, p); err != nil {
				logCtx.WithError(err).Warn("Failed to persist participant, registry only")
			}
		}
	}
	if room != nil {
		s.reg.UpsertRoom(room)
	}

	s.notifier.BroadcastExcept(code, connID, dto.Outbound{
		Event: dto.EvUserJoined,
		Data: map[string]interface{}{
			"socketId": connID,
			"userName": userName,
			"isHost":   isHost,
		},
	})

	logCtx.Info("Connection joined room")
	return room
}

// SubmitJoinRequest creates a pending join request and routes it to the
// room's current members (the host). When the room is unknown and
// allowIfRoomUnknown is set (one-time-link mode), a placeholder room
// reference keeps the request routable.
func (s *RoomService) SubmitJoinRequest(ctx context.Context, connID, code, userName string, allowIfRoomUnknown bool) (*domain.JoinRequest, error) {
	code = domain.NormalizeCode(code)
	logCtx := logrus.WithFields(logrus.Fields{"room_code": code, "requester": connID})

	room, err := s.FindRoom(ctx, code)
	if err != nil {
		if !allowIfRoomUnknown {
			return nil, ErrRoomNotFound
		}
		// The room may exist only on the host's side; let the request
		// reach whoever is subscribed to the code.
		logCtx.Info("One-time link request for unknown room, routing anyway")
		room = &domain.Room{Code: code, Name: "Room " + code}
	}

	req := &domain.JoinRequest{
		ID:            uuid.NewString(),
		RoomID:        roomRef(room),
		RequesterID:   connID,
		RequesterName: userName,
		Status:        domain.JoinStatusPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		logCtx.WithError(err).Warn("Failed to persist join request, registry only")
		now := time.Now()
		req.CreatedAt = now
		req.UpdatedAt = now
		s.reg.PutJoinRequest(req)
	}

	s.notifier.Broadcast(code, dto.Outbound{
		Event: dto.EvJoinRequestRecv,
		Data: map[string]interface{}{
			"requestId":     req.ID,
			"requesterId":   connID,
			"requesterName": userName,
			"userName":      userName,
		},
	})

	logCtx.WithField("request_id", req.ID).Info("Join request submitted")
	return req, nil
}

// ApproveJoin marks the request approved and notifies both sides. Approval
// must not proceed without a room to join: the caller receives
// ErrRoomNotFound when the room can no longer be resolved.
func (s *RoomService) ApproveJoin(ctx context.Context, hostConnID, requestID, requesterID, code, requesterName string) error {
	code = domain.NormalizeCode(code)
	logCtx := logrus.WithFields(logrus.Fields{"room_code": code, "request_id": requestID})

	// Status update is best-effort: non-fatal when the store is down and
	// the request only ever lived in the registry.
	if err := s.requests.UpdateStatus(ctx, requestID, domain.JoinStatusApproved); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logCtx.WithError(err).Warn("Failed to persist join request approval")
		}
		s.reg.SetJoinRequestStatus(requestID, domain.JoinStatusApproved)
	}

	room, err := s.FindRoom(ctx, code)
	if err != nil {
		logCtx.Warn("Room vanished before approval could complete")
		return ErrRoomNotFound
	}

	s.notifier.SendTo(requesterID, dto.Outbound{
		Event: dto.EvJoinApproved,
		Data: map[string]interface{}{
			"roomId":   roomRef(room),
			"roomCode": code,
			"roomName": room.Name,
		},
	})
	s.notifier.SendTo(hostConnID, dto.Outbound{
		Event: dto.EvJoinApprovedNotif,
		Data: map[string]interface{}{
			"requesterId":   requesterID,
			"requesterName": requesterName,
		},
	})

	logCtx.Info("Join request approved")
	return nil
}

// RejectJoin marks the request rejected (terminal) and notifies the
// requester directly. Re-submission after rejection is not suppressed.
func (s *RoomService) RejectJoin(ctx context.Context, requestID, requesterID string) {
	if err := s.requests.UpdateStatus(ctx, requestID, domain.JoinStatusRejected); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logrus.WithError(err).WithField("request_id", requestID).
				Warn("Failed to persist join request rejection")
		}
		s.reg.SetJoinRequestStatus(requestID, domain.JoinStatusRejected)
	}

	s.notifier.SendTo(requesterID, dto.Outbound{
		Event: dto.EvJoinRejected,
		Data: map[string]interface{}{
			"message": "Your join request was rejected by the host",
		},
	})
}

// LeaveRoom handles a departed connection: notifies the room, trims
// membership in both backings, and clears presence. Idempotent; calling
// with no presence record is a no-op.
func (s *RoomService) LeaveRoom(ctx context.Context, connID string) {
	p, ok := s.reg.GetPresence(connID)
	if !ok {
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{"room_code": p.RoomCode, "conn_id": connID})

	s.notifier.BroadcastExcept(p.RoomCode, connID, dto.Outbound{
		Event: dto.EvUserLeft,
		Data: map[string]interface{}{
			"socketId": connID,
			"userName": p.UserName,
		},
	})

	if err := s.rooms.RemoveParticipant(ctx, p.RoomCode, connID); err != nil {
		logCtx.WithError(err).Warn("Failed to remove participant from durable record")
	}
	s.reg.RemoveRoomParticipant(p.RoomCode, connID)
	s.reg.RemovePresence(connID)

	// When the room just emptied, hand its deactivation to the worker.
	if s.queue != nil {
		if room, ok := s.reg.FindRoomByCode(p.RoomCode); ok && len(room.Participants) == 0 && room.ID != 0 {
			if err := s.queue.EnqueueRoomDeactivation(room.ID, roomDeactivateDelay); err != nil {
				logCtx.WithError(err).Warn("Failed to enqueue room deactivation")
			}
		}
	}

	logCtx.Info("Connection left room")
}

// roomRef is the wire identity of a room: the durable id when one exists,
// otherwise the code (registry-only and placeholder rooms).
func roomRef(room *domain.Room) string {
	if room.ID != 0 {
		return strconv.FormatUint(uint64(room.ID), 10)
	}
	return room.Code
}
