package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/domain"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/dto"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/registry"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/repository"
)

// CallService is the call signaling relay. It tracks at most one call
// session per room code and relays lifecycle and negotiation events; the
// negotiation payloads pass through unvalidated.
type CallService struct {
	callLogs repository.CallLogRepository
	reg      *registry.Registry
	notifier Notifier
}

// NewCallService creates a CallService.
func NewCallService(callLogs repository.CallLogRepository, reg *registry.Registry, notifier Notifier) *CallService {
	if callLogs == nil {
		panic("call log repository cannot be nil for CallService")
	}
	if reg == nil {
		panic("registry cannot be nil for CallService")
	}
	if notifier == nil {
		panic("notifier cannot be nil for CallService")
	}
	return &CallService{callLogs: callLogs, reg: reg, notifier: notifier}
}

// StartCall opens a call log, tracks the session for the room code
// (replacing any tracked session, last writer wins), and rings the rest of
// the room. The caller alone receives call_started with the call id.
func (s *CallService) StartCall(ctx context.Context, senderConnID string, d dto.StartCallData) string {
	code := domain.NormalizeCode(d.RoomCode)
	logCtx := logrus.WithFields(logrus.Fields{"room_code": code, "caller": d.CallerID, "call_type": d.CallType})

	roomID := d.RoomID
	if roomID == "" {
		roomID = code
	}
	log := &domain.CallLog{
		RoomID:     roomID,
		CallerID:   d.CallerID,
		CallerName: d.CallerName,
		CallType:   d.CallType,
		Participants: []domain.CallParticipant{
			{UserID: d.CallerID, Name: d.CallerName, JoinedAt: time.Now()},
		},
	}

	var callID string
	if err := s.callLogs.Create(ctx, log); err != nil {
		logCtx.WithError(err).Warn("Failed to persist call log, tracking session only")
		callID = "mem-" + uuid.NewString()
	} else {
		callID = strconv.FormatUint(uint64(log.ID), 10)
	}

	s.reg.SetActiveCall(code, &domain.CallSession{
		CallID:   callID,
		CallerID: d.CallerID,
		CallType: d.CallType,
	})

	s.notifier.BroadcastExcept(code, senderConnID, dto.Outbound{
		Event: dto.EvIncomingCall,
		Data: map[string]interface{}{
			"callId":     callID,
			"callerId":   d.CallerID,
			"callerName": d.CallerName,
			"callType":   d.CallType,
		},
	})
	s.notifier.SendTo(senderConnID, dto.Outbound{
		Event: dto.EvCallStarted,
		Data:  map[string]interface{}{"callId": callID},
	})

	logCtx.WithField("call_id", callID).Info("Call started")
	return callID
}

// AcceptCall appends the accepting user to the tracked call's log
// (best-effort) and notifies the rest of the room. A room with no tracked
// session stays silent.
func (s *CallService) AcceptCall(ctx context.Context, senderConnID, roomCode, userID, userName string) {
	code := domain.NormalizeCode(roomCode)

	session, ok := s.reg.GetActiveCall(code)
	if !ok {
		return
	}

	if logID, parsed := durableCallID(session.CallID); parsed {
		p := domain.CallParticipant{UserID: userID, Name: userName, JoinedAt: time.Now()}
		if err := s.callLogs.AddParticipant(ctx, logID, p); err != nil {
			logrus.WithError(err).WithField("call_id", session.CallID).
				Warn("Failed to record call participant")
		}
	}

	s.notifier.BroadcastExcept(code, senderConnID, dto.Outbound{
		Event: dto.EvCallAccepted,
		Data: map[string]interface{}{
			"userId":   userID,
			"userName": userName,
		},
	})
}

// RejectCall is a pure relay: no state mutation.
func (s *CallService) RejectCall(senderConnID, roomCode, userID string) {
	s.notifier.BroadcastExcept(domain.NormalizeCode(roomCode), senderConnID, dto.Outbound{
		Event: dto.EvCallRejected,
		Data:  map[string]interface{}{"userId": userID},
	})
}

// EndCall closes the tracked call's log (EndedAt, whole-second duration,
// the ending participant's LeftAt), clears the session so a later
// start_call gets a fresh one, and relays the end to the rest of the room
// whether or not a session was tracked.
func (s *CallService) EndCall(ctx context.Context, senderConnID, roomCode, userID string) {
	code := domain.NormalizeCode(roomCode)
	logCtx := logrus.WithFields(logrus.Fields{"room_code": code, "user_id": userID})

	if session, ok := s.reg.GetActiveCall(code); ok {
		if logID, parsed := durableCallID(session.CallID); parsed {
			s.closeCallLog(ctx, logID, userID, logCtx)
		}
		s.reg.ClearActiveCall(code)
		logCtx.WithField("call_id", session.CallID).Info("Call ended")
	}

	s.notifier.BroadcastExcept(code, senderConnID, dto.Outbound{
		Event: dto.EvCallEnded,
		Data:  map[string]interface{}{"userId": userID},
	})
}

func (s *CallService) closeCallLog(ctx context.Context, logID uint, userID string, logCtx *logrus.Entry) {
	log, err := s.callLogs.FindByID(ctx, logID)
	if err != nil {
		logCtx.WithError(err).Warn("Failed to load call log for closing")
		return
	}
	now := time.Now()
	log.EndedAt = &now
	log.Duration = int64(now.Sub(log.StartedAt).Seconds())
	for i := range log.Participants {
		if log.Participants[i].UserID == userID && log.Participants[i].LeftAt == nil {
			log.Participants[i].LeftAt = &now
		}
	}
	if err := s.callLogs.Save(ctx, log); err != nil {
		logCtx.WithError(err).Warn("Failed to close call log")
	}
}

// JoinCall announces a connection to the call-scoped group. The hub has
// already added the connection to the group.
func (s *CallService) JoinCall(senderConnID, roomCode, userID, userName string) {
	s.notifier.BroadcastCallExcept(domain.NormalizeCode(roomCode), senderConnID, dto.Outbound{
		Event: dto.EvUserJoinedCall,
		Data: map[string]interface{}{
			"userId":   userID,
			"userName": userName,
		},
	})
}

// LeaveCall announces a departure to the call-scoped group.
func (s *CallService) LeaveCall(senderConnID, roomCode, userID string) {
	s.notifier.BroadcastCallExcept(domain.NormalizeCode(roomCode), senderConnID, dto.Outbound{
		Event: dto.EvUserLeftCall,
		Data:  map[string]interface{}{"userId": userID},
	})
}

// RelayToRoom passes a negotiation payload through to the room except the
// sender; the payload shape is not inspected.
func (s *CallService) RelayToRoom(roomCode, senderConnID, event string, payload json.RawMessage) {
	s.notifier.BroadcastExcept(domain.NormalizeCode(roomCode), senderConnID, dto.Outbound{
		Event: event,
		Data:  payload,
	})
}

// RelayToTarget passes a negotiation payload through to one connection.
func (s *CallService) RelayToTarget(targetConnID, event string, payload json.RawMessage) {
	s.notifier.SendTo(targetConnID, dto.Outbound{
		Event: event,
		Data:  payload,
	})
}

// RelayToCall passes an event to the call group except the sender
// (mute/video toggles).
func (s *CallService) RelayToCall(roomCode, senderConnID, event string, data interface{}) {
	s.notifier.BroadcastCallExcept(domain.NormalizeCode(roomCode), senderConnID, dto.Outbound{
		Event: event,
		Data:  data,
	})
}

// durableCallID parses the numeric id of a durably-logged call. Sessions
// created while the store was down carry a mem- id and have no log to
// update.
func durableCallID(callID string) (uint, bool) {
	id, err := strconv.ParseUint(callID, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
