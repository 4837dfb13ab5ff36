package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/domain"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/dto"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/hub"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/service"
)

// HandleEvent runs on the hub loop: one inbound frame at a time, in
// arrival order per connection. No failure here terminates the connection;
// everything resolves to a fallback action or an error event back to the
// sender.
func (h *Handler) HandleEvent(client *hub.Client, raw []byte) {
	var env dto.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.sendError(client.ID(), "malformed frame")
		return
	}

	ctx := context.Background()
	connID := client.ID()
	logCtx := logrus.WithFields(logrus.Fields{"conn_id": connID, "event": env.Event})

	switch env.Event {
	case dto.EvCreateRoom:
		var d dto.CreateRoomData
		if !h.decode(connID, env.Data, &d) {
			return
		}
		room, err := h.rooms.RegisterHost(ctx, connID, d.RoomCode, d.UserName, d.RoomName)
		if err != nil {
			h.sendError(connID, err.Error())
			return
		}
		h.hub.JoinRoomGroup(room.Code, connID)
		h.hub.SendTo(connID, dto.Outbound{
			Event: dto.EvRoomCreated,
			Data: map[string]interface{}{
				"roomCode": room.Code,
				"socketId": connID,
			},
		})

	case dto.EvSendJoinRequest:
		var d dto.SendJoinRequestData
		if !h.decode(connID, env.Data, &d) {
			return
		}
		req, err := h.rooms.SubmitJoinRequest(ctx, connID, d.RoomCode, d.UserName, d.IsOneTimeLink)
		if err != nil {
			h.sendError(connID, "Room not found")
			return
		}
		h.hub.SendTo(connID, dto.Outbound{
			Event: dto.EvJoinRequestSent,
			Data:  map[string]interface{}{"requestId": req.ID},
		})

	case dto.EvApproveJoin:
		var d dto.ApproveJoinData
		if !h.decode(connID, env.Data, &d) {
			return
		}
		err := h.rooms.ApproveJoin(ctx, connID, d.RequestID, d.RequesterID, d.RoomCode, d.RequesterName)
		if errors.Is(err, service.ErrRoomNotFound) {
			h.sendError(connID, "Room not found for approval")
		}

	case dto.EvRejectJoin:
		var d dto.RejectJoinData
		if !h.decode(connID, env.Data, &d) {
			return
		}
		h.rooms.RejectJoin(ctx, d.RequestID, d.RequesterID)

	case dto.EvJoinRoom:
		var d dto.JoinRoomData
		if !h.decode(connID, env.Data, &d) {
			return
		}
		code := domain.NormalizeCode(d.RoomCode)
		h.hub.JoinRoomGroup(code, connID)
		room := h.rooms.JoinRoom(ctx, connID, code, d.UserName, d.IsHost)
		data := map[string]interface{}{"roomCode": code}
		if room != nil {
			data["roomId"] = roomWireID(room)
		}
		h.hub.SendTo(connID, dto.Outbound{Event: dto.EvJoinedRoom, Data: data})

	case dto.EvSendMessage:
		var d dto.SendMessageData
		if !h.decode(connID, env.Data, &d) {
			return
		}
		if d.SenderID == "" {
			d.SenderID = connID
		}
		h.messages.SendMessage(ctx, d)

	case dto.EvTyping:
		var d dto.TypingData
		if !h.decode(connID, env.Data, &d) {
			return
		}
		h.messages.RelayTyping(d.RoomCode, connID, d.UserName, d.IsTyping)

	case dto.EvSecurityChanged:
		var d dto.SecurityChangedData
		if !h.decode(connID, env.Data, &d) {
			return
		}
		h.messages.BroadcastSystemMessage(d.RoomCode, d.Message, d.Timestamp)

	case dto.EvSecurityBroadcast:
		var d dto.SecurityBroadcastData
		if !h.decode(connID, env.Data, &d) {
			return
		}
		h.messages.BroadcastSecuritySettings(d.RoomCode, d.Settings, d.Timestamp)

	case dto.EvStartCall:
		var d dto.StartCallData
		if !h.decode(connID, env.Data, &d) {
			return
		}
		h.calls.StartCall(ctx, connID, d)

	case dto.EvAcceptCall:
		var d dto.CallUserData
		if !h.decode(connID, env.Data, &d) {
			return
		}
		h.calls.AcceptCall(ctx, connID, d.RoomCode, d.UserID, d.UserName)

	case dto.EvRejectCall:
		var d dto.CallUserData
		if !h.decode(connID, env.Data, &d) {
			return
		}
		h.calls.RejectCall(connID, d.RoomCode, d.UserID)

	case dto.EvEndCall:
		var d dto.CallUserData
		if !h.decode(connID, env.Data, &d) {
			return
		}
		h.calls.EndCall(ctx, connID, d.RoomCode, d.UserID)

	case dto.EvOffer, dto.EvAnswer, dto.EvICECandidate,
		dto.EvScreenShareStart, dto.EvScreenShareStop:
		// Room-scoped pass-through: only the audience matters.
		var d dto.RoomRelayData
		if !h.decode(connID, env.Data, &d) {
			return
		}
		h.calls.RelayToRoom(d.RoomCode, connID, env.Event, env.Data)

	case dto.EvJoinCall:
		var d dto.CallUserData
		if !h.decode(connID, env.Data, &d) {
			return
		}
		h.hub.JoinCallGroup(d.RoomCode, connID)
		h.calls.JoinCall(connID, d.RoomCode, d.UserID, d.UserName)

	case dto.EvLeaveCall:
		var d dto.CallUserData
		if !h.decode(connID, env.Data, &d) {
			return
		}
		h.hub.LeaveCallGroup(d.RoomCode, connID)
		h.calls.LeaveCall(connID, d.RoomCode, d.UserID)

	case dto.EvWebRTCOffer, dto.EvWebRTCAnswer, dto.EvWebRTCICE:
		// Connection-addressed pass-through.
		var d dto.TargetRelayData
		if !h.decode(connID, env.Data, &d) {
			return
		}
		h.calls.RelayToTarget(d.TargetID, env.Event, env.Data)

	case dto.EvMuteAudio:
		var d dto.MuteData
		if !h.decode(connID, env.Data, &d) {
			return
		}
		h.calls.RelayToCall(d.RoomCode, connID, dto.EvUserMuted, map[string]interface{}{
			"userId": d.UserID,
			"muted":  d.Muted,
		})

	case dto.EvDisableVideo:
		var d dto.VideoData
		if !h.decode(connID, env.Data, &d) {
			return
		}
		h.calls.RelayToCall(d.RoomCode, connID, dto.EvUserVideoDisabled, map[string]interface{}{
			"userId":   d.UserID,
			"disabled": d.Disabled,
		})

	default:
		logCtx.Warn("Unknown inbound event")
		h.sendError(connID, "unknown event: "+env.Event)
	}
}

// HandleDisconnect runs once the hub has dropped the connection from every
// group. The departure itself is just another event in the stream.
func (h *Handler) HandleDisconnect(connID string) {
	h.rooms.LeaveRoom(context.Background(), connID)
}

func (h *Handler) decode(connID string, data json.RawMessage, v interface{}) bool {
	if len(data) == 0 {
		h.sendError(connID, "missing event data")
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		h.sendError(connID, "malformed event data")
		return false
	}
	return true
}

func (h *Handler) sendError(connID, message string) {
	h.hub.SendTo(connID, dto.Outbound{
		Event: dto.EvError,
		Data:  dto.ErrorData{Message: message},
	})
}

// roomWireID mirrors the wire identity rule: durable id when present,
// otherwise the code.
func roomWireID(room *domain.Room) string {
	if room.ID != 0 {
		return strconv.FormatUint(uint64(room.ID), 10)
	}
	return room.Code
}
