package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/domain"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/dto"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/registry"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/repository"
)

// MessageService is the messaging relay: it persists best-effort and fans
// out to room members.
type MessageService struct {
	messages repository.MessageRepository
	reg      *registry.Registry
	notifier Notifier
}

// NewMessageService creates a MessageService.
func NewMessageService(messages repository.MessageRepository, reg *registry.Registry, notifier Notifier) *MessageService {
	if messages == nil {
		panic("message repository cannot be nil for MessageService")
	}
	if reg == nil {
		panic("registry cannot be nil for MessageService")
	}
	if notifier == nil {
		panic("notifier cannot be nil for MessageService")
	}
	return &MessageService{messages: messages, reg: reg, notifier: notifier}
}

// SendMessage persists the message (durable first, in-memory log when the
// store fails) and broadcasts exactly one new_message to every connection
// in the room, the sender included.
func (s *MessageService) SendMessage(ctx context.Context, d dto.SendMessageData) {
	logCtx := logrus.WithFields(logrus.Fields{"room_code": d.RoomCode, "room_id": d.RoomID, "sender": d.SenderID})

	kind := d.Type
	if kind == "" {
		kind = domain.MessageKindText
	}
	msg := &domain.Message{
		RoomID:     d.RoomID,
		SenderID:   d.SenderID,
		SenderName: d.SenderName,
		Content:    d.Content,
		Kind:       kind,
		FileURL:    d.FileURL,
		FileName:   d.FileName,
	}

	var wireID string
	if err := s.messages.Create(ctx, msg); err != nil {
		logCtx.WithError(err).Warn("Failed to persist message, appending to in-memory log")
		now := time.Now()
		msg.CreatedAt = now
		msg.UpdatedAt = now
		wireID = fmt.Sprintf("mem-%d", now.UnixNano())
		s.reg.AppendMessage(d.RoomID, *msg)
	} else {
		wireID = strconv.FormatUint(uint64(msg.ID), 10)
	}

	s.notifier.Broadcast(d.RoomCode, dto.Outbound{
		Event: dto.EvNewMessage,
		Data: dto.MessageData{
			ID:         wireID,
			RoomID:     msg.RoomID,
			SenderID:   msg.SenderID,
			SenderName: msg.SenderName,
			Content:    msg.Content,
			Type:       msg.Kind,
			FileURL:    msg.FileURL,
			FileName:   msg.FileName,
			CreatedAt:  msg.CreatedAt,
			UpdatedAt:  msg.UpdatedAt,
		},
	})
}

// MarkRead appends a read receipt. Returns ErrMessageNotFound when the
// message id does not resolve.
func (s *MessageService) MarkRead(ctx context.Context, messageID uint, userID string) error {
	err := s.messages.AppendRead(ctx, messageID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMessageNotFound
		}
		logrus.WithError(err).WithField("message_id", messageID).Error("Failed to append read receipt")
		return ErrInternalServer
	}
	return nil
}

// ListMessages returns up to limit oldest-first messages for a room,
// falling back to the in-memory log when the store fails.
func (s *MessageService) ListMessages(ctx context.Context, roomID string, limit int) []domain.Message {
	messages, err := s.messages.ListByRoom(ctx, roomID, limit)
	if err != nil {
		logrus.WithError(err).WithField("room_id", roomID).
			Warn("Failed to list messages from durable store, using in-memory log")
		return s.reg.MessagesFor(roomID, limit)
	}
	return messages
}

// BroadcastSystemMessage synthesizes a non-persisted system message and
// broadcasts it to the whole room, the trigger included.
func (s *MessageService) BroadcastSystemMessage(roomCode, text, timestamp string) {
	code := domain.NormalizeCode(roomCode)
	s.notifier.Broadcast(code, dto.Outbound{
		Event: dto.EvNewMessage,
		Data: dto.MessageData{
			ID:         fmt.Sprintf("security_%d", time.Now().UnixMilli()),
			RoomID:     code,
			SenderID:   "system",
			SenderName: "System",
			Content:    text,
			Type:       domain.MessageKindSystem,
			CreatedAt:  timestamp,
			UpdatedAt:  timestamp,
		},
	})
}

// BroadcastSecuritySettings echoes a settings payload to the whole room,
// the sender included.
func (s *MessageService) BroadcastSecuritySettings(roomCode string, settings json.RawMessage, timestamp string) {
	code := domain.NormalizeCode(roomCode)
	s.notifier.Broadcast(code, dto.Outbound{
		Event: dto.EvSecurityBroadcast,
		Data: map[string]interface{}{
			"roomCode":  code,
			"settings":  settings,
			"timestamp": timestamp,
		},
	})
}

// RelayTyping forwards a typing indicator to the room except the sender.
func (s *MessageService) RelayTyping(roomCode, senderConnID, userName string, isTyping bool) {
	s.notifier.BroadcastExcept(domain.NormalizeCode(roomCode), senderConnID, dto.Outbound{
		Event: dto.EvUserTyping,
		Data: map[string]interface{}{
			"userName": userName,
			"isTyping": isTyping,
		},
	})
}

// CreateMessage is the HTTP-facing durable-only create (no fallback, no
// broadcast).
func (s *MessageService) CreateMessage(ctx context.Context, msg *domain.Message) error {
	if err := s.messages.Create(ctx, msg); err != nil {
		logrus.WithError(err).WithField("room_id", msg.RoomID).Error("Failed to create message")
		return ErrInternalServer
	}
	return nil
}
