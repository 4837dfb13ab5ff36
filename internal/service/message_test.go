package service_test

import (
	"context"
	"strings"
	"testing"

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

func newMessageService(t *testing.T) (*service.MessageService, *mocks.MessageRepository, *registry.Registry, *fakeNotifier) {
	t.Helper()
	msgRepo := new(mocks.MessageRepository)
	reg := registry.New()
	notifier := &fakeNotifier{}
	svc := service.NewMessageService(msgRepo, reg, notifier)
	return svc, msgRepo, reg, notifier
}

func TestMessageService_SendMessage_Durable(t *testing.T) {
	svc, msgRepo, _, notifier := newMessageService(t)
	ctx := context.Background()

	msgRepo.On("Create", ctx, mock.AnythingOfType("*domain.Message")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Message).ID = 42
		}).
		Return(nil).Once()

	svc.SendMessage(ctx, dto.SendMessageData{
		RoomID:     "7",
		RoomCode:   "AB12CD",
		SenderID:   "conn-bob",
		SenderName: "Bob",
		Content:    "hello",
	})

	sent := notifier.byEvent(dto.EvNewMessage)
	require.Len(t, sent, 1, "exactly one new_message per send")
	assert.Equal(t, "broadcast", sent[0].kind, "the sender receives their own message too")

	data, ok := sent[0].event.Data.(dto.MessageData)
	require.True(t, ok)
	assert.Equal(t, "42", data.ID)
	assert.Equal(t, domain.MessageKindText, data.Type)
	msgRepo.AssertExpectations(t)
}

func TestMessageService_SendMessage_StoreDown(t *testing.T) {
	svc, msgRepo, _, notifier := newMessageService(t)
	ctx := context.Background()

	msgRepo.On("Create", ctx, mock.AnythingOfType("*domain.Message")).Return(errStoreDown)
	msgRepo.On("ListByRoom", ctx, "7", 100).Return(nil, errStoreDown)

	svc.SendMessage(ctx, dto.SendMessageData{
		RoomID:     "7",
		RoomCode:   "AB12CD",
		SenderID:   "conn-bob",
		SenderName: "Bob",
		Content:    "hello",
	})

	sent := notifier.byEvent(dto.EvNewMessage)
	require.Len(t, sent, 1, "store failure must not suppress or duplicate delivery")
	data := sent[0].event.Data.(dto.MessageData)
	assert.True(t, strings.HasPrefix(data.ID, "mem-"))

	// The message survives in the in-memory log.
	listed := svc.ListMessages(ctx, "7", 100)
	require.Len(t, listed, 1)
	assert.Equal(t, "hello", listed[0].Content)
}

func TestMessageService_SendMessage_FileKind(t *testing.T) {
	svc, msgRepo, _, notifier := newMessageService(t)
	ctx := context.Background()

	msgRepo.On("Create", ctx, mock.MatchedBy(func(msg *domain.Message) bool {
		return msg.Kind == domain.MessageKindFile && msg.FileURL == "https://cdn.example.com/a.pdf"
	})).Return(nil).Once()

	svc.SendMessage(ctx, dto.SendMessageData{
		RoomID:   "7",
		RoomCode: "AB12CD",
		SenderID: "conn-bob",
		Type:     domain.MessageKindFile,
		FileURL:  "https://cdn.example.com/a.pdf",
		FileName: "a.pdf",
	})

	sent := notifier.byEvent(dto.EvNewMessage)
	require.Len(t, sent, 1)
	data := sent[0].event.Data.(dto.MessageData)
	assert.Equal(t, "a.pdf", data.FileName)
	msgRepo.AssertExpectations(t)
}

func TestMessageService_MarkRead_NotFound(t *testing.T) {
	svc, msgRepo, _, _ := newMessageService(t)
	ctx := context.Background()

	msgRepo.On("AppendRead", ctx, uint(99), "conn-bob").
		Return(repository.ErrMessageNotFound).Once()

	err := svc.MarkRead(ctx, 99, "conn-bob")
	assert.ErrorIs(t, err, service.ErrMessageNotFound)
	msgRepo.AssertExpectations(t)
}

func TestMessageService_BroadcastSystemMessage_NotPersisted(t *testing.T) {
	svc, msgRepo, _, notifier := newMessageService(t)

	svc.BroadcastSystemMessage("ab12cd", "Security settings updated by host", "2026-08-28T10:00:00Z")

	sent := notifier.byEvent(dto.EvNewMessage)
	require.Len(t, sent, 1)
	assert.Equal(t, "AB12CD", sent[0].room)

	data := sent[0].event.Data.(dto.MessageData)
	assert.Equal(t, "system", data.SenderID)
	assert.Equal(t, domain.MessageKindSystem, data.Type)
	assert.True(t, strings.HasPrefix(data.ID, "security_"))

	// No repository interaction at all for synthetic messages.
	msgRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMessageService_RelayTyping_SkipsSender(t *testing.T) {
	svc, _, _, notifier := newMessageService(t)

	svc.RelayTyping("AB12CD", "conn-bob", "Bob", true)

	sent := notifier.byEvent(dto.EvUserTyping)
	require.Len(t, sent, 1)
	assert.Equal(t, "broadcast_except", sent[0].kind)
	assert.Equal(t, "conn-bob", sent[0].target)
}
