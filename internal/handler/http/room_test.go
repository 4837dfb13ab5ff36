package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/domain"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/dto"
	httphandler "github.com/huzaifaabbasi630/sharehub-backend/internal/handler/http"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/registry"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/repository"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/repository/mocks"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/service"
)

// noopNotifier satisfies the notifier dependency; REST tests never fan out.
type noopNotifier struct{}

func (noopNotifier) Broadcast(string, dto.Outbound)                  {}
func (noopNotifier) BroadcastExcept(string, string, dto.Outbound)    {}
func (noopNotifier) BroadcastCallExcept(string, string, dto.Outbound) {}
func (noopNotifier) SendTo(string, dto.Outbound)                     {}

type testEnv struct {
	router   *gin.Engine
	roomRepo *mocks.RoomRepository
	msgRepo  *mocks.MessageRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	roomRepo := new(mocks.RoomRepository)
	msgRepo := new(mocks.MessageRepository)
	reqRepo := new(mocks.JoinRequestRepository)
	reg := registry.New()

	roomService := service.NewRoomService(roomRepo, reqRepo, reg, noopNotifier{}, nil)
	messageService := service.NewMessageService(msgRepo, reg, noopNotifier{})

	roomHandler := httphandler.NewRoomHandler(roomService, messageService)
	messageHandler := httphandler.NewMessageHandler(messageService)

	router := gin.New()
	api := router.Group("/api")
	api.POST("/rooms", roomHandler.CreateRoom)
	api.GET("/rooms/:code", roomHandler.GetRoomByCode)
	api.GET("/rooms/:code/messages", roomHandler.ListMessages)
	api.POST("/messages", messageHandler.CreateMessage)
	api.PUT("/messages/:messageId/read", messageHandler.MarkRead)

	return &testEnv{router: router, roomRepo: roomRepo, msgRepo: msgRepo}
}

func (e *testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestRoomHandler_CreateRoom(t *testing.T) {
	env := newTestEnv(t)

	env.roomRepo.On("Create", mock.Anything, mock.MatchedBy(func(room *domain.Room) bool {
		return room.Code == "AB12CD" && room.IsActive
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Room).ID = 7
	}).Return(nil).Once()

	w := env.do(http.MethodPost, "/api/rooms", gin.H{"name": "Standup", "code": "ab12cd", "hostName": "Alice"})

	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Success bool        `json:"success"`
		Room    domain.Room `json:"room"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, uint(7), resp.Room.ID)
	assert.Equal(t, "AB12CD", resp.Room.Code)
	env.roomRepo.AssertExpectations(t)
}

func TestRoomHandler_CreateRoom_GeneratesCode(t *testing.T) {
	env := newTestEnv(t)

	env.roomRepo.On("Create", mock.Anything, mock.MatchedBy(func(room *domain.Room) bool {
		return len(room.Code) == 6
	})).Return(nil).Once()

	w := env.do(http.MethodPost, "/api/rooms", gin.H{"name": "Standup"})
	assert.Equal(t, http.StatusCreated, w.Code)
	env.roomRepo.AssertExpectations(t)
}

func TestRoomHandler_CreateRoom_CodeTaken(t *testing.T) {
	env := newTestEnv(t)

	env.roomRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Room")).
		Return(repository.ErrDuplicateEntry).Once()

	w := env.do(http.MethodPost, "/api/rooms", gin.H{"name": "Standup", "code": "AB12CD"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRoomHandler_CreateRoom_MissingName(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/rooms", gin.H{"code": "AB12CD"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env.roomRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRoomHandler_GetRoomByCode_NotFound(t *testing.T) {
	env := newTestEnv(t)

	env.roomRepo.On("FindByCode", mock.Anything, "NOPE42").
		Return(nil, repository.ErrRoomNotFound).Once()

	w := env.do(http.MethodGet, "/api/rooms/NOPE42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoomHandler_GetRoomByCode_NormalizesCase(t *testing.T) {
	env := newTestEnv(t)

	env.roomRepo.On("FindByCode", mock.Anything, "AB12CD").
		Return(&domain.Room{ID: 7, Code: "AB12CD", Name: "Standup"}, nil).Once()

	w := env.do(http.MethodGet, "/api/rooms/ab12cd", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	env.roomRepo.AssertExpectations(t)
}

func TestRoomHandler_ListMessages_LimitCapped(t *testing.T) {
	env := newTestEnv(t)

	env.msgRepo.On("ListByRoom", mock.Anything, "7", 100).
		Return([]domain.Message{{Content: "hello"}}, nil).Once()

	// An oversized limit query falls back to the 100 cap.
	w := env.do(http.MethodGet, "/api/rooms/7/messages?limit=5000", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []domain.Message `json:"messages"`
		Count    int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	env.msgRepo.AssertExpectations(t)
}

func TestMessageHandler_MarkRead_NotFound(t *testing.T) {
	env := newTestEnv(t)

	env.msgRepo.On("AppendRead", mock.Anything, uint(99), "conn-bob").
		Return(repository.ErrMessageNotFound).Once()

	w := env.do(http.MethodPut, "/api/messages/99/read", gin.H{"userId": "conn-bob"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMessageHandler_MarkRead_BadID(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPut, "/api/messages/not-a-number/read", gin.H{"userId": "conn-bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env.msgRepo.AssertNotCalled(t, "AppendRead", mock.Anything, mock.Anything, mock.Anything)
}

func TestMessageHandler_CreateMessage(t *testing.T) {
	env := newTestEnv(t)

	env.msgRepo.On("Create", mock.Anything, mock.MatchedBy(func(msg *domain.Message) bool {
		return msg.RoomID == "7" && msg.Content == "hello"
	})).Return(nil).Once()

	w := env.do(http.MethodPost, "/api/messages", gin.H{
		"roomId":     "7",
		"senderId":   "conn-bob",
		"senderName": "Bob",
		"content":    "hello",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	env.msgRepo.AssertExpectations(t)
}
