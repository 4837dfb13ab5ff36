package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/domain"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/service"
)

// RoomHandler exposes room lookup and creation over REST, mirroring what
// the websocket surface offers so polling clients can bootstrap state.
type RoomHandler struct {
	roomService    *service.RoomService
	messageService *service.MessageService
}

func NewRoomHandler(roomService *service.RoomService, messageService *service.MessageService) *RoomHandler {
	return &RoomHandler{roomService: roomService, messageService: messageService}
}

// CreateRoomRequest is the POST /api/rooms body. Code is optional; a
// random one is generated when absent.
type CreateRoomRequest struct {
	Name     string `json:"name" binding:"required"`
	Code     string `json:"code"`
	HostID   string `json:"hostId"`
	HostName string `json:"hostName"`
}

// CreateRoom handles POST /api/rooms.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Code == "" {
		req.Code = domain.GenerateCode(6)
	}
	logCtx := logrus.WithFields(logrus.Fields{"room_name": req.Name})

	room, err := h.roomService.CreateRoom(c.Request.Context(), req.Name, req.Code, req.HostID, req.HostName)
	if err != nil {
		if errors.Is(err, service.ErrRoomCodeTaken) {
			ErrorResponse(c, http.StatusConflict, "Room code already in use")
			return
		}
		logCtx.WithError(err).Error("Handler.CreateRoom: service call failed")
		ErrorResponse(c, http.StatusInternalServerError, "Failed to create room")
		return
	}

	SuccessResponse(c, http.StatusCreated, gin.H{"room": room})
}

// GetRoomByCode handles GET /api/rooms/:code.
func (h *RoomHandler) GetRoomByCode(c *gin.Context) {
	code := c.Param("code")
	room, err := h.roomService.FindRoom(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			ErrorResponse(c, http.StatusNotFound, "Room not found")
			return
		}
		logrus.WithError(err).WithField("room_code", code).Error("Handler.GetRoomByCode: lookup failed")
		ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch room")
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"room": room})
}

// ListMessages handles GET /api/rooms/:code/messages. The path segment
// may be a durable numeric room id or a room code; both name the same
// message log. The result is capped at 100 messages in ascending
// creation order.
func (h *RoomHandler) ListMessages(c *gin.Context) {
	roomID := c.Param("code")

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < limit {
			limit = n
		}
	}

	messages := h.messageService.ListMessages(c.Request.Context(), roomID, limit)
	SuccessResponse(c, http.StatusOK, gin.H{"messages": messages, "count": len(messages)})
}
