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

// MessageHandler covers message persistence over REST. Unlike the
// websocket path it does not fall back to the session registry: a REST
// client asked for durability explicitly.
type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// CreateMessageRequest is the POST /api/messages body.
type CreateMessageRequest struct {
	RoomID     string `json:"roomId" binding:"required"`
	SenderID   string `json:"senderId" binding:"required"`
	SenderName string `json:"senderName" binding:"required"`
	Content    string `json:"content"`
	Type       string `json:"type"`
	FileURL    string `json:"fileUrl"`
	FileName   string `json:"fileName"`
}

// CreateMessage handles POST /api/messages.
func (h *MessageHandler) CreateMessage(c *gin.Context) {
	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	msg := &domain.Message{
		RoomID:     req.RoomID,
		SenderID:   req.SenderID,
		SenderName: req.SenderName,
		Content:    req.Content,
		Kind:       req.Type,
		FileURL:    req.FileURL,
		FileName:   req.FileName,
	}
	if err := h.messageService.CreateMessage(c.Request.Context(), msg); err != nil {
		logrus.WithError(err).WithField("room_id", req.RoomID).Error("Handler.CreateMessage: persist failed")
		ErrorResponse(c, http.StatusInternalServerError, "Failed to save message")
		return
	}

	SuccessResponse(c, http.StatusCreated, gin.H{"message": msg})
}

// MarkReadRequest is the PUT /api/messages/:messageId/read body.
type MarkReadRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// MarkRead handles PUT /api/messages/:messageId/read.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	messageID, err := strconv.ParseUint(c.Param("messageId"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid message id")
		return
	}

	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.messageService.MarkRead(c.Request.Context(), uint(messageID), req.UserID); err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			ErrorResponse(c, http.StatusNotFound, "Message not found")
			return
		}
		logrus.WithError(err).WithField("message_id", messageID).Error("Handler.MarkRead: update failed")
		ErrorResponse(c, http.StatusInternalServerError, "Failed to mark message read")
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{"messageId": messageID, "userId": req.UserID})
}
