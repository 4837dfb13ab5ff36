// Package websocket is the gateway between the wire protocol and the
// coordination core: it upgrades connections, assigns connection ids, and
// dispatches inbound events to the services.
package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/hub"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/service"
)

// Handler upgrades HTTP requests to websocket connections and implements
// hub.EventHandler for their inbound traffic.
type Handler struct {
	upgrader websocket.Upgrader
	hub      *hub.Hub
	rooms    *service.RoomService
	messages *service.MessageService
	calls    *service.CallService
}

// NewHandler creates the gateway handler.
func NewHandler(h *hub.Hub, rooms *service.RoomService, messages *service.MessageService, calls *service.CallService) *Handler {
	if h == nil || rooms == nil || messages == nil || calls == nil {
		panic("hub and services cannot be nil for websocket Handler")
	}
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			// Cross-origin policy is a collaborator concern; the gateway
			// accepts all origins.
			return true
		},
	}
	return &Handler{upgrader: upgrader, hub: h, rooms: rooms, messages: messages, calls: calls}
}

// HandleConnection upgrades the request and registers the connection with
// the hub under a fresh connection id.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logrus.WithError(err).Error("Failed to upgrade connection")
		return
	}

	connID := uuid.NewString()
	client := hub.NewClient(h.hub, conn, connID)

	if !h.hub.QueueMessage(hub.HubMessage{Type: "register", Client: client}) {
		logrus.WithField("conn_id", connID).Error("Hub queue full, rejecting connection")
		client.CloseConn()
		return
	}

	client.Run()
	logrus.WithField("conn_id", connID).Info("Connection established")
}
