// Package hub maintains the set of live websocket connections and their
// two group-membership relations (chat room, call room), and serializes
// all inbound events onto one processing loop.
package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/domain"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/dto"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. SDP offers run large.
	maxMessageSize = 64 * 1024
)

// HubMessage is the unit passed through the hub's internal channel.
type HubMessage struct {
	Type    string // "register", "unregister", "event"
	Client  *Client
	RawData []byte // inbound frame, for "event"
}

// EventHandler receives inbound frames and disconnects from the hub loop.
// The websocket gateway implements it.
type EventHandler interface {
	// HandleEvent processes one inbound frame. It runs on the hub loop:
	// events from the same connection arrive in order, and no two events
	// interleave.
	HandleEvent(client *Client, raw []byte)

	// HandleDisconnect runs after the connection has been removed from
	// every group.
	HandleDisconnect(connID string)
}

// Hub owns the live connection set. Inbound traffic funnels through one
// channel and is dispatched inline, so handlers see a single logical
// execution stream; outbound fan-out is non-blocking per client.
type Hub struct {
	messageChan chan HubMessage

	// Guarded by mu: broadcast entry points are also called from HTTP
	// goroutines via the services.
	mu      sync.RWMutex
	clients map[string]*Client            // conn id -> client
	rooms   map[string]map[string]*Client // room code -> chat group
	calls   map[string]map[string]*Client // room code -> call group
	closed  bool

	handler EventHandler
}

// NewHub creates a Hub. The event handler is attached afterwards via
// SetHandler because the gateway needs the hub first.
func NewHub() *Hub {
	return &Hub{
		messageChan: make(chan HubMessage, 512),
		clients:     make(map[string]*Client),
		rooms:       make(map[string]map[string]*Client),
		calls:       make(map[string]map[string]*Client),
	}
}

// SetHandler attaches the inbound event handler. Must be called before Run.
func (h *Hub) SetHandler(handler EventHandler) {
	if handler == nil {
		panic("event handler cannot be nil for Hub")
	}
	h.handler = handler
}

// Run drives the hub's processing loop. Run it in its own goroutine.
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running")

	for msg := range h.messageChan {
		switch msg.Type {
		case "register":
			h.registerClient(msg.Client)
		case "unregister":
			h.unregisterClient(msg.Client)
		case "event":
			// Inline on purpose: per-connection ordering and handler
			// atomicity depend on this loop staying single-file.
			if h.handler != nil {
				h.handler.HandleEvent(msg.Client, msg.RawData)
			}
		default:
			log.Warnf("Unknown hub message type: %s", msg.Type)
		}
	}
	log.Info("Hub is shutting down")
}

// QueueMessage puts a message on the hub's processing queue without
// blocking. Returns false when the queue is full or the hub is closed.
// Read pumps on hijacked connections outlive the HTTP server's shutdown,
// so the closed check and the send must sit under the same lock as Close.
func (h *Hub) QueueMessage(msg HubMessage) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return false
	}
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithField("message_type", msg.Type).Warn("Hub message channel full, dropping message")
		return false
	}
}

// Close stops the processing loop. Idempotent; later QueueMessage calls
// return false instead of panicking on the closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.messageChan)
}

func (h *Hub) registerClient(client *Client) {
	if client == nil {
		return
	}
	h.mu.Lock()
	h.clients[client.ID()] = client
	h.mu.Unlock()
	logrus.WithField("conn_id", client.ID()).Info("Client registered to hub")
}

func (h *Hub) unregisterClient(client *Client) {
	if client == nil {
		return
	}
	connID := client.ID()

	h.mu.Lock()
	if _, ok := h.clients[connID]; ok {
		delete(h.clients, connID)
		h.dropFromGroups(h.rooms, connID)
		h.dropFromGroups(h.calls, connID)
		close(client.send)
	}
	h.mu.Unlock()
	logrus.WithField("conn_id", connID).Info("Client unregistered from hub")

	if h.handler != nil {
		h.handler.HandleDisconnect(connID)
	}
}

// dropFromGroups removes connID from every group in the relation and
// deletes groups that become empty. Caller holds mu.
func (h *Hub) dropFromGroups(relation map[string]map[string]*Client, connID string) {
	for code, group := range relation {
		if _, ok := group[connID]; ok {
			delete(group, connID)
			if len(group) == 0 {
				delete(relation, code)
			}
		}
	}
}

// --- Group membership ---

// JoinRoomGroup adds the connection to the room's chat group.
func (h *Hub) JoinRoomGroup(roomCode, connID string) {
	h.joinGroup(h.rooms, roomCode, connID)
}

// JoinCallGroup adds the connection to the room's call group. Call
// membership is independent of chat membership.
func (h *Hub) JoinCallGroup(roomCode, connID string) {
	h.joinGroup(h.calls, roomCode, connID)
}

// LeaveCallGroup removes the connection from the room's call group.
func (h *Hub) LeaveCallGroup(roomCode, connID string) {
	h.leaveGroup(h.calls, roomCode, connID)
}

func (h *Hub) joinGroup(relation map[string]map[string]*Client, roomCode, connID string) {
	code := domain.NormalizeCode(roomCode)
	h.mu.Lock()
	defer h.mu.Unlock()
	client, ok := h.clients[connID]
	if !ok {
		return
	}
	group, ok := relation[code]
	if !ok {
		group = make(map[string]*Client)
		relation[code] = group
	}
	group[connID] = client
}

func (h *Hub) leaveGroup(relation map[string]map[string]*Client, roomCode, connID string) {
	code := domain.NormalizeCode(roomCode)
	h.mu.Lock()
	defer h.mu.Unlock()
	group, ok := relation[code]
	if !ok {
		return
	}
	delete(group, connID)
	if len(group) == 0 {
		delete(relation, code)
	}
}

// --- Audience delivery (service.Notifier) ---

// Broadcast sends to every connection in the room's chat group.
func (h *Hub) Broadcast(roomCode string, event dto.Outbound) {
	h.fanOut(h.rooms, roomCode, "", event)
}

// BroadcastExcept sends to the room's chat group minus one connection.
func (h *Hub) BroadcastExcept(roomCode, exceptConnID string, event dto.Outbound) {
	h.fanOut(h.rooms, roomCode, exceptConnID, event)
}

// BroadcastCallExcept sends to the room's call group minus one connection.
func (h *Hub) BroadcastCallExcept(roomCode, exceptConnID string, event dto.Outbound) {
	h.fanOut(h.calls, roomCode, exceptConnID, event)
}

// SendTo sends to one connection. Unknown ids are dropped silently.
func (h *Hub) SendTo(connID string, event dto.Outbound) {
	payload, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).WithField("event", event.Event).Error("Failed to marshal outbound event")
		return
	}
	h.mu.RLock()
	client, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	client.enqueue(payload)
}

func (h *Hub) fanOut(relation map[string]map[string]*Client, roomCode, exceptConnID string, event dto.Outbound) {
	payload, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).WithField("event", event.Event).Error("Failed to marshal outbound event")
		return
	}
	code := domain.NormalizeCode(roomCode)

	// Copy the audience out so delivery happens off the lock.
	h.mu.RLock()
	group := relation[code]
	recipients := make([]*Client, 0, len(group))
	for id, client := range group {
		if id != exceptConnID {
			recipients = append(recipients, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range recipients {
		client.enqueue(payload)
	}
}
