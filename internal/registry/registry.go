// Package registry implements the volatile session registry: presence,
// rooms by code, active call sessions, and the fallback stores used when
// the durable store is unreachable. It is the single coordination point
// for live state; on its own it can always answer "does this room exist".
package registry

import (
	"sync"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/domain"
)

// Registry owns all transient state. One instance per process, passed by
// reference to every component that needs it. Lookup misses return
// ok=false; no operation fails. A single mutex guards all maps because
// the HTTP handlers touch the registry concurrently with the hub loop.
type Registry struct {
	mu sync.RWMutex

	presence    map[string]*domain.Presence    // conn id -> presence
	rooms       map[string]*domain.Room        // uppercase code -> room
	activeCalls map[string]*domain.CallSession // uppercase code -> session

	// Fallback stores, populated only when the durable store fails.
	messages     map[string][]domain.Message    // room id -> ordered log
	joinRequests map[string]*domain.JoinRequest // request id -> request
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		presence:     make(map[string]*domain.Presence),
		rooms:        make(map[string]*domain.Room),
		activeCalls:  make(map[string]*domain.CallSession),
		messages:     make(map[string][]domain.Message),
		joinRequests: make(map[string]*domain.JoinRequest),
	}
}

// --- Presence ---

// RegisterPresence binds a connection to a room, name, and host flag.
// Re-registering overwrites the previous association.
func (r *Registry) RegisterPresence(connID, roomCode, userName string, isHost bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presence[connID] = &domain.Presence{
		ConnID:   connID,
		RoomCode: domain.NormalizeCode(roomCode),
		UserName: userName,
		IsHost:   isHost,
	}
}

// GetPresence returns the presence record for a connection.
func (r *Registry) GetPresence(connID string) (domain.Presence, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.presence[connID]
	if !ok {
		return domain.Presence{}, false
	}
	return *p, true
}

// RemovePresence drops the presence record. No-op when absent.
func (r *Registry) RemovePresence(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.presence, connID)
}

// --- Rooms ---

// UpsertRoom stores a room keyed by its normalized code. The registry
// keeps its own copy so later mutations by callers do not race.
func (r *Registry) UpsertRoom(room *domain.Room) {
	if room == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *room
	cp.Code = domain.NormalizeCode(cp.Code)
	cp.Participants = append([]domain.Participant(nil), room.Participants...)
	r.rooms[cp.Code] = &cp
}

// FindRoomByCode returns a copy of the room stored under code.
func (r *Registry) FindRoomByCode(code string) (*domain.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[domain.NormalizeCode(code)]
	if !ok {
		return nil, false
	}
	cp := *room
	cp.Participants = append([]domain.Participant(nil), room.Participants...)
	return &cp, true
}

// AddRoomParticipant appends a participant to the registry's copy of the
// room, deduplicating by connection id. No-op when the room is unknown.
func (r *Registry) AddRoomParticipant(code string, p domain.Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[domain.NormalizeCode(code)]
	if !ok || room.HasParticipant(p.ConnID) {
		return
	}
	room.Participants = append(room.Participants, p)
}

// RemoveRoomParticipant removes connID from the registry's copy of the
// room. No-op when the room or participant is unknown.
func (r *Registry) RemoveRoomParticipant(code, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[domain.NormalizeCode(code)]
	if !ok {
		return
	}
	room.RemoveParticipant(connID)
}

// --- Active calls ---

// SetActiveCall tracks session as the one call for its room code,
// replacing any session already tracked (last writer wins).
func (r *Registry) SetActiveCall(code string, session *domain.CallSession) {
	if session == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *session
	cp.RoomCode = domain.NormalizeCode(code)
	r.activeCalls[cp.RoomCode] = &cp
}

// GetActiveCall returns the tracked call session for a room code.
func (r *Registry) GetActiveCall(code string) (domain.CallSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.activeCalls[domain.NormalizeCode(code)]
	if !ok {
		return domain.CallSession{}, false
	}
	return *s, true
}

// ClearActiveCall forgets the tracked session. No-op when absent.
func (r *Registry) ClearActiveCall(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.activeCalls, domain.NormalizeCode(code))
}

// --- Fallback message log ---

// AppendMessage appends msg to the in-memory log for its room id.
func (r *Registry) AppendMessage(roomID string, msg domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[roomID] = append(r.messages[roomID], msg)
}

// MessagesFor returns the in-memory log for roomID, oldest first, capped
// at limit (0 means no cap).
func (r *Registry) MessagesFor(roomID string, limit int) []domain.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	log := r.messages[roomID]
	if limit > 0 && len(log) > limit {
		log = log[:limit]
	}
	return append([]domain.Message(nil), log...)
}

// --- Fallback join requests ---

// PutJoinRequest stores a fallback join request keyed by id.
func (r *Registry) PutJoinRequest(req *domain.JoinRequest) {
	if req == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *req
	r.joinRequests[cp.ID] = &cp
}

// GetJoinRequest returns the fallback join request for id.
func (r *Registry) GetJoinRequest(id string) (domain.JoinRequest, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.joinRequests[id]
	if !ok {
		return domain.JoinRequest{}, false
	}
	return *req, true
}

// SetJoinRequestStatus moves a fallback request to status. Transitions out
// of a terminal status are refused; unknown ids are a no-op. Returns true
// when the status was applied.
func (r *Registry) SetJoinRequestStatus(id, status string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.joinRequests[id]
	if !ok || req.Terminal() {
		return false
	}
	req.Status = status
	return true
}
