package service_test

import (
	"sync"
	"time"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/dto"
)

// sentEvent records one notifier call with its routing.
type sentEvent struct {
	kind   string // "broadcast", "broadcast_except", "broadcast_call_except", "send_to"
	room   string
	target string // except conn id, or direct recipient
	event  dto.Outbound
}

// fakeNotifier records every fan-out instead of touching real connections.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentEvent
}

func (f *fakeNotifier) Broadcast(roomCode string, event dto.Outbound) {
	f.record(sentEvent{kind: "broadcast", room: roomCode, event: event})
}

func (f *fakeNotifier) BroadcastExcept(roomCode, exceptConnID string, event dto.Outbound) {
	f.record(sentEvent{kind: "broadcast_except", room: roomCode, target: exceptConnID, event: event})
}

func (f *fakeNotifier) BroadcastCallExcept(roomCode, exceptConnID string, event dto.Outbound) {
	f.record(sentEvent{kind: "broadcast_call_except", room: roomCode, target: exceptConnID, event: event})
}

func (f *fakeNotifier) SendTo(connID string, event dto.Outbound) {
	f.record(sentEvent{kind: "send_to", target: connID, event: event})
}

func (f *fakeNotifier) record(e sentEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, e)
}

// byEvent returns every recorded call carrying the named event.
func (f *fakeNotifier) byEvent(name string) []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentEvent
	for _, e := range f.sent {
		if e.event.Event == name {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeNotifier) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

// enqueuedDeactivation records one room deactivation request.
type enqueuedDeactivation struct {
	roomID uint
	delay  time.Duration
}

// fakeQueue records deactivation enqueues.
type fakeQueue struct {
	mu       sync.Mutex
	enqueued []enqueuedDeactivation
}

func (f *fakeQueue) EnqueueRoomDeactivation(roomID uint, delay time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueued = append(f.enqueued, enqueuedDeactivation{roomID: roomID, delay: delay})
	return nil
}
