// Package tasks defines the asynq task types and their payloads, plus the
// enqueuer the services use to schedule housekeeping work.
package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// Task type names.
const (
	TypeRoomDeactivate = "room:deactivate" // deactivate one emptied room
	TypeRoomSweep      = "room:sweep"      // periodic sweep for stale rooms
)

// RoomDeactivatePayload targets a single durable room.
type RoomDeactivatePayload struct {
	RoomID uint `json:"room_id"`
}

// NewRoomDeactivateTask builds a deactivation task for the given room.
func NewRoomDeactivateTask(roomID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(RoomDeactivatePayload{RoomID: roomID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeRoomDeactivate, payload), nil
}

// NewRoomSweepTask builds the periodic stale-room sweep task. It carries
// no payload; the cutoff lives in worker configuration.
func NewRoomSweepTask() *asynq.Task {
	return asynq.NewTask(TypeRoomSweep, nil)
}

// Enqueuer schedules tasks on the asynq broker. It satisfies the task
// queue dependency of the room service.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	if client == nil {
		panic("asynq client cannot be nil for Enqueuer")
	}
	return &Enqueuer{client: client}
}

// EnqueueRoomDeactivation schedules deactivation of a room after delay.
// Deactivation is housekeeping, so it rides the low priority queue.
func (e *Enqueuer) EnqueueRoomDeactivation(roomID uint, delay time.Duration) error {
	task, err := NewRoomDeactivateTask(roomID)
	if err != nil {
		return err
	}
	_, err = e.client.Enqueue(task, asynq.ProcessIn(delay), asynq.Queue("low"), asynq.MaxRetry(3))
	return err
}

// Close releases the underlying asynq client.
func (e *Enqueuer) Close() error {
	return e.client.Close()
}
