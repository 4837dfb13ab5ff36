package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/repository"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/tasks"
)

// RoomDeactivateHandler deactivates one room that emptied out earlier. If
// someone rejoined in the meantime the repository refuses the update and
// the task succeeds as a no-op.
type RoomDeactivateHandler struct {
	roomRepo repository.RoomRepository
}

func NewRoomDeactivateHandler(roomRepo repository.RoomRepository) *RoomDeactivateHandler {
	if roomRepo == nil {
		panic("room repository cannot be nil for RoomDeactivateHandler")
	}
	return &RoomDeactivateHandler{roomRepo: roomRepo}
}

// ProcessTask implements asynq.Handler.
func (h *RoomDeactivateHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.RoomDeactivatePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logrus.WithError(err).WithField("task_type", t.Type()).Error("Failed to unmarshal task payload")
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	logCtx := logrus.WithFields(logrus.Fields{"task_type": t.Type(), "room_id": payload.RoomID})

	if err := h.roomRepo.Deactivate(ctx, payload.RoomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			logCtx.Info("Room already gone or repopulated, nothing to deactivate")
			return nil
		}
		logCtx.WithError(err).Error("Failed to deactivate room")
		return fmt.Errorf("deactivate room %d: %w", payload.RoomID, err)
	}

	logCtx.Info("Room deactivated")
	return nil
}

// RoomSweepHandler periodically deactivates empty rooms that have not been
// touched within the cutoff. Scheduled by the bootstrap scheduler.
type RoomSweepHandler struct {
	roomRepo      repository.RoomRepository
	cutoffSeconds int64
}

func NewRoomSweepHandler(roomRepo repository.RoomRepository, cutoffSeconds int64) *RoomSweepHandler {
	if roomRepo == nil {
		panic("room repository cannot be nil for RoomSweepHandler")
	}
	if cutoffSeconds <= 0 {
		cutoffSeconds = 3600
	}
	return &RoomSweepHandler{roomRepo: roomRepo, cutoffSeconds: cutoffSeconds}
}

// ProcessTask implements asynq.Handler.
func (h *RoomSweepHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithField("task_type", t.Type())

	affected, err := h.roomRepo.DeactivateStale(ctx, h.cutoffSeconds)
	if err != nil {
		logCtx.WithError(err).Error("Stale room sweep failed")
		return fmt.Errorf("stale room sweep: %w", err)
	}

	if affected > 0 {
		logCtx.WithField("deactivated", affected).Info("Stale room sweep complete")
	}
	return nil
}
