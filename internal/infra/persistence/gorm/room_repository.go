// Package gormpersistence implements the repository interfaces on GORM
// over MySQL. GORM errors are mapped to repository sentinels at this
// boundary; callers never see driver errors as control flow.
package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/domain"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/repository"
)

// GormRoomRepository is the RoomRepository implementation.
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a GormRoomRepository.
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	if db == nil {
		panic("database connection cannot be nil for GormRoomRepository")
	}
	return &GormRoomRepository{db: db}
}

func (r *GormRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	room.Code = domain.NormalizeCode(room.Code)
	err := r.db.WithContext(ctx).Create(room).Error
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: create room (code %s): %w", room.Code, err)
	}
	return nil
}

func (r *GormRoomRepository) FindByCode(ctx context.Context, code string) (*domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("code = ? AND is_active = ?", domain.NormalizeCode(code), true).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find room by code '%s': %w", code, err)
	}
	return &room, nil
}

func (r *GormRoomRepository) AddParticipant(ctx context.Context, roomID uint, p domain.Participant) error {
	p.RoomID = roomID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Participant{}).
			Where("room_id = ? AND conn_id = ?", roomID, p.ConnID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil // already a member
		}
		return tx.Create(&p).Error
	})
	if err != nil {
		return fmt.Errorf("gorm: add participant %s to room %d: %w", p.ConnID, roomID, err)
	}
	return nil
}

func (r *GormRoomRepository) RemoveParticipant(ctx context.Context, code, connID string) error {
	err := r.db.WithContext(ctx).
		Where("conn_id = ? AND room_id IN (?)",
			connID,
			r.db.Model(&domain.Room{}).Select("id").Where("code = ?", domain.NormalizeCode(code)),
		).
		Delete(&domain.Participant{}).Error
	if err != nil {
		return fmt.Errorf("gorm: remove participant %s from room '%s': %w", connID, code, err)
	}
	return nil
}

func (r *GormRoomRepository) Deactivate(ctx context.Context, roomID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Participant{}).
			Where("room_id = ?", roomID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil // somebody came back, keep the room active
		}
		return tx.Model(&domain.Room{}).
			Where("id = ?", roomID).
			Update("is_active", false).Error
	})
	if err != nil {
		return fmt.Errorf("gorm: deactivate room %d: %w", roomID, err)
	}
	return nil
}

func (r *GormRoomRepository) DeactivateStale(ctx context.Context, cutoffSeconds int64) (int64, error) {
	cutoff := time.Now().Add(-time.Duration(cutoffSeconds) * time.Second)
	result := r.db.WithContext(ctx).
		Model(&domain.Room{}).
		Where("is_active = ? AND updated_at < ?", true, cutoff).
		Where("id NOT IN (?)", r.db.Model(&domain.Participant{}).Select("room_id")).
		Update("is_active", false)
	if result.Error != nil {
		return 0, fmt.Errorf("gorm: deactivate stale rooms: %w", result.Error)
	}
	return result.RowsAffected, nil
}
