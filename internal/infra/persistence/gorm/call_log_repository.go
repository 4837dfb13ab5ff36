package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/domain"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/repository"
)

// GormCallLogRepository is the CallLogRepository implementation.
type GormCallLogRepository struct {
	db *gorm.DB
}

// NewGormCallLogRepository creates a GormCallLogRepository.
func NewGormCallLogRepository(db *gorm.DB) *GormCallLogRepository {
	if db == nil {
		panic("database connection cannot be nil for GormCallLogRepository")
	}
	return &GormCallLogRepository{db: db}
}

func (r *GormCallLogRepository) Create(ctx context.Context, log *domain.CallLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("gorm: create call log (room %s): %w", log.RoomID, err)
	}
	return nil
}

func (r *GormCallLogRepository) FindByID(ctx context.Context, id uint) (*domain.CallLog, error) {
	var log domain.CallLog
	err := r.db.WithContext(ctx).Preload("Participants").First(&log, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCallLogNotFound
		}
		return nil, fmt.Errorf("gorm: find call log %d: %w", id, err)
	}
	return &log, nil
}

func (r *GormCallLogRepository) AddParticipant(ctx context.Context, callLogID uint, p domain.CallParticipant) error {
	p.CallLogID = callLogID
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return fmt.Errorf("gorm: add participant %s to call log %d: %w", p.UserID, callLogID, err)
	}
	return nil
}

// Save writes the log row and each participant span explicitly so LeftAt
// updates on existing spans are not missed by association upserts.
func (r *GormCallLogRepository) Save(ctx context.Context, log *domain.CallLog) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Participants").Save(log).Error; err != nil {
			return err
		}
		for i := range log.Participants {
			log.Participants[i].CallLogID = log.ID
			if err := tx.Save(&log.Participants[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("gorm: save call log %d: %w", log.ID, err)
	}
	return nil
}
