package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/domain"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/repository"
)

// GormMessageRepository is the MessageRepository implementation.
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a GormMessageRepository.
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	if db == nil {
		panic("database connection cannot be nil for GormMessageRepository")
	}
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	if msg.Kind == "" {
		msg.Kind = domain.MessageKindText
	}
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("gorm: create message (room %s): %w", msg.RoomID, err)
	}
	return nil
}

func (r *GormMessageRepository) ListByRoom(ctx context.Context, roomID string, limit int) ([]domain.Message, error) {
	var messages []domain.Message
	q := r.db.WithContext(ctx).
		Preload("ReadBy").
		Where("room_id = ?", roomID).
		Order("created_at asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("gorm: list messages for room %s: %w", roomID, err)
	}
	return messages, nil
}

func (r *GormMessageRepository) AppendRead(ctx context.Context, messageID uint, userID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var msg domain.Message
		if err := tx.First(&msg, messageID).Error; err != nil {
			return err
		}
		return tx.Create(&domain.ReadReceipt{MessageID: messageID, UserID: userID}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrMessageNotFound
		}
		return fmt.Errorf("gorm: append read receipt (message %d): %w", messageID, err)
	}
	return nil
}
