package gormpersistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/domain"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/repository"
)

// GormJoinRequestRepository is the JoinRequestRepository implementation.
type GormJoinRequestRepository struct {
	db *gorm.DB
}

// NewGormJoinRequestRepository creates a GormJoinRequestRepository.
func NewGormJoinRequestRepository(db *gorm.DB) *GormJoinRequestRepository {
	if db == nil {
		panic("database connection cannot be nil for GormJoinRequestRepository")
	}
	return &GormJoinRequestRepository{db: db}
}

func (r *GormJoinRequestRepository) Create(ctx context.Context, req *domain.JoinRequest) error {
	if req.Status == "" {
		req.Status = domain.JoinStatusPending
	}
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("gorm: create join request %s: %w", req.ID, err)
	}
	return nil
}

// UpdateStatus guards the write with status = pending so that terminal
// requests never transition again, even under concurrent approvals.
func (r *GormJoinRequestRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result := r.db.WithContext(ctx).
		Model(&domain.JoinRequest{}).
		Where("id = ? AND status = ?", id, domain.JoinStatusPending).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("gorm: update join request %s to %s: %w", id, status, result.Error)
	}
	if result.RowsAffected == 0 {
		// Either the id is unknown or the request is already terminal.
		var count int64
		if err := r.db.WithContext(ctx).Model(&domain.JoinRequest{}).
			Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("gorm: check join request %s: %w", id, err)
		}
		if count == 0 {
			return repository.ErrRequestNotFound
		}
	}
	return nil
}
