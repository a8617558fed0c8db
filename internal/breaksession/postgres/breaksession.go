package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/workforce-presence/internal/breaksession"
	breakDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/breaksession"
	"gorm.io/gorm"
)

// BreakSessionRepository implements breaksession.RepositoryAPI using GORM
type BreakSessionRepository struct {
	db *gorm.DB
}

func NewBreakSessionRepository(db *gorm.DB) breaksession.RepositoryAPI {
	return &BreakSessionRepository{db: db}
}

func (r *BreakSessionRepository) Create(ctx context.Context, b *breakDatamodel.BreakSession) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BreakSessionRepository) GetByID(ctx context.Context, id string) (*breakDatamodel.BreakSession, error) {
	var b breakDatamodel.BreakSession
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, breaksession.ErrBreakNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *BreakSessionRepository) End(ctx context.Context, id string, endTime time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&breakDatamodel.BreakSession{}).
		Where("id = ? AND end_time IS NULL", id).
		Update("end_time", endTime)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return breaksession.ErrBreakAlreadyEnded
	}
	return nil
}

func (r *BreakSessionRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&breakDatamodel.BreakSession{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return breaksession.ErrBreakNotFound
	}
	return nil
}

func (r *BreakSessionRepository) List(ctx context.Context, from, to time.Time) ([]*breakDatamodel.BreakSession, error) {
	var rows []*breakDatamodel.BreakSession
	query := r.db.WithContext(ctx)
	if !from.IsZero() {
		query = query.Where("start_time >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("start_time <= ?", to)
	}
	if err := query.Order("start_time DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
