package postgres

import (
	"context"
	"errors"

	processDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/process"
	"github.com/frahmantamala/workforce-presence/internal/process"
	"gorm.io/gorm"
)

// ProcessRepository implements process.RepositoryAPI using GORM
type ProcessRepository struct {
	db *gorm.DB
}

func NewProcessRepository(db *gorm.DB) process.RepositoryAPI {
	return &ProcessRepository{db: db}
}

func (r *ProcessRepository) GetByID(ctx context.Context, id string) (*processDatamodel.Process, error) {
	var p processDatamodel.Process
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, process.ErrProcessNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProcessRepository) List(ctx context.Context) ([]*processDatamodel.Process, error) {
	var rows []*processDatamodel.Process
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
