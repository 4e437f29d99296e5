package implementation

import (
	"context"
	"errors"

	"github.com/Stellarhold170NT/therapy/internal/entity"
	"github.com/Stellarhold170NT/therapy/internal/mapper"
	"github.com/Stellarhold170NT/therapy/internal/model"
	"github.com/Stellarhold170NT/therapy/internal/repository/contract"
	"github.com/Stellarhold170NT/therapy/internal/repository/specification"

	"gorm.io/gorm"
)

type RagConfigRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RagConfigMapper
}

func NewRagConfigRepository(db *gorm.DB) contract.RagConfigRepository {
	return &RagConfigRepositoryImpl{
		db:     db,
		mapper: mapper.NewRagConfigMapper(),
	}
}

func (r *RagConfigRepositoryImpl) FindLatest(ctx context.Context) (*entity.RagConfig, error) {
	var m model.RagConfig
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *RagConfigRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RagConfig, error) {
	var m model.RagConfig
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}
