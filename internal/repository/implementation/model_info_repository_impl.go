package implementation

import (
	"context"
	"errors"

	"github.com/Stellarhold170NT/therapy/internal/entity"
	"github.com/Stellarhold170NT/therapy/internal/mapper"
	"github.com/Stellarhold170NT/therapy/internal/model"
	"github.com/Stellarhold170NT/therapy/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ModelInfoRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ModelInfoMapper
}

func NewModelInfoRepository(db *gorm.DB) contract.ModelInfoRepository {
	return &ModelInfoRepositoryImpl{
		db:     db,
		mapper: mapper.NewModelInfoMapper(),
	}
}

func (r *ModelInfoRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.ModelInfo, error) {
	var m model.ModelInfo
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}
