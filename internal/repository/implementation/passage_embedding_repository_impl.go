package implementation

import (
	"context"

	"github.com/Stellarhold170NT/therapy/internal/entity"
	"github.com/Stellarhold170NT/therapy/internal/mapper"
	"github.com/Stellarhold170NT/therapy/internal/model"
	"github.com/Stellarhold170NT/therapy/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PassageEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PassageEmbeddingMapper
}

func NewPassageEmbeddingRepository(db *gorm.DB) contract.PassageEmbeddingRepository {
	return &PassageEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewPassageEmbeddingMapper(),
	}
}

func (r *PassageEmbeddingRepositoryImpl) Count(ctx context.Context, collection string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PassageEmbedding{}).
		Where("collection = ?", collection).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PassageEmbeddingRepositoryImpl) SearchSimilar(ctx context.Context, collection string, queryVector []float32, limit int) ([]*entity.PassageEmbedding, error) {
	var ms []*model.PassageEmbedding
	// Order must go through Clauses: gorm's Order only understands strings
	// and OrderBy clauses, a bare expression is dropped from the statement.
	err := r.db.WithContext(ctx).
		Where("collection = ?", collection).
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:  "embedding <=> ?",
			Vars: []interface{}{pgvector.NewVector(queryVector)},
		}}).
		Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	passages := make([]*entity.PassageEmbedding, 0, len(ms))
	for _, m := range ms {
		passages = append(passages, r.mapper.ToEntity(m))
	}
	return passages, nil
}

// scoredRow carries the cosine distance computed by pgvector alongside the
// row itself. Distances come back exactly as the operator produced them.
type scoredRow struct {
	model.PassageEmbedding
	Distance float64 `gorm:"column:distance"`
}

func (r *PassageEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, collection string, queryVector []float32, limit int) ([]*contract.ScoredPassage, error) {
	var rows []*scoredRow
	err := r.db.WithContext(ctx).
		Model(&model.PassageEmbedding{}).
		Select("passage_embeddings.*, embedding <=> ? AS distance", pgvector.NewVector(queryVector)).
		Where("collection = ?", collection).
		Order("distance ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	scored := make([]*contract.ScoredPassage, 0, len(rows))
	for _, row := range rows {
		scored = append(scored, &contract.ScoredPassage{
			Passage:  r.mapper.ToEntity(&row.PassageEmbedding),
			Distance: row.Distance,
		})
	}
	return scored, nil
}
