package contract

import (
	"context"

	"github.com/Stellarhold170NT/therapy/internal/entity"
)

// ScoredPassage wraps a PassageEmbedding with its raw distance score.
// The score is the pgvector cosine distance (`<=>`): lower means more
// similar. It is passed through to callers unmodified.
type ScoredPassage struct {
	Passage  *entity.PassageEmbedding
	Distance float64
}

type PassageEmbeddingRepository interface {
	// Count reports how many live chunks exist for an index address.
	// Zero means the index has not been built.
	Count(ctx context.Context, collection string) (int64, error)

	// SearchSimilar returns the limit nearest passages, most similar first,
	// without scores.
	SearchSimilar(ctx context.Context, collection string, embedding []float32, limit int) ([]*entity.PassageEmbedding, error)

	// SearchSimilarWithScore returns the limit nearest passages with their
	// distances, ordered by distance ascending.
	SearchSimilarWithScore(ctx context.Context, collection string, embedding []float32, limit int) ([]*ScoredPassage, error)
}
