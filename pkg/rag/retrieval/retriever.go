package retrieval

import (
	"context"
	"strings"

	"github.com/Stellarhold170NT/therapy/internal/constant"
	"github.com/Stellarhold170NT/therapy/internal/entity"
	"github.com/Stellarhold170NT/therapy/internal/repository/contract"
	"github.com/Stellarhold170NT/therapy/pkg/embedding"
)

// DefaultK is used when a configuration carries no k value.
const DefaultK = 10

// mmrFetchMultiplier controls how many candidates MMR draws before
// re-ranking down to k.
const mmrFetchMultiplier = 4

// mmrLambda balances relevance against diversity in MMR re-ranking.
const mmrLambda = 0.5

// Result is one retrieval pass over the vector index. Scores holds the raw
// backend distances in the same order as Passages (lower means more similar)
// and is nil when the scored search path was unavailable.
type Result struct {
	Passages []string
	Scores   []float64
	Metadata []map[string]interface{}
}

// ContextText joins the retrieved passages with blank lines, in order.
func (r *Result) ContextText() string {
	return strings.Join(r.Passages, "\n\n")
}

// Retriever answers similarity queries against a passage collection.
type Retriever struct {
	repo contract.PassageEmbeddingRepository
}

func NewRetriever(repo contract.PassageEmbeddingRepository) *Retriever {
	return &Retriever{repo: repo}
}

// Retrieve embeds the query and fetches the k closest passages. The scored
// search path is tried first; when it fails the plain path serves as a
// fallback and Scores comes back nil. searchType selects between plain
// similarity and MMR re-ranking.
func (r *Retriever) Retrieve(ctx context.Context, embedder embedding.EmbeddingProvider, collection, searchType, query string, k int) (*Result, error) {
	if k <= 0 {
		k = DefaultK
	}

	emb, err := embedder.Generate(ctx, query)
	if err != nil {
		return nil, err
	}
	queryVector := emb.Embedding.Values

	if searchType == constant.SearchTypeMMR {
		return r.retrieveMMR(ctx, collection, queryVector, k)
	}

	scored, err := r.repo.SearchSimilarWithScore(ctx, collection, queryVector, k)
	if err == nil {
		return scoredResult(scored), nil
	}

	// Scored search failed; degrade to the plain path with no scores.
	passages, err := r.repo.SearchSimilar(ctx, collection, queryVector, k)
	if err != nil {
		return nil, err
	}
	return plainResult(passages), nil
}

func scoredResult(scored []*contract.ScoredPassage) *Result {
	res := &Result{
		Passages: make([]string, 0, len(scored)),
		Scores:   make([]float64, 0, len(scored)),
		Metadata: make([]map[string]interface{}, 0, len(scored)),
	}
	for _, s := range scored {
		res.Passages = append(res.Passages, s.Passage.Content)
		res.Scores = append(res.Scores, s.Distance)
		res.Metadata = append(res.Metadata, s.Passage.Metadata)
	}
	return res
}

func plainResult(passages []*entity.PassageEmbedding) *Result {
	res := &Result{
		Passages: make([]string, 0, len(passages)),
		Metadata: make([]map[string]interface{}, 0, len(passages)),
	}
	for _, p := range passages {
		res.Passages = append(res.Passages, p.Content)
		res.Metadata = append(res.Metadata, p.Metadata)
	}
	return res
}
