package retrieval

import (
	"context"
	"math"

	"github.com/Stellarhold170NT/therapy/internal/repository/contract"
)

// retrieveMMR fetches an oversized candidate pool and greedily re-ranks it
// with maximal marginal relevance, trading raw closeness for diversity.
func (r *Retriever) retrieveMMR(ctx context.Context, collection string, queryVector []float32, k int) (*Result, error) {
	fetchK := k * mmrFetchMultiplier

	candidates, err := r.repo.SearchSimilarWithScore(ctx, collection, queryVector, fetchK)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &Result{
			Passages: []string{},
			Scores:   []float64{},
			Metadata: []map[string]interface{}{},
		}, nil
	}

	selected := mmrSelect(queryVector, candidates, k)
	return scoredResult(selected), nil
}

// mmrSelect picks up to k candidates maximising
// lambda*sim(query, doc) - (1-lambda)*max(sim(doc, picked)).
func mmrSelect(queryVector []float32, candidates []*contract.ScoredPassage, k int) []*contract.ScoredPassage {
	if k > len(candidates) {
		k = len(candidates)
	}

	querySims := make([]float64, len(candidates))
	for i, c := range candidates {
		querySims[i] = cosineSimilarity(queryVector, c.Passage.Embedding)
	}

	selected := make([]*contract.ScoredPassage, 0, k)
	selectedIdx := make([]int, 0, k)
	used := make([]bool, len(candidates))

	for len(selected) < k {
		bestIdx := -1
		bestScore := math.Inf(-1)

		for i := range candidates {
			if used[i] {
				continue
			}
			maxRedundancy := 0.0
			for _, j := range selectedIdx {
				sim := cosineSimilarity(candidates[i].Passage.Embedding, candidates[j].Passage.Embedding)
				if sim > maxRedundancy {
					maxRedundancy = sim
				}
			}
			score := mmrLambda*querySims[i] - (1-mmrLambda)*maxRedundancy
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		if bestIdx < 0 {
			break
		}
		used[bestIdx] = true
		selectedIdx = append(selectedIdx, bestIdx)
		selected = append(selected, candidates[bestIdx])
	}

	return selected
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
