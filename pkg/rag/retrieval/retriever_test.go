package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/Stellarhold170NT/therapy/internal/constant"
	"github.com/Stellarhold170NT/therapy/internal/entity"
	"github.com/Stellarhold170NT/therapy/internal/repository/contract"
	"github.com/Stellarhold170NT/therapy/pkg/embedding"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingValues{Values: f.vector},
	}, nil
}

type fakeRepo struct {
	scored    []*contract.ScoredPassage
	scoredErr error
	plain     []*entity.PassageEmbedding
	plainErr  error

	scoredLimit int
}

func (f *fakeRepo) Count(ctx context.Context, collection string) (int64, error) {
	return int64(len(f.scored)), nil
}

func (f *fakeRepo) SearchSimilar(ctx context.Context, collection string, emb []float32, limit int) ([]*entity.PassageEmbedding, error) {
	if f.plainErr != nil {
		return nil, f.plainErr
	}
	return f.plain, nil
}

func (f *fakeRepo) SearchSimilarWithScore(ctx context.Context, collection string, emb []float32, limit int) ([]*contract.ScoredPassage, error) {
	f.scoredLimit = limit
	if f.scoredErr != nil {
		return nil, f.scoredErr
	}
	if limit > len(f.scored) {
		limit = len(f.scored)
	}
	return f.scored[:limit], nil
}

func scoredPassage(content string, distance float64, vec []float32) *contract.ScoredPassage {
	return &contract.ScoredPassage{
		Passage: &entity.PassageEmbedding{
			Content:   content,
			Embedding: vec,
			Metadata:  map[string]interface{}{"source": content},
		},
		Distance: distance,
	}
}

func TestRetrieveScoredPath(t *testing.T) {
	repo := &fakeRepo{
		scored: []*contract.ScoredPassage{
			scoredPassage("alpha", 0.12, nil),
			scoredPassage("beta", 0.31, nil),
			scoredPassage("gamma", 0.40, nil),
		},
	}
	r := NewRetriever(repo)

	res, err := r.Retrieve(context.Background(), &fakeEmbedder{vector: []float32{1, 0}}, "base/cfg", constant.SearchTypeSimilarity, "question", 3)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	if len(res.Passages) != 3 || len(res.Scores) != 3 || len(res.Metadata) != 3 {
		t.Fatalf("lengths = %d/%d/%d, want 3/3/3", len(res.Passages), len(res.Scores), len(res.Metadata))
	}

	// Distances pass through unmodified, ascending.
	want := []float64{0.12, 0.31, 0.40}
	for i, s := range res.Scores {
		if s != want[i] {
			t.Errorf("Scores[%d] = %v, want %v", i, s, want[i])
		}
	}

	// Context is the blank-line join, so its length is the passage total
	// plus two separator chars per boundary.
	ctxText := res.ContextText()
	if ctxText != "alpha\n\nbeta\n\ngamma" {
		t.Errorf("ContextText = %q", ctxText)
	}
	wantLen := len("alpha") + len("beta") + len("gamma") + 4
	if len(ctxText) != wantLen {
		t.Errorf("context length = %d, want %d", len(ctxText), wantLen)
	}
}

func TestRetrieveFallsBackToPlainSearch(t *testing.T) {
	repo := &fakeRepo{
		scoredErr: errors.New("scores unavailable"),
		plain: []*entity.PassageEmbedding{
			{Content: "alpha"},
			{Content: "beta"},
		},
	}
	r := NewRetriever(repo)

	res, err := r.Retrieve(context.Background(), &fakeEmbedder{vector: []float32{1}}, "base/cfg", constant.SearchTypeSimilarity, "q", 2)
	if err != nil {
		t.Fatalf("fallback must not surface the scored-path error: %v", err)
	}

	if len(res.Passages) != 2 {
		t.Fatalf("passages = %d, want 2", len(res.Passages))
	}
	if res.Scores != nil {
		t.Errorf("Scores must be nil on the plain fallback, got %v", res.Scores)
	}
}

func TestRetrieveBothPathsFailing(t *testing.T) {
	repo := &fakeRepo{
		scoredErr: errors.New("scored down"),
		plainErr:  errors.New("index down"),
	}
	r := NewRetriever(repo)

	if _, err := r.Retrieve(context.Background(), &fakeEmbedder{vector: []float32{1}}, "base/cfg", constant.SearchTypeSimilarity, "q", 2); err == nil {
		t.Fatal("structural index failure must propagate")
	}
}

func TestRetrieveEmbeddingFailure(t *testing.T) {
	r := NewRetriever(&fakeRepo{})
	if _, err := r.Retrieve(context.Background(), &fakeEmbedder{err: errors.New("embed down")}, "base/cfg", constant.SearchTypeSimilarity, "q", 2); err == nil {
		t.Fatal("embedding failure must propagate")
	}
}

func TestRetrieveDefaultK(t *testing.T) {
	repo := &fakeRepo{scored: []*contract.ScoredPassage{scoredPassage("a", 0.1, nil)}}
	r := NewRetriever(repo)

	if _, err := r.Retrieve(context.Background(), &fakeEmbedder{vector: []float32{1}}, "base/cfg", constant.SearchTypeSimilarity, "q", 0); err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if repo.scoredLimit != DefaultK {
		t.Errorf("requested limit = %d, want %d", repo.scoredLimit, DefaultK)
	}
}

func TestRetrieveMMRPrefersDiversity(t *testing.T) {
	// Two near-duplicates close to the query plus one distinct passage.
	// Plain similarity would return both duplicates; MMR must mix in the
	// distinct one.
	repo := &fakeRepo{
		scored: []*contract.ScoredPassage{
			scoredPassage("dup-1", 0.10, []float32{1, 0}),
			scoredPassage("dup-2", 0.11, []float32{0.999, 0.01}),
			scoredPassage("other", 0.30, []float32{0, 1}),
		},
	}
	r := NewRetriever(repo)

	res, err := r.Retrieve(context.Background(), &fakeEmbedder{vector: []float32{1, 0}}, "base/cfg", constant.SearchTypeMMR, "q", 2)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	if len(res.Passages) != 2 {
		t.Fatalf("passages = %d, want 2", len(res.Passages))
	}
	if res.Passages[0] != "dup-1" {
		t.Errorf("first pick = %q, want the most relevant passage", res.Passages[0])
	}
	if res.Passages[1] != "other" {
		t.Errorf("second pick = %q, want the diverse passage", res.Passages[1])
	}

	// MMR draws an oversized candidate pool.
	if repo.scoredLimit != 2*mmrFetchMultiplier {
		t.Errorf("fetch limit = %d, want %d", repo.scoredLimit, 2*mmrFetchMultiplier)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 0}, b: []float32{1, 0}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 0}, want: 0},
		{name: "length mismatch", a: []float32{1}, b: []float32{1, 0}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("cosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}
