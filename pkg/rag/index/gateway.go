package index

import (
	"context"
	"strings"

	"github.com/Stellarhold170NT/therapy/internal/repository/contract"
)

// SanitizeSlug maps a configuration name onto a filesystem-safe collection
// slug. Letters, digits, '-' and '_' pass through; every other rune becomes
// '_'. The function is idempotent.
func SanitizeSlug(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Address builds the full collection address for a configuration name.
func Address(baseDir, configName string) string {
	return baseDir + "/" + SanitizeSlug(configName)
}

// Handle is an opened, non-empty vector index.
type Handle struct {
	Collection    string
	DocumentCount int64
}

// Gateway resolves configuration names to populated vector indexes.
type Gateway struct {
	repo    contract.PassageEmbeddingRepository
	baseDir string
}

func NewGateway(repo contract.PassageEmbeddingRepository, baseDir string) *Gateway {
	return &Gateway{
		repo:    repo,
		baseDir: baseDir,
	}
}

// Open checks whether a populated index exists for the named configuration.
// A missing or empty index is reported as (nil, nil) rather than an error;
// only storage failures surface.
func (g *Gateway) Open(ctx context.Context, configName string) (*Handle, error) {
	collection := Address(g.baseDir, configName)

	count, err := g.repo.Count(ctx, collection)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	return &Handle{
		Collection:    collection,
		DocumentCount: count,
	}, nil
}
