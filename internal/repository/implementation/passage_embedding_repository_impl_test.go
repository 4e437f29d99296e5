package implementation

import (
	"context"
	"strings"
	"testing"

	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"
)

// newDryRunDB opens a dialect-only gorm instance and captures the SQL each
// query builds, without touching a database.
func newDryRunDB(t *testing.T, captured *string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	err = db.Callback().Query().After("gorm:query").Register("capture_sql", func(tx *gorm.DB) {
		*captured = tx.Statement.SQL.String()
	})
	if err != nil {
		t.Fatalf("register capture callback: %v", err)
	}
	return db
}

func TestSearchSimilarOrdersByDistance(t *testing.T) {
	var sql string
	repo := NewPassageEmbeddingRepository(newDryRunDB(t, &sql))

	_, err := repo.SearchSimilar(context.Background(), "base/cfg", []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("SearchSimilar: %v", err)
	}

	if !strings.Contains(sql, "ORDER BY embedding <=> ?") {
		t.Errorf("query must order by vector distance, got: %s", sql)
	}
	if !strings.Contains(sql, "LIMIT") {
		t.Errorf("query must carry the limit, got: %s", sql)
	}
	if !strings.Contains(sql, "collection = ?") {
		t.Errorf("query must filter by collection, got: %s", sql)
	}
}

func TestSearchSimilarWithScoreSelectsAndOrdersDistance(t *testing.T) {
	var sql string
	repo := NewPassageEmbeddingRepository(newDryRunDB(t, &sql))

	_, err := repo.SearchSimilarWithScore(context.Background(), "base/cfg", []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("SearchSimilarWithScore: %v", err)
	}

	if !strings.Contains(sql, "embedding <=> ? AS distance") {
		t.Errorf("query must select the raw distance, got: %s", sql)
	}
	if !strings.Contains(sql, "ORDER BY distance ASC") {
		t.Errorf("query must order ascending by distance, got: %s", sql)
	}
}
