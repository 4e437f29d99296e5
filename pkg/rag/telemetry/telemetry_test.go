package telemetry

import (
	"strings"
	"testing"
	"time"
)

func TestRecordAndGet(t *testing.T) {
	r := NewRecorder(time.Minute)

	r.Record("s1", Snapshot{
		Query:            "what is chapter 3 about",
		NumDocsRetrieved: 2,
		ContextLength:    11,
		RetrievedDocs:    []string{"alpha", "beta"},
		SimilarityScores: []float64{0.1, 0.2},
		ContextPreview:   "alpha\n\nbeta",
	})

	snap, found := r.Get("s1")
	if !found {
		t.Fatal("expected snapshot for s1")
	}
	if snap.Query != "what is chapter 3 about" {
		t.Errorf("Query = %q", snap.Query)
	}
	if snap.NumDocsRetrieved != 2 || len(snap.RetrievedDocs) != 2 {
		t.Errorf("doc counts wrong: %d / %d", snap.NumDocsRetrieved, len(snap.RetrievedDocs))
	}
	if snap.RecordedAt.IsZero() {
		t.Error("RecordedAt must be stamped on record")
	}
}

func TestLastWriteWins(t *testing.T) {
	r := NewRecorder(time.Minute)

	r.Record("s1", Snapshot{Query: "first"})
	r.Record("s1", Snapshot{Query: "second"})

	snap, _ := r.Get("s1")
	if snap.Query != "second" {
		t.Errorf("Query = %q, want the most recent write", snap.Query)
	}
}

func TestMissingSessionReturnsZeroedShape(t *testing.T) {
	r := NewRecorder(time.Minute)

	snap, found := r.Get("never-seen")
	if found {
		t.Error("found must be false for an unknown session")
	}
	if snap.RetrievedDocs == nil || snap.SimilarityScores == nil {
		t.Error("zeroed snapshot must carry empty, non-nil slices")
	}
	if len(snap.RetrievedDocs) != 0 || snap.NumDocsRetrieved != 0 {
		t.Error("zeroed snapshot must be empty")
	}
}

func TestPreviewsAreClipped(t *testing.T) {
	r := NewRecorder(time.Minute)

	longDoc := strings.Repeat("x", passagePreviewChars+100)
	longContext := strings.Repeat("y", contextPreviewChars+100)

	r.Record("s1", Snapshot{
		RetrievedDocs:  []string{longDoc},
		ContextPreview: longContext,
		ContextLength:  len(longContext),
	})

	snap, _ := r.Get("s1")
	if len(snap.RetrievedDocs[0]) != passagePreviewChars {
		t.Errorf("doc preview = %d chars, want %d", len(snap.RetrievedDocs[0]), passagePreviewChars)
	}
	if len(snap.ContextPreview) != contextPreviewChars {
		t.Errorf("context preview = %d chars, want %d", len(snap.ContextPreview), contextPreviewChars)
	}

	// The recorded full length is untouched by preview clipping.
	if snap.ContextLength != contextPreviewChars+100 {
		t.Errorf("ContextLength = %d, want %d", snap.ContextLength, contextPreviewChars+100)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	r := NewRecorder(time.Minute)

	r.Record("a", Snapshot{Query: "qa"})
	r.Record("b", Snapshot{Query: "qb"})

	snapA, _ := r.Get("a")
	snapB, _ := r.Get("b")
	if snapA.Query != "qa" || snapB.Query != "qb" {
		t.Error("sessions must not overwrite each other")
	}
}
