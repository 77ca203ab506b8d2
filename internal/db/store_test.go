package db

import (
	"errors"
	"testing"

	"github.com/krasmussen37/tss/internal/transcript"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sample(id string) *transcript.Transcript {
	return &transcript.Transcript{
		ID:      id,
		Title:   "Quarterly Planning",
		Date:    "2025-06-01T10:00:00Z",
		Source:  "fireflies",
		RawText: "Welcome everyone.\nLet's review the roadmap.",
		Segments: []transcript.Segment{
			{Speaker: "Alice", Text: "Welcome everyone.", Start: 0, End: 3, Index: 0},
			{Speaker: "Bob", Text: "Let's review the roadmap.", Start: 3, End: 8, Index: 1},
		},
		Speakers:    []string{"Alice", "Bob"},
		Tags:        []string{"planning"},
		Keywords:    []string{"roadmap"},
		ActionItems: []transcript.ActionItem{{Text: "Share the roadmap doc"}},
	}
}

func TestUpsertAndLoad(t *testing.T) {
	s := openTestStore(t)

	if err := s.Upsert(sample("t1")); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.Load("t1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Title != "Quarterly Planning" {
		t.Errorf("title = %q", got.Title)
	}
	if len(got.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(got.Segments))
	}
	if got.Segments[0].Speaker != "Alice" || got.Segments[1].Speaker != "Bob" {
		t.Errorf("segment speakers = %q, %q", got.Segments[0].Speaker, got.Segments[1].Speaker)
	}
	if got.Segments[1].Start != 3 || got.Segments[1].End != 8 {
		t.Errorf("segment 1 times = %v-%v, want 3-8", got.Segments[1].Start, got.Segments[1].End)
	}
	if len(got.Speakers) != 2 || len(got.Tags) != 1 || len(got.Keywords) != 1 {
		t.Errorf("children = %v / %v / %v", got.Speakers, got.Tags, got.Keywords)
	}
	if len(got.ActionItems) != 1 || got.ActionItems[0].Text != "Share the roadmap doc" {
		t.Errorf("action items = %+v", got.ActionItems)
	}
	if got.CreatedAt == "" || got.UpdatedAt == "" {
		t.Errorf("timestamps not set: created=%q updated=%q", got.CreatedAt, got.UpdatedAt)
	}
}

func TestUpsertIdempotent(t *testing.T) {
	s := openTestStore(t)

	if err := s.Upsert(sample("t1")); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	updated := sample("t1")
	updated.Title = "Quarterly Planning (revised)"
	updated.Segments = updated.Segments[:1]
	updated.RawText = "Welcome everyone."
	if err := s.Upsert(updated); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	st, err := s.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Transcripts != 1 {
		t.Errorf("transcripts = %d, want 1", st.Transcripts)
	}
	// Children are replaced, not accumulated.
	if st.Segments != 1 {
		t.Errorf("segments = %d, want 1", st.Segments)
	}

	got, err := s.Get("t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Quarterly Planning (revised)" {
		t.Errorf("title = %q, want the replacement", got.Title)
	}
}

func TestDeleteCompleteness(t *testing.T) {
	s := openTestStore(t)

	if err := s.Upsert(sample("t1")); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	deleted, err := s.Delete("t1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Fatal("deleted = false, want true")
	}

	if _, err := s.Get("t1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}

	st, err := s.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Segments != 0 || st.Speakers != 0 || st.Tags != 0 || st.Keywords != 0 || st.ActionItems != 0 {
		t.Errorf("children remain after delete: %+v", st)
	}

	// The index holds nothing for the deleted ID even after a rebuild.
	if err := s.Reindex(); err != nil {
		t.Fatalf("reindex: %v", err)
	}
	hits, err := s.SearchTranscripts("roadmap", &Filters{}, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("search after delete = %d hits, want 0", len(hits))
	}
}

func TestDeleteMissing(t *testing.T) {
	s := openTestStore(t)
	deleted, err := s.Delete("nope")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted {
		t.Error("deleted = true for unknown ID")
	}
}

func TestSearchTranscripts(t *testing.T) {
	s := openTestStore(t)

	if err := s.Upsert(sample("t1")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	other := sample("t2")
	other.Title = "Support Triage"
	other.RawText = "Ticket backlog review."
	other.Segments = []transcript.Segment{{Speaker: "Carol", Text: "Ticket backlog review.", Index: 0}}
	other.Speakers = []string{"Carol"}
	other.Source = "pocket"
	other.Tags = []string{"support"}
	if err := s.Upsert(other); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	hits, err := s.SearchTranscripts("roadmap", &Filters{}, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "t1" {
		t.Fatalf("hits = %+v, want only t1", hits)
	}
	if hits[0].Snippet == "" {
		t.Error("snippet is empty")
	}
}

func TestSearchFilterIntersection(t *testing.T) {
	s := openTestStore(t)

	a := sample("t1")
	if err := s.Upsert(a); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	b := sample("t2")
	b.Date = "2024-01-15T09:00:00Z"
	if err := s.Upsert(b); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Speaker and date range must both hold: t2 matches the speaker but
	// not the range.
	hits, err := s.SearchTranscripts("roadmap", &Filters{
		Speaker: "Alice",
		From:    "2025-01-01",
		To:      "2025-12-31",
	}, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "t1" {
		t.Fatalf("hits = %+v, want only t1", hits)
	}

	// An unmatched speaker empties the result even though the text matches.
	hits, err = s.SearchTranscripts("roadmap", &Filters{Speaker: "Nobody"}, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("hits = %+v, want none", hits)
	}
}

func TestSearchDateOnlyUpperBoundInclusive(t *testing.T) {
	s := openTestStore(t)

	a := sample("t1")
	a.Date = "2025-06-01T18:30:00Z"
	if err := s.Upsert(a); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	hits, err := s.SearchTranscripts("roadmap", &Filters{To: "2025-06-01"}, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("hits = %d, want the same-day transcript included", len(hits))
	}
}

func TestSearchSegments(t *testing.T) {
	s := openTestStore(t)

	if err := s.Upsert(sample("t1")); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	hits, err := s.SearchSegments("roadmap", &Filters{}, 10)
	if err != nil {
		t.Fatalf("search segments: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
	if hits[0].Speaker != "Bob" || hits[0].TranscriptID != "t1" {
		t.Errorf("hit = %+v", hits[0])
	}

	// At segment granularity the speaker filter applies to the matched
	// segment itself.
	hits, err = s.SearchSegments("roadmap", &Filters{Speaker: "Alice"}, 10)
	if err != nil {
		t.Fatalf("search segments: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("hits = %+v, want none for Alice", hits)
	}
}

func TestSearchQuerySyntaxPassthrough(t *testing.T) {
	s := openTestStore(t)

	if err := s.Upsert(sample("t1")); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// FTS5 operators pass through untouched.
	hits, err := s.SearchTranscripts(`"review the roadmap"`, &Filters{}, 10)
	if err != nil {
		t.Fatalf("phrase search: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("phrase hits = %d, want 1", len(hits))
	}

	hits, err = s.SearchTranscripts("road*", &Filters{}, 10)
	if err != nil {
		t.Fatalf("prefix search: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("prefix hits = %d, want 1", len(hits))
	}
}

func TestList(t *testing.T) {
	s := openTestStore(t)

	a := sample("t1")
	a.Date = "2025-06-01T10:00:00Z"
	b := sample("t2")
	b.Title = "Another Meeting"
	b.Date = "2025-06-05T10:00:00Z"
	for _, tr := range []*transcript.Transcript{a, b} {
		if err := s.Upsert(tr); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	results, err := s.List(&Filters{}, "date", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(results) != 2 || results[0].ID != "t2" {
		t.Fatalf("list by date = %+v, want t2 first", results)
	}

	results, err = s.List(&Filters{}, "title", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if results[0].Title != "Another Meeting" {
		t.Errorf("list by title = %+v, want alphabetical", results)
	}
}

func TestSyncState(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.SyncState("fireflies.last_sync_at")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if ok {
		t.Error("ok = true for unset key")
	}

	if err := s.SetSyncState("fireflies.last_sync_at", "2025-06-01T00:00:00Z"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := s.SyncState("fireflies.last_sync_at")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !ok || v != "2025-06-01T00:00:00Z" {
		t.Errorf("value = %q ok=%v", v, ok)
	}

	// Overwrite.
	if err := s.SetSyncState("fireflies.last_sync_at", "2025-07-01T00:00:00Z"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, _, _ = s.SyncState("fireflies.last_sync_at")
	if v != "2025-07-01T00:00:00Z" {
		t.Errorf("value = %q after overwrite", v)
	}
}

func TestStatsSources(t *testing.T) {
	s := openTestStore(t)

	a := sample("t1")
	b := sample("t2")
	b.Source = "pocket"
	for _, tr := range []*transcript.Transcript{a, b} {
		if err := s.Upsert(tr); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	st, err := s.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(st.Sources) != 2 {
		t.Fatalf("sources = %+v, want 2 entries", st.Sources)
	}
	if st.Sources[0].Source != "fireflies" || st.Sources[0].Count != 1 {
		t.Errorf("sources[0] = %+v", st.Sources[0])
	}
}
