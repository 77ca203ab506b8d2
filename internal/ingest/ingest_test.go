package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/krasmussen37/tss/internal/db"
	"github.com/krasmussen37/tss/internal/transcript"
)

func newTestIngestor(t *testing.T) *Ingestor {
	t.Helper()
	store, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ing := New(store)
	n := 0
	ing.Norm.NewID = func() string {
		n++
		return fmt.Sprintf("test-id-%d", n)
	}
	return ing
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestPathsSingleFile(t *testing.T) {
	ing := newTestIngestor(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "meeting.json", `{"id": "m1", "title": "Sync", "raw_text": "notes"}`)

	report, err := ing.Paths(context.Background(), []string{path}, Options{})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if report.Ingested != 1 || report.Failed != 0 {
		t.Fatalf("report = %+v", report)
	}
	if report.Files[0].ID != "m1" {
		t.Errorf("id = %q, want m1", report.Files[0].ID)
	}

	got, err := ing.Store.Get("m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Sync" {
		t.Errorf("title = %q", got.Title)
	}
}

func TestPathsBatchContinuesPastBadFiles(t *testing.T) {
	ing := newTestIngestor(t)
	dir := t.TempDir()
	writeFile(t, dir, "good.json", `{"id": "g1", "raw_text": "fine"}`)
	writeFile(t, dir, "bad.json", `{not json`)
	writeFile(t, dir, "empty.json", `{"id": "e1", "raw_text": ""}`)

	report, err := ing.Paths(context.Background(), []string{dir}, Options{})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if report.Ingested != 1 {
		t.Errorf("ingested = %d, want 1", report.Ingested)
	}
	if report.Failed != 2 {
		t.Errorf("failed = %d, want 2", report.Failed)
	}

	// The good file landed despite its neighbors.
	if ok, _ := ing.Store.Exists("g1"); !ok {
		t.Error("good transcript missing from store")
	}
	if ok, _ := ing.Store.Exists("e1"); ok {
		t.Error("empty-body transcript was stored")
	}
}

func TestPathsDirectorySkipsUnknownExtensions(t *testing.T) {
	ing := newTestIngestor(t)
	dir := t.TempDir()
	writeFile(t, dir, "meeting.md", "## Alice (00:00)\n\nHi.\n")
	writeFile(t, dir, "image.png", "\x89PNG")

	report, err := ing.Paths(context.Background(), []string{dir}, Options{})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(report.Files) != 1 {
		t.Fatalf("files = %d, want only the markdown file", len(report.Files))
	}
	if !strings.HasSuffix(report.Files[0].Path, "meeting.md") {
		t.Errorf("path = %q", report.Files[0].Path)
	}
}

func TestPathsDryRun(t *testing.T) {
	ing := newTestIngestor(t)
	dir := t.TempDir()
	writeFile(t, dir, "meeting.json", `{"id": "m1", "raw_text": "notes"}`)

	report, err := ing.Paths(context.Background(), []string{dir}, Options{DryRun: true})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if report.Ingested != 1 || !report.DryRun {
		t.Fatalf("report = %+v", report)
	}
	if ok, _ := ing.Store.Exists("m1"); ok {
		t.Error("dry run wrote to the store")
	}
}

func TestPathsSourceOverrideBeatsFrontmatter(t *testing.T) {
	ing := newTestIngestor(t)
	dir := t.TempDir()
	writeFile(t, dir, "meeting.md", "---\nsource: zoom\n---\n\nNotes.\n")

	report, err := ing.Paths(context.Background(), []string{dir}, Options{Source: "imported"})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	got, err := ing.Store.Get(report.Files[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Source != "imported" {
		t.Errorf("source = %q, want the override", got.Source)
	}
}

func TestPlainTextTitleFromFilename(t *testing.T) {
	ing := newTestIngestor(t)
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "Some plain notes.\n")

	report, err := ing.Paths(context.Background(), []string{dir}, Options{})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if report.Files[0].Title != "notes" {
		t.Errorf("title = %q, want notes", report.Files[0].Title)
	}
}

func TestReingestReplaces(t *testing.T) {
	ing := newTestIngestor(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "meeting.json", `{"id": "m1", "title": "First", "raw_text": "one"}`)

	if _, err := ing.Paths(context.Background(), []string{path}, Options{}); err != nil {
		t.Fatalf("first ingest: %v", err)
	}

	writeFile(t, dir, "meeting.json", `{"id": "m1", "title": "Second", "raw_text": "two"}`)
	report, err := ing.Paths(context.Background(), []string{path}, Options{})
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if !report.Files[0].Replaced {
		t.Error("replaced = false, want true")
	}

	got, err := ing.Store.Get("m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Second" {
		t.Errorf("title = %q, want the replacement", got.Title)
	}
	st, _ := ing.Store.Stats()
	if st.Transcripts != 1 {
		t.Errorf("transcripts = %d, want 1", st.Transcripts)
	}
}

func TestStdinSniffsFormat(t *testing.T) {
	ing := newTestIngestor(t)

	res, err := ing.Stdin(strings.NewReader(`{"id": "s1", "raw_text": "piped"}`), Options{})
	if err != nil {
		t.Fatalf("stdin ingest: %v", err)
	}
	if res.ID != "s1" {
		t.Errorf("id = %q, want s1", res.ID)
	}

	got, err := ing.Store.Get("s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Source != "unknown" {
		t.Errorf("source = %q, want the json default", got.Source)
	}
}

func TestStdinEmptyInput(t *testing.T) {
	ing := newTestIngestor(t)
	_, err := ing.Stdin(strings.NewReader(""), Options{})
	if err == nil {
		t.Fatal("expected error for empty stdin")
	}
	var ve *transcript.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("error = %T, want *ValidationError", err)
	}
}
