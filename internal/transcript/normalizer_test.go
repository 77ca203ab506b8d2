package transcript

import (
	"errors"
	"testing"
)

// pinned returns a Normalizer whose generated IDs are predictable.
func pinned(id string) *Normalizer {
	return &Normalizer{NewID: func() string { return id }}
}

func TestNormalizeDerivesRawTextFromSegments(t *testing.T) {
	d := &Draft{
		Format: FormatJSON,
		Title:  "Sync",
		Segments: []Segment{
			{Speaker: "Alice", Text: "First point."},
			{Speaker: "Bob", Text: "Second point."},
		},
	}

	tr, err := pinned("id-1").Normalize(d, Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := "First point.\nSecond point."
	if tr.RawText != want {
		t.Errorf("raw text = %q, want %q", tr.RawText, want)
	}
	if len(tr.Segments) != 2 {
		t.Errorf("segments = %d, want 2", len(tr.Segments))
	}
}

func TestNormalizeDerivesSegmentFromRawText(t *testing.T) {
	d := &Draft{Format: FormatText, RawText: "All the notes in one block."}

	tr, err := pinned("id-2").Normalize(d, Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(tr.Segments) != 1 {
		t.Fatalf("segments = %d, want exactly 1 synthetic segment", len(tr.Segments))
	}
	if tr.Segments[0].Text != tr.RawText {
		t.Errorf("segment text = %q, want raw text %q", tr.Segments[0].Text, tr.RawText)
	}
}

func TestNormalizeEmptyBody(t *testing.T) {
	_, err := pinned("id-3").Normalize(&Draft{Format: FormatJSON, Title: "Empty"}, Options{})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}

	// Whitespace-only raw text is still empty.
	_, err = pinned("id-3").Normalize(&Draft{Format: FormatJSON, RawText: "   \n  "}, Options{})
	if !errors.As(err, &ve) {
		t.Fatalf("whitespace body: error = %v, want *ValidationError", err)
	}
}

func TestNormalizeIdentityPrecedence(t *testing.T) {
	d := &Draft{Format: FormatJSON, ID: "parsed-id", RawText: "body"}

	tr, err := pinned("generated").Normalize(d, Options{ID: "explicit-id"})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if tr.ID != "explicit-id" {
		t.Errorf("id = %q, want explicit-id", tr.ID)
	}

	tr, err = pinned("generated").Normalize(d, Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if tr.ID != "parsed-id" {
		t.Errorf("id = %q, want parsed-id", tr.ID)
	}

	d.ID = ""
	tr, err = pinned("generated").Normalize(d, Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if tr.ID != "generated" {
		t.Errorf("id = %q, want generated", tr.ID)
	}
}

func TestNormalizeSourcePrecedence(t *testing.T) {
	d := &Draft{Format: FormatText, Source: "markdown", RawText: "body"}

	tr, err := pinned("x").Normalize(d, Options{Source: "imported"})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if tr.Source != "imported" {
		t.Errorf("source = %q, want the caller's override", tr.Source)
	}

	tr, err = pinned("x").Normalize(d, Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if tr.Source != "markdown" {
		t.Errorf("source = %q, want the parsed label", tr.Source)
	}

	d.Source = ""
	tr, err = pinned("x").Normalize(d, Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if tr.Source != "text" {
		t.Errorf("source = %q, want the format default", tr.Source)
	}
}

func TestNormalizeSpeakerDedupe(t *testing.T) {
	d := &Draft{
		Format:   FormatJSON,
		Speakers: []string{"Alice", "Alice", "Bob"},
		Segments: []Segment{
			{Speaker: "Carol", Text: "hi"},
			{Speaker: "Alice", Text: "hello"},
		},
	}

	tr, err := pinned("x").Normalize(d, Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := []string{"Alice", "Bob", "Carol"}
	if len(tr.Speakers) != len(want) {
		t.Fatalf("speakers = %v, want %v", tr.Speakers, want)
	}
	for i := range want {
		if tr.Speakers[i] != want[i] {
			t.Errorf("speakers[%d] = %q, want %q", i, tr.Speakers[i], want[i])
		}
	}
}

func TestNormalizeReindexesSegments(t *testing.T) {
	d := &Draft{
		Format: FormatJSON,
		Segments: []Segment{
			{Text: "a", Index: 7},
			{Text: "b", Index: 3},
		},
	}

	tr, err := pinned("x").Normalize(d, Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	for i, s := range tr.Segments {
		if s.Index != i {
			t.Errorf("segment %d index = %d, want %d", i, s.Index, i)
		}
	}
}

func TestNormalizeTitleDefault(t *testing.T) {
	tr, err := pinned("x").Normalize(&Draft{Format: FormatText, RawText: "body", Title: "  "}, Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if tr.Title != "Untitled" {
		t.Errorf("title = %q, want Untitled", tr.Title)
	}
}
