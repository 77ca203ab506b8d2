package transcript

import (
	"strings"

	"github.com/google/uuid"
)

// IDFunc generates an identity for a transcript that arrived without one.
type IDFunc func() string

// Options carries per-ingestion overrides supplied by the caller.
type Options struct {
	// ID is an explicit identity; when set it is used verbatim.
	ID string
	// Source overrides any source label present in the parsed record.
	Source string
}

// Normalizer merges a provisional Draft into a canonical Transcript. ID
// generation is injected so tests can pin identities.
type Normalizer struct {
	NewID IDFunc
}

// NewNormalizer returns a Normalizer that assigns random UUIDs.
func NewNormalizer() *Normalizer {
	return &Normalizer{NewID: uuid.NewString}
}

// Normalize produces a canonical Transcript or a ValidationError.
//
// Resolution order: identity (explicit > parsed > generated), source label
// (override > parsed > format default), then exactly one of the two text
// derivations: raw text from segment texts, or a single synthetic segment
// from raw text. Speakers, tags and keywords are deduplicated by exact
// string match, preserving first-seen order.
func (n *Normalizer) Normalize(d *Draft, opts Options) (*Transcript, error) {
	rawText := strings.TrimSpace(d.RawText)
	if rawText == "" && len(d.Segments) == 0 {
		return nil, &ValidationError{Reason: "empty body: no raw text and no segments"}
	}

	id := opts.ID
	if id == "" {
		id = d.ID
	}
	if id == "" {
		id = n.NewID()
	}

	source := opts.Source
	if source == "" {
		source = d.Source
	}
	if source == "" {
		source = d.Format.defaultSource()
	}

	segments := make([]Segment, len(d.Segments))
	copy(segments, d.Segments)
	for i := range segments {
		segments[i].Index = i
	}

	switch {
	case rawText == "":
		texts := make([]string, len(segments))
		for i, s := range segments {
			texts[i] = s.Text
		}
		rawText = strings.TrimSpace(strings.Join(texts, "\n"))
	case len(segments) == 0:
		segments = []Segment{{Text: rawText}}
	}

	if rawText == "" {
		return nil, &ValidationError{Reason: "empty body: segments contain no text"}
	}

	// Speakers named in the record come first, then any referenced only by
	// segments. Identity is exact name match within this transcript.
	speakers := dedupe(d.Speakers)
	seen := toSet(speakers)
	for _, s := range segments {
		if s.Speaker != "" && !seen[s.Speaker] {
			seen[s.Speaker] = true
			speakers = append(speakers, s.Speaker)
		}
	}

	title := strings.TrimSpace(d.Title)
	if title == "" {
		title = "Untitled"
	}

	return &Transcript{
		ID:          id,
		Title:       title,
		Date:        d.Date,
		Duration:    d.Duration,
		Source:      source,
		Summary:     d.Summary,
		RawText:     rawText,
		Metadata:    d.Metadata,
		Speakers:    speakers,
		Segments:    segments,
		Tags:        dedupe(d.Tags),
		Keywords:    dedupe(d.Keywords),
		ActionItems: d.ActionItems,
	}, nil
}

func dedupe(in []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func toSet(in []string) map[string]bool {
	set := make(map[string]bool, len(in))
	for _, s := range in {
		set[s] = true
	}
	return set
}
