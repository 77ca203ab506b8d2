// Package transcript defines the canonical transcript model and the parsers
// that normalize heterogeneous input formats into it.
package transcript

// Transcript is the canonical record for one recorded meeting.
type Transcript struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Date        string         `json:"date"` // ISO-8601, empty when unknown
	Duration    float64        `json:"duration_seconds"`
	Source      string         `json:"source"`
	Summary     string         `json:"summary"`
	RawText     string         `json:"raw_text"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Speakers    []string       `json:"speakers,omitempty"`
	Segments    []Segment      `json:"segments,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Keywords    []string       `json:"keywords,omitempty"`
	ActionItems []ActionItem   `json:"action_items,omitempty"`
	CreatedAt   string         `json:"created_at,omitempty"`
	UpdatedAt   string         `json:"updated_at,omitempty"`
}

// Segment is a contiguous span of speech, optionally attributed and
// time-bounded. Start and End are offsets in seconds; zero means unknown.
type Segment struct {
	Speaker string  `json:"speaker,omitempty"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Index   int     `json:"index"`
}

// ActionItem is a free-form follow-up attached to a transcript.
type ActionItem struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Draft is the provisional record a parser produces. Every field is
// optional; the Normalizer fills gaps and enforces invariants.
type Draft struct {
	Format      Format
	ID          string
	Title       string
	Date        string
	Duration    float64
	Source      string
	Summary     string
	RawText     string
	Metadata    map[string]any
	Speakers    []string
	Segments    []Segment
	Tags        []string
	Keywords    []string
	ActionItems []ActionItem
}
