package db

// TranscriptResult is one transcript-level search or list hit.
type TranscriptResult struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Date     string  `json:"date"`
	Source   string  `json:"source"`
	Duration float64 `json:"duration_seconds"`
	Rank     float64 `json:"rank"`
	Snippet  string  `json:"snippet,omitempty"`
}

// SegmentResult is one segment-level search hit with its parent context.
type SegmentResult struct {
	TranscriptID    string  `json:"transcript_id"`
	TranscriptTitle string  `json:"transcript_title"`
	SegmentID       int64   `json:"segment_id"`
	Speaker         string  `json:"speaker"`
	Text            string  `json:"text"`
	Start           float64 `json:"start_time"`
	End             float64 `json:"end_time"`
	Rank            float64 `json:"rank"`
}

// Stats summarizes database contents for the stats and info commands.
type Stats struct {
	Transcripts int64         `json:"transcripts"`
	Segments    int64         `json:"segments"`
	Speakers    int64         `json:"speakers"`
	Tags        int64         `json:"tags"`
	Keywords    int64         `json:"keywords"`
	ActionItems int64         `json:"action_items"`
	Sources     []SourceCount `json:"sources"`
	DBSizeBytes int64         `json:"db_size_bytes"`
}

// SourceCount is the number of transcripts carrying one source label.
type SourceCount struct {
	Source string `json:"source"`
	Count  int64  `json:"count"`
}
