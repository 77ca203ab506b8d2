package db

import (
	"fmt"
	"strings"
)

// Filters are the structured predicates composed with a full-text match.
// They are bound as SQL parameters, never spliced into the FTS query
// string, so filter values containing FTS syntax cannot corrupt it.
type Filters struct {
	Speaker string
	Source  string
	From    string // inclusive lower date bound
	To      string // inclusive upper date bound
	Tag     string
}

// transcriptConditions renders the filters as AND-able predicates against
// transcript alias t, with matching parameter values.
func (f *Filters) transcriptConditions() ([]string, []any) {
	var conds []string
	var args []any

	if f.Source != "" {
		conds = append(conds, "t.source = ?")
		args = append(args, f.Source)
	}
	if f.From != "" {
		conds = append(conds, "t.date >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		conds = append(conds, "t.date <= ?")
		args = append(args, upperDateBound(f.To))
	}
	if f.Speaker != "" {
		conds = append(conds, "t.id IN (SELECT transcript_id FROM speakers WHERE name = ?)")
		args = append(args, f.Speaker)
	}
	if f.Tag != "" {
		conds = append(conds, "t.id IN (SELECT transcript_id FROM tags WHERE tag = ?)")
		args = append(args, f.Tag)
	}
	return conds, args
}

// upperDateBound widens a date-only bound to the end of that day so the
// range stays inclusive against timestamped rows.
func upperDateBound(to string) string {
	if len(to) == len("2006-01-02") {
		return to + "T23:59:59Z"
	}
	return to
}

// SearchTranscripts runs a transcript-level full-text query. The query
// string is handed to FTS5 verbatim (phrases, OR, prefix *, column:term);
// results are ranked by bm25 with date as the tie-break, and the limit
// truncates after ranking.
func (s *Store) SearchTranscripts(query string, filters *Filters, limit int) ([]TranscriptResult, error) {
	conds, args := filters.transcriptConditions()
	where := strings.Join(append([]string{"transcripts_fts MATCH ?"}, conds...), " AND ")

	sqlStr := fmt.Sprintf(`
        SELECT t.id, t.title, t.date, t.source, t.duration_seconds,
               bm25(transcripts_fts, 5.0, 2.0, 1.0) AS rank,
               snippet(transcripts_fts, 2, '>>>', '<<<', '...', 40) AS snip
        FROM transcripts_fts
        JOIN transcripts t ON t.rowid = transcripts_fts.rowid
        WHERE %s
        ORDER BY rank, t.date DESC
        LIMIT ?`, where)

	allArgs := append([]any{query}, args...)
	allArgs = append(allArgs, limit)

	rows, err := s.db.Query(sqlStr, allArgs...)
	if err != nil {
		return nil, fmt.Errorf("search transcripts: %w", err)
	}
	defer rows.Close()

	var results []TranscriptResult
	for rows.Next() {
		var r TranscriptResult
		if err := rows.Scan(&r.ID, &r.Title, &r.Date, &r.Source, &r.Duration, &r.Rank, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scan transcript result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// SearchSegments runs a segment-level full-text query; each hit carries
// its speaker, time offsets, and parent transcript context. The speaker
// filter applies to the matched segment itself at this granularity.
func (s *Store) SearchSegments(query string, filters *Filters, limit int) ([]SegmentResult, error) {
	segFilters := *filters
	segFilters.Speaker = ""
	conds, args := segFilters.transcriptConditions()
	if filters.Speaker != "" {
		conds = append(conds, "s.speaker = ?")
		args = append(args, filters.Speaker)
	}
	where := strings.Join(append([]string{"segments_fts MATCH ?"}, conds...), " AND ")

	sqlStr := fmt.Sprintf(`
        SELECT s.transcript_id, t.title, s.id, s.speaker, s.text,
               s.start_time, s.end_time,
               bm25(segments_fts, 2.0, 1.0) AS rank
        FROM segments_fts
        JOIN segments s ON s.rowid = segments_fts.rowid
        JOIN transcripts t ON t.id = s.transcript_id
        WHERE %s
        ORDER BY rank, t.date DESC
        LIMIT ?`, where)

	allArgs := append([]any{query}, args...)
	allArgs = append(allArgs, limit)

	rows, err := s.db.Query(sqlStr, allArgs...)
	if err != nil {
		return nil, fmt.Errorf("search segments: %w", err)
	}
	defer rows.Close()

	var results []SegmentResult
	for rows.Next() {
		var r SegmentResult
		if err := rows.Scan(&r.TranscriptID, &r.TranscriptTitle, &r.SegmentID, &r.Speaker, &r.Text, &r.Start, &r.End, &r.Rank); err != nil {
			return nil, fmt.Errorf("scan segment result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// List returns transcripts matching the filters without a text query,
// sorted by date (default) or title.
func (s *Store) List(filters *Filters, sort string, limit int) ([]TranscriptResult, error) {
	conds, args := filters.transcriptConditions()
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	orderBy := "t.date DESC"
	if sort == "title" {
		orderBy = "t.title ASC"
	}

	sqlStr := fmt.Sprintf(`
        SELECT t.id, t.title, t.date, t.source, t.duration_seconds
        FROM transcripts t
        %s
        ORDER BY %s
        LIMIT ?`, where, orderBy)

	rows, err := s.db.Query(sqlStr, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()

	var results []TranscriptResult
	for rows.Next() {
		var r TranscriptResult
		if err := rows.Scan(&r.ID, &r.Title, &r.Date, &r.Source, &r.Duration); err != nil {
			return nil, fmt.Errorf("scan transcript row: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
