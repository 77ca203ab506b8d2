package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/krasmussen37/tss/internal/transcript"
)

// ErrNotFound is returned by lookups for an ID with no stored transcript.
var ErrNotFound = errors.New("transcript not found")

// Upsert stores a transcript and all its children in one transaction.
// Re-ingesting an existing ID replaces the row and every dependent row;
// the FTS triggers regenerate index entries inside the same transaction,
// so readers never observe partial state or a stale index.
func (s *Store) Upsert(t *transcript.Transcript) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"segments", "speakers", "tags", "keywords", "action_items"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE transcript_id = ?`, t.ID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	meta, err := marshalMetadata(t.Metadata)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        INSERT INTO transcripts (id, title, date, duration_seconds, source, summary, raw_text, metadata)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            title = excluded.title,
            date = excluded.date,
            duration_seconds = excluded.duration_seconds,
            source = excluded.source,
            summary = excluded.summary,
            raw_text = excluded.raw_text,
            metadata = excluded.metadata,
            updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`,
		t.ID, t.Title, t.Date, t.Duration, t.Source, t.Summary, t.RawText, meta)
	if err != nil {
		return fmt.Errorf("upsert transcript %s: %w", t.ID, err)
	}

	for _, name := range t.Speakers {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO speakers (transcript_id, name) VALUES (?, ?)`, t.ID, name); err != nil {
			return fmt.Errorf("insert speaker: %w", err)
		}
	}
	for _, seg := range t.Segments {
		_, err := tx.Exec(`
            INSERT INTO segments (transcript_id, speaker, text, start_time, end_time, segment_index)
            VALUES (?, ?, ?, ?, ?, ?)`,
			t.ID, seg.Speaker, seg.Text, seg.Start, seg.End, seg.Index)
		if err != nil {
			return fmt.Errorf("insert segment %d: %w", seg.Index, err)
		}
	}
	for _, tag := range t.Tags {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO tags (transcript_id, tag) VALUES (?, ?)`, t.ID, tag); err != nil {
			return fmt.Errorf("insert tag: %w", err)
		}
	}
	for _, kw := range t.Keywords {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO keywords (transcript_id, keyword) VALUES (?, ?)`, t.ID, kw); err != nil {
			return fmt.Errorf("insert keyword: %w", err)
		}
	}
	for _, ai := range t.ActionItems {
		aiMeta, err := marshalMetadata(ai.Metadata)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO action_items (transcript_id, text, metadata) VALUES (?, ?, ?)`, t.ID, ai.Text, aiMeta); err != nil {
			return fmt.Errorf("insert action item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert %s: %w", t.ID, err)
	}
	return nil
}

// Delete removes a transcript, its children, and its index rows in one
// transaction. Returns false when the ID was not present.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"segments", "speakers", "tags", "keywords", "action_items"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE transcript_id = ?`, id); err != nil {
			return false, fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	res, err := tx.Exec(`DELETE FROM transcripts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete transcript %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete %s: %w", id, err)
	}
	return n > 0, nil
}

// Exists reports whether a transcript with the given ID is stored.
func (s *Store) Exists(id string) (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM transcripts WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("check transcript %s: %w", id, err)
	}
	return n > 0, nil
}

// Get loads a transcript row without its children. Returns ErrNotFound
// when the ID is unknown.
func (s *Store) Get(id string) (*transcript.Transcript, error) {
	row := s.db.QueryRow(`
        SELECT id, title, date, duration_seconds, source, summary, raw_text, metadata, created_at, updated_at
        FROM transcripts WHERE id = ?`, id)

	var t transcript.Transcript
	var meta sql.NullString
	err := row.Scan(&t.ID, &t.Title, &t.Date, &t.Duration, &t.Source, &t.Summary, &t.RawText, &meta, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan transcript %s: %w", id, err)
	}
	if meta.Valid && meta.String != "" {
		json.Unmarshal([]byte(meta.String), &t.Metadata)
	}
	return &t, nil
}

// Segments returns a transcript's segments in source order.
func (s *Store) Segments(id string) ([]transcript.Segment, error) {
	rows, err := s.db.Query(`
        SELECT speaker, text, start_time, end_time, segment_index
        FROM segments WHERE transcript_id = ? ORDER BY segment_index`, id)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	var segs []transcript.Segment
	for rows.Next() {
		var seg transcript.Segment
		if err := rows.Scan(&seg.Speaker, &seg.Text, &seg.Start, &seg.End, &seg.Index); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		segs = append(segs, seg)
	}
	return segs, rows.Err()
}

// Speakers returns a transcript's speaker names, sorted.
func (s *Store) Speakers(id string) ([]string, error) {
	return s.stringColumn(`SELECT name FROM speakers WHERE transcript_id = ? ORDER BY name`, id)
}

// Tags returns a transcript's tags, sorted.
func (s *Store) Tags(id string) ([]string, error) {
	return s.stringColumn(`SELECT tag FROM tags WHERE transcript_id = ? ORDER BY tag`, id)
}

// Keywords returns a transcript's keywords, sorted.
func (s *Store) Keywords(id string) ([]string, error) {
	return s.stringColumn(`SELECT keyword FROM keywords WHERE transcript_id = ? ORDER BY keyword`, id)
}

// ActionItems returns a transcript's action items.
func (s *Store) ActionItems(id string) ([]transcript.ActionItem, error) {
	rows, err := s.db.Query(`SELECT text, metadata FROM action_items WHERE transcript_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("query action items: %w", err)
	}
	defer rows.Close()

	var items []transcript.ActionItem
	for rows.Next() {
		var ai transcript.ActionItem
		var meta sql.NullString
		if err := rows.Scan(&ai.Text, &meta); err != nil {
			return nil, fmt.Errorf("scan action item: %w", err)
		}
		if meta.Valid && meta.String != "" {
			json.Unmarshal([]byte(meta.String), &ai.Metadata)
		}
		items = append(items, ai)
	}
	return items, rows.Err()
}

// Load returns a transcript with all children attached, or ErrNotFound.
func (s *Store) Load(id string) (*transcript.Transcript, error) {
	t, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if t.Segments, err = s.Segments(id); err != nil {
		return nil, err
	}
	if t.Speakers, err = s.Speakers(id); err != nil {
		return nil, err
	}
	if t.Tags, err = s.Tags(id); err != nil {
		return nil, err
	}
	if t.Keywords, err = s.Keywords(id); err != nil {
		return nil, err
	}
	if t.ActionItems, err = s.ActionItems(id); err != nil {
		return nil, err
	}
	return t, nil
}

// Reindex drops and regenerates both FTS5 indexes from table contents.
// It takes the writer lock, so no upserts or queries through this store
// run against a half-rebuilt index.
func (s *Store) Reindex() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
        INSERT INTO transcripts_fts(transcripts_fts) VALUES('rebuild');
        INSERT INTO segments_fts(segments_fts) VALUES('rebuild');`)
	if err != nil {
		return fmt.Errorf("rebuild fts indexes: %w", err)
	}
	log.Debug("fts indexes rebuilt")
	return nil
}

// Stats summarizes the database contents.
func (s *Store) Stats() (*Stats, error) {
	st := &Stats{}
	counts := []struct {
		query string
		dest  *int64
	}{
		{`SELECT COUNT(*) FROM transcripts`, &st.Transcripts},
		{`SELECT COUNT(*) FROM segments`, &st.Segments},
		{`SELECT COUNT(*) FROM speakers`, &st.Speakers},
		{`SELECT COUNT(DISTINCT tag) FROM tags`, &st.Tags},
		{`SELECT COUNT(DISTINCT keyword) FROM keywords`, &st.Keywords},
		{`SELECT COUNT(*) FROM action_items`, &st.ActionItems},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("count: %w", err)
		}
	}

	rows, err := s.db.Query(`SELECT source, COUNT(*) FROM transcripts GROUP BY source ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("count sources: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sc SourceCount
		if err := rows.Scan(&sc.Source, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan source count: %w", err)
		}
		st.Sources = append(st.Sources, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if fi, err := os.Stat(s.path); err == nil {
		st.DBSizeBytes = fi.Size()
	}
	return st, nil
}

func (s *Store) stringColumn(query string, args ...any) ([]string, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func marshalMetadata(meta map[string]any) (any, error) {
	if len(meta) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return string(data), nil
}
