package ingest

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/krasmussen37/tss/internal/transcript"
)

// MigrateReport accounts for every row of a legacy import.
type MigrateReport struct {
	Imported int               `json:"imported"`
	Skipped  int               `json:"skipped"`
	Failed   []MigrateRowError `json:"failed,omitempty"`
	DryRun   bool              `json:"dry_run"`
}

// MigrateRowError is one legacy row that could not be mapped. Rows fail
// in isolation; the migration continues past them.
type MigrateRowError struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// legacyMetaColumns maps optional columns of the legacy transcripts table
// to metadata keys on the canonical model. New legacy variants are
// additive here.
var legacyMetaColumns = []struct {
	column  string
	metaKey string
}{
	{"organizer_email", "organizer_email"},
	{"transcript_url", "transcript_url"},
	{"audio_url", "audio_url"},
	{"file_path", "file_path"},
}

// Migrate imports transcripts from the legacy Python transcripts.db,
// routing every row through the same normalize/upsert path as file
// ingestion. Rows whose IDs already exist locally are skipped.
func (ing *Ingestor) Migrate(legacyPath string, dryRun bool) (*MigrateReport, error) {
	if _, err := os.Stat(legacyPath); err != nil {
		return nil, fmt.Errorf("open legacy database: %w", err)
	}
	src, err := sql.Open("sqlite", "file:"+legacyPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open legacy database %s: %w", legacyPath, err)
	}
	defer src.Close()

	cols := "id, source, title, date, duration_seconds, raw_text, summary"
	for _, m := range legacyMetaColumns {
		cols += ", " + m.column
	}
	rows, err := src.Query("SELECT " + cols + " FROM transcripts ORDER BY date")
	if err != nil {
		return nil, fmt.Errorf("read legacy transcripts: %w", err)
	}
	defer rows.Close()

	report := &MigrateReport{DryRun: dryRun}
	for rows.Next() {
		draft, rowErr := scanLegacyRow(rows)
		if rowErr != nil {
			report.Failed = append(report.Failed, *rowErr)
			continue
		}

		exists, err := ing.Store.Exists(draft.ID)
		if err != nil {
			return report, err
		}
		if exists {
			report.Skipped++
			continue
		}

		if err := loadLegacyChildren(src, draft); err != nil {
			report.Failed = append(report.Failed, MigrateRowError{ID: draft.ID, Reason: err.Error()})
			continue
		}

		t, err := ing.Norm.Normalize(draft, transcript.Options{})
		if err != nil {
			report.Failed = append(report.Failed, MigrateRowError{ID: draft.ID, Reason: err.Error()})
			continue
		}
		if dryRun {
			report.Imported++
			continue
		}
		if err := ing.Store.Upsert(t); err != nil {
			return report, err
		}
		report.Imported++
	}
	if err := rows.Err(); err != nil {
		return report, fmt.Errorf("iterate legacy transcripts: %w", err)
	}
	return report, nil
}

func scanLegacyRow(rows *sql.Rows) (*transcript.Draft, *MigrateRowError) {
	d := &transcript.Draft{Format: transcript.FormatJSON}
	metaVals := make([]sql.NullString, len(legacyMetaColumns))

	dest := []any{&d.ID, &d.Source, &d.Title, &d.Date, &d.Duration, &d.RawText, &d.Summary}
	for i := range metaVals {
		dest = append(dest, &metaVals[i])
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, &MigrateRowError{ID: d.ID, Reason: fmt.Sprintf("scan: %v", err)}
	}

	for i, m := range legacyMetaColumns {
		if metaVals[i].Valid && metaVals[i].String != "" {
			if d.Metadata == nil {
				d.Metadata = map[string]any{}
			}
			d.Metadata[m.metaKey] = metaVals[i].String
		}
	}
	return d, nil
}

func loadLegacyChildren(src *sql.DB, d *transcript.Draft) error {
	segRows, err := src.Query(`
        SELECT speaker, text, start_time, end_time, segment_index
        FROM transcript_segments WHERE transcript_id = ? ORDER BY segment_index`, d.ID)
	if err != nil {
		return fmt.Errorf("read segments: %w", err)
	}
	defer segRows.Close()
	for segRows.Next() {
		var seg transcript.Segment
		if err := segRows.Scan(&seg.Speaker, &seg.Text, &seg.Start, &seg.End, &seg.Index); err != nil {
			return fmt.Errorf("scan segment: %w", err)
		}
		d.Segments = append(d.Segments, seg)
	}
	if err := segRows.Err(); err != nil {
		return err
	}

	if d.Speakers, err = legacyColumn(src, `SELECT speaker_name FROM transcript_speakers WHERE transcript_id = ?`, d.ID); err != nil {
		return fmt.Errorf("read speakers: %w", err)
	}
	if d.Tags, err = legacyColumn(src, `SELECT tag FROM transcript_tags WHERE transcript_id = ?`, d.ID); err != nil {
		return fmt.Errorf("read tags: %w", err)
	}
	if d.Keywords, err = legacyColumn(src, `SELECT keyword FROM transcript_keywords WHERE transcript_id = ?`, d.ID); err != nil {
		return fmt.Errorf("read keywords: %w", err)
	}

	participants, err := legacyColumn(src, `SELECT email FROM transcript_participants WHERE transcript_id = ?`, d.ID)
	if err != nil {
		return fmt.Errorf("read participants: %w", err)
	}
	if len(participants) > 0 {
		if d.Metadata == nil {
			d.Metadata = map[string]any{}
		}
		d.Metadata["participants"] = participants
	}

	aiRows, err := src.Query(`SELECT title, description, subtasks, priority FROM action_items WHERE transcript_id = ?`, d.ID)
	if err != nil {
		return fmt.Errorf("read action items: %w", err)
	}
	defer aiRows.Close()
	for aiRows.Next() {
		var title, description string
		var subtasks, priority sql.NullString
		if err := aiRows.Scan(&title, &description, &subtasks, &priority); err != nil {
			return fmt.Errorf("scan action item: %w", err)
		}
		text := description
		if text == "" {
			text = title
		}
		var meta map[string]any
		if subtasks.Valid && subtasks.String != "" {
			var v any
			if json.Unmarshal([]byte(subtasks.String), &v) == nil {
				meta = map[string]any{"subtasks": v}
			}
		}
		if priority.Valid && priority.String != "" {
			if meta == nil {
				meta = map[string]any{}
			}
			meta["priority"] = priority.String
		}
		d.ActionItems = append(d.ActionItems, transcript.ActionItem{Text: text, Metadata: meta})
	}
	return aiRows.Err()
}

func legacyColumn(src *sql.DB, query, id string) ([]string, error) {
	rows, err := src.Query(query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
