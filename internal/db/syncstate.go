package db

import (
	"database/sql"
	"fmt"
)

// SyncState reads a sync cursor or cached value; ok is false when the key
// has never been written.
func (s *Store) SyncState(key string) (string, bool, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM sync_state WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read sync state %s: %w", key, err)
	}
	return v, true, nil
}

// SetSyncState upserts a sync cursor or cached value.
func (s *Store) SetSyncState(key, value string) error {
	_, err := s.db.Exec(`
        INSERT INTO sync_state (key, value, updated_at)
        VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
        ON CONFLICT(key) DO UPDATE SET value = excluded.value,
            updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`, key, value)
	if err != nil {
		return fmt.Errorf("write sync state %s: %w", key, err)
	}
	return nil
}

// StartSyncRun records the beginning of a sync run and returns its ID.
func (s *Store) StartSyncRun(source, mode string) (int64, error) {
	res, err := s.db.Exec(`
        INSERT INTO sync_runs (source, mode, started_at, status)
        VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now'), 'running')`, source, mode)
	if err != nil {
		return 0, fmt.Errorf("start sync run: %w", err)
	}
	return res.LastInsertId()
}

// CompleteSyncRun finalizes a sync run with its counters.
func (s *Store) CompleteSyncRun(runID int64, found, synced, skipped, errCount int, status string) error {
	_, err := s.db.Exec(`
        UPDATE sync_runs SET
            completed_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now'),
            transcripts_found = ?, transcripts_synced = ?,
            transcripts_skipped = ?, errors = ?, status = ?
        WHERE id = ?`, found, synced, skipped, errCount, status, runID)
	if err != nil {
		return fmt.Errorf("complete sync run %d: %w", runID, err)
	}
	return nil
}

// LocalIDsForSource returns the IDs of all stored transcripts carrying
// the given source label.
func (s *Store) LocalIDsForSource(source string) (map[string]bool, error) {
	ids, err := s.stringColumn(`SELECT id FROM transcripts WHERE source = ?`, source)
	if err != nil {
		return nil, err
	}
	return toIDSet(ids), nil
}

func toIDSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
