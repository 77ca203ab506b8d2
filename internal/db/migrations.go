package db

import "fmt"

type migration struct {
	id   int
	name string
	sql  string
}

// Schema changes after v1 land here as numbered migrations; applied ones
// are recorded in tss_migrations and skipped on subsequent opens.
var migrations = []migration{}

func (s *Store) runMigrations() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS tss_migrations (
        id INTEGER PRIMARY KEY,
        name TEXT NOT NULL UNIQUE,
        applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
    )`)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		var applied bool
		if err := s.db.QueryRow(`SELECT COUNT(*) > 0 FROM tss_migrations WHERE id = ?`, m.id).Scan(&applied); err != nil {
			return err
		}
		if applied {
			continue
		}
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.id, m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO tss_migrations (id, name) VALUES (?, ?)`, m.id, m.name); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.id, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		log.WithField("migration", m.name).Info("applied migration")
	}
	return nil
}
