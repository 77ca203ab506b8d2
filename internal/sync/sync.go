// Package sync pulls transcripts from remote recording services into the
// local store through the same normalize/upsert path as file ingestion.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/krasmussen37/tss/internal/db"
	"github.com/krasmussen37/tss/internal/transcript"
)

var log = logrus.WithField("component", "sync")

// RemoteTranscript is a lightweight remote listing entry.
type RemoteTranscript struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

// Connector is implemented by each remote transcript source.
type Connector interface {
	// Name is the source label stored on synced transcripts.
	Name() string
	// ListRemote lists remote transcripts, restricted to those newer
	// than the ISO-8601 cursor when since is non-empty.
	ListRemote(ctx context.Context, since string) ([]RemoteTranscript, error)
	// FetchOne downloads one transcript as a provisional draft.
	FetchOne(ctx context.Context, id string) (*transcript.Draft, error)
}

// Mode selects between a full scan and a cursor-based delta.
type Mode string

const (
	ModeInitial     Mode = "initial"
	ModeIncremental Mode = "incremental"
)

// Options control a sync run.
type Options struct {
	DryRun bool
}

// Report summarizes a sync run.
type Report struct {
	Source       string  `json:"source"`
	Mode         Mode    `json:"mode"`
	RemoteTotal  int     `json:"remote_total"`
	AlreadyLocal int     `json:"already_local"`
	Synced       int     `json:"synced"`
	Skipped      int     `json:"skipped"`
	Failed       int     `json:"failed"`
	DurationSecs float64 `json:"duration_secs"`
}

// AuditReport is a remote-vs-local reconciliation.
type AuditReport struct {
	Source          string             `json:"source"`
	RemoteTotal     int                `json:"remote_total"`
	LocalTotal      int                `json:"local_total"`
	MissingLocally  []RemoteTranscript `json:"missing_locally"`
	OrphanedLocally []string           `json:"orphaned_locally"`
}

// Runner executes sync and audit runs against one store.
type Runner struct {
	Store *db.Store
	Norm  *transcript.Normalizer
}

// NewRunner returns a Runner with the default normalizer.
func NewRunner(store *db.Store) *Runner {
	return &Runner{Store: store, Norm: transcript.NewNormalizer()}
}

func cursorKey(source string) string { return source + ".last_sync_at" }

// HasCursor reports whether a previous sync recorded a cursor for source.
func (r *Runner) HasCursor(source string) (bool, error) {
	_, ok, err := r.Store.SyncState(cursorKey(source))
	return ok, err
}

// Run performs an initial or incremental sync. Each remote transcript is
// fetched, normalized, and upserted individually; per-transcript failures
// are counted and do not abort the run.
func (r *Runner) Run(ctx context.Context, conn Connector, mode Mode, opts Options) (*Report, error) {
	start := time.Now()
	source := conn.Name()
	report := &Report{Source: source, Mode: mode}

	since := ""
	if mode == ModeIncremental {
		since, _, _ = r.Store.SyncState(cursorKey(source))
	}

	remote, err := conn.ListRemote(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("list remote transcripts: %w", err)
	}
	report.RemoteTotal = len(remote)

	var pending []RemoteTranscript
	for _, rt := range remote {
		exists, err := r.Store.Exists(rt.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			report.AlreadyLocal++
		} else {
			pending = append(pending, rt)
		}
	}

	if opts.DryRun {
		report.Skipped = len(pending)
		report.DurationSecs = time.Since(start).Seconds()
		return report, nil
	}

	runID, err := r.Store.StartSyncRun(source, string(mode))
	if err != nil {
		return nil, err
	}

	for _, rt := range pending {
		if err := ctx.Err(); err != nil {
			break
		}
		draft, err := conn.FetchOne(ctx, rt.ID)
		if err != nil {
			report.Failed++
			log.WithError(err).WithField("id", rt.ID).Warn("fetch failed")
			continue
		}
		t, err := r.Norm.Normalize(draft, transcript.Options{Source: source})
		if err != nil {
			report.Failed++
			log.WithError(err).WithField("id", rt.ID).Warn("normalize failed")
			continue
		}
		if err := r.Store.Upsert(t); err != nil {
			report.Failed++
			log.WithError(err).WithField("id", rt.ID).Warn("store failed")
			continue
		}
		report.Synced++
	}

	status := "completed"
	if report.Failed > 0 && report.Synced == 0 && len(pending) > 0 {
		status = "failed"
	}
	if err := r.Store.CompleteSyncRun(runID, report.RemoteTotal, report.Synced, report.AlreadyLocal, report.Failed, status); err != nil {
		return report, err
	}

	now := time.Now().UTC().Format("2006-01-02T15:04:05Z")
	if err := r.Store.SetSyncState(cursorKey(source), now); err != nil {
		return report, err
	}

	report.DurationSecs = time.Since(start).Seconds()
	return report, nil
}

// Audit compares the full remote listing against local transcripts for
// the connector's source and reports discrepancies in both directions.
func (r *Runner) Audit(ctx context.Context, conn Connector) (*AuditReport, error) {
	source := conn.Name()

	remote, err := conn.ListRemote(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list remote transcripts: %w", err)
	}

	localIDs, err := r.Store.LocalIDsForSource(source)
	if err != nil {
		return nil, err
	}

	report := &AuditReport{
		Source:      source,
		RemoteTotal: len(remote),
		LocalTotal:  len(localIDs),
	}

	remoteIDs := map[string]bool{}
	for _, rt := range remote {
		remoteIDs[rt.ID] = true
		if !localIDs[rt.ID] {
			report.MissingLocally = append(report.MissingLocally, rt)
		}
	}
	for id := range localIDs {
		if !remoteIDs[id] {
			report.OrphanedLocally = append(report.OrphanedLocally, id)
		}
	}

	runID, err := r.Store.StartSyncRun(source, "audit")
	if err != nil {
		return nil, err
	}
	if err := r.Store.CompleteSyncRun(runID, report.RemoteTotal, 0, report.LocalTotal, 0, "completed"); err != nil {
		return report, err
	}
	return report, nil
}
