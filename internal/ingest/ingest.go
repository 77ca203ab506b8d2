// Package ingest orchestrates reading transcript files, normalizing them,
// and storing them. Parsing and normalization are pure and fan out over a
// bounded worker pool; upserts serialize through the store's single writer.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/krasmussen37/tss/internal/db"
	"github.com/krasmussen37/tss/internal/transcript"
)

var log = logrus.WithField("component", "ingest")

// DefaultWorkers bounds the parse/normalize pool for directory ingestion.
const DefaultWorkers = 4

// Options control one ingestion run.
type Options struct {
	// Source overrides the source label of every ingested transcript.
	Source string
	// Format forces a parser instead of detecting one per file.
	Format transcript.Format
	// DryRun parses and normalizes but writes nothing.
	DryRun bool
	// Workers bounds parallel parsing; DefaultWorkers when zero.
	Workers int
}

// FileResult records the outcome for one input file.
type FileResult struct {
	Path     string `json:"path"`
	ID       string `json:"id,omitempty"`
	Title    string `json:"title,omitempty"`
	Source   string `json:"source,omitempty"`
	Segments int    `json:"segments,omitempty"`
	Replaced bool   `json:"replaced,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Report summarizes a batch ingestion.
type Report struct {
	Ingested int          `json:"ingested"`
	Failed   int          `json:"failed"`
	DryRun   bool         `json:"dry_run"`
	Files    []FileResult `json:"files"`
}

// Ingestor feeds parsed transcripts through the normalizer into the store.
type Ingestor struct {
	Store *db.Store
	Norm  *transcript.Normalizer
}

// New returns an Ingestor with the default normalizer.
func New(store *db.Store) *Ingestor {
	return &Ingestor{Store: store, Norm: transcript.NewNormalizer()}
}

// Paths ingests files, directories (recursive), or a mix. Parse and
// validation failures are recorded per file and skipped; the batch
// continues. Storage failures abort the run. Cancelling the context stops
// scheduling new files but leaves already committed transcripts intact.
func (ing *Ingestor) Paths(ctx context.Context, paths []string, opts Options) (*Report, error) {
	files, err := collectFiles(paths, opts.Format)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no ingestible files found (looked for .json, .md, .txt)")
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	report := &Report{DryRun: opts.DryRun}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := ing.ingestFile(path, opts)
			if err != nil {
				// Storage failures poison the batch; bad input does not.
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			report.Files = append(report.Files, *res)
			if res.Error != "" {
				report.Failed++
			} else {
				report.Ingested++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	sort.Slice(report.Files, func(i, j int) bool { return report.Files[i].Path < report.Files[j].Path })
	return report, nil
}

// Stdin ingests a single transcript from a reader, sniffing the format
// unless one is forced. Failures abort the invocation.
func (ing *Ingestor) Stdin(r io.Reader, opts Options) (*FileResult, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if len(content) == 0 {
		return nil, &transcript.ValidationError{Reason: "empty input from stdin"}
	}

	format := opts.Format
	if format == transcript.FormatUnknown {
		format = transcript.SniffFormat(content)
	}

	draft, err := transcript.Parse(content, transcript.StdinName, format)
	if err != nil {
		return nil, err
	}
	return ing.store(draft, transcript.StdinName, opts)
}

// ingestFile parses, normalizes, and stores one file. Returns a
// FileResult with Error set for parse/validation failures, or a non-nil
// error for storage failures.
func (ing *Ingestor) ingestFile(path string, opts Options) (*FileResult, error) {
	format := opts.Format
	if format == transcript.FormatUnknown {
		format = transcript.DetectFormat(path)
	}
	if format == transcript.FormatUnknown {
		return &FileResult{Path: path, Error: fmt.Sprintf("cannot determine format for %s", path)}, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return &FileResult{Path: path, Error: err.Error()}, nil
	}

	draft, err := transcript.Parse(content, path, format)
	if err != nil {
		return &FileResult{Path: path, Error: err.Error()}, nil
	}

	res, err := ing.store(draft, path, opts)
	if err != nil {
		var vErr *transcript.ValidationError
		if errors.As(err, &vErr) {
			return &FileResult{Path: path, Error: vErr.Error()}, nil
		}
		return nil, err
	}
	return res, nil
}

func (ing *Ingestor) store(draft *transcript.Draft, path string, opts Options) (*FileResult, error) {
	t, err := ing.Norm.Normalize(draft, transcript.Options{Source: opts.Source})
	if err != nil {
		return nil, err
	}

	res := &FileResult{
		Path:     path,
		ID:       t.ID,
		Title:    t.Title,
		Source:   t.Source,
		Segments: len(t.Segments),
	}
	if opts.DryRun {
		return res, nil
	}

	// Re-ingesting a known ID is a supported workflow: warn and upsert.
	if draft.ID != "" {
		exists, err := ing.Store.Exists(t.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			res.Replaced = true
			log.WithFields(logrus.Fields{"id": t.ID, "path": path}).
				Warn("transcript exists, replacing")
		}
	}

	if err := ing.Store.Upsert(t); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"id": t.ID, "title": t.Title, "path": path}).Debug("ingested")
	return res, nil
}

// collectFiles expands paths into a flat, sorted file list. Inside
// directories only known extensions are picked up unless a format is
// forced; explicitly named files are always included.
func collectFiles(paths []string, forced transcript.Format) ([]string, error) {
	var files []string
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !st.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if forced != transcript.FormatUnknown || transcript.DetectFormat(path) != transcript.FormatUnknown {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}
	sort.Strings(files)
	return files, nil
}
