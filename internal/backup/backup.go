// Package backup writes the export envelope to disk on a cron schedule and
// prunes old files.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/travelsplit/internal/metrics"
	"github.com/mmynk/travelsplit/internal/models"
	"github.com/mmynk/travelsplit/internal/service"
)

const (
	filePrefix = "travelsplit-backup-"
	fileSuffix = ".json"
	timeLayout = "20060102-150405"
)

// Exporter produces the data to back up. *ledger.Service satisfies it.
type Exporter interface {
	Export(ctx context.Context) (*models.Export, error)
}

// Backup writes one backup file per Run into dir and keeps the newest keep
// files. keep == 0 keeps everything.
type Backup struct {
	exporter Exporter
	dir      string
	keep     int
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Option configures a Backup.
type Option func(*Backup)

// WithMetrics counts runs in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Backup) { b.metrics = m }
}

// WithClock overrides time.Now for file names.
func WithClock(now func() time.Time) Option {
	return func(b *Backup) { b.now = now }
}

func New(exporter Exporter, dir string, keep int, opts ...Option) *Backup {
	b := &Backup{
		exporter: exporter,
		dir:      dir,
		keep:     keep,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FileName is the name of a backup taken at t.
func FileName(t time.Time) string {
	return filePrefix + t.UTC().Format(timeLayout) + fileSuffix
}

// Run takes one backup and returns the path written.
func (b *Backup) Run(ctx context.Context) (string, error) {
	runID := uuid.NewString()
	start := time.Now()

	path, err := b.run(ctx)
	if err != nil {
		b.metrics.Backup("failure")
		slog.Error("Backup failed", "run_id", runID, "error", err)
		return "", err
	}
	b.metrics.Backup("success")

	removed, err := b.prune()
	if err != nil {
		slog.Warn("Failed to prune old backups", "run_id", runID, "dir", b.dir, "error", err)
	}

	slog.Info("Backup written",
		"run_id", runID,
		"path", path,
		"pruned", removed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return path, nil
}

func (b *Backup) run(ctx context.Context) (string, error) {
	export, err := b.exporter.Export(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to export trips: %w", err)
	}
	data, err := json.MarshalIndent(service.ExportToAPI(export), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode backup: %w", err)
	}

	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	// The final name only ever holds a complete file.
	tmp, err := os.CreateTemp(b.dir, ".tmp-"+filePrefix+"*")
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close backup file: %w", err)
	}

	path := filepath.Join(b.dir, FileName(b.now()))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move backup into place: %w", err)
	}
	return path, nil
}

// List returns the backup files in dir, oldest first.
func (b *Backup) List() ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.Type().IsRegular() && strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileSuffix) {
			names = append(names, name)
		}
	}
	// The timestamp layout sorts lexically.
	sort.Strings(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(b.dir, name)
	}
	return paths, nil
}

func (b *Backup) prune() (int, error) {
	if b.keep == 0 {
		return 0, nil
	}
	paths, err := b.List()
	if err != nil {
		return 0, err
	}
	if len(paths) <= b.keep {
		return 0, nil
	}

	removed := 0
	for _, p := range paths[:len(paths)-b.keep] {
		if err := os.Remove(p); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", p, err)
		}
		removed++
	}
	return removed, nil
}
