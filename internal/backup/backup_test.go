package backup

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/travelsplit/internal/ledger"
	"github.com/mmynk/travelsplit/internal/metrics"
	"github.com/mmynk/travelsplit/internal/models"
	"github.com/mmynk/travelsplit/internal/storage/memory"
	"github.com/mmynk/travelsplit/pkg/api"
)

type failingExporter struct{}

func (failingExporter) Export(context.Context) (*models.Export, error) {
	return nil, errors.New("store offline")
}

// minuteClock starts at a fixed instant and moves one minute per call.
func minuteClock() func() time.Time {
	now := time.Date(2024, 7, 14, 3, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
}

func newLedger(t *testing.T) *ledger.Service {
	t.Helper()
	store := memory.New()
	t.Cleanup(func() { store.Close() })
	l := ledger.New(store)
	if _, err := l.CreateTrip(context.Background(), ledger.TripInput{
		Name:         "Porto",
		Participants: []string{"Alice", "Bob"},
	}); err != nil {
		t.Fatalf("CreateTrip failed: %v", err)
	}
	return l
}

func TestFileName(t *testing.T) {
	ts := time.Date(2024, 7, 14, 3, 5, 9, 0, time.FixedZone("CEST", 2*60*60))
	if got, want := FileName(ts), "travelsplit-backup-20240714-010509.json"; got != want {
		t.Errorf("FileName() = %q, want %q", got, want)
	}
}

func TestRunWritesEnvelope(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "backups")
	m := metrics.New()
	b := New(newLedger(t), dir, 0, WithMetrics(m), WithClock(minuteClock()))

	path, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("backup written to %s, want directory %s", path, dir)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}
	var data api.ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("backup is not an export envelope: %v", err)
	}
	if data.Version != models.ExportVersion {
		t.Errorf("Version = %q, want %q", data.Version, models.ExportVersion)
	}
	if len(data.Trips) != 1 || data.Trips[0].Name != "Porto" {
		t.Errorf("unexpected trips in backup: %+v", data.Trips)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("temp file %s left behind", e.Name())
		}
	}

	expected := `
# HELP travelsplit_backups_total Scheduled backup runs by result.
# TYPE travelsplit_backups_total counter
travelsplit_backups_total{result="success"} 1
`
	if err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "travelsplit_backups_total"); err != nil {
		t.Error(err)
	}
}

func TestRunRetention(t *testing.T) {
	dir := t.TempDir()
	b := New(newLedger(t), dir, 2, WithClock(minuteClock()))

	// Unrelated files in the directory are left alone.
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(other, []byte("keep me"), 0o644); err != nil {
		t.Fatal(err)
	}

	var written []string
	for range 4 {
		path, err := b.Run(context.Background())
		if err != nil {
			t.Fatalf("Run() failed: %v", err)
		}
		written = append(written, path)
	}

	got, err := b.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	want := written[2:]
	if len(got) != len(want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if _, err := os.Stat(other); err != nil {
		t.Errorf("unrelated file removed: %v", err)
	}
}

func TestRunFailure(t *testing.T) {
	dir := t.TempDir()
	m := metrics.New()
	b := New(failingExporter{}, dir, 3, WithMetrics(m))

	if _, err := b.Run(context.Background()); err == nil {
		t.Fatal("Run() succeeded, want error")
	}
	paths, err := b.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("failed run left files: %v", paths)
	}

	expected := `
# HELP travelsplit_backups_total Scheduled backup runs by result.
# TYPE travelsplit_backups_total counter
travelsplit_backups_total{result="failure"} 1
`
	if err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "travelsplit_backups_total"); err != nil {
		t.Error(err)
	}
}

func TestListMissingDir(t *testing.T) {
	b := New(failingExporter{}, filepath.Join(t.TempDir(), "absent"), 1)
	paths, err := b.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("List() = %v, want empty", paths)
	}
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	b := New(failingExporter{}, t.TempDir(), 1)
	if _, err := Schedule("every night", b); err == nil {
		t.Fatal("Schedule() succeeded, want error")
	}
}

func TestScheduleRuns(t *testing.T) {
	dir := t.TempDir()
	m := metrics.New()
	b := New(newLedger(t), dir, 0, WithMetrics(m))

	s, err := Schedule("@every 1s", b)
	if err != nil {
		t.Fatalf("Schedule() failed: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		paths, err := b.List()
		if err != nil {
			t.Fatalf("List() failed: %v", err)
		}
		if len(paths) > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("no scheduled backup within 5s")
		}
		time.Sleep(50 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
}
