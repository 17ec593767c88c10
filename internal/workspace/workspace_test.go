package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"adreel/internal/logging"
	"adreel/internal/services"
)

func TestAcquireCreatesLockedDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "work")
	m := NewManager(root, logging.NewNop())

	ws, err := m.Acquire(context.Background(), "My Movie (2001)")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer ws.Release()

	if !strings.HasPrefix(filepath.Base(ws.Dir()), "my_movie__2001-") {
		t.Fatalf("unexpected workspace name %q", ws.Dir())
	}
	if info, err := os.Stat(ws.Dir()); err != nil || !info.IsDir() {
		t.Fatalf("workspace dir missing: %v", err)
	}
	if !isWorkspaceName(filepath.Base(ws.Dir())) {
		t.Fatalf("Sweep would not recognize %q", ws.Dir())
	}

	probe := flock.New(ws.Dir() + lockSuffix)
	ok, err := probe.TryLock()
	if err != nil {
		t.Fatalf("probe lock: %v", err)
	}
	if ok {
		_ = probe.Unlock()
		t.Fatal("expected workspace lock to be held")
	}
}

func TestAcquireUniqueNames(t *testing.T) {
	m := NewManager(t.TempDir(), logging.NewNop())
	a, err := m.Acquire(context.Background(), "same")
	if err != nil {
		t.Fatal(err)
	}
	defer a.Release()
	b, err := m.Acquire(context.Background(), "same")
	if err != nil {
		t.Fatal(err)
	}
	defer b.Release()
	if a.Dir() == b.Dir() {
		t.Fatal("expected distinct workspace directories")
	}
}

func TestAcquireCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewManager(t.TempDir(), logging.NewNop()).Acquire(ctx, "x")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	m := NewManager(t.TempDir(), logging.NewNop())
	ws, err := m.Acquire(context.Background(), "job")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(ws.Dir(), "file_list.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ws.Release(); err != nil {
		t.Fatalf("first Release: %v", err)
	}
	if err := ws.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
	if _, err := os.Stat(ws.Dir()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected directory removed, got %v", err)
	}
	if _, err := os.Stat(ws.Dir() + lockSuffix); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected lock removed, got %v", err)
	}
	var nilWS *Workspace
	if err := nilWS.Release(); err != nil {
		t.Fatalf("nil Release: %v", err)
	}
}

func TestSweepRemovesOnlyUnlocked(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root, logging.NewNop())

	live, err := m.Acquire(context.Background(), "live")
	if err != nil {
		t.Fatal(err)
	}
	defer live.Release()

	stale := filepath.Join(root, "stale-"+uuid.NewString())
	if err := os.MkdirAll(filepath.Join(stale, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale+lockSuffix, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	lockOnly := filepath.Join(root, "gone-"+uuid.NewString())
	if err := os.WriteFile(lockOnly+lockSuffix, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := m.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(report.Removed) != 2 {
		t.Fatalf("expected 2 removed, got %v", report.Removed)
	}
	if len(report.Locked) != 1 || report.Locked[0] != live.Dir() {
		t.Fatalf("expected live workspace reported locked, got %v", report.Locked)
	}
	if _, err := os.Stat(live.Dir()); err != nil {
		t.Fatalf("live workspace touched: %v", err)
	}
	for _, path := range []string{stale, stale + lockSuffix, lockOnly + lockSuffix} {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("expected %s removed, got %v", path, err)
		}
	}
}

func TestSweepLeavesForeignEntries(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root, logging.NewNop())

	notes := filepath.Join(root, "notes.txt")
	photos := filepath.Join(root, "photos", "2024")
	noLock := filepath.Join(root, "movie-"+uuid.NewString())
	fileNamedLikeWorkspace := filepath.Join(root, "clip-"+uuid.NewString())
	shortID := filepath.Join(root, "orphan-5678")
	for _, dir := range []string{photos, noLock, shortID} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	for _, file := range []string{notes, fileNamedLikeWorkspace, fileNamedLikeWorkspace + lockSuffix, shortID + lockSuffix} {
		if err := os.WriteFile(file, []byte("keep"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	report, err := m.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(report.Removed) != 0 || len(report.Locked) != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(report.Unlocked) != 1 || report.Unlocked[0] != noLock {
		t.Fatalf("expected %s reported without lock, got %v", noLock, report.Unlocked)
	}
	for _, path := range []string{notes, photos, noLock, fileNamedLikeWorkspace, fileNamedLikeWorkspace + lockSuffix, shortID, shortID + lockSuffix} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("%s should survive a sweep: %v", path, err)
		}
	}
}

func TestIsWorkspaceName(t *testing.T) {
	id := uuid.NewString()
	mangled := "movie-" + strings.ReplaceAll(id, "-", "x")
	tests := map[string]bool{
		"movie-" + id:          true,
		"my_movie__2001-" + id: true,
		"-" + id:               false,
		id:                     false,
		"movie_" + id:          false,
		"movie-1234":           false,
		"notes.txt":            false,
		mangled:                false,
	}
	for name, want := range tests {
		if got := isWorkspaceName(name); got != want {
			t.Errorf("isWorkspaceName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestSweepMissingRoot(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "absent"), logging.NewNop())
	report, err := m.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(report.Removed) != 0 || len(report.Locked) != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestCheckSpace(t *testing.T) {
	m := NewManager(t.TempDir(), logging.NewNop())
	m.statfs = func(string) (uint64, error) { return 5 << 30, nil }

	free, err := m.CheckSpace(1 << 30)
	if err != nil || free != 5<<30 {
		t.Fatalf("CheckSpace = %d, %v", free, err)
	}

	_, err = m.CheckSpace(10 << 30)
	if !errors.Is(err, services.ErrFilesystem) {
		t.Fatalf("expected ErrFilesystem, got %v", err)
	}
	if !strings.Contains(err.Error(), "5.0 GiB free") {
		t.Fatalf("unexpected message %q", err)
	}
}

func TestFreeBytesRealFilesystem(t *testing.T) {
	if _, err := FreeBytes(t.TempDir()); err != nil {
		t.Fatalf("FreeBytes: %v", err)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[uint64]string{
		512:      "512 B",
		2048:     "2.0 KiB",
		3 << 20:  "3.0 MiB",
		20 << 30: "20.0 GiB",
	}
	for in, want := range tests {
		if got := FormatBytes(in); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
