// Package workspace owns the per-job scratch directories under the work root.
//
// Each job acquires a uniquely named directory guarded by an exclusive flock on
// a sibling ".lock" file. Holding the lock marks the workspace as live, which
// lets Sweep remove directories left behind by crashed runs without touching
// ones another process is still using.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"adreel/internal/logging"
	"adreel/internal/services"
	"adreel/internal/textutil"
)

const lockSuffix = ".lock"

// statfsFunc allows tests to stub filesystem stats.
type statfsFunc func(path string) (free uint64, err error)

// Manager creates and sweeps workspaces below a single root directory.
type Manager struct {
	root   string
	logger *slog.Logger
	statfs statfsFunc
}

// NewManager returns a manager rooted at root.
func NewManager(root string, logger *slog.Logger) *Manager {
	return &Manager{
		root:   root,
		logger: logging.NewComponentLogger(logger, "workspace"),
		statfs: FreeBytes,
	}
}

// Workspace is a scratch directory exclusively owned by one job.
type Workspace struct {
	dir      string
	lockPath string
	lock     *flock.Flock
	logger   *slog.Logger

	once       sync.Once
	releaseErr error
}

// Acquire creates <root>/<label>-<uuid> and takes its lock. Callers must
// defer Release immediately.
func (m *Manager) Acquire(ctx context.Context, label string) (*Workspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(m.root) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "workspace", "acquire", "work root not configured", nil)
	}
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "workspace", "create root", m.root, err)
	}

	name := textutil.SanitizeToken(label) + "-" + uuid.NewString()
	dir := filepath.Join(m.root, name)
	lockPath := dir + lockSuffix

	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "workspace", "lock", lockPath, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrFilesystem, "workspace", "lock", "workspace already locked: "+lockPath, nil)
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		_ = lock.Unlock()
		_ = os.Remove(lockPath)
		return nil, services.Wrap(services.ErrFilesystem, "workspace", "create", dir, err)
	}

	ws := &Workspace{dir: dir, lockPath: lockPath, lock: lock, logger: m.logger}
	m.logger.Debug("workspace acquired", logging.String("dir", dir))
	return ws, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Release removes the directory and lock file. Calls after the first return
// the first call's result.
func (w *Workspace) Release() error {
	if w == nil {
		return nil
	}
	w.once.Do(func() {
		var errs []error
		if err := os.RemoveAll(w.dir); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", w.dir, err))
		}
		if err := os.Remove(w.lockPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", w.lockPath, err))
		}
		if err := w.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("unlock %s: %w", w.lockPath, err))
		}
		if len(errs) > 0 {
			w.releaseErr = services.Wrap(services.ErrFilesystem, "workspace", "release", w.dir, errors.Join(errs...))
			w.logger.Warn("workspace cleanup incomplete", logging.Error(w.releaseErr))
			return
		}
		w.logger.Debug("workspace released", logging.String("dir", w.dir))
	})
	return w.releaseErr
}

// SweepReport lists what Sweep did.
type SweepReport struct {
	Removed []string
	Locked  []string
	// Unlocked holds workspace directories with no lock file. They are left
	// in place.
	Unlocked []string
}

// Sweep removes workspaces whose lock is free, meaning the owning process is
// gone. Only directories named the way Acquire names them are considered;
// anything else under the root is never touched. Locked workspaces and ones
// without a lock file are reported and left alone. A missing root is not an
// error.
func (m *Manager) Sweep(ctx context.Context) (SweepReport, error) {
	var report SweepReport
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return report, nil
		}
		return report, services.Wrap(services.ErrFilesystem, "workspace", "sweep", m.root, err)
	}

	seen := make(map[string]struct{})
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), lockSuffix)
		if !isWorkspaceName(name) {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		m.sweepOne(filepath.Join(m.root, name), &report)
	}
	return report, nil
}

func (m *Manager) sweepOne(dir string, report *SweepReport) {
	lockPath := dir + lockSuffix
	dirInfo, dirErr := os.Lstat(dir)
	hasDir := dirErr == nil
	if hasDir && !dirInfo.IsDir() {
		return
	}
	lockInfo, lockErr := os.Lstat(lockPath)
	if lockErr != nil {
		if hasDir {
			report.Unlocked = append(report.Unlocked, dir)
			m.logger.Info("workspace has no lock file, leaving it", logging.String("dir", dir))
		}
		return
	}
	if !lockInfo.Mode().IsRegular() {
		return
	}

	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		m.logger.Warn("sweep lock probe failed", logging.String("dir", dir), logging.Error(err))
		return
	}
	if !ok {
		report.Locked = append(report.Locked, dir)
		return
	}
	defer func() { _ = lock.Unlock() }()

	if hasDir {
		if err := os.RemoveAll(dir); err != nil {
			m.logger.Warn("sweep remove failed", logging.String("dir", dir), logging.Error(err))
			return
		}
	}
	if err := os.Remove(lockPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		m.logger.Warn("sweep remove lock failed", logging.String("path", lockPath), logging.Error(err))
	}
	report.Removed = append(report.Removed, dir)
	m.logger.Info("removed stale workspace", logging.String("dir", dir))
}

// isWorkspaceName reports whether name has the <token>-<uuid> shape Acquire
// produces.
func isWorkspaceName(name string) bool {
	const idLen = 36
	if len(name) < idLen+2 || name[len(name)-idLen-1] != '-' {
		return false
	}
	_, err := uuid.Parse(name[len(name)-idLen:])
	return err == nil
}

// CheckSpace returns the free bytes on the work root filesystem and an
// ErrFilesystem error when it is below minBytes. The root is created if
// needed so statfs has something to inspect.
func (m *Manager) CheckSpace(minBytes uint64) (uint64, error) {
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return 0, services.Wrap(services.ErrFilesystem, "workspace", "create root", m.root, err)
	}
	free, err := m.statfs(m.root)
	if err != nil {
		return 0, services.Wrap(services.ErrFilesystem, "workspace", "statfs", m.root, err)
	}
	if minBytes > 0 && free < minBytes {
		msg := fmt.Sprintf("%s has %s free, need %s", m.root, FormatBytes(free), FormatBytes(minBytes))
		return free, services.Wrap(services.ErrFilesystem, "workspace", "free space", msg, nil)
	}
	return free, nil
}

// FreeBytes reports the bytes available to unprivileged users on the
// filesystem holding path.
func FreeBytes(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// FormatBytes renders a byte count with a binary unit suffix.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
