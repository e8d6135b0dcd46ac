package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ProcessTable is the view of the operating system's processes the guard needs.
type ProcessTable interface {
	Alive(ctx context.Context, pid int) (bool, error)
	// FindDaemons returns the PIDs of processes running "<name> daemon".
	FindDaemons(ctx context.Context, name string) ([]int, error)
	Cmdline(ctx context.Context, pid int) ([]string, error)
	Terminate(ctx context.Context, pid int) error
}

// Spawner starts a detached daemon process and returns its PID without waiting for it.
type Spawner interface {
	Spawn(ctx context.Context) (int, error)
}

// Guard keeps at most one daemon per data directory using a PID lock file and a process scan.
// PID reuse makes it best effort: an unrelated process holding a recorded PID counts as running.
type Guard struct {
	lockPath string
	name     string
	procs    ProcessTable
	spawner  Spawner
	log      logrus.FieldLogger
	pid      int
}

func NewGuard(lockPath, name string, procs ProcessTable, spawner Spawner, log logrus.FieldLogger) *Guard {
	if log == nil {
		log = discardLogger()
	}
	return &Guard{
		lockPath: lockPath,
		name:     name,
		procs:    procs,
		spawner:  spawner,
		log:      log,
		pid:      os.Getpid(),
	}
}

type DaemonStatus struct {
	Running  bool
	PID      int
	LockPath string
	Since    time.Time // lock file modification time, zero without a lock
}

// IsDaemonRunning checks the PID in the lock file first and removes the lock when that process
// is gone or the file is unreadable. Without a valid lock it scans for a matching process.
func (g *Guard) IsDaemonRunning(ctx context.Context) bool {
	if _, ok := g.liveLockPID(ctx); ok {
		return true
	}
	return len(g.scan(ctx)) > 0
}

// liveLockPID reports the live PID from the lock. ok is false when the lock is absent or stale.
func (g *Guard) liveLockPID(ctx context.Context) (int, bool) {
	pid, err := g.readLock()
	if errors.Is(err, fs.ErrNotExist) {
		return 0, false
	}
	if err != nil {
		g.log.WithFields(logrus.Fields{"path": g.lockPath, "error": err}).Error("Error checking process status")
		g.removeLock()
		return 0, false
	}

	alive, err := g.procs.Alive(ctx, pid)
	if err != nil {
		g.log.WithFields(logrus.Fields{"pid": pid, "error": err}).Error("Error checking process status")
	}
	if err != nil || !alive {
		g.log.WithField("pid", pid).Info("Removing stale daemon lock")
		g.removeLock()
		return 0, false
	}
	return pid, true
}

func (g *Guard) scan(ctx context.Context) []int {
	pids, err := g.procs.FindDaemons(ctx, g.name)
	if err != nil {
		g.log.WithError(err).Error("Error checking for notifier process")
		return nil
	}
	out := pids[:0:0]
	for _, pid := range pids {
		if pid != g.pid {
			out = append(out, pid)
		}
	}
	return out
}

// StartDaemon spawns the daemon and records its PID. It does not wait for the daemon's first tick.
func (g *Guard) StartDaemon(ctx context.Context) (int, error) {
	pid, err := g.spawner.Spawn(ctx)
	if err != nil {
		g.log.WithError(err).Error("Error starting reminder daemon")
		return 0, fmt.Errorf("%w: %w", ErrDaemonSpawn, err)
	}

	if err := g.writeLock(pid); err != nil {
		return pid, err
	}

	g.log.WithField("pid", pid).Infof("Reminder daemon started in background with PID %d", pid)
	return pid, nil
}

// EnsureDaemon starts a daemon unless one is already running. started reports whether it did.
func (g *Guard) EnsureDaemon(ctx context.Context) (started bool, pid int, err error) {
	if g.IsDaemonRunning(ctx) {
		return false, 0, nil
	}
	pid, err = g.StartDaemon(ctx)
	return err == nil, pid, err
}

// Acquire records the calling process as the daemon. It fails when the lock names another
// live process.
func (g *Guard) Acquire(ctx context.Context) error {
	if pid, ok := g.liveLockPID(ctx); ok && pid != g.pid {
		return fmt.Errorf("%w (PID %d)", ErrDaemonRunning, pid)
	}
	return g.writeLock(g.pid)
}

// Release removes the lock if the calling process still owns it.
func (g *Guard) Release() error {
	pid, err := g.readLock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil || pid != g.pid {
		return nil
	}
	if err := os.Remove(g.lockPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove lock: %w", err)
	}
	return nil
}

func (g *Guard) Status(ctx context.Context) DaemonStatus {
	status := DaemonStatus{LockPath: g.lockPath}

	if pid, ok := g.liveLockPID(ctx); ok {
		status.Running = true
		status.PID = pid
		if info, err := os.Stat(g.lockPath); err == nil {
			status.Since = info.ModTime()
		}
		return status
	}

	if pids := g.scan(ctx); len(pids) > 0 {
		status.Running = true
		status.PID = pids[0]
	}
	return status
}

// Stop terminates the running daemon and removes the lock. A PID whose command line is not
// "<name> daemon" is never signalled; its lock is treated as stale.
func (g *Guard) Stop(ctx context.Context) (int, error) {
	status := g.Status(ctx)
	if !status.Running {
		return 0, ErrDaemonNotRunning
	}

	args, err := g.procs.Cmdline(ctx, status.PID)
	if err != nil {
		return status.PID, fmt.Errorf("inspect process %d: %w", status.PID, err)
	}
	if !IsDaemonCommand(args, g.name) {
		g.log.WithFields(logrus.Fields{"pid": status.PID, "command": strings.Join(args, " ")}).
			Warn("Lock names a process that is not the reminder daemon, removing stale lock")
		g.removeLock()
		return status.PID, fmt.Errorf("%w: pid %d", ErrForeignProcess, status.PID)
	}

	if err := g.procs.Terminate(ctx, status.PID); err != nil {
		return status.PID, fmt.Errorf("stop daemon %d: %w", status.PID, err)
	}
	g.removeLock()

	g.log.WithField("pid", status.PID).Info("Reminder daemon stopped")
	return status.PID, nil
}

func (g *Guard) readLock() (int, error) {
	data, err := os.ReadFile(g.lockPath)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLock, strings.TrimSpace(string(data)))
	}
	return pid, nil
}

func (g *Guard) writeLock(pid int) error {
	if err := os.MkdirAll(filepath.Dir(g.lockPath), 0755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}
	if err := os.WriteFile(g.lockPath, []byte(strconv.Itoa(pid)), 0644); err != nil {
		return fmt.Errorf("write lock: %w", err)
	}
	return nil
}

func (g *Guard) removeLock() {
	if err := os.Remove(g.lockPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		g.log.WithFields(logrus.Fields{"path": g.lockPath, "error": err}).Warn("Could not remove daemon lock")
	}
}
