package internal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcesses struct {
	alive      map[int]bool
	aliveErr   error
	daemons    []int
	scanErr    error
	cmdlines   map[int][]string
	terminated []int
}

func (f *fakeProcesses) Alive(_ context.Context, pid int) (bool, error) {
	if f.aliveErr != nil {
		return false, f.aliveErr
	}
	return f.alive[pid], nil
}

func (f *fakeProcesses) FindDaemons(context.Context, string) ([]int, error) {
	return f.daemons, f.scanErr
}

func (f *fakeProcesses) Cmdline(_ context.Context, pid int) ([]string, error) {
	args, ok := f.cmdlines[pid]
	if !ok {
		return nil, errors.New("no such process")
	}
	return args, nil
}

func (f *fakeProcesses) Terminate(_ context.Context, pid int) error {
	f.terminated = append(f.terminated, pid)
	return nil
}

type fakeSpawner struct {
	pid   int
	err   error
	calls int
}

func (f *fakeSpawner) Spawn(context.Context) (int, error) {
	f.calls++
	return f.pid, f.err
}

func newTestGuard(t *testing.T, procs *fakeProcesses, spawner *fakeSpawner) (*Guard, string) {
	t.Helper()
	lock := filepath.Join(t.TempDir(), "notifier.lock")
	return NewGuard(lock, "remindme", procs, spawner, nil), lock
}

func writeLockFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readLockFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestGuardNotRunning(t *testing.T) {
	g, _ := newTestGuard(t, &fakeProcesses{}, &fakeSpawner{})
	assert.False(t, g.IsDaemonRunning(context.Background()))
}

func TestGuardLiveLock(t *testing.T) {
	g, lock := newTestGuard(t, &fakeProcesses{alive: map[int]bool{4242: true}}, &fakeSpawner{})
	writeLockFile(t, lock, "4242\n")

	assert.True(t, g.IsDaemonRunning(context.Background()))
	assert.FileExists(t, lock)
}

func TestGuardStaleLockIsRemoved(t *testing.T) {
	g, lock := newTestGuard(t, &fakeProcesses{}, &fakeSpawner{})
	writeLockFile(t, lock, "4242")

	assert.False(t, g.IsDaemonRunning(context.Background()))
	assert.NoFileExists(t, lock)
}

func TestGuardProbeErrorCountsAsStale(t *testing.T) {
	g, lock := newTestGuard(t, &fakeProcesses{aliveErr: errors.New("denied")}, &fakeSpawner{})
	writeLockFile(t, lock, "4242")

	assert.False(t, g.IsDaemonRunning(context.Background()))
	assert.NoFileExists(t, lock)
}

func TestGuardMalformedLockFallsBackToScan(t *testing.T) {
	g, lock := newTestGuard(t, &fakeProcesses{daemons: []int{77}}, &fakeSpawner{})
	writeLockFile(t, lock, "not a pid")

	assert.True(t, g.IsDaemonRunning(context.Background()))
	assert.NoFileExists(t, lock)
}

func TestGuardScanIgnoresSelf(t *testing.T) {
	g, _ := newTestGuard(t, &fakeProcesses{daemons: []int{os.Getpid()}}, &fakeSpawner{})
	assert.False(t, g.IsDaemonRunning(context.Background()))
}

func TestGuardScanError(t *testing.T) {
	g, _ := newTestGuard(t, &fakeProcesses{scanErr: errors.New("no /proc")}, &fakeSpawner{})
	assert.False(t, g.IsDaemonRunning(context.Background()))
}

func TestGuardEnsureDaemonStarts(t *testing.T) {
	spawner := &fakeSpawner{pid: 5150}
	g, lock := newTestGuard(t, &fakeProcesses{}, spawner)

	started, pid, err := g.EnsureDaemon(context.Background())
	require.NoError(t, err)
	assert.True(t, started)
	assert.Equal(t, 5150, pid)
	assert.Equal(t, 1, spawner.calls)
	assert.Equal(t, "5150", readLockFile(t, lock))
}

func TestGuardEnsureDaemonSkipsWhenRunning(t *testing.T) {
	spawner := &fakeSpawner{pid: 5150}
	g, lock := newTestGuard(t, &fakeProcesses{alive: map[int]bool{4242: true}}, spawner)
	writeLockFile(t, lock, "4242")

	started, _, err := g.EnsureDaemon(context.Background())
	require.NoError(t, err)
	assert.False(t, started)
	assert.Zero(t, spawner.calls)
	assert.Equal(t, "4242", readLockFile(t, lock))
}

func TestGuardSpawnFailure(t *testing.T) {
	g, lock := newTestGuard(t, &fakeProcesses{}, &fakeSpawner{err: errors.New("no such file")})

	started, _, err := g.EnsureDaemon(context.Background())
	assert.ErrorIs(t, err, ErrDaemonSpawn)
	assert.False(t, started)
	assert.NoFileExists(t, lock)
}

func TestGuardAcquireAndRelease(t *testing.T) {
	g, lock := newTestGuard(t, &fakeProcesses{}, &fakeSpawner{})
	self := strconv.Itoa(os.Getpid())

	require.NoError(t, g.Acquire(context.Background()))
	assert.Equal(t, self, readLockFile(t, lock))

	require.NoError(t, g.Release())
	assert.NoFileExists(t, lock)
}

func TestGuardAcquireAcceptsOwnSpawnRecord(t *testing.T) {
	self := os.Getpid()
	g, lock := newTestGuard(t, &fakeProcesses{alive: map[int]bool{self: true}}, &fakeSpawner{})
	writeLockFile(t, lock, strconv.Itoa(self))

	assert.NoError(t, g.Acquire(context.Background()))
}

func TestGuardAcquireRefusesOtherLiveDaemon(t *testing.T) {
	g, lock := newTestGuard(t, &fakeProcesses{alive: map[int]bool{4242: true}}, &fakeSpawner{})
	writeLockFile(t, lock, "4242")

	err := g.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrDaemonRunning)
	assert.Equal(t, "4242", readLockFile(t, lock))
}

func TestGuardReleaseKeepsForeignLock(t *testing.T) {
	g, lock := newTestGuard(t, &fakeProcesses{}, &fakeSpawner{})
	writeLockFile(t, lock, "4242")

	require.NoError(t, g.Release())
	assert.FileExists(t, lock)
}

func TestGuardStatusAndStop(t *testing.T) {
	procs := &fakeProcesses{
		alive:    map[int]bool{4242: true},
		cmdlines: map[int][]string{4242: {"/usr/bin/remindme", "daemon"}},
	}
	g, lock := newTestGuard(t, procs, &fakeSpawner{})
	writeLockFile(t, lock, "4242")

	status := g.Status(context.Background())
	assert.True(t, status.Running)
	assert.Equal(t, 4242, status.PID)
	assert.False(t, status.Since.IsZero())

	pid, err := g.Stop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4242, pid)
	assert.Equal(t, []int{4242}, procs.terminated)
	assert.NoFileExists(t, lock)
}

func TestGuardStopRefusesForeignProcess(t *testing.T) {
	procs := &fakeProcesses{
		alive:    map[int]bool{4242: true},
		cmdlines: map[int][]string{4242: {"/usr/bin/vim", "notes.txt"}},
	}
	g, lock := newTestGuard(t, procs, &fakeSpawner{})
	writeLockFile(t, lock, "4242")

	_, err := g.Stop(context.Background())
	assert.ErrorIs(t, err, ErrForeignProcess)
	assert.Empty(t, procs.terminated)
	assert.NoFileExists(t, lock)
}

func TestGuardStopKeepsLockWhenCommandUnreadable(t *testing.T) {
	procs := &fakeProcesses{alive: map[int]bool{4242: true}}
	g, lock := newTestGuard(t, procs, &fakeSpawner{})
	writeLockFile(t, lock, "4242")

	_, err := g.Stop(context.Background())
	assert.Error(t, err)
	assert.Empty(t, procs.terminated)
	assert.FileExists(t, lock)
}

func TestGuardStopNotRunning(t *testing.T) {
	g, _ := newTestGuard(t, &fakeProcesses{}, &fakeSpawner{})
	_, err := g.Stop(context.Background())
	assert.ErrorIs(t, err, ErrDaemonNotRunning)
}

func TestIsDaemonCommand(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"/usr/local/bin/remindme", "daemon"}, true},
		{[]string{"/opt/remindme", "--config", "x.yaml", "daemon"}, true},
		{[]string{"/opt/remindme", "--config=x.yaml", "daemon", "--config", "x.yaml"}, true},
		{[]string{"/usr/local/bin/remindme", "daemon", "--config", "x.yaml"}, true},
		{[]string{"remindme", "feed", "the", "daemon", "at", "5pm"}, false},
		{[]string{"remindme.exe", "daemon"}, true},
		{[]string{"remindme", "call", "mom"}, false},
		{[]string{"other", "daemon"}, false},
		{[]string{"remindme"}, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsDaemonCommand(tt.args, "remindme"), "%v", tt.args)
	}
}
