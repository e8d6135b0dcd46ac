package main

import (
	"os"
	"testing"

	"github.com/4thel00z/remindme/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusNotRunning(t *testing.T) {
	a, _ := setupTestApp(t, nil)

	out, err := runRoot(t, a, "--status")
	require.NoError(t, err)
	assert.Equal(t, "Reminder daemon is not running\n", out)
}

func TestStatusRunning(t *testing.T) {
	a, svc := setupTestApp(t, &fakeProcesses{alive: map[int]bool{777: true}})
	require.NoError(t, os.WriteFile(svc.Config.LockPath(), []byte("777"), 0644))

	out, err := runRoot(t, a, "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "Reminder daemon is running (PID 777)")
	assert.Contains(t, out, svc.Config.LockPath())
}

func TestStop(t *testing.T) {
	procs := &fakeProcesses{
		alive:    map[int]bool{777: true},
		cmdlines: map[int][]string{777: {"/usr/local/bin/remindme", "daemon"}},
	}
	a, svc := setupTestApp(t, procs)
	require.NoError(t, os.WriteFile(svc.Config.LockPath(), []byte("777"), 0644))

	out, err := runRoot(t, a, "--stop")
	require.NoError(t, err)
	assert.Equal(t, "Stopped reminder daemon (PID 777)\n", out)
	assert.Equal(t, []int{777}, procs.terminated)
	assert.NoFileExists(t, svc.Config.LockPath())

	out, err = runRoot(t, a, "--stop")
	require.NoError(t, err)
	assert.Equal(t, "Reminder daemon is not running\n", out)
}

func TestStopLeavesUnrelatedProcessAlone(t *testing.T) {
	procs := &fakeProcesses{
		alive:    map[int]bool{777: true},
		cmdlines: map[int][]string{777: {"/usr/bin/editor", "todo.txt"}},
	}
	a, svc := setupTestApp(t, procs)
	require.NoError(t, os.WriteFile(svc.Config.LockPath(), []byte("777"), 0644))

	_, err := runRoot(t, a, "--stop")
	assert.ErrorIs(t, err, internal.ErrForeignProcess)
	assert.Empty(t, procs.terminated)
}
