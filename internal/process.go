package internal

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

var _ ProcessTable = SystemProcesses{}

// SystemProcesses reads the live process table.
type SystemProcesses struct{}

func (SystemProcesses) Alive(ctx context.Context, pid int) (bool, error) {
	return process.PidExistsWithContext(ctx, int32(pid))
}

func (SystemProcesses) FindDaemons(ctx context.Context, name string) ([]int, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	var pids []int
	for _, p := range procs {
		args, err := p.CmdlineSliceWithContext(ctx)
		if err != nil || len(args) < 2 {
			continue
		}
		if IsDaemonCommand(args, name) {
			pids = append(pids, int(p.Pid))
		}
	}
	return pids, nil
}

func (SystemProcesses) Cmdline(ctx context.Context, pid int) ([]string, error) {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return nil, err
	}
	return p.CmdlineSliceWithContext(ctx)
}

func (SystemProcesses) Terminate(ctx context.Context, pid int) error {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return err
	}
	return p.TerminateWithContext(ctx)
}

// IsDaemonCommand reports whether args is an invocation of "<name> daemon". The subcommand
// must be the first positional argument; flags before it, and the value of --config, are skipped.
func IsDaemonCommand(args []string, name string) bool {
	if len(args) < 2 {
		return false
	}
	if strings.TrimSuffix(filepath.Base(args[0]), ".exe") != name {
		return false
	}
	for i := 1; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "--config":
			i++
		case strings.HasPrefix(arg, "-"):
		default:
			return arg == DaemonCommand
		}
	}
	return false
}

// DaemonCommand is the subcommand the spawned process runs.
const DaemonCommand = "daemon"

var _ Spawner = (*ExecSpawner)(nil)

// ExecSpawner re-executes a binary with the daemon subcommand, detached from the caller's
// session and with its standard streams on the null device.
type ExecSpawner struct {
	Path string
	Args []string // extra arguments after the subcommand
}

// NewExecSpawner targets the running executable.
func NewExecSpawner(args ...string) (*ExecSpawner, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("%w: resolve executable: %w", ErrDaemonSpawn, err)
	}
	return &ExecSpawner{Path: exe, Args: args}, nil
}

// NewPathSpawner targets the named executable found on PATH.
func NewPathSpawner(name string, args ...string) (*ExecSpawner, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDaemonSpawn, err)
	}
	return &ExecSpawner{Path: path, Args: args}, nil
}

func (s *ExecSpawner) Spawn(_ context.Context) (int, error) {
	if _, err := os.Stat(s.Path); err != nil {
		return 0, fmt.Errorf("daemon executable: %w", err)
	}

	cmd := exec.Command(s.Path, append([]string{DaemonCommand}, s.Args...)...)
	detach(cmd)

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", os.DevNull, err)
	}
	defer devNull.Close()

	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start daemon: %w", err)
	}

	pid := cmd.Process.Pid
	_ = cmd.Process.Release()
	return pid, nil
}
