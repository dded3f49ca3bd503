package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/config"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/system"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/workspace"
)

// DefaultGracePeriod is how long Stop waits after SIGTERM before SIGKILL
const DefaultGracePeriod = 5 * time.Second

// execWaitDelay bounds the wait for exec output pipes after the command
// has been killed
const execWaitDelay = 500 * time.Millisecond

// Environment variables handed to the sandbox process
const (
	EnvMode     = "FORAGE_RUNTIME_MODE"
	EnvStateDir = "FORAGE_RUNTIME_STATE_DIR"
	EnvMounts   = "FORAGE_RUNTIME_MOUNTS"
)

// LocalManager runs the sandbox command as a host process group rooted in
// the workspace. Isolation is left to the command itself; mounts are passed
// through the environment for it to apply.
type LocalManager struct {
	cfg ManagerConfig

	// GracePeriod overrides DefaultGracePeriod when non-zero
	GracePeriod time.Duration

	// Stdout and Stderr receive the sandbox process output; nil discards it
	Stdout io.Writer
	Stderr io.Writer

	mu        sync.Mutex
	proc      *os.Process
	done      chan struct{}
	exitErr   error
	stateDir  string
	tempState bool
}

// NewLocalManager creates a manager for cfg. Nothing is started.
func NewLocalManager(cfg ManagerConfig) *LocalManager {
	return &LocalManager{cfg: cfg}
}

func (m *LocalManager) gracePeriod() time.Duration {
	if m.GracePeriod > 0 {
		return m.GracePeriod
	}
	return DefaultGracePeriod
}

// mountsValue renders mounts as a comma list of src:dst[:ro]
func mountsValue(mounts []config.MountPoint) string {
	parts := make([]string, 0, len(mounts))
	for _, mnt := range mounts {
		parts = append(parts, mnt.String())
	}
	return strings.Join(parts, ",")
}

// environ builds the process environment: safe host variables, the
// configured env, then the runtime variables.
func (m *LocalManager) environ(extra map[string]string) []string {
	configured := make([]string, 0, len(m.cfg.Env))
	for k, v := range m.cfg.Env {
		configured = append(configured, k+"="+v)
	}
	slices.Sort(configured)

	requested := make([]string, 0, len(extra))
	for k, v := range extra {
		requested = append(requested, k+"="+v)
	}
	slices.Sort(requested)

	runtimeVars := []string{
		EnvMode + "=" + string(m.cfg.Mode),
		EnvStateDir + "=" + m.stateDir,
		EnvMounts + "=" + mountsValue(m.cfg.Mounts),
	}

	return system.MergeEnv(system.SafeEnviron(), configured, runtimeVars, requested)
}

// prepareStateDir picks the state directory for the configured mode
func (m *LocalManager) prepareStateDir() error {
	if m.cfg.Mode == config.ModePersist {
		dir := workspace.StateDir(m.cfg.RootDir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
		m.stateDir = dir
		m.tempState = false
		return nil
	}

	dir, err := os.MkdirTemp("", "forage-runtime-")
	if err != nil {
		return fmt.Errorf("failed to create temporary state directory: %w", err)
	}
	m.stateDir = dir
	m.tempState = true
	return nil
}

func (m *LocalManager) discardState() {
	if m.tempState && m.stateDir != "" {
		if err := os.RemoveAll(m.stateDir); err != nil {
			logging.Warn("failed to remove state directory", "dir", m.stateDir, "error", err)
		}
	}
	m.stateDir = ""
	m.tempState = false
}

func (m *LocalManager) running() bool {
	if m.proc == nil {
		return false
	}
	select {
	case <-m.done:
		return false
	default:
		return true
	}
}

// Start launches the sandbox command. It is an error to start twice.
func (m *LocalManager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running() {
		return fmt.Errorf("sandbox process already running (pid %d)", m.proc.Pid)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	argv, err := shellquote.Split(m.cfg.Command)
	if err != nil {
		return fmt.Errorf("invalid command %q: %w", m.cfg.Command, err)
	}
	if len(argv) == 0 {
		return fmt.Errorf("command is empty")
	}

	if err := m.prepareStateDir(); err != nil {
		return err
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = m.cfg.RootDir
	cmd.Env = m.environ(nil)
	cmd.Stdout = m.Stdout
	cmd.Stderr = m.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	logging.Debug("starting sandbox process", "command", argv, "dir", cmd.Dir, "mode", m.cfg.Mode)

	if err := cmd.Start(); err != nil {
		m.discardState()
		return fmt.Errorf("failed to start %s: %w", argv[0], err)
	}

	done := make(chan struct{})
	m.proc = cmd.Process
	m.done = done
	m.exitErr = nil

	go func() {
		err := cmd.Wait()
		m.mu.Lock()
		if m.done == done {
			m.exitErr = err
		}
		m.mu.Unlock()
		close(done)
		logging.Debug("sandbox process exited", "pid", cmd.Process.Pid, "error", err)
	}()

	return nil
}

// signalGroup sends sig to the process group, falling back to the process
func signalGroup(p *os.Process, sig syscall.Signal) error {
	if err := syscall.Kill(-p.Pid, sig); err != nil {
		return p.Signal(sig)
	}
	return nil
}

// Stop terminates the process group. SIGTERM is sent first; SIGKILL
// follows after the grace period, on ctx cancellation, or at once when
// force is set. Stopping a stopped manager is a no-op.
func (m *LocalManager) Stop(ctx context.Context, force bool) error {
	m.mu.Lock()
	proc, done := m.proc, m.done
	m.mu.Unlock()

	if proc == nil {
		return nil
	}

	select {
	case <-done:
	default:
		if force {
			if err := signalGroup(proc, syscall.SIGKILL); err != nil && !errors.Is(err, os.ErrProcessDone) {
				return fmt.Errorf("failed to kill pid %d: %w", proc.Pid, err)
			}
		} else {
			if err := signalGroup(proc, syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
				return fmt.Errorf("failed to terminate pid %d: %w", proc.Pid, err)
			}
			timer := time.NewTimer(m.gracePeriod())
			select {
			case <-done:
			case <-timer.C:
				logging.Debug("grace period elapsed, killing sandbox process", "pid", proc.Pid)
				_ = signalGroup(proc, syscall.SIGKILL)
			case <-ctx.Done():
				_ = signalGroup(proc, syscall.SIGKILL)
			}
			timer.Stop()
		}
		<-done
	}

	m.mu.Lock()
	m.proc = nil
	m.done = nil
	m.exitErr = nil
	m.discardState()
	m.mu.Unlock()

	return nil
}

// Exec runs req.Command in the workspace root with the sandbox
// environment. The sandbox process must be running.
func (m *LocalManager) Exec(ctx context.Context, req ExecRequest) (*ExecResponse, error) {
	m.mu.Lock()
	if !m.running() {
		m.mu.Unlock()
		return nil, ErrNotRunning
	}
	env := m.environ(req.Env)
	m.mu.Unlock()

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	argv, err := shellquote.Split(req.Command)
	if err != nil {
		return nil, fmt.Errorf("invalid command %q: %w", req.Command, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("command is empty")
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = m.cfg.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = m.cfg.RootDir
	cmd.Env = env
	// Background children inherit the group and the output pipes; kill
	// them all on timeout and stop waiting for the pipes shortly after.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return signalGroup(cmd.Process, syscall.SIGKILL)
	}
	cmd.WaitDelay = execWaitDelay
	if req.Stdin != "" {
		cmd.Stdin = strings.NewReader(req.Stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.Debug("exec", "id", req.ID, "command", argv)

	start := time.Now()
	err = cmd.Run()
	resp := &ExecResponse{
		ID:       req.ID,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return resp, fmt.Errorf("exec %s timed out after %s: %w", req.ID, timeout, ctxErr)
		}
		return resp, fmt.Errorf("exec %s cancelled: %w", req.ID, ctxErr)
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		resp.ExitCode = exitErr.ExitCode()
	default:
		return resp, fmt.Errorf("exec %s failed: %w", req.ID, err)
	}

	return resp, nil
}

// Status reports the process fields. RSS is best effort.
func (m *LocalManager) Status(ctx context.Context) LiveStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	var st LiveStatus
	if m.proc == nil {
		return st
	}

	st.PID = m.proc.Pid
	st.Running = m.running()
	if m.exitErr != nil {
		st.ExitError = m.exitErr.Error()
	}

	if st.Running {
		if p, err := process.NewProcessWithContext(ctx, int32(st.PID)); err == nil {
			if mem, err := p.MemoryInfoWithContext(ctx); err == nil {
				st.RSSBytes = mem.RSS
			}
		}
	}

	return st
}

var _ Manager = (*LocalManager)(nil)
