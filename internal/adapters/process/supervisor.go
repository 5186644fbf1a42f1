package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/iyow2233/capstone/internal/telemetry"
	"github.com/iyow2233/capstone/internal/ui"
)

// DefaultGrace is how long a process gets between SIGTERM and SIGKILL.
const DefaultGrace = 2 * time.Second

// execCmd allows mocking exec.CommandContext in tests
var execCmd = exec.CommandContext

// Spec describes a process to spawn.
type Spec struct {
	Name string
	Args []string

	// Capture buffers stdout and stderr in memory; read with Handle.Output
	// after the process has exited.
	Capture bool
	// Silent discards all output.
	Silent bool
	// OutputPath receives stdout and stderr when neither Capture nor Silent
	// is set. Empty means a generated file in the working directory.
	OutputPath string
}

// Handle is a spawned process. It is owned by the stage that spawned it.
type Handle struct {
	ID         string
	Name       string
	OutputPath string

	cmd     *exec.Cmd
	outFile *os.File
	buf     *bytes.Buffer
	done    chan struct{}
	waitErr error
}

// Pid returns the OS process id.
func (h *Handle) Pid() int {
	return h.cmd.Process.Pid
}

// Done is closed once the process has exited and been reaped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Exited reports whether the process has been reaped.
func (h *Handle) Exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Err is the process exit error. Valid after Done is closed.
func (h *Handle) Err() error {
	<-h.done
	return h.waitErr
}

// Output returns captured output once the process has exited.
func (h *Handle) Output() string {
	if h.buf == nil {
		return ""
	}
	<-h.done
	return h.buf.String()
}

// Supervisor spawns and tracks external tool processes and guarantees none
// of them outlives a Terminate call by more than the grace window.
type Supervisor struct {
	workDir  string
	grace    time.Duration
	progress *ui.Progress
	logger   *slog.Logger

	mu      sync.Mutex
	handles map[string]*Handle
}

// NewSupervisor creates a supervisor writing redirected output under workDir.
func NewSupervisor(workDir string, progress *ui.Progress, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		workDir:  workDir,
		grace:    DefaultGrace,
		progress: progress,
		logger:   logger,
		handles:  make(map[string]*Handle),
	}
}

// SetGrace overrides the terminate grace window.
func (s *Supervisor) SetGrace(d time.Duration) {
	if d > 0 {
		s.grace = d
	}
}

// Spawn starts a process and returns immediately.
func (s *Supervisor) Spawn(ctx context.Context, spec Spec) (*Handle, error) {
	// The process lifetime is governed by Terminate, not by ctx, so that a
	// cancelled stage still goes through the graceful stop path.
	cmd := execCmd(context.WithoutCancel(ctx), spec.Name, spec.Args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	h := &Handle{
		ID:   uuid.New().String(),
		Name: spec.Name,
		cmd:  cmd,
		done: make(chan struct{}),
	}

	switch {
	case spec.Capture:
		h.buf = &bytes.Buffer{}
		cmd.Stdout = h.buf
		cmd.Stderr = h.buf
	case spec.Silent:
		// nil Stdout/Stderr go to the null device
	default:
		path := spec.OutputPath
		if path == "" {
			path = filepath.Join(s.workDir, fmt.Sprintf("%s-%s.out", filepath.Base(spec.Name), h.ID[:8]))
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("open output file for %s: %w", spec.Name, err)
		}
		h.outFile = f
		h.OutputPath = path
		cmd.Stdout = f
		cmd.Stderr = f
	}

	if err := cmd.Start(); err != nil {
		if h.outFile != nil {
			h.outFile.Close()
		}
		return nil, fmt.Errorf("failed to start %s: %w", spec.Name, err)
	}
	telemetry.ProcessesSpawned.WithLabelValues(filepath.Base(spec.Name)).Inc()

	s.mu.Lock()
	s.handles[h.ID] = h
	s.mu.Unlock()

	go func() {
		h.waitErr = cmd.Wait()
		if h.outFile != nil {
			h.outFile.Close()
		}
		close(h.done)
	}()

	s.logger.Debug("Spawned process", "tool", spec.Name, "args", spec.Args, "pid", cmd.Process.Pid)
	return h, nil
}

// Wait blocks up to d with a progress readout. It returns early when the
// process exits, and with ctx.Err() when the session is stopped.
func (s *Supervisor) Wait(ctx context.Context, h *Handle, d time.Duration, label string) error {
	var done <-chan struct{}
	if h != nil {
		done = h.done
	}
	if s.progress == nil {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
		case <-timer.C:
		}
		return nil
	}
	return s.progress.Wait(ctx, label, d, done)
}

// Terminate stops h: SIGTERM to its process group, SIGKILL after the grace
// window, then reap. Calling it on a nil or already exited handle is a no-op.
func (s *Supervisor) Terminate(h *Handle) error {
	if h == nil {
		return nil
	}
	defer s.untrack(h)

	if h.Exited() {
		return nil
	}

	if err := signalGroup(h, syscall.SIGTERM); err != nil {
		s.logger.Debug("SIGTERM failed", "tool", h.Name, "error", err)
	}

	timer := time.NewTimer(s.grace)
	defer timer.Stop()
	select {
	case <-h.done:
		return nil
	case <-timer.C:
	}

	s.logger.Warn("Process ignored SIGTERM, killing", "tool", h.Name, "pid", h.Pid())
	telemetry.ProcessesKilled.WithLabelValues(filepath.Base(h.Name)).Inc()
	if err := signalGroup(h, syscall.SIGKILL); err != nil {
		return fmt.Errorf("kill %s: %w", h.Name, err)
	}
	<-h.done
	return nil
}

// TerminateAll terminates every tracked process. Safe to call when nothing
// was ever spawned.
func (s *Supervisor) TerminateAll() {
	s.mu.Lock()
	handles := make([]*Handle, 0, len(s.handles))
	for _, h := range s.handles {
		handles = append(handles, h)
	}
	s.mu.Unlock()

	for _, h := range handles {
		if err := s.Terminate(h); err != nil {
			s.logger.Error("Failed to terminate process", "tool", h.Name, "error", err)
		}
	}
}

// Tracked returns the number of processes not yet released.
func (s *Supervisor) Tracked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// Run executes a short command to completion and returns combined output.
func (s *Supervisor) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := execCmd(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%s %v: %w", name, args, err)
	}
	return string(out), nil
}

func (s *Supervisor) untrack(h *Handle) {
	s.mu.Lock()
	delete(s.handles, h.ID)
	s.mu.Unlock()
}

func signalGroup(h *Handle, sig syscall.Signal) error {
	err := syscall.Kill(-h.Pid(), sig)
	if err == nil {
		return nil
	}
	// Fall back to the leader alone, e.g. when the group is already gone.
	if perr := h.cmd.Process.Signal(sig); perr != nil && !errors.Is(perr, os.ErrProcessDone) {
		return perr
	}
	return nil
}

// Spawner is the part of Supervisor the capture and injection adapters use.
type Spawner interface {
	Spawn(ctx context.Context, spec Spec) (*Handle, error)
	Wait(ctx context.Context, h *Handle, d time.Duration, label string) error
	Terminate(h *Handle) error
}

var _ Spawner = (*Supervisor)(nil)
