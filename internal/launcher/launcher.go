package launcher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrNotStarted is returned by Stop and Wait before a process was started.
var ErrNotStarted = errors.New("backend not started")

const stopGrace = 3 * time.Second

// Options describe the backend process to host.
type Options struct {
	Command string
	Args    []string
	Dir     string
	LogPath string // captured stdout/stderr, appended
	Logger  *slog.Logger
}

// Launcher owns one backend child process.
type Launcher struct {
	opts Options
	log  *slog.Logger

	mu       sync.Mutex
	cmd      *exec.Cmd
	logFile  *os.File
	done     chan struct{}
	exitErr  error
	stopOnce sync.Once
}

// New returns a Launcher; nothing runs until Start.
func New(opts Options) *Launcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Launcher{opts: opts, log: logger.With("component", "launcher")}
}

// Enabled reports whether a backend command is configured.
func (l *Launcher) Enabled() bool {
	return strings.TrimSpace(l.opts.Command) != ""
}

// Start spawns the backend. With no command configured it does nothing, so
// prodwatch can attach to a backend started elsewhere.
func (l *Launcher) Start(ctx context.Context) error {
	if !l.Enabled() {
		l.log.Info("no backend command configured; expecting an external backend")
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cmd != nil {
		return fmt.Errorf("backend already started")
	}

	cmd := exec.CommandContext(ctx, l.opts.Command, l.opts.Args...)
	cmd.Dir = l.opts.Dir
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = stopGrace

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	var sink io.Writer = io.Discard
	if path := strings.TrimSpace(l.opts.LogPath); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create backend log dir: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open backend log: %w", err)
		}
		l.logFile = file
		sink = file
	}

	if err := cmd.Start(); err != nil {
		l.closeLog()
		return fmt.Errorf("start backend %q: %w", l.opts.Command, err)
	}
	l.cmd = cmd
	l.done = make(chan struct{})
	l.log.Info("backend started", "command", l.opts.Command, "args", l.opts.Args, "pid", cmd.Process.Pid)

	var sinkMu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(2)
	go l.pump(&wg, stdout, "stdout", sink, &sinkMu)
	go l.pump(&wg, stderr, "stderr", sink, &sinkMu)

	go func() {
		wg.Wait()
		err := cmd.Wait()
		l.mu.Lock()
		l.exitErr = err
		l.closeLog()
		l.mu.Unlock()
		if err != nil {
			l.log.Warn("backend exited", "error", err)
		} else {
			l.log.Info("backend exited")
		}
		close(l.done)
	}()
	return nil
}

func (l *Launcher) pump(wg *sync.WaitGroup, r io.Reader, stream string, sink io.Writer, mu *sync.Mutex) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if stream == "stderr" {
			l.log.Warn("backend output", "stream", stream, "line", line)
		} else {
			l.log.Info("backend output", "stream", stream, "line", line)
		}
		mu.Lock()
		_, _ = fmt.Fprintf(sink, "[%s] %s\n", stream, line)
		mu.Unlock()
	}
}

// Done is closed once the process has exited. It is nil before Start.
func (l *Launcher) Done() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done
}

// Running reports whether a started process has not exited yet.
func (l *Launcher) Running() bool {
	done := l.Done()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// Wait blocks until the process exits and returns its exit error.
func (l *Launcher) Wait() error {
	done := l.Done()
	if done == nil {
		return ErrNotStarted
	}
	<-done
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.exitErr
}

// Stop interrupts the backend and waits for it, killing it after a grace
// period. Calling Stop more than once is safe.
func (l *Launcher) Stop() error {
	l.mu.Lock()
	cmd, done := l.cmd, l.done
	l.mu.Unlock()
	if cmd == nil {
		return nil
	}

	l.stopOnce.Do(func() {
		select {
		case <-done:
			return
		default:
		}
		l.log.Info("stopping backend", "pid", cmd.Process.Pid)
		if err := cmd.Process.Signal(os.Interrupt); err != nil {
			_ = cmd.Process.Kill()
		}
		select {
		case <-done:
		case <-time.After(stopGrace):
			l.log.Warn("backend ignored interrupt; killing", "pid", cmd.Process.Pid)
			_ = cmd.Process.Kill()
			<-done
		}
	})
	<-done
	return nil
}

// closeLog must be called with mu held.
func (l *Launcher) closeLog() {
	if l.logFile != nil {
		_ = l.logFile.Close()
		l.logFile = nil
	}
}
