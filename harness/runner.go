package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"
)

// ProcessRunner executes one external invocation and blocks until it exits.
// A non-zero exit is returned as an error; runners never retry.
type ProcessRunner interface {
	Run(ctx context.Context, inv Invocation) error
}

// RunError describes a failed invocation.
type RunError struct {
	Invocation Invocation
	// ExitCode is -1 when the process did not exit normally.
	ExitCode int
	TimedOut bool
	Stderr   string
	Err      error
}

func (e *RunError) Error() string {
	msg := fmt.Sprintf("%s %q in %s", e.Invocation.Kind, e.Invocation.String(), e.Invocation.Dir)

	switch {
	case e.TimedOut:
		msg += " timed out"
	case e.ExitCode >= 0:
		msg += fmt.Sprintf(" exited with status %d", e.ExitCode)
	default:
		msg += fmt.Sprintf(" failed: %v", e.Err)
	}

	if e.Stderr != "" {
		msg += "\nstderr: " + e.Stderr
	}

	return msg
}

func (e *RunError) Unwrap() error { return e.Err }

const stderrTailBytes = 4096

// ExecRunner runs invocations as child processes.
type ExecRunner struct {
	// Timeout bounds each invocation; zero disables it.
	Timeout time.Duration
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
}

// NewExecRunner creates an ExecRunner that streams child output to the
// given writers. Nil writers discard.
func NewExecRunner(
	timeout time.Duration,
	stdout, stderr io.Writer,
	logger *slog.Logger,
) *ExecRunner {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	return &ExecRunner{
		Timeout: timeout,
		Stdout:  stdout,
		Stderr:  stderr,
		Logger:  logger.With(slog.String("component", "runner")),
	}
}

// Run executes inv and waits for it. On timeout the whole process group is
// killed.
func (r *ExecRunner) Run(ctx context.Context, inv Invocation) error {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, inv.Path, inv.Args...)
	cmd.Dir = inv.Dir
	configureKill(cmd)

	tail := &tailBuffer{limit: stderrTailBytes}
	cmd.Stdout = r.Stdout
	cmd.Stderr = io.MultiWriter(r.Stderr, tail)

	r.Logger.DebugContext(ctx, "starting process",
		slog.String("kind", inv.Kind.String()),
		slog.String("command", inv.String()),
		slog.String("dir", inv.Dir),
	)

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err == nil {
		r.Logger.DebugContext(ctx, "process finished",
			slog.String("kind", inv.Kind.String()),
			slog.Duration("wall_time", elapsed),
		)

		return nil
	}

	runErr := &RunError{
		Invocation: inv,
		ExitCode:   -1,
		TimedOut:   errors.Is(ctx.Err(), context.DeadlineExceeded),
		Stderr:     tail.String(),
		Err:        err,
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.Exited() {
		runErr.ExitCode = exitErr.ExitCode()
	}

	return runErr
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = t.buf[over:]
	}

	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}
