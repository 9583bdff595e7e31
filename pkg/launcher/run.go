package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"

	qtlog "github.com/MethodJiao/qttools/pkg/log"
)

// ExitError carries a non-zero child exit status up to main.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// StartError reports an executable that exists but could not be started.
type StartError struct {
	Path string
	Err  error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Path, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// Run starts inv with the launcher's stdio and blocks until it exits. The
// child's exit code is returned unchanged; a child killed by a signal reports
// 128 plus the signal number on Unix.
//
// While the child runs, interrupts are left to the child (it shares the
// terminal's process group) and other termination signals are forwarded.
func (l *Launcher) Run(ctx context.Context, inv *Invocation) (int, error) {
	cmd := exec.CommandContext(ctx, inv.Path, inv.Args...)
	cmd.Env = inv.Env.List()
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)
	if len(forwardedSignals) > 0 {
		signal.Notify(signals, forwardedSignals...)
	}
	defer signal.Stop(signals)

	if err := cmd.Start(); err != nil {
		return 0, &StartError{Path: inv.Path, Err: err}
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-signals:
				if sig == os.Interrupt {
					continue
				}
				qtlog.Debug("forwarding signal to tool", "signal", sig.String(), "pid", cmd.Process.Pid)
				if err := cmd.Process.Signal(sig); err != nil {
					qtlog.Debug("failed to forward signal", "signal", sig.String(), "error", err)
				}
			case <-done:
				return
			}
		}
	}()

	err := cmd.Wait()
	close(done)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitCode(exitErr.ProcessState), nil
		}
		return 0, fmt.Errorf("failed waiting for %s: %w", inv.Path, err)
	}
	return 0, nil
}
