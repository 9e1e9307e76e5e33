package bootstrap

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	appErr "ojboot/pkg/errors"
	"ojboot/pkg/utils/logger"

	"go.uber.org/zap"
)

// forwardedSignals are relayed synchronously to the supervised server.
var forwardedSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGHUP,
	syscall.SIGQUIT,
}

// Supervise approximates the exec handoff where process-image replacement
// is unavailable: it starts the server as a child with inherited stdio,
// forwards every received termination signal, and propagates the child's
// exit code as its own result.
func Supervise(ctx context.Context, path string, argv, env []string) (int, error) {
	// The child sees the caller's argv verbatim, same as the exec handoff.
	cmd := &exec.Cmd{
		Path:   path,
		Args:   argv,
		Env:    env,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}

	if err := cmd.Start(); err != nil {
		return 0, appErr.Wrapf(err, appErr.SuperviseFailed, "start %s: %v", path, err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, forwardedSignals...)
	defer signal.Stop(sigCh)

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	for {
		select {
		case sig := <-sigCh:
			logger.Info(ctx, "forwarding signal to server",
				zap.String("signal", sig.String()),
				zap.Int("pid", cmd.Process.Pid),
			)
			_ = cmd.Process.Signal(sig)
		case err := <-done:
			if err == nil {
				return 0, nil
			}
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return exitErr.ExitCode(), nil
			}
			return 0, appErr.Wrapf(err, appErr.SuperviseFailed, "wait for %s: %v", path, err)
		}
	}
}
