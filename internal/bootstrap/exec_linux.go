//go:build linux

package bootstrap

import (
	appErr "ojboot/pkg/errors"

	"golang.org/x/sys/unix"
)

// Exec replaces the current process image with the server. On success it
// never returns; the server inherits the pid and receives container
// signals directly, with no supervising parent left behind.
func Exec(path string, argv, env []string) error {
	if err := unix.Exec(path, argv, env); err != nil {
		return appErr.HandoffError(err, path)
	}
	return nil
}

// ExecSupported reports whether process-image replacement is available.
func ExecSupported() bool { return true }
