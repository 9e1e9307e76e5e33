//go:build !linux

package bootstrap

import (
	appErr "ojboot/pkg/errors"
)

// Exec is unavailable without process-image replacement; callers fall
// back to the supervised handoff.
func Exec(path string, argv, env []string) error {
	return appErr.New(appErr.ExecFailed).WithMessage("exec handoff is only supported on linux")
}

// ExecSupported reports whether process-image replacement is available.
func ExecSupported() bool { return false }
