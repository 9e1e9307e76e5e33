//go:build !linux

package identity

import (
	"os"

	appErr "ojboot/pkg/errors"
)

// Drop is unsupported outside linux; the container runtime is always
// linux, so failing loudly beats pretending the switch happened.
func Drop(id Identity) error {
	return appErr.New(appErr.PrivilegeDrop).WithMessage("privilege drop is only supported on linux")
}

// Current returns the process's effective uid.
func Current() int {
	return os.Getuid()
}
