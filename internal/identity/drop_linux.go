//go:build linux

package identity

import (
	appErr "ojboot/pkg/errors"

	"golang.org/x/sys/unix"
)

// Drop switches the process to the identity. Order matters: supplementary
// groups and gid must be set while still privileged, uid last. The switch
// is irreversible.
func Drop(id Identity) error {
	if err := unix.Setgroups(id.Groups); err != nil {
		return appErr.Wrapf(err, appErr.PrivilegeDrop, "setgroups %v: %v", id.Groups, err)
	}
	if err := unix.Setgid(id.GID); err != nil {
		return appErr.Wrapf(err, appErr.PrivilegeDrop, "setgid %d: %v", id.GID, err)
	}
	if err := unix.Setuid(id.UID); err != nil {
		return appErr.Wrapf(err, appErr.PrivilegeDrop, "setuid %d: %v", id.UID, err)
	}

	if unix.Getuid() != id.UID || unix.Getgid() != id.GID {
		return appErr.Newf(appErr.PrivilegeDrop, "identity switch did not take effect (uid=%d gid=%d)", unix.Getuid(), unix.Getgid())
	}
	return nil
}

// Current returns the process's effective uid.
func Current() int {
	return unix.Getuid()
}
