package identity

import (
	"os/user"
	"strconv"
	"strings"

	appErr "ojboot/pkg/errors"
)

// Identity is the resolved unprivileged user/group the server runs as.
type Identity struct {
	UID    int
	GID    int
	Groups []int

	// User and Group keep the raw spec parts for diagnostics.
	User  string
	Group string
}

// ParseSpec splits a "user[:group]" spec.
func ParseSpec(spec string) (userPart, groupPart string, err error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return "", "", appErr.New(appErr.InvalidIdentity).WithMessage("identity spec is empty")
	}
	parts := strings.SplitN(spec, ":", 2)
	userPart = parts[0]
	if userPart == "" {
		return "", "", appErr.Newf(appErr.InvalidIdentity, "identity spec %q has no user part", spec)
	}
	if len(parts) == 2 {
		groupPart = parts[1]
		if groupPart == "" {
			return "", "", appErr.Newf(appErr.InvalidIdentity, "identity spec %q has an empty group part", spec)
		}
	}
	return userPart, groupPart, nil
}

// Resolve turns a "user[:group]" spec into numeric ids. Names are looked
// up in the user database; purely numeric parts are accepted even without
// a matching entry, since judge containers often declare ids directly.
func Resolve(spec string) (Identity, error) {
	userPart, groupPart, err := ParseSpec(spec)
	if err != nil {
		return Identity{}, err
	}

	id := Identity{User: userPart, Group: groupPart}

	u, lookupErr := lookupUser(userPart)
	switch {
	case lookupErr == nil:
		uid, err := strconv.Atoi(u.Uid)
		if err != nil {
			return Identity{}, appErr.Wrapf(err, appErr.IdentityNotFound, "non-numeric uid %q for user %s", u.Uid, userPart)
		}
		gid, err := strconv.Atoi(u.Gid)
		if err != nil {
			return Identity{}, appErr.Wrapf(err, appErr.IdentityNotFound, "non-numeric gid %q for user %s", u.Gid, userPart)
		}
		id.UID = uid
		id.GID = gid
		if groups, err := u.GroupIds(); err == nil {
			for _, g := range groups {
				if gv, err := strconv.Atoi(g); err == nil {
					id.Groups = append(id.Groups, gv)
				}
			}
		}
	default:
		uid, numErr := strconv.Atoi(userPart)
		if numErr != nil {
			return Identity{}, appErr.Wrapf(lookupErr, appErr.IdentityNotFound, "user %q not found: %v", userPart, lookupErr)
		}
		id.UID = uid
		id.GID = uid
	}

	if groupPart != "" {
		gid, err := resolveGroup(groupPart)
		if err != nil {
			return Identity{}, err
		}
		id.GID = gid
	}

	if len(id.Groups) == 0 {
		id.Groups = []int{id.GID}
	}
	return id, nil
}

func lookupUser(part string) (*user.User, error) {
	if _, err := strconv.Atoi(part); err == nil {
		return user.LookupId(part)
	}
	return user.Lookup(part)
}

func resolveGroup(part string) (int, error) {
	if gid, err := strconv.Atoi(part); err == nil {
		return gid, nil
	}
	g, err := user.LookupGroup(part)
	if err != nil {
		return 0, appErr.Wrapf(err, appErr.IdentityNotFound, "group %q not found: %v", part, err)
	}
	gid, err := strconv.Atoi(g.Gid)
	if err != nil {
		return 0, appErr.Wrapf(err, appErr.IdentityNotFound, "non-numeric gid %q for group %s", g.Gid, part)
	}
	return gid, nil
}

// IsRoot reports whether the identity would leave the server as uid 0.
func (id Identity) IsRoot() bool {
	return id.UID == 0
}
