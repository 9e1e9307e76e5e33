package bootstrap

import (
	"os/exec"

	appErr "ojboot/pkg/errors"

	"github.com/google/shlex"
)

// ResolveCommand parses the configured server command into an argv and
// verifies the target is executable. raw comes from SERVER_CMD; when it is
// empty the repository-provided fallback invocation is used.
func ResolveCommand(raw string, fallback []string) ([]string, string, error) {
	argv := fallback
	if raw != "" {
		parsed, err := shlex.Split(raw)
		if err != nil {
			return nil, "", appErr.Wrapf(err, appErr.CommandNotFound, "parse server command %q: %v", raw, err)
		}
		argv = parsed
	}
	if len(argv) == 0 {
		return nil, "", appErr.New(appErr.CommandNotFound).WithMessage("server command is empty")
	}

	path, err := exec.LookPath(argv[0])
	if err != nil {
		return nil, "", appErr.Wrapf(err, appErr.CommandNotFound, "server command %q: %v", argv[0], err).
			WithDetail("command", argv[0])
	}
	return argv, path, nil
}
