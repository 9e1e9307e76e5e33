package bootstrap_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"testing"
	"time"

	"ojboot/internal/bootstrap"
	appErr "ojboot/pkg/errors"
)

func TestRunExecutesStepsInOrder(t *testing.T) {
	var order []string
	step := func(name string) bootstrap.Step {
		return bootstrap.Step{Name: name, Run: func(ctx context.Context) error {
			order = append(order, name)
			return nil
		}}
	}

	orch := &bootstrap.Orchestrator{
		BootID: "test-boot",
		Steps:  []bootstrap.Step{step("wait"), step("migrate"), step("assets"), step("handoff")},
	}
	if err := orch.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := []string{"wait", "migrate", "assets", "handoff"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	var order []string
	orch := &bootstrap.Orchestrator{
		BootID: "test-boot",
		Steps: []bootstrap.Step{
			{Name: "wait", Run: func(ctx context.Context) error {
				order = append(order, "wait")
				return nil
			}},
			{Name: "migrate", Run: func(ctx context.Context) error {
				order = append(order, "migrate")
				return appErr.New(appErr.MigrationFailed)
			}},
			{Name: "handoff", Run: func(ctx context.Context) error {
				order = append(order, "handoff")
				return nil
			}},
		},
	}

	err := orch.Run(context.Background())
	if !appErr.Is(err, appErr.MigrationFailed) {
		t.Fatalf("expected MigrationFailed, got %v", err)
	}
	if len(order) != 2 {
		t.Fatalf("expected later steps to be skipped, got %v", order)
	}
}

func TestResolveCommandParsesRawString(t *testing.T) {
	self, err := os.Executable()
	if err != nil {
		t.Fatalf("executable lookup failed: %v", err)
	}

	argv, path, err := bootstrap.ResolveCommand(self+" serve --port 8000", nil)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(argv) != 4 || argv[1] != "serve" || argv[3] != "8000" {
		t.Fatalf("unexpected argv: %v", argv)
	}
	if path != self {
		t.Fatalf("expected resolved path %q, got %q", self, path)
	}
}

func TestResolveCommandUsesFallback(t *testing.T) {
	self, err := os.Executable()
	if err != nil {
		t.Fatalf("executable lookup failed: %v", err)
	}

	argv, _, err := bootstrap.ResolveCommand("", []string{self, "run"})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(argv) != 2 || argv[1] != "run" {
		t.Fatalf("unexpected argv: %v", argv)
	}
}

func TestResolveCommandMissingBinary(t *testing.T) {
	_, _, err := bootstrap.ResolveCommand("no-such-server-binary-ojboot", nil)
	if !appErr.Is(err, appErr.CommandNotFound) {
		t.Fatalf("expected CommandNotFound, got %v", err)
	}
	if appErr.ExitStatus(err) != 5 {
		t.Fatalf("expected exit status 5, got %d", appErr.ExitStatus(err))
	}
}

func TestResolveCommandEmpty(t *testing.T) {
	_, _, err := bootstrap.ResolveCommand("", nil)
	if !appErr.Is(err, appErr.CommandNotFound) {
		t.Fatalf("expected CommandNotFound, got %v", err)
	}
}

func TestSupervisePropagatesExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	_, shPath, err := bootstrap.ResolveCommand("sh -c 'exit 7'", nil)
	if err != nil {
		t.Skipf("sh not available: %v", err)
	}

	code, err := bootstrap.Supervise(context.Background(), shPath, []string{"sh", "-c", "exit 7"}, os.Environ())
	if err != nil {
		t.Fatalf("supervise failed: %v", err)
	}
	if code != 7 {
		t.Fatalf("expected exit code 7, got %d", code)
	}
}

func TestSuperviseForwardsTermination(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	_, shPath, err := bootstrap.ResolveCommand("sh -c 'exit 0'", nil)
	if err != nil {
		t.Skipf("sh not available: %v", err)
	}

	// Deliver SIGTERM to this process once the child is looping; Supervise
	// must relay it and report the trap's exit code.
	timer := time.AfterFunc(300*time.Millisecond, func() {
		_ = syscall.Kill(os.Getpid(), syscall.SIGTERM)
	})
	defer timer.Stop()

	script := `trap 'exit 3' TERM; while :; do sleep 0.05; done`
	code, err := bootstrap.Supervise(context.Background(), shPath, []string{"sh", "-c", script}, os.Environ())
	if err != nil {
		t.Fatalf("supervise failed: %v", err)
	}
	if code != 3 {
		t.Fatalf("expected trap exit code 3, got %d", code)
	}
}

func TestSuperviseKeepsChildArgv(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	_, shPath, err := bootstrap.ResolveCommand("sh -c 'exit 0'", nil)
	if err != nil {
		t.Skipf("sh not available: %v", err)
	}

	// With no operand after -c, the shell sets $0 from its own argv[0].
	out := filepath.Join(t.TempDir(), "argv0")
	code, err := bootstrap.Supervise(context.Background(), shPath, []string{"ojserver", "-c", "echo $0 > " + out}, os.Environ())
	if err != nil || code != 0 {
		t.Fatalf("supervise failed: code=%d err=%v", code, err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read captured argv[0]: %v", err)
	}
	if name := strings.TrimSpace(string(got)); name != "ojserver" {
		t.Fatalf("expected argv[0] %q to reach the child, got %q", "ojserver", name)
	}
}

func TestSuperviseCleanExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	_, shPath, err := bootstrap.ResolveCommand("sh -c 'exit 0'", nil)
	if err != nil {
		t.Skipf("sh not available: %v", err)
	}

	code, err := bootstrap.Supervise(context.Background(), shPath, []string{"sh", "-c", "exit 0"}, os.Environ())
	if err != nil {
		t.Fatalf("supervise failed: %v", err)
	}
	if code != 0 {
		t.Fatalf("expected clean exit, got %d", code)
	}
}
