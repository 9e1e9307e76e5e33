package waitfor_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"ojboot/internal/waitfor"
	appErr "ojboot/pkg/errors"

	"github.com/alicebob/miniredis/v2"
)

type fakeProbe struct {
	name      string
	checks    int
	succeedAt int // 0 means never
}

func (p *fakeProbe) Name() string { return p.name }
func (p *fakeProbe) Addr() string { return "fake:0" }

func (p *fakeProbe) Check(ctx context.Context) error {
	p.checks++
	if p.succeedAt > 0 && p.checks >= p.succeedAt {
		return nil
	}
	return errors.New("connection refused")
}

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func TestWaitSucceedsAtAttemptK(t *testing.T) {
	probe := &fakeProbe{name: "store", succeedAt: 3}
	waiter := waitfor.NewWaiter(waitfor.Policy{Attempts: 10, Interval: time.Second})
	slept := 0
	waiter.Sleep = func(ctx context.Context, d time.Duration) error {
		slept++
		return nil
	}

	if err := waiter.Wait(context.Background(), probe); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if probe.checks != 3 {
		t.Fatalf("expected 3 checks, got %d", probe.checks)
	}
	if slept != 2 {
		t.Fatalf("expected 2 sleeps before success, got %d", slept)
	}
}

func TestWaitExhaustsRetryBudget(t *testing.T) {
	probe := &fakeProbe{name: "store"}
	waiter := waitfor.NewWaiter(waitfor.Policy{Attempts: 5, Interval: time.Second})
	slept := 0
	waiter.Sleep = func(ctx context.Context, d time.Duration) error {
		if d != time.Second {
			t.Fatalf("expected fixed interval 1s, got %v", d)
		}
		slept++
		return nil
	}

	err := waiter.Wait(context.Background(), probe)
	if !appErr.Is(err, appErr.DependencyUnavailable) {
		t.Fatalf("expected DependencyUnavailable, got %v", err)
	}
	if probe.checks != 5 {
		t.Fatalf("expected exactly 5 checks, got %d", probe.checks)
	}
	// No sleep after the final attempt: total wait stays within N*I.
	if slept != 4 {
		t.Fatalf("expected 4 sleeps, got %d", slept)
	}
	if appErr.ExitStatus(err) != 2 {
		t.Fatalf("expected exit status 2, got %d", appErr.ExitStatus(err))
	}
}

func TestWaitCanceledDuringSleep(t *testing.T) {
	probe := &fakeProbe{name: "store"}
	ctx, cancel := context.WithCancel(context.Background())
	waiter := waitfor.NewWaiter(waitfor.Policy{Attempts: 10, Interval: time.Second})
	waiter.Sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	err := waiter.Wait(ctx, probe)
	if !appErr.Is(err, appErr.WaitCanceled) {
		t.Fatalf("expected WaitCanceled, got %v", err)
	}
	if probe.checks != 1 {
		t.Fatalf("expected a single check before cancel, got %d", probe.checks)
	}
}

func TestWaitAllStopsAtFirstFailure(t *testing.T) {
	first := &fakeProbe{name: "first"}
	second := &fakeProbe{name: "second", succeedAt: 1}
	waiter := waitfor.NewWaiter(waitfor.Policy{Attempts: 2, Interval: time.Second})
	waiter.Sleep = noSleep

	err := waiter.WaitAll(context.Background(), first, second)
	if !appErr.Is(err, appErr.DependencyUnavailable) {
		t.Fatalf("expected DependencyUnavailable, got %v", err)
	}
	if second.checks != 0 {
		t.Fatalf("expected the second probe untouched, got %d checks", second.checks)
	}
}

func TestTCPProbe(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	addr := listener.Addr().String()

	probe := waitfor.NewTCPProbe("store", addr, time.Second)
	if err := probe.Check(context.Background()); err != nil {
		t.Fatalf("expected open port to probe clean, got %v", err)
	}

	_ = listener.Close()
	if err := probe.Check(context.Background()); err == nil {
		t.Fatalf("expected probe failure against closed port")
	}
}

func TestRedisProbe(t *testing.T) {
	srv := miniredis.RunT(t)

	probe := waitfor.NewRedisProbe(srv.Addr(), "", 0, time.Second)
	if err := probe.Check(context.Background()); err != nil {
		t.Fatalf("expected redis probe success, got %v", err)
	}

	srv.Close()
	if err := probe.Check(context.Background()); err == nil {
		t.Fatalf("expected redis probe failure after shutdown")
	}
}
