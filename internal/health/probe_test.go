package health_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ojboot/internal/health"

	"github.com/gin-gonic/gin"
)

func newHealthBackend(t *testing.T, ready bool) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/healthz", func(c *gin.Context) {
		if ready {
			c.Status(http.StatusOK)
			return
		}
		c.Status(http.StatusServiceUnavailable)
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestCheckSucceedsAgainstReadyServer(t *testing.T) {
	server := newHealthBackend(t, true)

	probe := health.NewProbe(server.URL+"/healthz", time.Second)
	if err := probe.Check(context.Background()); err != nil {
		t.Fatalf("expected healthy, got %v", err)
	}
}

func TestCheckFailsOnErrorStatus(t *testing.T) {
	server := newHealthBackend(t, false)

	probe := health.NewProbe(server.URL+"/healthz", time.Second)
	if err := probe.Check(context.Background()); err == nil {
		t.Fatalf("expected failure for 503 response")
	}
}

func TestCheckFailsBeforeServerListens(t *testing.T) {
	// Reserve a port and close it so nothing is listening there.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	addr := listener.Addr().String()
	_ = listener.Close()

	probe := health.NewProbe("http://"+addr+"/healthz", 500*time.Millisecond)
	if err := probe.Check(context.Background()); err == nil {
		t.Fatalf("expected failure before the server is listening")
	}
}

func TestCheckTransitionsWithServerStart(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	addr := listener.Addr().String()
	_ = listener.Close()

	probe := health.NewProbe("http://"+addr+"/healthz", 500*time.Millisecond)
	if err := probe.Check(context.Background()); err == nil {
		t.Fatalf("expected failure before start")
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	listener, err = net.Listen("tcp", addr)
	if err != nil {
		t.Skipf("port %s no longer available: %v", addr, err)
	}
	server := &http.Server{Handler: router}
	go func() { _ = server.Serve(listener) }()
	t.Cleanup(func() { _ = server.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for {
		if err := probe.Check(context.Background()); err == nil {
			return
		} else if time.Now().After(deadline) {
			t.Fatalf("probe never succeeded after server start: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}
}
