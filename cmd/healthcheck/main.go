package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"ojboot/internal/health"
)

const (
	defaultHealthURL     = "http://127.0.0.1:8000/healthz"
	defaultHealthTimeout = 3 * time.Second
)

// healthcheck is what the container HEALTHCHECK invokes: one probe, exit
// 0 when the server answers and 1 otherwise. Interval, retries and the
// failure threshold live in the container runtime, not here.
func main() {
	url := flag.String("url", envString("HEALTH_URL", defaultHealthURL), "Health endpoint URL")
	timeout := flag.Duration("timeout", envDuration("HEALTH_TIMEOUT", defaultHealthTimeout), "Probe timeout")
	flag.Parse()

	probe := health.NewProbe(*url, *timeout)
	if err := probe.Check(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "unhealthy: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("healthy")
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
