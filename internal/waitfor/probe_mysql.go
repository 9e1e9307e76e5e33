package waitfor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLProbe reports the store reachable once a driver-level ping succeeds,
// which also proves the server is past its own startup (accepting
// connections and authenticating), not merely that the port is open.
type MySQLProbe struct {
	addr        string
	dsn         string
	dialTimeout time.Duration
}

// NewMySQLProbe creates a probe using the given DSN. addr is the host:port
// used in diagnostics.
func NewMySQLProbe(addr, dsn string, dialTimeout time.Duration) *MySQLProbe {
	if dialTimeout <= 0 {
		dialTimeout = 3 * time.Second
	}
	return &MySQLProbe{addr: addr, dsn: dsn, dialTimeout: dialTimeout}
}

func (p *MySQLProbe) Name() string { return "mysql" }

func (p *MySQLProbe) Addr() string { return p.addr }

// Check opens a throwaway connection and pings it. A fresh connection per
// attempt avoids the driver's own retry and pooling behavior hiding an
// unreachable server.
func (p *MySQLProbe) Check(ctx context.Context) error {
	db, err := sql.Open("mysql", p.dsn)
	if err != nil {
		return fmt.Errorf("open mysql: %w", err)
	}
	defer func() { _ = db.Close() }()

	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, p.dialTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping mysql: %w", err)
	}
	return nil
}
