package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

const ledgerDDL = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    INT          NOT NULL,
	name       VARCHAR(255) NOT NULL,
	applied_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (version)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// MySQLStore implements Store on a MySQL connection.
// MySQL DDL is not transactional, so Apply records the version only after
// every statement has succeeded; the statements themselves use IF NOT
// EXISTS guards to stay safe against a half-applied restart.
type MySQLStore struct {
	db *sql.DB
}

// OpenMySQL opens a connection for migration work. The bootstrap has
// already waited for the store to be reachable, so the ping here is only a
// consistency check.
func OpenMySQL(ctx context.Context, dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	// Migrations are sequential; one connection is enough.
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	return &MySQLStore{db: db}, nil
}

// NewMySQLStoreWithDB wraps an existing connection (used by tests).
func NewMySQLStoreWithDB(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// Close releases the underlying connection pool.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}

// EnsureLedger creates the schema_migrations table if missing.
func (s *MySQLStore) EnsureLedger(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, ledgerDDL); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

// AppliedVersions returns the set of recorded migration versions.
func (s *MySQLStore) AppliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan schema_migrations: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schema_migrations: %w", err)
	}
	return applied, nil
}

// Apply executes the migration's statements, then records the version.
func (s *MySQLStore) Apply(ctx context.Context, m Migration) error {
	for i, stmt := range m.Statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d of migration %d: %w", i+1, m.Version, err)
		}
	}
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		m.Version, m.Name,
	); err != nil {
		return fmt.Errorf("record migration %d: %w", m.Version, err)
	}
	return nil
}
