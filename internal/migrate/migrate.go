package migrate

import (
	"context"
	"sort"

	appErr "ojboot/pkg/errors"
	"ojboot/pkg/utils/logger"

	"go.uber.org/zap"
)

// Migration is one versioned schema change. Statements are executed in
// order; the version is recorded in the ledger only after all of them
// succeed.
type Migration struct {
	Version    int
	Name       string
	Statements []string
}

// Store is the ledger-aware backend migrations run against.
type Store interface {
	// EnsureLedger creates the schema_migrations table if missing.
	EnsureLedger(ctx context.Context) error
	// AppliedVersions returns the set of already-recorded versions.
	AppliedVersions(ctx context.Context) (map[int]bool, error)
	// Apply executes the migration's statements and records its version.
	Apply(ctx context.Context, m Migration) error
}

// Runner applies pending migrations in version order.
type Runner struct {
	store      Store
	migrations []Migration
}

// NewRunner validates the migration set and builds a runner.
func NewRunner(store Store, migrations []Migration) (*Runner, error) {
	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	seen := make(map[int]bool, len(sorted))
	for _, m := range sorted {
		if m.Version <= 0 {
			return nil, appErr.Newf(appErr.MigrationFailed, "migration %q has non-positive version %d", m.Name, m.Version)
		}
		if seen[m.Version] {
			return nil, appErr.Newf(appErr.MigrationFailed, "duplicate migration version %d", m.Version)
		}
		if len(m.Statements) == 0 {
			return nil, appErr.Newf(appErr.MigrationFailed, "migration %d has no statements", m.Version)
		}
		seen[m.Version] = true
	}

	return &Runner{store: store, migrations: sorted}, nil
}

// Run applies every pending migration and returns how many were applied.
// Already-recorded versions are skipped, so a repeated bootstrap against an
// initialized store is a no-op.
func (r *Runner) Run(ctx context.Context) (int, error) {
	if err := r.store.EnsureLedger(ctx); err != nil {
		return 0, appErr.Wrap(err, appErr.MigrationLedgerError)
	}

	applied, err := r.store.AppliedVersions(ctx)
	if err != nil {
		return 0, appErr.Wrap(err, appErr.MigrationLedgerError)
	}

	count := 0
	for _, m := range r.migrations {
		if applied[m.Version] {
			logger.Debug(ctx, "migration already applied",
				zap.Int("version", m.Version),
				zap.String("name", m.Name),
			)
			continue
		}

		logger.Info(ctx, "applying migration",
			zap.Int("version", m.Version),
			zap.String("name", m.Name),
			zap.Int("statements", len(m.Statements)),
		)
		if err := r.store.Apply(ctx, m); err != nil {
			return count, appErr.MigrationError(err, m.Version)
		}
		count++
	}

	logger.Info(ctx, "schema migration complete",
		zap.Int("applied", count),
		zap.Int("total", len(r.migrations)),
	)
	return count, nil
}
