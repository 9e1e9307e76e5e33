package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ojboot/internal/assets"
	"ojboot/internal/bootstrap"
	"ojboot/internal/identity"
	"ojboot/internal/migrate"
	"ojboot/internal/waitfor"
	appErr "ojboot/pkg/errors"
	"ojboot/pkg/utils/contextkey"
	"ojboot/pkg/utils/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Path to optional config file (env vars take precedence)")
	flag.Parse()

	appCfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		os.Exit(appErr.InvalidConfig.ExitStatus())
	}

	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(appErr.InvalidConfig.ExitStatus())
	}

	bootID := uuid.NewString()

	// Bootstrap is cancellable until the handoff; after exec the server
	// owns signal handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = contextkey.WithBootID(ctx, bootID)

	logger.Info(ctx, "bootstrap starting",
		zap.String("db_addr", appCfg.DB.Addr()),
		zap.String("redis_addr", appCfg.Redis.Addr),
		zap.Int("wait_attempts", appCfg.Wait.Attempts),
		zap.Duration("wait_interval", appCfg.Wait.Interval),
	)

	orch := &bootstrap.Orchestrator{
		BootID: bootID,
		Steps:  buildSteps(appCfg),
	}
	if err := orch.Run(ctx); err != nil {
		fatal(ctx, err)
	}

	handoff(ctx, appCfg)
}

func buildSteps(cfg *AppConfig) []bootstrap.Step {
	steps := []bootstrap.Step{
		{Name: "wait-dependencies", Run: func(ctx context.Context) error {
			waiter := waitfor.NewWaiter(waitfor.Policy{
				Attempts: cfg.Wait.Attempts,
				Interval: cfg.Wait.Interval,
			})
			probes := []waitfor.Probe{
				waitfor.NewMySQLProbe(cfg.DB.Addr(), cfg.DB.DSN(), cfg.Wait.DialTimeout),
			}
			if cfg.Redis.Addr != "" {
				probes = append(probes, waitfor.NewRedisProbe(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Wait.DialTimeout))
			}
			return waiter.WaitAll(ctx, probes...)
		}},
	}

	if !cfg.SkipMigrate {
		steps = append(steps, bootstrap.Step{Name: "migrate-schema", Run: func(ctx context.Context) error {
			store, err := migrate.OpenMySQL(ctx, cfg.DB.DSN())
			if err != nil {
				return appErr.Wrap(err, appErr.MigrationLedgerError)
			}
			defer func() { _ = store.Close() }()

			runner, err := migrate.NewRunner(store, migrate.Schema())
			if err != nil {
				return err
			}
			_, err = runner.Run(ctx)
			return err
		}})
	}

	if !cfg.SkipAssets {
		steps = append(steps, bootstrap.Step{Name: "collect-assets", Run: func(ctx context.Context) error {
			collector := &assets.Collector{
				SourceDirs: cfg.Static.Sources,
				Root:       cfg.Static.Root,
				Compress:   cfg.Static.Compress,
			}
			if _, err := collector.Collect(ctx); err != nil {
				return err
			}

			if cfg.Static.MinIO.Bucket == "" {
				return nil
			}
			store, err := assets.NewMinIOStore(cfg.Static.MinIO)
			if err != nil {
				return appErr.Wrap(err, appErr.AssetUploadFailed)
			}
			uploader := &assets.Uploader{Store: store, Bucket: cfg.Static.MinIO.Bucket}
			_, err = uploader.Mirror(ctx, cfg.Static.Root)
			return err
		}})
	}

	steps = append(steps, bootstrap.Step{Name: "drop-privileges", Run: func(ctx context.Context) error {
		return dropPrivileges(ctx, cfg)
	}})

	return steps
}

func dropPrivileges(ctx context.Context, cfg *AppConfig) error {
	if cfg.Run.RunAs == "" {
		// loadAppConfig only admits an empty runAs with allowRoot set.
		return nil
	}

	id, err := identity.Resolve(cfg.Run.RunAs)
	if err != nil {
		return err
	}
	if id.IsRoot() && !cfg.Run.AllowRoot {
		return appErr.New(appErr.RootNotAllowed).WithDetail("run_as", cfg.Run.RunAs)
	}

	if identity.Current() == id.UID {
		logger.Info(ctx, "already running as target identity",
			zap.Int("uid", id.UID),
			zap.Int("gid", id.GID),
		)
		return nil
	}

	if err := identity.Drop(id); err != nil {
		return err
	}
	logger.Info(ctx, "privileges dropped",
		zap.Int("uid", id.UID),
		zap.Int("gid", id.GID),
	)
	return nil
}

// handoff replaces this process with the server. It only returns through
// os.Exit.
func handoff(ctx context.Context, cfg *AppConfig) {
	argv, path, err := bootstrap.ResolveCommand(cfg.Run.ServerCmd, nil)
	if err != nil {
		fatal(ctx, err)
	}

	if cfg.Run.Supervise || !bootstrap.ExecSupported() {
		logger.Info(ctx, "starting server under supervision",
			zap.String("command", path),
			zap.Strings("argv", argv),
		)
		code, err := bootstrap.Supervise(ctx, path, argv, os.Environ())
		if err != nil {
			fatal(ctx, err)
		}
		_ = logger.Sync()
		os.Exit(code)
	}

	logger.Info(ctx, "handing off to server",
		zap.String("command", path),
		zap.Strings("argv", argv),
	)
	_ = logger.Sync()

	// On success this never returns: the server takes over this pid.
	if err := bootstrap.Exec(path, argv, os.Environ()); err != nil {
		fatal(ctx, err)
	}
}

func fatal(ctx context.Context, err error) {
	logger.Error(ctx, "bootstrap failed",
		zap.Int("exit_status", appErr.ExitStatus(err)),
		zap.Error(err),
	)
	_ = logger.Sync()
	os.Exit(appErr.ExitStatus(err))
}
