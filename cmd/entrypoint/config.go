package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"ojboot/internal/assets"
	"ojboot/pkg/utils/logger"

	"gopkg.in/yaml.v3"
)

const (
	defaultDBHost       = "db"
	defaultDBPort       = 3306
	defaultDBUser       = "judge"
	defaultDBName       = "judge"
	defaultWaitAttempts = 30
	defaultWaitInterval = 2 * time.Second
	defaultDialTimeout  = 3 * time.Second
	defaultStaticSource = "/app/static"
	defaultStaticRoot   = "/srv/static"
	defaultRunAs        = "judge:judge"
	defaultServerCmd    = "gunicorn judge.wsgi:application --bind 0.0.0.0:8000 --workers 3"
)

// DBConfig holds the dependent store's connection parameters.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// Addr returns the host:port endpoint.
func (c DBConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DSN builds the driver DSN.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4", c.User, c.Password, c.Addr(), c.Name)
}

// RedisConfig holds the optional cache dependency. An empty Addr disables
// the cache wait.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// WaitConfig bounds the dependency wait loop.
type WaitConfig struct {
	Attempts    int           `yaml:"attempts"`
	Interval    time.Duration `yaml:"interval"`
	DialTimeout time.Duration `yaml:"dialTimeout"`
}

// StaticConfig controls static asset collection and the optional
// object-store mirror.
type StaticConfig struct {
	Sources  []string           `yaml:"sources"`
	Root     string             `yaml:"root"`
	Compress bool               `yaml:"compress"`
	MinIO    assets.MinIOConfig `yaml:"minio"`
}

// RunConfig controls the privilege drop and the server handoff.
type RunConfig struct {
	RunAs     string `yaml:"runAs"`
	AllowRoot bool   `yaml:"allowRoot"`
	ServerCmd string `yaml:"serverCmd"`
	Supervise bool   `yaml:"supervise"`
}

// AppConfig is the entrypoint configuration, assembled once at start from
// the optional YAML file and the environment (env wins).
type AppConfig struct {
	Logger logger.Config `yaml:"logger"`
	DB     DBConfig      `yaml:"db"`
	Redis  RedisConfig   `yaml:"redis"`
	Wait   WaitConfig    `yaml:"wait"`
	Static StaticConfig  `yaml:"static"`
	Run    RunConfig     `yaml:"run"`

	SkipMigrate bool `yaml:"skipMigrate"`
	SkipAssets  bool `yaml:"skipAssets"`
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Logger: logger.Config{Level: "info", Format: "json"},
		DB: DBConfig{
			Host: defaultDBHost,
			Port: defaultDBPort,
			User: defaultDBUser,
			Name: defaultDBName,
		},
		Wait: WaitConfig{
			Attempts:    defaultWaitAttempts,
			Interval:    defaultWaitInterval,
			DialTimeout: defaultDialTimeout,
		},
		Static: StaticConfig{
			Sources:  []string{defaultStaticSource},
			Root:     defaultStaticRoot,
			Compress: true,
		},
		Run: RunConfig{
			RunAs:     defaultRunAs,
			ServerCmd: defaultServerCmd,
		},
	}
}

// loadAppConfig builds the config from defaults, the optional YAML file,
// and environment overrides, then validates it.
func loadAppConfig(path string) (*AppConfig, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file failed: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file failed: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *AppConfig) error {
	var err error

	cfg.Logger.Level = envString("LOG_LEVEL", cfg.Logger.Level)
	cfg.Logger.Format = envString("LOG_FORMAT", cfg.Logger.Format)

	cfg.DB.Host = envString("DB_HOST", cfg.DB.Host)
	if cfg.DB.Port, err = envInt("DB_PORT", cfg.DB.Port); err != nil {
		return err
	}
	cfg.DB.User = envString("DB_USER", cfg.DB.User)
	cfg.DB.Password = envString("DB_PASSWORD", cfg.DB.Password)
	cfg.DB.Name = envString("DB_NAME", cfg.DB.Name)

	cfg.Redis.Addr = envString("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envString("REDIS_PASSWORD", cfg.Redis.Password)
	if cfg.Redis.DB, err = envInt("REDIS_DB", cfg.Redis.DB); err != nil {
		return err
	}

	if cfg.Wait.Attempts, err = envInt("BOOT_WAIT_ATTEMPTS", cfg.Wait.Attempts); err != nil {
		return err
	}
	if cfg.Wait.Interval, err = envDuration("BOOT_WAIT_INTERVAL", cfg.Wait.Interval); err != nil {
		return err
	}
	if cfg.Wait.DialTimeout, err = envDuration("BOOT_DIAL_TIMEOUT", cfg.Wait.DialTimeout); err != nil {
		return err
	}

	if raw := os.Getenv("STATIC_SOURCE"); raw != "" {
		cfg.Static.Sources = splitList(raw)
	}
	cfg.Static.Root = envString("STATIC_ROOT", cfg.Static.Root)
	if cfg.Static.Compress, err = envBool("STATIC_COMPRESS", cfg.Static.Compress); err != nil {
		return err
	}
	cfg.Static.MinIO.Endpoint = envString("MINIO_ENDPOINT", cfg.Static.MinIO.Endpoint)
	cfg.Static.MinIO.AccessKey = envString("MINIO_ACCESS_KEY", cfg.Static.MinIO.AccessKey)
	cfg.Static.MinIO.SecretKey = envString("MINIO_SECRET_KEY", cfg.Static.MinIO.SecretKey)
	if cfg.Static.MinIO.UseSSL, err = envBool("MINIO_USE_SSL", cfg.Static.MinIO.UseSSL); err != nil {
		return err
	}
	cfg.Static.MinIO.Bucket = envString("STATIC_BUCKET", cfg.Static.MinIO.Bucket)

	cfg.Run.RunAs = envString("RUN_AS", cfg.Run.RunAs)
	if cfg.Run.AllowRoot, err = envBool("BOOT_ALLOW_ROOT", cfg.Run.AllowRoot); err != nil {
		return err
	}
	cfg.Run.ServerCmd = envString("SERVER_CMD", cfg.Run.ServerCmd)
	if cfg.Run.Supervise, err = envBool("BOOT_SUPERVISE", cfg.Run.Supervise); err != nil {
		return err
	}

	if cfg.SkipMigrate, err = envBool("BOOT_SKIP_MIGRATE", cfg.SkipMigrate); err != nil {
		return err
	}
	if cfg.SkipAssets, err = envBool("BOOT_SKIP_ASSETS", cfg.SkipAssets); err != nil {
		return err
	}

	return nil
}

func validate(cfg *AppConfig) error {
	if cfg.DB.Host == "" {
		return fmt.Errorf("db host is required")
	}
	if cfg.DB.Port <= 0 || cfg.DB.Port > 65535 {
		return fmt.Errorf("db port %d is out of range", cfg.DB.Port)
	}
	if cfg.DB.User == "" {
		return fmt.Errorf("db user is required")
	}
	if cfg.DB.Name == "" {
		return fmt.Errorf("db name is required")
	}
	if cfg.Wait.Attempts <= 0 {
		return fmt.Errorf("wait attempts must be positive")
	}
	if cfg.Wait.Interval <= 0 {
		return fmt.Errorf("wait interval must be positive")
	}
	if !cfg.SkipAssets {
		if cfg.Static.Root == "" {
			return fmt.Errorf("static root is required")
		}
		if len(cfg.Static.Sources) == 0 {
			return fmt.Errorf("at least one static source is required")
		}
	}
	if cfg.Run.RunAs == "" && !cfg.Run.AllowRoot {
		return fmt.Errorf("runAs is required unless allowRoot is set")
	}
	if cfg.Static.MinIO.Bucket != "" && cfg.Static.MinIO.Endpoint == "" {
		return fmt.Errorf("minio endpoint is required when a static bucket is set")
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ":") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
