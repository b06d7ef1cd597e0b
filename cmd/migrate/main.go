package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/angelmondragon/agrimarket/pkg/config"
	"github.com/angelmondragon/agrimarket/pkg/db"
	"github.com/angelmondragon/agrimarket/pkg/logger"
	"github.com/angelmondragon/agrimarket/pkg/migrate"
	"github.com/angelmondragon/agrimarket/pkg/redis"
	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()
	// bootstrap logger early (then re-init after config load)
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|verify|create|validate")
	dir := flag.String("dir", migrate.DefaultDir, "migrations root holding postgres/ and sqlite/ (create, validate)")

	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	noLock := flag.Bool("no-lock", false, "skip the redis migration lock")

	flag.Parse()

	// Commands that do NOT require config or a database
	switch *cmd {
	case "create":
		if *name == "" {
			fmt.Fprintln(os.Stderr, "missing -name for create")
			os.Exit(1)
		}
		paths, err := migrate.CreateSQLMigration(*dir, *name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create migration: %v\n", err)
			os.Exit(1)
		}
		for _, p := range paths {
			fmt.Println("created migration:", p)
		}
		return

	case "validate":
		if err := migrate.ValidateDir(*dir); err != nil {
			fmt.Fprintf(os.Stderr, "migration validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx = logg.WithFields(context.Background(), map[string]any{
		"env":    cfg.App.Env,
		"cmd":    *cmd,
		"driver": cfg.DB.Driver,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.SQLDB()
	requireResource(ctx, logg, "sql database", err)

	runner, err := migrate.NewRunner(sqlDB, dbClient.Dialect(), logg)
	requireResource(ctx, logg, "migration runner", err)

	lock := migrationLock(ctx, cfg, logg, *noLock)

	logg.Info(ctx, "migrate ready")

	switch *cmd {
	case "up", "down":
		command := *cmd
		err = migrate.WithLock(ctx, lock, func(ctx context.Context) error {
			return runner.Run(ctx, command)
		})
		exitOnErr(fmt.Sprintf("goose %s failed", command), err)

	case "status":
		exitOnErr("goose status failed", runner.Run(ctx, "status"))

	case "version":
		if *version == "" {
			fmt.Fprintln(os.Stderr, "missing -version for version command")
			os.Exit(1)
		}
		err = migrate.WithLock(ctx, lock, func(ctx context.Context) error {
			return runner.MigrateToVersion(ctx, *version)
		})
		exitOnErr("goose version migrate failed", err)

	case "verify":
		exitOnErr("schema verification failed", runner.Verify(ctx))
		fmt.Println("schema verification passed")

	default:
		fmt.Fprintln(os.Stderr, "unknown -cmd value:", *cmd)
		os.Exit(1)
	}
}

// migrationLock returns nil when redis is not configured or locking is disabled.
func migrationLock(ctx context.Context, cfg *config.Config, logg *logger.Logger, disabled bool) migrate.Lock {
	if disabled || !cfg.Redis.Enabled() {
		return nil
	}
	client, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)

	key := cfg.Migrate.LockKey
	if key == "" {
		key = client.LockKey("migrate")
	}
	lock, err := migrate.NewRedisLock(client, key, cfg.Migrate.LockTTL)
	requireResource(ctx, logg, "migration lock", err)
	return lock
}

func exitOnErr(msg string, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
