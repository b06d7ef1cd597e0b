package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"sync"

	"github.com/angelmondragon/agrimarket/pkg/config"
	"github.com/angelmondragon/agrimarket/pkg/logger"
	"github.com/pressly/goose/v3"
)

// DefaultDir is the on-disk root used by the create/validate commands.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var embedded embed.FS

// goose keeps dialect, base FS and logger in package globals.
var gooseMu sync.Mutex

// Dir returns the embedded migration directory for a dialect.
func Dir(dialect string) (string, error) {
	switch dialect {
	case config.DriverPostgres:
		return "migrations/postgres", nil
	case config.DriverSQLite:
		return "migrations/sqlite", nil
	default:
		return "", fmt.Errorf("unsupported migration dialect %q", dialect)
	}
}

// FS exposes the embedded migrations (read-only).
func FS() fs.FS {
	return embedded
}

func gooseDialect(dialect string) string {
	if dialect == config.DriverSQLite {
		return "sqlite3"
	}
	return "postgres"
}

// Runner applies the embedded migrations for one dialect.
type Runner struct {
	db      *sql.DB
	dialect string
	dir     string
	logg    *logger.Logger
}

// NewRunner validates the dialect and binds the runner to db.
func NewRunner(db *sql.DB, dialect string, logg *logger.Logger) (*Runner, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	dir, err := Dir(dialect)
	if err != nil {
		return nil, err
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Runner{db: db, dialect: dialect, dir: dir, logg: logg}, nil
}

// Dialect returns the engine the runner targets.
func (r *Runner) Dialect() string {
	return r.dialect
}

func (r *Runner) with(ctx context.Context, fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedded)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(gooseLogger{ctx: ctx, logg: r.logg})

	if err := goose.SetDialect(gooseDialect(r.dialect)); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return fn()
}

// Run executes a standard goose command (up, down, status, version, redo, reset, ...).
func (r *Runner) Run(ctx context.Context, command string, args ...string) error {
	return r.with(ctx, func() error {
		if err := goose.RunContext(ctx, command, r.db, r.dir, args...); err != nil {
			return fmt.Errorf("goose %s: %w", command, err)
		}
		return nil
	})
}

// Up applies every pending migration.
func (r *Runner) Up(ctx context.Context) error {
	return r.Run(ctx, "up")
}

// Version returns the current schema version recorded by goose.
func (r *Runner) Version(ctx context.Context) (int64, error) {
	var version int64
	err := r.with(ctx, func() error {
		v, err := goose.GetDBVersionContext(ctx, r.db)
		if err != nil {
			return fmt.Errorf("get db version: %w", err)
		}
		version = v
		return nil
	})
	return version, err
}

// LatestVersion returns the highest embedded migration version for the runner's dialect.
func (r *Runner) LatestVersion() (int64, error) {
	versions, err := embeddedVersions(r.dir)
	if err != nil {
		return 0, err
	}
	if len(versions) == 0 {
		return 0, nil
	}
	return versions[len(versions)-1], nil
}

// MigrateToVersion migrates up/down to the requested version by comparing current DB version.
func (r *Runner) MigrateToVersion(ctx context.Context, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}

	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	return r.with(ctx, func() error {
		current, err := goose.GetDBVersionContext(ctx, r.db)
		if err != nil {
			return fmt.Errorf("get db version: %w", err)
		}

		switch {
		case current == target:
			return nil
		case current < target:
			if err := goose.UpToContext(ctx, r.db, r.dir, target); err != nil {
				return fmt.Errorf("goose up-to %d: %w", target, err)
			}
			return nil
		default:
			if err := goose.DownToContext(ctx, r.db, r.dir, target); err != nil {
				return fmt.Errorf("goose down-to %d: %w", target, err)
			}
			return nil
		}
	})
}

func embeddedVersions(dir string) ([]int64, error) {
	entries, err := fs.ReadDir(embedded, dir)
	if err != nil {
		return nil, fmt.Errorf("read embedded dir %q: %w", dir, err)
	}
	var versions []int64
	for _, e := range entries {
		m := sqlFileRe.FindStringSubmatch(path.Base(e.Name()))
		if m == nil {
			continue
		}
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	// fs.ReadDir sorts by filename, and filenames lead with the version.
	return versions, nil
}

type gooseLogger struct {
	ctx  context.Context
	logg *logger.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.logg.Debug(l.ctx, fmt.Sprintf(format, v...))
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.logg.Error(l.ctx, "goose fatal", fmt.Errorf(format, v...))
}
