package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/angelmondragon/agrimarket/pkg/config"
	"go.uber.org/multierr"
)

var (
	sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)
)

// ValidateDir validates an on-disk migrations root holding one directory per dialect.
func ValidateDir(root string) error {
	if root == "" {
		return fmt.Errorf("dir is required")
	}
	return ValidateFS(os.DirFS(root), ".")
}

// ValidateEmbedded validates the migrations compiled into the binary.
func ValidateEmbedded() error {
	return ValidateFS(embedded, "migrations")
}

// ValidateFS checks every dialect directory under root: filenames, unique
// versions, goose headers, and that all dialects carry the same set of names
// (Postgres-only migrations such as enum types are allowed to exist alone).
func ValidateFS(fsys fs.FS, root string) error {
	names := make(map[string][]string, len(dialects))
	var errs error
	for _, dialect := range dialects {
		found, err := validateDialectDir(fsys, path.Join(root, dialect))
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		names[dialect] = found
	}
	if errs != nil {
		return errs
	}

	for _, name := range names[config.DriverSQLite] {
		if !slices.Contains(names[config.DriverPostgres], name) {
			errs = multierr.Append(errs, fmt.Errorf("migration %q exists for sqlite but not for postgres", name))
		}
	}
	return errs
}

func validateDialectDir(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[string]string{} // version -> filename
	var names []string

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}

		version := m[1]
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("duplicate migration version %s in %q and %q", version, prev, name)
		}
		seen[version] = name

		full := path.Join(dir, name)
		b, err := fs.ReadFile(fsys, full)
		if err != nil {
			return nil, fmt.Errorf("read file %q: %w", full, err)
		}

		txt := string(b)
		if !strings.Contains(txt, "-- +goose Up") {
			return nil, fmt.Errorf("migration %q missing \"-- +goose Up\"", full)
		}
		if !strings.Contains(txt, "-- +goose Down") {
			return nil, fmt.Errorf("migration %q missing \"-- +goose Down\"", full)
		}
		if strings.Count(txt, "-- +goose StatementBegin") != strings.Count(txt, "-- +goose StatementEnd") {
			return nil, fmt.Errorf("migration %q has unbalanced StatementBegin/StatementEnd", full)
		}
		names = append(names, name)
	}
	return names, nil
}
