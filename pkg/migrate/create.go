package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/angelmondragon/agrimarket/pkg/config"
)

var (
	nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)
	dialects       = []string{config.DriverPostgres, config.DriverSQLite}
)

// CreateSQLMigration creates one goose SQL migration per dialect, sharing a version:
//
//	<root>/postgres/<YYYYMMDDHHMMSS>_<name>.sql
//	<root>/sqlite/<YYYYMMDDHHMMSS>_<name>.sql
func CreateSQLMigration(root string, name string) ([]string, error) {
	return createSQLMigration(root, name, time.Now().UTC())
}

func createSQLMigration(root, name string, now time.Time) ([]string, error) {
	if root == "" {
		return nil, fmt.Errorf("dir is required")
	}
	safe, err := sanitizeName(name)
	if err != nil {
		return nil, err
	}

	version := now.Format("20060102150405")
	filename := fmt.Sprintf("%s_%s.sql", version, safe)

	paths := make([]string, 0, len(dialects))
	for _, dialect := range dialects {
		dir := filepath.Join(root, dialect)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %q: %w", dir, err)
		}
		fullpath := filepath.Join(dir, filename)
		if _, err := os.Stat(fullpath); err == nil {
			return nil, fmt.Errorf("migration already exists: %s", fullpath)
		}
		paths = append(paths, fullpath)
	}

	for i, fullpath := range paths {
		if err := os.WriteFile(fullpath, []byte(migrationTemplate(safe, dialects[i])), 0o644); err != nil {
			return nil, fmt.Errorf("write migration %q: %w", fullpath, err)
		}
	}
	return paths, nil
}

func sanitizeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("name is required")
	}
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	safe = strings.Trim(safe, "_")
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}
	return safe, nil
}

func migrationTemplate(name, dialect string) string {
	return fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
-- %[1]s (%[2]s)
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %[1]s (%[2]s)
-- +goose StatementEnd
`, name, dialect)
}
