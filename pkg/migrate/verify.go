package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/agrimarket/pkg/config"
	"go.uber.org/multierr"
)

// ExpectedTables lists every base table the marketplace schema defines.
var ExpectedTables = []string{
	"users",
	"farmer_profiles",
	"cooperative_profiles",
	"memberships",
	"categories",
	"products",
	"inventory",
	"price_history",
	"coop_product_offers",
	"orders",
	"order_items",
	"negotiations",
}

// ExpectedViews lists the reporting projections.
var ExpectedViews = []string{
	"active_offers",
	"farmer_sales_history",
	"coop_purchase_history",
}

// ExpectedTriggers guard the offer target rule on insert and update.
var ExpectedTriggers = []string{
	"coop_product_offers_target_insert",
	"coop_product_offers_target_update",
}

// Verify checks that the live schema carries every table, view, trigger and the
// generated order_items.subtotal column. All missing objects are reported together.
func (r *Runner) Verify(ctx context.Context) error {
	q := catalogQueries(r.dialect)

	tables, err := r.names(ctx, q.tables)
	if err != nil {
		return err
	}
	views, err := r.names(ctx, q.views)
	if err != nil {
		return err
	}
	triggers, err := r.names(ctx, q.triggers)
	if err != nil {
		return err
	}

	var errs error
	errs = multierr.Append(errs, missing("table", ExpectedTables, tables))
	errs = multierr.Append(errs, missing("view", ExpectedViews, views))
	errs = multierr.Append(errs, missing("trigger", ExpectedTriggers, triggers))

	generated, err := r.subtotalGenerated(ctx)
	if err != nil {
		errs = multierr.Append(errs, err)
	} else if !generated {
		errs = multierr.Append(errs, fmt.Errorf("order_items.subtotal is not a generated column"))
	}
	return errs
}

type catalogQuerySet struct {
	tables   string
	views    string
	triggers string
}

func catalogQueries(dialect string) catalogQuerySet {
	if dialect == config.DriverSQLite {
		return catalogQuerySet{
			tables:   `SELECT name FROM sqlite_master WHERE type = 'table'`,
			views:    `SELECT name FROM sqlite_master WHERE type = 'view'`,
			triggers: `SELECT name FROM sqlite_master WHERE type = 'trigger'`,
		}
	}
	return catalogQuerySet{
		tables:   `SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'`,
		views:    `SELECT table_name FROM information_schema.views WHERE table_schema = current_schema()`,
		triggers: `SELECT DISTINCT trigger_name FROM information_schema.triggers WHERE event_object_schema = current_schema()`,
	}
}

func (r *Runner) names(ctx context.Context, query string) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query schema catalog: %w", err)
	}
	defer rows.Close()

	out := map[string]struct{}{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan schema catalog: %w", err)
		}
		out[name] = struct{}{}
	}
	return out, rows.Err()
}

func (r *Runner) subtotalGenerated(ctx context.Context) (bool, error) {
	var (
		row *sql.Row
		got string
	)
	if r.dialect == config.DriverSQLite {
		row = r.db.QueryRowContext(ctx, `SELECT sql FROM sqlite_master WHERE type = 'table' AND name = 'order_items'`)
	} else {
		row = r.db.QueryRowContext(ctx, `SELECT is_generated FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = 'order_items' AND column_name = 'subtotal'`)
	}
	if err := row.Scan(&got); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("inspect order_items.subtotal: %w", err)
	}
	if r.dialect == config.DriverSQLite {
		return strings.Contains(strings.ToUpper(got), "SUBTOTAL NUMERIC(14,2) GENERATED ALWAYS"), nil
	}
	return got == "ALWAYS", nil
}

func missing(kind string, want []string, have map[string]struct{}) error {
	var errs error
	for _, name := range want {
		if _, ok := have[name]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("missing %s %q", kind, name))
		}
	}
	return errs
}
