package reports

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/angelmondragon/agrimarket/pkg/config"
	"github.com/angelmondragon/agrimarket/pkg/db"
	"github.com/angelmondragon/agrimarket/pkg/db/models"
	"github.com/angelmondragon/agrimarket/pkg/enums"
	pkgerrors "github.com/angelmondragon/agrimarket/pkg/errors"
	"github.com/angelmondragon/agrimarket/pkg/logger"
)

const (
	viewActiveOffers       = "active_offers"
	viewFarmerSalesHistory = "farmer_sales_history"
	viewCoopPurchases      = "coop_purchase_history"
)

var activeOfferColumns = []string{
	"offer_id", "coop_id", "coop_name", "product_id", "product_name", "category_id", "category_name",
	"price_per_unit", "currency", "min_quantity", "max_quantity", "valid_from", "valid_to",
}

var historyColumns = []string{
	"order_id", "order_number", "status", "placed_at", "farmer_id", "farm_name", "coop_id", "coop_name",
	"order_item_id", "product_id", "product_name", "quantity", "unit_price", "subtotal", "currency",
}

// OfferFilter narrows active_offers. Nil fields do not filter.
type OfferFilter struct {
	CoopID     *int64
	ProductID  *int64
	CategoryID *int64
}

// HistoryFilter narrows the sales and purchase views. PlacedFrom is
// inclusive, PlacedTo exclusive. Limit 0 means no limit.
type HistoryFilter struct {
	Status     *enums.OrderStatus
	PlacedFrom *time.Time
	PlacedTo   *time.Time
	Limit      uint64
}

// Reader runs read-only queries against the reporting views. Every sequence
// it returns re-runs its query each time it is ranged over, so results are
// always current and a sequence can be consumed any number of times.
// Rows stay open while ranging; on a single-connection pool do not query
// from inside the loop.
type Reader struct {
	db   *sql.DB
	psql sq.StatementBuilderType
	logg *logger.Logger
}

// NewReader binds a reader to conn. dialect picks the placeholder format.
func NewReader(conn *sql.DB, dialect string, logg *logger.Logger) (*Reader, error) {
	if conn == nil {
		return nil, fmt.Errorf("reports: database handle required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	format := sq.PlaceholderFormat(sq.Dollar)
	if dialect == config.DriverSQLite {
		format = sq.Question
	}
	return &Reader{db: conn, psql: sq.StatementBuilder.PlaceholderFormat(format), logg: logg}, nil
}

// NewReaderFromClient binds a reader to the client's pool.
func NewReaderFromClient(client *db.Client, logg *logger.Logger) (*Reader, error) {
	conn, err := client.SQLDB()
	if err != nil {
		return nil, fmt.Errorf("reports: %w", err)
	}
	return NewReader(conn, client.Dialect(), logg)
}

// ActiveOffers yields every active offer with its cooperative, product and
// category names, ordered by offer id.
func (r *Reader) ActiveOffers(ctx context.Context, f OfferFilter) iter.Seq2[models.ActiveOffer, error] {
	q := r.psql.Select(activeOfferColumns...).From(viewActiveOffers)
	if f.CoopID != nil {
		q = q.Where(sq.Eq{"coop_id": *f.CoopID})
	}
	if f.ProductID != nil {
		q = q.Where(sq.Eq{"product_id": *f.ProductID})
	}
	if f.CategoryID != nil {
		q = q.Where(sq.Eq{"category_id": *f.CategoryID})
	}
	q = q.OrderBy("offer_id")

	return query(ctx, r, viewActiveOffers, q, func(rows *sql.Rows) (models.ActiveOffer, error) {
		var o models.ActiveOffer
		err := rows.Scan(
			&o.OfferID, &o.CoopID, &o.CoopName, &o.ProductID, &o.ProductName, &o.CategoryID, &o.CategoryName,
			&o.PricePerUnit, &o.Currency, &o.MinQuantity, &o.MaxQuantity, &o.ValidFrom, &o.ValidTo,
		)
		return o, err
	})
}

// FarmerSalesHistory yields one row per order item sold by farmerID, newest
// order first.
func (r *Reader) FarmerSalesHistory(ctx context.Context, farmerID int64, f HistoryFilter) iter.Seq2[models.SalesHistoryRow, error] {
	return r.history(ctx, viewFarmerSalesHistory, "farmer_id", farmerID, f)
}

// CoopPurchaseHistory yields one row per order item bought by coopID, newest
// order first.
func (r *Reader) CoopPurchaseHistory(ctx context.Context, coopID int64, f HistoryFilter) iter.Seq2[models.SalesHistoryRow, error] {
	return r.history(ctx, viewCoopPurchases, "coop_id", coopID, f)
}

func (r *Reader) history(ctx context.Context, view, partyColumn string, partyID int64, f HistoryFilter) iter.Seq2[models.SalesHistoryRow, error] {
	q := r.psql.Select(historyColumns...).From(view).Where(sq.Eq{partyColumn: partyID})
	if f.Status != nil {
		q = q.Where(sq.Eq{"status": string(*f.Status)})
	}
	if f.PlacedFrom != nil {
		q = q.Where(sq.GtOrEq{"placed_at": f.PlacedFrom.UTC()})
	}
	if f.PlacedTo != nil {
		q = q.Where(sq.Lt{"placed_at": f.PlacedTo.UTC()})
	}
	q = q.OrderBy("placed_at DESC", "order_item_id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	return query(ctx, r, view, q, func(rows *sql.Rows) (models.SalesHistoryRow, error) {
		var h models.SalesHistoryRow
		err := rows.Scan(
			&h.OrderID, &h.OrderNumber, &h.Status, &h.PlacedAt, &h.FarmerID, &h.FarmName, &h.CoopID, &h.CoopName,
			&h.OrderItemID, &h.ProductID, &h.ProductName, &h.Quantity, &h.UnitPrice, &h.Subtotal, &h.Currency,
		)
		return h, err
	})
}

// query builds the SQL once and runs it on every iteration of the returned
// sequence. Errors are yielded once and end the sequence.
func query[T any](ctx context.Context, r *Reader, view string, b sq.SelectBuilder, scan func(*sql.Rows) (T, error)) iter.Seq2[T, error] {
	stmt, args, buildErr := b.ToSql()
	return func(yield func(T, error) bool) {
		var zero T
		if buildErr != nil {
			yield(zero, pkgerrors.Wrap(pkgerrors.CodeInternal, buildErr, "build "+view+" query"))
			return
		}
		rows, err := r.db.QueryContext(ctx, stmt, args...)
		if err != nil {
			r.logg.Error(r.logg.WithField(ctx, "view", view), "report query failed", err)
			yield(zero, db.Translate(err, "query "+view))
			return
		}
		defer rows.Close()

		for rows.Next() {
			item, err := scan(rows)
			if err != nil {
				yield(zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "scan "+view))
				return
			}
			if !yield(item, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(zero, db.Translate(err, "read "+view))
		}
	}
}

// Collect drains seq into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for item, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, item)
	}
	return out, nil
}
