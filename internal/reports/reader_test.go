package reports

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/agrimarket/pkg/config"
	"github.com/angelmondragon/agrimarket/pkg/enums"
	pkgerrors "github.com/angelmondragon/agrimarket/pkg/errors"
)

func setupMock(t *testing.T, dialect string) (*Reader, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	reader, err := NewReader(conn, dialect, nil)
	require.NoError(t, err)
	return reader, mock
}

func int64Ptr(v int64) *int64 { return &v }

func TestActiveOffersQueryShape(t *testing.T) {
	reader, mock := setupMock(t, config.DriverPostgres)

	rows := sqlmock.NewRows(activeOfferColumns).
		AddRow(int64(1), int64(7), "Mwea Growers", int64(3), "Rice", nil, nil, "55.00", "KES", "100.000", nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM active_offers WHERE coop_id = $1 AND category_id = $2 ORDER BY offer_id")).
		WithArgs(int64(7), int64(4)).
		WillReturnRows(rows)

	got, err := Collect(reader.ActiveOffers(context.Background(), OfferFilter{CoopID: int64Ptr(7), CategoryID: int64Ptr(4)}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Mwea Growers", got[0].CoopName)
	require.NotNil(t, got[0].ProductName)
	assert.Equal(t, "Rice", *got[0].ProductName)
	assert.Nil(t, got[0].CategoryID)
	assert.True(t, decimal.RequireFromString("55").Equal(got[0].PricePerUnit))
	require.NotNil(t, got[0].MinQuantity)
	assert.Nil(t, got[0].MaxQuantity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryQueryShape(t *testing.T) {
	reader, mock := setupMock(t, config.DriverSQLite)
	status := enums.OrderStatusCompleted
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM coop_purchase_history WHERE coop_id = ? AND status = ? AND placed_at >= ? ORDER BY placed_at DESC, order_item_id DESC LIMIT 10")).
		WithArgs(int64(5), "completed", from).
		WillReturnRows(sqlmock.NewRows(historyColumns))

	got, err := Collect(reader.CoopPurchaseHistory(context.Background(), 5, HistoryFilter{Status: &status, PlacedFrom: &from, Limit: 10}))
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceIsRestartable(t *testing.T) {
	reader, mock := setupMock(t, config.DriverPostgres)
	placed := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	row := []driver.Value{
		int64(1), "ORD-1", "pending", placed, int64(2), "Farm", int64(3), "Coop",
		int64(4), int64(5), "Maize", "10.000", "45.00", "450.00", "KES",
	}
	for range 2 {
		mock.ExpectQuery(regexp.QuoteMeta("FROM farmer_sales_history WHERE farmer_id = $1")).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows(historyColumns).AddRow(row...))
	}

	seq := reader.FarmerSalesHistory(context.Background(), 2, HistoryFilter{})
	for range 2 {
		got, err := Collect(seq)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "450.00", got[0].Subtotal.StringFixed(2))
		assert.Equal(t, enums.OrderStatusPending, got[0].Status)
		assert.True(t, placed.Equal(got[0].PlacedAt))
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceStopsEarly(t *testing.T) {
	reader, mock := setupMock(t, config.DriverPostgres)
	rows := sqlmock.NewRows(activeOfferColumns)
	for i := 1; i <= 3; i++ {
		rows.AddRow(int64(i), int64(1), "Coop", nil, nil, int64(1), "Cereals", "1.00", "KES", nil, nil, nil, nil)
	}
	mock.ExpectQuery("FROM active_offers").WillReturnRows(rows).RowsWillBeClosed()

	var seen []int64
	for offer, err := range reader.ActiveOffers(context.Background(), OfferFilter{}) {
		require.NoError(t, err)
		seen = append(seen, offer.OfferID)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []int64{1, 2}, seen)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryErrorIsYielded(t *testing.T) {
	reader, mock := setupMock(t, config.DriverPostgres)
	mock.ExpectQuery("FROM active_offers").WillReturnError(assert.AnError)

	got, err := Collect(reader.ActiveOffers(context.Background(), OfferFilter{}))
	assert.Empty(t, got)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency), "got %v", err)
}

func TestNewReaderRequiresConn(t *testing.T) {
	_, err := NewReader(nil, config.DriverPostgres, nil)
	require.Error(t, err)
}
