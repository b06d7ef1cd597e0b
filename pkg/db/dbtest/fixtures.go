package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/angelmondragon/agrimarket/pkg/db"
	"github.com/angelmondragon/agrimarket/pkg/db/models"
	"github.com/angelmondragon/agrimarket/pkg/enums"
	"github.com/shopspring/decimal"
)

var seq atomic.Int64

func next() int64 {
	return seq.Add(1)
}

func mustCreate(t testing.TB, client *db.Client, row any) {
	t.Helper()
	if err := client.DB().Create(row).Error; err != nil {
		t.Fatalf("insert %T: %v", row, err)
	}
}

// User inserts an account with the given role.
func User(t testing.TB, client *db.Client, role enums.UserRole) *models.User {
	t.Helper()
	n := next()
	u := &models.User{
		Username:     fmt.Sprintf("%s%d", role, n),
		Email:        fmt.Sprintf("%s%d@example.com", role, n),
		PasswordHash: "x",
		Role:         role,
	}
	mustCreate(t, client, u)
	return u
}

// Farmer inserts a farmer account plus its profile.
func Farmer(t testing.TB, client *db.Client) *models.FarmerProfile {
	t.Helper()
	u := User(t, client, enums.UserRoleFarmer)
	f := &models.FarmerProfile{UserID: u.ID, FarmName: fmt.Sprintf("Farm %d", u.ID)}
	mustCreate(t, client, f)
	return f
}

// Coop inserts a cooperative account plus its profile.
func Coop(t testing.TB, client *db.Client) *models.CooperativeProfile {
	t.Helper()
	u := User(t, client, enums.UserRoleCoop)
	c := &models.CooperativeProfile{
		UserID:             u.ID,
		Name:               fmt.Sprintf("Coop %d", u.ID),
		RegistrationNumber: fmt.Sprintf("REG-%d", u.ID),
	}
	mustCreate(t, client, c)
	return c
}

// Category inserts a uniquely named category.
func Category(t testing.TB, client *db.Client) *models.Category {
	t.Helper()
	c := &models.Category{Name: fmt.Sprintf("category-%d", next())}
	mustCreate(t, client, c)
	return c
}

// Product inserts a product for farmerID, optionally categorized.
func Product(t testing.TB, client *db.Client, farmerID int64, categoryID *int64) *models.Product {
	t.Helper()
	p := &models.Product{FarmerID: farmerID, CategoryID: categoryID, Name: fmt.Sprintf("product-%d", next()), Unit: "kg"}
	mustCreate(t, client, p)
	return p
}

// Offer inserts an active offer of coopID on a product and/or category.
func Offer(t testing.TB, client *db.Client, coopID int64, productID, categoryID *int64) *models.CoopProductOffer {
	t.Helper()
	o := &models.CoopProductOffer{
		CoopID:       coopID,
		ProductID:    productID,
		CategoryID:   categoryID,
		PricePerUnit: decimal.RequireFromString("40.00"),
		Currency:     enums.CurrencyKES,
		Active:       true,
	}
	mustCreate(t, client, o)
	return o
}

// Order inserts a pending order placed at placedAt (zero means now).
func Order(t testing.TB, client *db.Client, farmerID, coopID int64, placedAt time.Time) *models.Order {
	t.Helper()
	o := &models.Order{
		OrderNumber: fmt.Sprintf("ORD-%d", next()),
		FarmerID:    farmerID,
		CoopID:      coopID,
		Status:      enums.OrderStatusPending,
		TotalAmount: decimal.Zero,
		Currency:    enums.CurrencyKES,
		PlacedAt:    placedAt,
	}
	mustCreate(t, client, o)
	return o
}

// OrderItem inserts a line; quantity and unitPrice are decimal strings.
func OrderItem(t testing.TB, client *db.Client, orderID, productID int64, quantity, unitPrice string) *models.OrderItem {
	t.Helper()
	item := &models.OrderItem{
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  decimal.RequireFromString(quantity),
		UnitPrice: decimal.RequireFromString(unitPrice),
	}
	mustCreate(t, client, item)
	return item
}

// Count returns the number of rows in table matching where.
func Count(t testing.TB, client *db.Client, table string, where string, args ...any) int64 {
	t.Helper()
	var n int64
	q := client.DB().Table(table)
	if where != "" {
		q = q.Where(where, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
