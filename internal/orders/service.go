package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/agrimarket/internal/repo"
	"github.com/angelmondragon/agrimarket/pkg/db"
	"github.com/angelmondragon/agrimarket/pkg/db/models"
	"github.com/angelmondragon/agrimarket/pkg/enums"
	pkgerrors "github.com/angelmondragon/agrimarket/pkg/errors"
	"github.com/angelmondragon/agrimarket/pkg/logger"
	"github.com/angelmondragon/agrimarket/pkg/metrics"
	"github.com/angelmondragon/agrimarket/pkg/types"
	"github.com/angelmondragon/agrimarket/pkg/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages orders and their lines. Status is a plain stored value and
// total_amount is whatever the caller last stored.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)
	Get(ctx context.Context, id int64) (*OrderDTO, error)
	GetByNumber(ctx context.Context, number string) (*OrderDTO, error)
	Delete(ctx context.Context, id int64) error

	AddItem(ctx context.Context, orderID int64, input ItemInput) (*ItemDTO, error)
	UpdateItem(ctx context.Context, itemID int64, input UpdateItemInput) (*ItemDTO, error)
	RemoveItem(ctx context.Context, itemID int64) error

	UpdateStatus(ctx context.Context, orderID int64, status enums.OrderStatus) error
	SetTotal(ctx context.Context, orderID int64, amount decimal.Decimal) error
	ItemsTotal(ctx context.Context, orderID int64) (decimal.Decimal, error)
}

type service struct {
	tx    txRunner
	repo  *Repository
	logg  *logger.Logger
	obs   repo.WriteObserver
	items repo.WriteObserver
}

// NewService builds the orders service.
func NewService(tx txRunner, r *Repository, logg *logger.Logger, m *metrics.WriteMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if r == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		tx:    tx,
		repo:  r,
		logg:  logg,
		obs:   repo.NewWriteObserver("order", logg, m),
		items: repo.NewWriteObserver("order_item", logg, m),
	}, nil
}

// NewOrderNumber returns a fresh public order number.
func NewOrderNumber() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// Create inserts the order and any initial lines in one transaction.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (dto *OrderDTO, err error) {
	defer func(start time.Time) { err = s.obs.Done(ctx, "create", start, err) }(time.Now())

	input.OrderNumber = strings.TrimSpace(input.OrderNumber)
	if input.OrderNumber == "" {
		input.OrderNumber = NewOrderNumber()
	}
	if input.Status == "" {
		input.Status = enums.OrderStatusPending
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	lines := make([]*models.OrderItem, 0, len(input.Items))
	for _, in := range input.Items {
		item, err := newItem(0, in)
		if err != nil {
			return nil, err
		}
		lines = append(lines, item)
	}

	order := &models.Order{
		OrderNumber: input.OrderNumber,
		FarmerID:    input.FarmerID,
		CoopID:      input.CoopID,
		Status:      input.Status,
		TotalAmount: decimal.Zero,
		Currency:    input.Currency.OrDefault(),
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		if err := r.Create(ctx, order); err != nil {
			return db.Translate(err, "create order")
		}
		for _, item := range lines {
			item.OrderID = order.ID
			if err := r.CreateItem(ctx, item); err != nil {
				return db.Translate(err, "create order item")
			}
		}
		var err error
		order, err = r.FindByID(ctx, order.ID)
		return db.TranslateFind(err, "order")
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithOrderID(ctx, order.ID), "order created")
	return FromModel(order), nil
}

func (s *service) Get(ctx context.Context, id int64) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.TranslateFind(err, "order")
	}
	return FromModel(order), nil
}

func (s *service) GetByNumber(ctx context.Context, number string) (*OrderDTO, error) {
	order, err := s.repo.FindByNumber(ctx, strings.TrimSpace(number))
	if err != nil {
		return nil, db.TranslateFind(err, "order")
	}
	return FromModel(order), nil
}

func (s *service) Delete(ctx context.Context, id int64) (err error) {
	defer func(start time.Time) { err = s.obs.Done(ctx, "delete", start, err) }(time.Now())

	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return db.Translate(err, "delete order")
	}
	if n == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

// AddItem appends a line and returns it with the engine-computed subtotal.
func (s *service) AddItem(ctx context.Context, orderID int64, input ItemInput) (dto *ItemDTO, err error) {
	defer func(start time.Time) { err = s.items.Done(ctx, "create", start, err) }(time.Now())

	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	item, err := newItem(orderID, input)
	if err != nil {
		return nil, err
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		if err := r.CreateItem(ctx, item); err != nil {
			return db.Translate(err, "create order item")
		}
		var err error
		item, err = r.FindItem(ctx, item.ID)
		return db.TranslateFind(err, "order item")
	})
	if err != nil {
		return nil, err
	}
	return ItemFromModel(item), nil
}

// UpdateItem changes quantity and/or unit price; the subtotal follows.
func (s *service) UpdateItem(ctx context.Context, itemID int64, input UpdateItemInput) (dto *ItemDTO, err error) {
	defer func(start time.Time) { err = s.items.Done(ctx, "update", start, err) }(time.Now())

	updates := map[string]any{}
	if input.Quantity != nil {
		qty, err := normalizeQuantity(*input.Quantity)
		if err != nil {
			return nil, err
		}
		updates["quantity"] = qty
	}
	if input.UnitPrice != nil {
		price, err := normalizeUnitPrice(*input.UnitPrice)
		if err != nil {
			return nil, err
		}
		updates["unit_price"] = price
	}

	var item *models.OrderItem
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		if len(updates) > 0 {
			n, err := r.UpdateItemColumns(ctx, itemID, updates)
			if err != nil {
				return db.Translate(err, "update order item")
			}
			if n == 0 {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
			}
		}
		var err error
		item, err = r.FindItem(ctx, itemID)
		return db.TranslateFind(err, "order item")
	})
	if err != nil {
		return nil, err
	}
	return ItemFromModel(item), nil
}

func (s *service) RemoveItem(ctx context.Context, itemID int64) (err error) {
	defer func(start time.Time) { err = s.items.Done(ctx, "delete", start, err) }(time.Now())

	n, err := s.repo.DeleteItem(ctx, itemID)
	if err != nil {
		return db.Translate(err, "delete order item")
	}
	if n == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
	}
	return nil
}

// UpdateStatus stores status. Any valid status may replace any other.
func (s *service) UpdateStatus(ctx context.Context, orderID int64, status enums.OrderStatus) (err error) {
	defer func(start time.Time) { err = s.obs.Done(ctx, "update_status", start, err) }(time.Now())

	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"status": status})
	}
	n, err := s.repo.UpdateColumns(ctx, orderID, map[string]any{"status": status})
	if err != nil {
		return db.Translate(err, "update order status")
	}
	if n == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	logCtx := s.logg.WithField(s.logg.WithOrderID(ctx, orderID), "status", string(status))
	s.logg.Info(logCtx, "order status updated")
	return nil
}

// SetTotal stores the caller-maintained total_amount.
func (s *service) SetTotal(ctx context.Context, orderID int64, amount decimal.Decimal) (err error) {
	defer func(start time.Time) { err = s.obs.Done(ctx, "set_total", start, err) }(time.Now())

	if amount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "total_amount cannot be negative")
	}
	total, err := types.Total.Normalize(amount)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid total_amount")
	}
	n, err := s.repo.UpdateColumns(ctx, orderID, map[string]any{"total_amount": total})
	if err != nil {
		return db.Translate(err, "set order total")
	}
	if n == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

// ItemsTotal sums the stored subtotals of an order. It does not write
// total_amount.
func (s *service) ItemsTotal(ctx context.Context, orderID int64) (decimal.Decimal, error) {
	ok, err := s.repo.Exists(ctx, &models.Order{}, "id = ?", orderID)
	if err != nil {
		return decimal.Zero, db.Translate(err, "load order")
	}
	if !ok {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	items, err := s.repo.ListItems(ctx, orderID)
	if err != nil {
		return decimal.Zero, db.Translate(err, "list order items")
	}
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Subtotal)
	}
	return sum.Round(types.Total.Scale), nil
}

func newItem(orderID int64, in ItemInput) (*models.OrderItem, error) {
	if in.ProductID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	qty, err := normalizeQuantity(in.Quantity)
	if err != nil {
		return nil, err
	}
	price, err := normalizeUnitPrice(in.UnitPrice)
	if err != nil {
		return nil, err
	}
	return &models.OrderItem{OrderID: orderID, ProductID: in.ProductID, Quantity: qty, UnitPrice: price}, nil
}

func normalizeQuantity(qty decimal.Decimal) (decimal.Decimal, error) {
	if !qty.IsPositive() {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
			WithDetails(map[string]any{"quantity": qty.String()})
	}
	out, err := types.Quantity.Normalize(qty)
	if err != nil {
		return decimal.Decimal{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quantity")
	}
	return out, nil
}

func normalizeUnitPrice(price decimal.Decimal) (decimal.Decimal, error) {
	if price.IsNegative() {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, "unit_price cannot be negative")
	}
	out, err := types.Money.Normalize(price)
	if err != nil {
		return decimal.Decimal{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit_price")
	}
	return out, nil
}
