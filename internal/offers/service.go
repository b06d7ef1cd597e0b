package offers

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/agrimarket/internal/repo"
	"github.com/angelmondragon/agrimarket/pkg/db"
	"github.com/angelmondragon/agrimarket/pkg/db/models"
	pkgerrors "github.com/angelmondragon/agrimarket/pkg/errors"
	"github.com/angelmondragon/agrimarket/pkg/logger"
	"github.com/angelmondragon/agrimarket/pkg/metrics"
	"github.com/angelmondragon/agrimarket/pkg/types"
	"github.com/angelmondragon/agrimarket/pkg/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages cooperative offers. Every write keeps the offer pointed at
// a product, a category, or both.
type Service interface {
	Create(ctx context.Context, input CreateOfferInput) (*OfferDTO, error)
	Get(ctx context.Context, id int64) (*OfferDTO, error)
	ListByCoop(ctx context.Context, coopID int64, activeOnly bool) ([]OfferDTO, error)
	Update(ctx context.Context, id int64, input UpdateOfferInput) (*OfferDTO, error)
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

type service struct {
	tx   txRunner
	repo *Repository
	obs  repo.WriteObserver
}

// NewService builds the offers service.
func NewService(tx txRunner, r *Repository, logg *logger.Logger, m *metrics.WriteMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if r == nil {
		return nil, fmt.Errorf("offers repository required")
	}
	return &service{tx: tx, repo: r, obs: repo.NewWriteObserver("offer", logg, m)}, nil
}

// missingTarget rejects offers with neither a product nor a category.
func missingTarget() error {
	return pkgerrors.New(pkgerrors.CodeInvariant, "offer must reference a product or a category").
		WithDetails(map[string]any{"constraint": db.OfferTargetConstraint})
}

func (s *service) Create(ctx context.Context, input CreateOfferInput) (dto *OfferDTO, err error) {
	defer func(start time.Time) { err = s.obs.Done(ctx, "create", start, err) }(time.Now())

	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	offer := &models.CoopProductOffer{
		CoopID:     input.CoopID,
		ProductID:  input.ProductID,
		CategoryID: input.CategoryID,
		Currency:   input.Currency.OrDefault(),
		ValidFrom:  dateOnly(input.ValidFrom),
		ValidTo:    dateOnly(input.ValidTo),
		Active:     input.Active == nil || *input.Active,
	}
	if !offer.HasTarget() {
		return nil, missingTarget()
	}
	if offer.PricePerUnit, err = normalizePrice(input.PricePerUnit); err != nil {
		return nil, err
	}
	if offer.MinQuantity, err = normalizeQuantity("min_quantity", input.MinQuantity); err != nil {
		return nil, err
	}
	if offer.MaxQuantity, err = normalizeQuantity("max_quantity", input.MaxQuantity); err != nil {
		return nil, err
	}
	if err := checkRanges(offer); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, offer); err != nil {
		return nil, db.Translate(err, "create offer")
	}
	return FromModel(offer), nil
}

func (s *service) Get(ctx context.Context, id int64) (*OfferDTO, error) {
	offer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.TranslateFind(err, "offer")
	}
	return FromModel(offer), nil
}

func (s *service) ListByCoop(ctx context.Context, coopID int64, activeOnly bool) ([]OfferDTO, error) {
	rows, err := s.repo.ListByCoop(ctx, coopID, activeOnly)
	if err != nil {
		return nil, db.Translate(err, "list offers")
	}
	out := make([]OfferDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

// Update applies input to the stored offer. The merged row is checked before
// the write; the database trigger rejects anything that slips past.
func (s *service) Update(ctx context.Context, id int64, input UpdateOfferInput) (dto *OfferDTO, err error) {
	defer func(start time.Time) { err = s.obs.Done(ctx, "update", start, err) }(time.Now())

	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if input.ClearProduct && input.ProductID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id and clear_product are exclusive")
	}
	if input.ClearCategory && input.CategoryID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category_id and clear_category are exclusive")
	}

	var offer *models.CoopProductOffer
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		current, err := r.FindByID(ctx, id)
		if err != nil {
			return db.TranslateFind(err, "offer")
		}
		updates, err := merge(current, input)
		if err != nil {
			return err
		}
		if !current.HasTarget() {
			return missingTarget()
		}
		if err := checkRanges(current); err != nil {
			return err
		}
		if len(updates) > 0 {
			if _, err := r.UpdateColumns(ctx, id, updates); err != nil {
				return db.Translate(err, "update offer")
			}
		}
		offer, err = r.FindByID(ctx, id)
		return db.TranslateFind(err, "offer")
	})
	if err != nil {
		return nil, err
	}
	return FromModel(offer), nil
}

func (s *service) SetActive(ctx context.Context, id int64, active bool) (err error) {
	op := "deactivate"
	if active {
		op = "activate"
	}
	defer func(start time.Time) { err = s.obs.Done(ctx, op, start, err) }(time.Now())

	n, err := s.repo.UpdateColumns(ctx, id, map[string]any{"active": active})
	if err != nil {
		return db.Translate(err, "set offer active")
	}
	if n == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id int64) (err error) {
	defer func(start time.Time) { err = s.obs.Done(ctx, "delete", start, err) }(time.Now())

	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return db.Translate(err, "delete offer")
	}
	if n == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
	}
	return nil
}

// merge applies input onto current in place and returns the column changes.
func merge(current *models.CoopProductOffer, input UpdateOfferInput) (map[string]any, error) {
	updates := map[string]any{}
	switch {
	case input.ClearProduct:
		current.ProductID = nil
		updates["product_id"] = nil
	case input.ProductID != nil:
		current.ProductID = input.ProductID
		updates["product_id"] = *input.ProductID
	}
	switch {
	case input.ClearCategory:
		current.CategoryID = nil
		updates["category_id"] = nil
	case input.CategoryID != nil:
		current.CategoryID = input.CategoryID
		updates["category_id"] = *input.CategoryID
	}
	if input.PricePerUnit != nil {
		price, err := normalizePrice(*input.PricePerUnit)
		if err != nil {
			return nil, err
		}
		current.PricePerUnit = price
		updates["price_per_unit"] = price
	}
	if input.Currency != nil {
		current.Currency = *input.Currency
		updates["currency"] = *input.Currency
	}
	if input.MinQuantity != nil {
		qty, err := normalizeQuantity("min_quantity", input.MinQuantity)
		if err != nil {
			return nil, err
		}
		current.MinQuantity = qty
		updates["min_quantity"] = *qty
	}
	if input.MaxQuantity != nil {
		qty, err := normalizeQuantity("max_quantity", input.MaxQuantity)
		if err != nil {
			return nil, err
		}
		current.MaxQuantity = qty
		updates["max_quantity"] = *qty
	}
	if input.ValidFrom != nil {
		current.ValidFrom = dateOnly(input.ValidFrom)
		updates["valid_from"] = *current.ValidFrom
	}
	if input.ValidTo != nil {
		current.ValidTo = dateOnly(input.ValidTo)
		updates["valid_to"] = *current.ValidTo
	}
	if input.Active != nil {
		current.Active = *input.Active
		updates["active"] = *input.Active
	}
	return updates, nil
}

func normalizePrice(price decimal.Decimal) (decimal.Decimal, error) {
	if price.IsNegative() {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, "price_per_unit cannot be negative")
	}
	out, err := types.Money.Normalize(price)
	if err != nil {
		return decimal.Decimal{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price_per_unit")
	}
	return out, nil
}

func normalizeQuantity(field string, qty *decimal.Decimal) (*decimal.Decimal, error) {
	if qty != nil && qty.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, field+" cannot be negative")
	}
	out, err := types.Quantity.NormalizePtr(qty)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return out, nil
}

func checkRanges(o *models.CoopProductOffer) error {
	if o.MinQuantity != nil && o.MaxQuantity != nil && o.MinQuantity.GreaterThan(*o.MaxQuantity) {
		return pkgerrors.New(pkgerrors.CodeValidation, "min_quantity exceeds max_quantity")
	}
	if o.ValidFrom != nil && o.ValidTo != nil && o.ValidFrom.After(*o.ValidTo) {
		return pkgerrors.New(pkgerrors.CodeValidation, "valid_from is after valid_to")
	}
	if !o.Currency.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid currency").
			WithDetails(map[string]any{"currency": o.Currency})
	}
	return nil
}

func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
