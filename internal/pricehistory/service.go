package pricehistory

import (
	"context"
	"errors"
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
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service records and lists price quotes. source_id has no foreign key, so
// Record resolves the source before writing.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*EntryDTO, error)
	ListByProduct(ctx context.Context, productID int64, limit int) ([]EntryDTO, error)
}

type service struct {
	tx   txRunner
	repo *Repository
	obs  repo.WriteObserver
}

// NewService builds the price history service.
func NewService(tx txRunner, r *Repository, logg *logger.Logger, m *metrics.WriteMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if r == nil {
		return nil, fmt.Errorf("price history repository required")
	}
	return &service{tx: tx, repo: r, obs: repo.NewWriteObserver("price_history", logg, m)}, nil
}

// Record appends a quote. A farmer source must exist and own the product; a
// cooperative source must exist.
func (s *service) Record(ctx context.Context, input RecordInput) (dto *EntryDTO, err error) {
	defer func(start time.Time) { err = s.obs.Done(ctx, "record", start, err) }(time.Now())

	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if err := input.Source.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price source")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	price, err := types.Money.Normalize(input.Price)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}

	entry := &models.PriceHistory{
		ProductID:  input.ProductID,
		SourceType: input.Source.Kind(),
		SourceID:   input.Source.ID(),
		Price:      price,
		Currency:   input.Currency.OrDefault(),
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		product, err := r.FindProduct(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeReferential, "product does not exist")
			}
			return db.Translate(err, "load product")
		}
		if err := checkSource(ctx, r, input.Source, product); err != nil {
			return err
		}
		return db.Translate(r.Create(ctx, entry), "record price")
	})
	if err != nil {
		return nil, err
	}
	return FromModel(entry), nil
}

func checkSource(ctx context.Context, r *Repository, src types.PriceSource, product *models.Product) error {
	var (
		exists bool
		err    error
	)
	switch {
	case src.IsFarmer():
		exists, err = r.FarmerExists(ctx, src.ID())
	case src.IsCoop():
		exists, err = r.CoopExists(ctx, src.ID())
	}
	if err != nil {
		return db.Translate(err, "resolve price source")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeReferential, "price source does not exist").
			WithDetails(map[string]any{"source": src.String()})
	}
	if src.IsFarmer() && product.FarmerID != src.ID() {
		return pkgerrors.New(pkgerrors.CodeValidation, "farmer does not own the product").
			WithDetails(map[string]any{"source": src.String(), "product_id": product.ID})
	}
	return nil
}

func (s *service) ListByProduct(ctx context.Context, productID int64, limit int) ([]EntryDTO, error) {
	rows, err := s.repo.ListByProduct(ctx, productID, limit)
	if err != nil {
		return nil, db.Translate(err, "list price history")
	}
	out := make([]EntryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}
