package farmers

import (
	"context"
	"errors"
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
	"github.com/angelmondragon/agrimarket/pkg/validation"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes farmer profile operations.
type Service interface {
	CreateProfile(ctx context.Context, input CreateProfileInput) (*FarmerDTO, error)
	Get(ctx context.Context, id int64) (*FarmerDTO, error)
	GetByUser(ctx context.Context, userID int64) (*FarmerDTO, error)
	UpdateLocation(ctx context.Context, id int64, input UpdateLocationInput) (*FarmerDTO, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	tx   txRunner
	repo *Repository
	obs  repo.WriteObserver
}

// NewService builds the farmers service.
func NewService(tx txRunner, r *Repository, logg *logger.Logger, m *metrics.WriteMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if r == nil {
		return nil, fmt.Errorf("farmers repository required")
	}
	return &service{tx: tx, repo: r, obs: repo.NewWriteObserver("farmer_profile", logg, m)}, nil
}

func (s *service) CreateProfile(ctx context.Context, input CreateProfileInput) (dto *FarmerDTO, err error) {
	defer func(start time.Time) { err = s.obs.Done(ctx, "create", start, err) }(time.Now())

	input.FarmName = strings.TrimSpace(input.FarmName)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	profile := &models.FarmerProfile{
		UserID:   input.UserID,
		FarmName: input.FarmName,
		County:   input.County,
		Phone:    input.Phone,
	}
	if input.Location != nil {
		point, err := input.Location.Normalize()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location")
		}
		profile.LocationLat, profile.LocationLong = point.Columns()
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		user, err := r.FindUser(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeReferential, "user does not exist")
			}
			return db.Translate(err, "load user")
		}
		if user.Role != enums.UserRoleFarmer {
			return pkgerrors.New(pkgerrors.CodeValidation, "user role must be farmer").
				WithDetails(map[string]any{"role": user.Role})
		}
		if err := r.Create(ctx, profile); err != nil {
			return db.Translate(err, "create farmer profile")
		}
		return nil
	})
	if err != nil {
		return nil, db.Translate(err, "create farmer profile")
	}
	return FromModel(profile), nil
}

func (s *service) Get(ctx context.Context, id int64) (*FarmerDTO, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.TranslateFind(err, "farmer profile")
	}
	return FromModel(profile), nil
}

func (s *service) GetByUser(ctx context.Context, userID int64) (*FarmerDTO, error) {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, db.TranslateFind(err, "farmer profile")
	}
	return FromModel(profile), nil
}

func (s *service) UpdateLocation(ctx context.Context, id int64, input UpdateLocationInput) (dto *FarmerDTO, err error) {
	defer func(start time.Time) { err = s.obs.Done(ctx, "update_location", start, err) }(time.Now())

	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if input.County != nil {
		updates["county"] = *input.County
	}
	if input.Location != nil {
		point, err := input.Location.Normalize()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location")
		}
		updates["location_lat"] = point.Lat
		updates["location_long"] = point.Long
	}

	var profile *models.FarmerProfile
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		if len(updates) > 0 {
			if _, err := r.UpdateColumns(ctx, id, updates); err != nil {
				return db.Translate(err, "update farmer location")
			}
		}
		found, err := r.FindByID(ctx, id)
		if err != nil {
			return db.TranslateFind(err, "farmer profile")
		}
		profile = found
		return nil
	})
	if err != nil {
		return nil, db.Translate(err, "update farmer location")
	}
	return FromModel(profile), nil
}

// Delete removes the profile. Products referenced by order items block the
// delete, as do offers that target only one of the farmer's products.
func (s *service) Delete(ctx context.Context, id int64) (err error) {
	defer func(start time.Time) { err = s.obs.Done(ctx, "delete", start, err) }(time.Now())

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		ordered, err := r.HasOrderedProducts(ctx, id)
		if err != nil {
			return db.Translate(err, "check ordered products")
		}
		if ordered {
			return pkgerrors.New(pkgerrors.CodeReferential, "farmer products are referenced by order items")
		}
		orphaned, err := r.HasSoleTargetOffers(ctx, id)
		if err != nil {
			return db.Translate(err, "check offers")
		}
		if orphaned {
			return pkgerrors.New(pkgerrors.CodeInvariant, "deleting farmer would leave an offer without product or category")
		}
		n, err := r.Delete(ctx, id)
		if err != nil {
			return db.Translate(err, "delete farmer profile")
		}
		if n == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "farmer profile not found")
		}
		return nil
	})
	return db.Translate(err, "delete farmer profile")
}

