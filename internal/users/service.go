package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/agrimarket/internal/repo"
	"github.com/angelmondragon/agrimarket/pkg/db"
	"github.com/angelmondragon/agrimarket/pkg/db/models"
	pkgerrors "github.com/angelmondragon/agrimarket/pkg/errors"
	"github.com/angelmondragon/agrimarket/pkg/logger"
	"github.com/angelmondragon/agrimarket/pkg/metrics"
	"github.com/angelmondragon/agrimarket/pkg/security"
	"github.com/angelmondragon/agrimarket/pkg/validation"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

// Service exposes account operations.
type Service interface {
	Create(ctx context.Context, input CreateUserInput) (*UserDTO, error)
	Get(ctx context.Context, id int64) (*UserDTO, error)
	GetByUsername(ctx context.Context, username string) (*UserDTO, error)
	Update(ctx context.Context, id int64, input UpdateUserInput) (*UserDTO, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	tx     txRunner
	repo   *Repository
	hasher passwordHasher
	logg   *logger.Logger
	obs    repo.WriteObserver
}

var _ passwordHasher = security.Hasher{}

// NewService builds the users service.
func NewService(tx txRunner, r *Repository, hasher passwordHasher, logg *logger.Logger, m *metrics.WriteMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if r == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		tx:     tx,
		repo:   r,
		hasher: hasher,
		logg:   logg,
		obs:    repo.NewWriteObserver("user", logg, m),
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateUserInput) (dto *UserDTO, err error) {
	defer func(start time.Time) { err = s.obs.Done(ctx, "create", start, err) }(time.Now())

	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "hash password")
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		FullName:     input.FullName,
		Phone:        input.Phone,
		Role:         input.Role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, db.Translate(err, "create user")
	}
	s.logg.Info(s.logg.WithUserID(ctx, user.ID), "user created")
	return FromModel(user), nil
}

func (s *service) Get(ctx context.Context, id int64) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.TranslateFind(err, "user")
	}
	return FromModel(user), nil
}

func (s *service) GetByUsername(ctx context.Context, username string) (*UserDTO, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, db.TranslateFind(err, "user")
	}
	return FromModel(user), nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateUserInput) (dto *UserDTO, err error) {
	defer func(start time.Time) { err = s.obs.DoneID(ctx, "update", id, start, err) }(time.Now())

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		input.Email = &email
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.FullName != nil {
		updates["full_name"] = *input.FullName
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}

	var user *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		if len(updates) > 0 {
			if _, err := r.UpdateColumns(ctx, id, updates); err != nil {
				return db.Translate(err, "update user")
			}
		}
		found, err := r.FindByID(ctx, id)
		if err != nil {
			return db.TranslateFind(err, "user")
		}
		user = found
		return nil
	})
	if err != nil {
		return nil, db.Translate(err, "update user")
	}
	return FromModel(user), nil
}

// Delete removes the account and lets the engine cascade to profiles,
// memberships, products, orders and messages. It fails without side effects
// when one of the user's products is still referenced by an order item, or
// when an offer targets one of those products and nothing else.
func (s *service) Delete(ctx context.Context, id int64) (err error) {
	defer func(start time.Time) { err = s.obs.DoneID(ctx, "delete", id, start, err) }(time.Now())

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)

		ordered, err := r.HasOrderedProducts(ctx, id)
		if err != nil {
			return db.Translate(err, "check ordered products")
		}
		if ordered {
			return pkgerrors.New(pkgerrors.CodeReferential, "user owns products referenced by order items")
		}

		orphaned, err := r.HasSoleTargetOffers(ctx, id)
		if err != nil {
			return db.Translate(err, "check offers")
		}
		if orphaned {
			return pkgerrors.New(pkgerrors.CodeInvariant, "deleting user would leave an offer without product or category")
		}

		n, err := r.Delete(ctx, id)
		if err != nil {
			return db.Translate(err, "delete user")
		}
		if n == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil
	})
	if err != nil {
		return db.Translate(err, "delete user")
	}
	s.logg.Info(s.logg.WithUserID(ctx, id), "user deleted")
	return nil
}
