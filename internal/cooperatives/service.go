package cooperatives

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

// Service exposes cooperative profile and membership operations.
type Service interface {
	CreateProfile(ctx context.Context, input CreateProfileInput) (*CooperativeDTO, error)
	Get(ctx context.Context, id int64) (*CooperativeDTO, error)
	GetByRegistrationNumber(ctx context.Context, number string) (*CooperativeDTO, error)
	AddMember(ctx context.Context, coopID, farmerID int64, role enums.CoopRole) (*models.Membership, error)
	UpdateMemberRole(ctx context.Context, coopID, farmerID int64, role enums.CoopRole) error
	RemoveMember(ctx context.Context, coopID, farmerID int64) error
	ListMembers(ctx context.Context, coopID int64) ([]MemberDTO, error)
	ListFarmerCooperatives(ctx context.Context, farmerID int64) ([]AffiliationDTO, error)
}

type service struct {
	tx   txRunner
	repo *Repository
	obs  repo.WriteObserver
}

// NewService builds the cooperatives service.
func NewService(tx txRunner, r *Repository, logg *logger.Logger, m *metrics.WriteMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if r == nil {
		return nil, fmt.Errorf("cooperatives repository required")
	}
	return &service{tx: tx, repo: r, obs: repo.NewWriteObserver("cooperative_profile", logg, m)}, nil
}

func (s *service) CreateProfile(ctx context.Context, input CreateProfileInput) (dto *CooperativeDTO, err error) {
	defer func(start time.Time) { err = s.obs.Done(ctx, "create", start, err) }(time.Now())

	input.Name = strings.TrimSpace(input.Name)
	input.RegistrationNumber = strings.TrimSpace(input.RegistrationNumber)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	profile := &models.CooperativeProfile{
		UserID:             input.UserID,
		Name:               input.Name,
		RegistrationNumber: input.RegistrationNumber,
		County:             input.County,
		ContactPhone:       input.ContactPhone,
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
		if user.Role != enums.UserRoleCoop {
			return pkgerrors.New(pkgerrors.CodeValidation, "user role must be coop").
				WithDetails(map[string]any{"role": user.Role})
		}
		return db.Translate(r.Create(ctx, profile), "create cooperative profile")
	})
	if err != nil {
		return nil, db.Translate(err, "create cooperative profile")
	}
	return FromModel(profile), nil
}

func (s *service) Get(ctx context.Context, id int64) (*CooperativeDTO, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.TranslateFind(err, "cooperative profile")
	}
	return FromModel(profile), nil
}

func (s *service) GetByRegistrationNumber(ctx context.Context, number string) (*CooperativeDTO, error) {
	profile, err := s.repo.FindByRegistrationNumber(ctx, strings.TrimSpace(number))
	if err != nil {
		return nil, db.TranslateFind(err, "cooperative profile")
	}
	return FromModel(profile), nil
}

// AddMember enrolls a farmer. An empty role defaults to member; a missing
// farmer or coop is a referential error, a repeat enrollment a conflict.
func (s *service) AddMember(ctx context.Context, coopID, farmerID int64, role enums.CoopRole) (m *models.Membership, err error) {
	defer func(start time.Time) { err = s.obs.Done(ctx, "add_member", start, err) }(time.Now())

	if role == "" {
		role = enums.CoopRoleMember
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid membership role").
			WithDetails(map[string]any{"role_in_coop": role})
	}
	membership := &models.Membership{FarmerID: farmerID, CoopID: coopID, RoleInCoop: role}
	if err := s.repo.CreateMembership(ctx, membership); err != nil {
		return nil, db.Translate(err, "add member")
	}
	return membership, nil
}

func (s *service) UpdateMemberRole(ctx context.Context, coopID, farmerID int64, role enums.CoopRole) (err error) {
	defer func(start time.Time) { err = s.obs.Done(ctx, "update_member_role", start, err) }(time.Now())

	if !role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid membership role").
			WithDetails(map[string]any{"role_in_coop": role})
	}
	n, err := s.repo.UpdateMembershipRole(ctx, coopID, farmerID, role)
	if err != nil {
		return db.Translate(err, "update member role")
	}
	if n == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
	}
	return nil
}

func (s *service) RemoveMember(ctx context.Context, coopID, farmerID int64) (err error) {
	defer func(start time.Time) { err = s.obs.Done(ctx, "remove_member", start, err) }(time.Now())

	n, err := s.repo.DeleteMembership(ctx, coopID, farmerID)
	if err != nil {
		return db.Translate(err, "remove member")
	}
	if n == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
	}
	return nil
}

func (s *service) ListMembers(ctx context.Context, coopID int64) ([]MemberDTO, error) {
	members, err := s.repo.ListMembers(ctx, coopID)
	if err != nil {
		return nil, db.Translate(err, "list members")
	}
	return members, nil
}

func (s *service) ListFarmerCooperatives(ctx context.Context, farmerID int64) ([]AffiliationDTO, error) {
	out, err := s.repo.ListAffiliations(ctx, farmerID)
	if err != nil {
		return nil, db.Translate(err, "list farmer cooperatives")
	}
	return out, nil
}
