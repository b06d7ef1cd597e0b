package cooperatives

import (
	"context"

	"github.com/angelmondragon/agrimarket/internal/repo"
	"github.com/angelmondragon/agrimarket/pkg/db/models"
	"github.com/angelmondragon/agrimarket/pkg/enums"
	"gorm.io/gorm"
)

// Repository persists cooperative profiles and memberships.
type Repository struct {
	repo.Base
}

// NewRepository constructs a cooperatives repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// FindUser loads the owning account.
func (r *Repository) FindUser(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a profile.
func (r *Repository) Create(ctx context.Context, profile *models.CooperativeProfile) error {
	return r.DB(ctx).Create(profile).Error
}

// FindByID loads a profile by id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.CooperativeProfile, error) {
	var profile models.CooperativeProfile
	if err := r.DB(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByRegistrationNumber loads a profile by its registration number.
func (r *Repository) FindByRegistrationNumber(ctx context.Context, number string) (*models.CooperativeProfile, error) {
	var profile models.CooperativeProfile
	if err := r.DB(ctx).Where("registration_number = ?", number).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateMembership inserts a farmer/coop pair.
func (r *Repository) CreateMembership(ctx context.Context, m *models.Membership) error {
	return r.DB(ctx).Create(m).Error
}

// FindMembership loads one membership.
func (r *Repository) FindMembership(ctx context.Context, coopID, farmerID int64) (*models.Membership, error) {
	var m models.Membership
	if err := r.DB(ctx).Where("coop_id = ? AND farmer_id = ?", coopID, farmerID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMembershipRole changes a member's role.
func (r *Repository) UpdateMembershipRole(ctx context.Context, coopID, farmerID int64, role enums.CoopRole) (int64, error) {
	res := r.DB(ctx).Model(&models.Membership{}).
		Where("coop_id = ? AND farmer_id = ?", coopID, farmerID).
		UpdateColumn("role_in_coop", role)
	return res.RowsAffected, res.Error
}

// DeleteMembership removes one membership.
func (r *Repository) DeleteMembership(ctx context.Context, coopID, farmerID int64) (int64, error) {
	res := r.DB(ctx).Where("coop_id = ? AND farmer_id = ?", coopID, farmerID).Delete(&models.Membership{})
	return res.RowsAffected, res.Error
}

// ListMembers returns the coop's farmers, earliest joiners first.
func (r *Repository) ListMembers(ctx context.Context, coopID int64) ([]MemberDTO, error) {
	var out []MemberDTO
	err := r.DB(ctx).Table("memberships AS m").
		Select("m.farmer_id, f.farm_name, m.role_in_coop, m.joined_at").
		Joins("JOIN farmer_profiles f ON f.id = m.farmer_id").
		Where("m.coop_id = ?", coopID).
		Order("m.joined_at ASC, m.farmer_id ASC").
		Scan(&out).Error
	return out, err
}

// ListAffiliations returns the cooperatives a farmer belongs to.
func (r *Repository) ListAffiliations(ctx context.Context, farmerID int64) ([]AffiliationDTO, error) {
	var out []AffiliationDTO
	err := r.DB(ctx).Table("memberships AS m").
		Select("m.coop_id, c.name AS coop_name, m.role_in_coop, m.joined_at").
		Joins("JOIN cooperative_profiles c ON c.id = m.coop_id").
		Where("m.farmer_id = ?", farmerID).
		Order("c.name ASC").
		Scan(&out).Error
	return out, err
}
