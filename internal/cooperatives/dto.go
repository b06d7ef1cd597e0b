package cooperatives

import (
	"time"

	"github.com/angelmondragon/agrimarket/pkg/db/models"
	"github.com/angelmondragon/agrimarket/pkg/enums"
	"github.com/angelmondragon/agrimarket/pkg/types"
)

// CooperativeDTO is the read shape of a cooperative profile.
type CooperativeDTO struct {
	ID                 int64           `json:"id"`
	UserID             int64           `json:"user_id"`
	Name               string          `json:"name"`
	RegistrationNumber string          `json:"registration_number"`
	County             *string         `json:"county,omitempty"`
	Location           *types.GeoPoint `json:"location,omitempty"`
	ContactPhone       *string         `json:"contact_phone,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// CreateProfileInput attaches a cooperative profile to an existing coop account.
type CreateProfileInput struct {
	UserID             int64           `json:"user_id" validate:"gt=0"`
	Name               string          `json:"name" validate:"required,max=150"`
	RegistrationNumber string          `json:"registration_number" validate:"required,max=50"`
	County             *string         `json:"county" validate:"omitempty,max=100"`
	Location           *types.GeoPoint `json:"location"`
	ContactPhone       *string         `json:"contact_phone" validate:"omitempty,max=20"`
}

// MemberDTO is one farmer in a cooperative.
type MemberDTO struct {
	FarmerID   int64          `json:"farmer_id" gorm:"column:farmer_id"`
	FarmName   string         `json:"farm_name" gorm:"column:farm_name"`
	RoleInCoop enums.CoopRole `json:"role_in_coop" gorm:"column:role_in_coop"`
	JoinedAt   time.Time      `json:"joined_at" gorm:"column:joined_at"`
}

// AffiliationDTO is one cooperative a farmer belongs to.
type AffiliationDTO struct {
	CoopID     int64          `json:"coop_id" gorm:"column:coop_id"`
	CoopName   string         `json:"coop_name" gorm:"column:coop_name"`
	RoleInCoop enums.CoopRole `json:"role_in_coop" gorm:"column:role_in_coop"`
	JoinedAt   time.Time      `json:"joined_at" gorm:"column:joined_at"`
}

// FromModel maps the persisted profile into a DTO.
func FromModel(m *models.CooperativeProfile) *CooperativeDTO {
	if m == nil {
		return nil
	}
	return &CooperativeDTO{
		ID:                 m.ID,
		UserID:             m.UserID,
		Name:               m.Name,
		RegistrationNumber: m.RegistrationNumber,
		County:             m.County,
		Location:           types.GeoPointFromColumns(m.LocationLat, m.LocationLong),
		ContactPhone:       m.ContactPhone,
		CreatedAt:          m.CreatedAt,
	}
}
