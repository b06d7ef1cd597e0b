package farmers

import (
	"time"

	"github.com/angelmondragon/agrimarket/pkg/db/models"
	"github.com/angelmondragon/agrimarket/pkg/types"
)

// FarmerDTO is the read shape of a farmer profile.
type FarmerDTO struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	FarmName  string          `json:"farm_name"`
	County    *string         `json:"county,omitempty"`
	Location  *types.GeoPoint `json:"location,omitempty"`
	Phone     *string         `json:"phone,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// CreateProfileInput attaches a farmer profile to an existing farmer account.
type CreateProfileInput struct {
	UserID   int64           `json:"user_id" validate:"gt=0"`
	FarmName string          `json:"farm_name" validate:"required,max=150"`
	County   *string         `json:"county" validate:"omitempty,max=100"`
	Location *types.GeoPoint `json:"location"`
	Phone    *string         `json:"phone" validate:"omitempty,max=20"`
}

// UpdateLocationInput moves a farm; nil fields are left untouched.
type UpdateLocationInput struct {
	County   *string         `json:"county" validate:"omitempty,max=100"`
	Location *types.GeoPoint `json:"location"`
}

// FromModel maps the persisted profile into a DTO.
func FromModel(m *models.FarmerProfile) *FarmerDTO {
	if m == nil {
		return nil
	}
	return &FarmerDTO{
		ID:        m.ID,
		UserID:    m.UserID,
		FarmName:  m.FarmName,
		County:    m.County,
		Location:  types.GeoPointFromColumns(m.LocationLat, m.LocationLong),
		Phone:     m.Phone,
		CreatedAt: m.CreatedAt,
	}
}
