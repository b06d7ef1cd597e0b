package users

import (
	"time"

	"github.com/angelmondragon/agrimarket/pkg/db/models"
	"github.com/angelmondragon/agrimarket/pkg/enums"
)

// UserDTO is the read shape that omits the password hash.
type UserDTO struct {
	ID        int64          `json:"id"`
	Username  string         `json:"username"`
	Email     string         `json:"email"`
	FullName  *string        `json:"full_name,omitempty"`
	Phone     *string        `json:"phone,omitempty"`
	Role      enums.UserRole `json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CreateUserInput carries a new account. Password is hashed before storage.
type CreateUserInput struct {
	Username string         `json:"username" validate:"required,max=50"`
	Email    string         `json:"email" validate:"required,email,max=255"`
	Password string         `json:"password" validate:"required,min=8"`
	FullName *string        `json:"full_name" validate:"omitempty,max=150"`
	Phone    *string        `json:"phone" validate:"omitempty,max=20"`
	Role     enums.UserRole `json:"role" validate:"enum"`
}

// UpdateUserInput changes contact fields; nil leaves a field untouched.
type UpdateUserInput struct {
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	FullName *string `json:"full_name" validate:"omitempty,max=150"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
}

// FromModel maps the persisted user into a DTO.
func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
