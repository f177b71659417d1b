package dto

import (
	"time"

	"github.com/campuswash/laundry/internal/entity"
)

// SignupRequest creates an account.
type SignupRequest struct {
	Username        string `json:"username" validate:"required,min=8"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,password"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required,role"`
	Hostel          string `json:"hostel"`
	RoomNumber      string `json:"roomNumber"`
	PhoneNumber     string `json:"phoneNumber"`
}

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Role        entity.Role `json:"role"`
	Hostel      string      `json:"hostel,omitempty"`
	RoomNumber  string      `json:"roomNumber,omitempty"`
	PhoneNumber string      `json:"phoneNumber,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// LoginResponse carries the bearer token.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// FromUser converts a user, dropping the password hash.
func FromUser(u *entity.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		Hostel:      u.Hostel,
		RoomNumber:  u.RoomNumber,
		PhoneNumber: u.PhoneNumber,
		CreatedAt:   u.CreatedAt,
	}
}
