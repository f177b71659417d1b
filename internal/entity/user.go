package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Role distinguishes customers from laundromat operators.
type Role string

const (
	RoleStudent   Role = "student"
	RoleLaunderer Role = "launderer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleLaunderer
}

// User is an account able to sign in. Students carry their hostel contact details.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	Username     string    `bun:"username,unique,notnull"`
	Email        string    `bun:"email,unique,notnull"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	Role         Role      `bun:"role,notnull"`
	Hostel       string    `bun:"hostel"`
	RoomNumber   string    `bun:"room_number"`
	PhoneNumber  string    `bun:"phone_number"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero"`
}
