package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Notification is a message addressed to the student who owns an order.
type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	OrderID   uuid.UUID `bun:"order_id,type:uuid,notnull"`
	StudentID uuid.UUID `bun:"student_id,type:uuid,notnull"`
	Student   string    `bun:"student,notnull"`
	Launderer string    `bun:"launderer,notnull"`
	Message   string    `bun:"message,notnull"`
	Read      bool      `bun:"is_read,notnull,default:false"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
