package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// OrderEvent is the audit record written with every applied transition.
type OrderEvent struct {
	bun.BaseModel `bun:"table:order_events,alias:oe"`

	ID         int64      `bun:",pk,autoincrement"`
	OrderID    uuid.UUID  `bun:"order_id,type:uuid,notnull"`
	Transition Transition `bun:"transition,notnull"`
	FromStatus Status     `bun:"from_status,notnull"`
	ToStatus   Status     `bun:"to_status,notnull"`
	Paid       bool       `bun:"paid,notnull"`
	ActorID    uuid.UUID  `bun:"actor_id,type:uuid,notnull"`
	CreatedAt  time.Time  `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
