package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/campuswash/laundry/pkg/money"
)

// WashType is the laundry service applied to a line item.
type WashType string

const (
	WashSimple WashType = "simple_wash"
	WashPower  WashType = "power_clean"
	WashDry    WashType = "dry_clean"
)

// WashTypes lists every wash type in display order.
var WashTypes = []WashType{WashSimple, WashPower, WashDry}

// Valid reports whether w is a known wash type.
func (w WashType) Valid() bool {
	for _, known := range WashTypes {
		if w == known {
			return true
		}
	}
	return false
}

// Order is a student's laundry order together with its lifecycle flags.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID          uuid.UUID    `bun:"id,pk,type:uuid"`
	StudentID   uuid.UUID    `bun:"student_id,type:uuid,notnull"`
	Student     *User        `bun:"rel:belongs-to,join:student_id=id"`
	LaundererID *uuid.UUID   `bun:"launderer_id,type:uuid,nullzero"`
	Launderer   *User        `bun:"rel:belongs-to,join:launderer_id=id"`
	Items       []*OrderItem `bun:"rel:has-many,join:id=order_id"`

	OrderTotal decimal.Decimal `bun:"order_total,type:numeric(12,2),notnull"`

	PickupAddress   string `bun:"pickup_address"`
	DeliveryAddress string `bun:"delivery_address"`
	PickupDate      string `bun:"pickup_date"`
	PickupTime      string `bun:"pickup_time"`
	DeliveryDate    string `bun:"delivery_date"`
	DeliveryTime    string `bun:"delivery_time"`

	AcceptedStatus  bool `bun:"accepted_status,notnull,default:false"`
	PickUpStatus    bool `bun:"pick_up_status,notnull,default:false"`
	DeliveredStatus bool `bun:"delivered_status,notnull,default:false"`
	Paid            bool `bun:"paid,notnull,default:false"`

	Version   int64     `bun:"version,notnull,default:1"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `bun:"updated_at,nullzero"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`

	ID           int64           `bun:",pk,autoincrement"`
	OrderID      uuid.UUID       `bun:"order_id,type:uuid,notnull"`
	Position     int             `bun:"position,notnull"`
	Name         string          `bun:"name,notnull"`
	WashType     WashType        `bun:"wash_type,notnull"`
	Quantity     int             `bun:"quantity,notnull"`
	PricePerItem decimal.Decimal `bun:"price_per_item,type:numeric(12,2),notnull"`
}

// Subtotal is quantity times unit price.
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.PricePerItem.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ComputeTotal sums the subtotals of every item.
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// RefreshTotal overwrites OrderTotal with the computed sum.
func (o *Order) RefreshTotal() {
	o.OrderTotal = o.ComputeTotal()
}

// ErrNoItems is returned when an order has nothing to wash.
var ErrNoItems = errors.New("order must contain at least one item")

// ValidateItems checks every line item and returns all problems joined.
func (o *Order) ValidateItems() error {
	if len(o.Items) == 0 {
		return ErrNoItems
	}
	var errs []error
	for i, item := range o.Items {
		if item == nil {
			errs = append(errs, fmt.Errorf("item %d: missing", i))
			continue
		}
		if item.Name == "" {
			errs = append(errs, fmt.Errorf("item %d: name is required", i))
		}
		if !item.WashType.Valid() {
			errs = append(errs, fmt.Errorf("item %d: unknown wash type %q", i, item.WashType))
		}
		if item.Quantity <= 0 {
			errs = append(errs, fmt.Errorf("item %d: quantity must be positive", i))
		}
		if item.PricePerItem.IsNegative() {
			errs = append(errs, fmt.Errorf("item %d: price must not be negative", i))
		}
		if !item.PricePerItem.Equal(money.Round(item.PricePerItem)) {
			errs = append(errs, fmt.Errorf("item %d: price has more than %d decimal places", i, money.Places))
		}
	}
	return errors.Join(errs...)
}
