package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/campuswash/laundry/internal/entity"
	"github.com/campuswash/laundry/internal/orderview"
	"github.com/campuswash/laundry/pkg/money"
)

// CreateOrderRequest is the checkout payload.
type CreateOrderRequest struct {
	Items           []CreateOrderItem `json:"items" validate:"required,min=1,dive"`
	PickupAddress   string            `json:"pickupAddress" validate:"required"`
	DeliveryAddress string            `json:"deliveryAddress" validate:"required"`
	PickupDate      string            `json:"pickupDate"`
	PickupTime      string            `json:"pickupTime"`
	DeliveryDate    string            `json:"deliveryDate"`
	DeliveryTime    string            `json:"deliveryTime"`
}

// CreateOrderItem is one checkout line.
type CreateOrderItem struct {
	Name         string          `json:"name" validate:"required"`
	WashType     string          `json:"washType" validate:"required,washtype"`
	Quantity     int             `json:"quantity" validate:"gt=0"`
	PricePerItem decimal.Decimal `json:"pricePerItem"`
}

// StudentSnapshot is the student contact block shown to launderers.
type StudentSnapshot struct {
	Username    string `json:"username"`
	Hostel      string `json:"hostel"`
	RoomNumber  string `json:"room_number"`
	PhoneNumber string `json:"phone_number"`
}

// OrderItemResponse is one line item.
type OrderItemResponse struct {
	Name         string          `json:"name"`
	WashType     entity.WashType `json:"washType"`
	Quantity     int             `json:"quantity"`
	PricePerItem decimal.Decimal `json:"pricePerItem"`
	PriceDisplay string          `json:"priceDisplay"`
}

// ItemGroupResponse is a non-empty wash type bucket.
type ItemGroupResponse struct {
	WashType entity.WashType     `json:"washType"`
	Label    string              `json:"label"`
	Items    []OrderItemResponse `json:"items"`
}

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID                string              `json:"id"`
	User              *StudentSnapshot    `json:"user,omitempty"`
	Launderer         string              `json:"launderer,omitempty"`
	Items             []OrderItemResponse `json:"items"`
	ItemGroups        []ItemGroupResponse `json:"itemGroups,omitempty"`
	OrderTotal        decimal.Decimal     `json:"orderTotal"`
	OrderTotalDisplay string              `json:"orderTotalDisplay"`
	PickupAddress     string              `json:"pickupAddress"`
	DeliveryAddress   string              `json:"deliveryAddress"`
	PickupDate        string              `json:"pickupDate"`
	PickupTime        string              `json:"pickupTime"`
	DeliveryDate      string              `json:"deliveryDate"`
	DeliveryTime      string              `json:"deliveryTime"`
	Status            entity.Status       `json:"status"`
	AcceptedStatus    bool                `json:"acceptedStatus"`
	PickUpStatus      bool                `json:"pickUpStatus"`
	DeliveredStatus   bool                `json:"deliveredStatus"`
	Paid              bool                `json:"paid"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

// OrderListResponse wraps a filtered listing.
type OrderListResponse struct {
	Filters []orderview.Tag `json:"filters"`
	Orders  []OrderResponse `json:"orders"`
}

// FromOrder converts an order. The total shown is always recomputed from the items.
// withGroups adds the wash type breakdown used by the detail view.
func FromOrder(o *entity.Order, withGroups bool) OrderResponse {
	total := o.ComputeTotal()
	resp := OrderResponse{
		ID:                o.ID.String(),
		Items:             fromItems(o.Items),
		OrderTotal:        money.Round(total),
		OrderTotalDisplay: money.Format(total),
		PickupAddress:     o.PickupAddress,
		DeliveryAddress:   o.DeliveryAddress,
		PickupDate:        o.PickupDate,
		PickupTime:        o.PickupTime,
		DeliveryDate:      o.DeliveryDate,
		DeliveryTime:      o.DeliveryTime,
		Status:            o.Status(),
		AcceptedStatus:    o.AcceptedStatus,
		PickUpStatus:      o.PickUpStatus,
		DeliveredStatus:   o.DeliveredStatus,
		Paid:              o.Paid,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	if s := o.Student; s != nil {
		resp.User = &StudentSnapshot{
			Username:    s.Username,
			Hostel:      s.Hostel,
			RoomNumber:  s.RoomNumber,
			PhoneNumber: s.PhoneNumber,
		}
	}
	if o.Launderer != nil {
		resp.Launderer = o.Launderer.Username
	}
	if withGroups {
		for _, g := range orderview.GroupItems(o.Items) {
			resp.ItemGroups = append(resp.ItemGroups, ItemGroupResponse{
				WashType: g.WashType,
				Label:    orderview.Label(g.WashType),
				Items:    fromItems(g.Items),
			})
		}
	}
	return resp
}

// FromOrders converts a listing without item groups.
func FromOrders(orders []*entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, FromOrder(o, false))
	}
	return out
}

func fromItems(items []*entity.OrderItem) []OrderItemResponse {
	out := make([]OrderItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, OrderItemResponse{
			Name:         it.Name,
			WashType:     it.WashType,
			Quantity:     it.Quantity,
			PricePerItem: money.Round(it.PricePerItem),
			PriceDisplay: money.Format(it.PricePerItem),
		})
	}
	return out
}

// OrderEventResponse is one entry of an order's history.
type OrderEventResponse struct {
	Transition entity.Transition `json:"transition"`
	From       entity.Status     `json:"from"`
	To         entity.Status     `json:"to"`
	Paid       bool              `json:"paid"`
	ActorID    string            `json:"actorId"`
	At         time.Time         `json:"at"`
}

// FromOrderEvents converts an order's audit trail.
func FromOrderEvents(events []*entity.OrderEvent) []OrderEventResponse {
	out := make([]OrderEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, OrderEventResponse{
			Transition: e.Transition,
			From:       e.FromStatus,
			To:         e.ToStatus,
			Paid:       e.Paid,
			ActorID:    e.ActorID.String(),
			At:         e.CreatedAt,
		})
	}
	return out
}
