package dto

import (
	"time"

	"github.com/campuswash/laundry/internal/entity"
)

// CreateNotificationRequest mirrors the dashboard's notification payload.
// Student is optional; the server resolves it from the order.
type CreateNotificationRequest struct {
	OrderID string `json:"orderId" validate:"required,uuid"`
	Message string `json:"message" validate:"required"`
	Student string `json:"student"`
}

// NotificationResponse is a notification as shown to its student.
type NotificationResponse struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	Launderer string    `json:"launderer"`
	Student   string    `json:"student"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromNotification converts a notification.
func FromNotification(n *entity.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID.String(),
		OrderID:   n.OrderID.String(),
		Launderer: n.Launderer,
		Student:   n.Student,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// FromNotifications converts a list.
func FromNotifications(items []*entity.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, FromNotification(n))
	}
	return out
}
