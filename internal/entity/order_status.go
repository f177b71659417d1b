package entity

import (
	"errors"
	"fmt"
	"time"
)

// Status is the delivery progress of an order. Payment is tracked separately by Order.Paid.
type Status string

const (
	StatusCreated   Status = "created"
	StatusAccepted  Status = "accepted"
	StatusPickedUp  Status = "picked_up"
	StatusDelivered Status = "delivered"
)

// Transition names a single lifecycle step.
type Transition string

const (
	TransitionAccept  Transition = "accept"
	TransitionPickUp  Transition = "pick_up"
	TransitionDeliver Transition = "deliver"
	TransitionPay     Transition = "pay"
)

// ErrInvalidTransition matches every TransitionError via errors.Is.
var ErrInvalidTransition = errors.New("invalid order transition")

// TransitionError reports a transition whose preconditions do not hold.
type TransitionError struct {
	Transition Transition
	From       Status
	Reason     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s order in status %s: %s", e.Transition, e.From, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidTransition) hold.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// Status derives the delivery status from the flags.
func (o *Order) Status() Status {
	switch {
	case o.DeliveredStatus:
		return StatusDelivered
	case o.PickUpStatus:
		return StatusPickedUp
	case o.AcceptedStatus:
		return StatusAccepted
	default:
		return StatusCreated
	}
}

// Check validates t against the current flags without mutating the order.
func (o *Order) Check(t Transition) error {
	fail := func(reason string) error {
		return &TransitionError{Transition: t, From: o.Status(), Reason: reason}
	}

	switch t {
	case TransitionAccept:
		if o.AcceptedStatus {
			return fail("order already accepted")
		}
	case TransitionPickUp:
		if !o.AcceptedStatus {
			return fail("order has not been accepted")
		}
		if o.PickUpStatus {
			return fail("order already picked up")
		}
	case TransitionDeliver:
		if !o.AcceptedStatus {
			return fail("order has not been accepted")
		}
		if !o.PickUpStatus {
			return fail("order has not been picked up")
		}
		if o.DeliveredStatus {
			return fail("order already delivered")
		}
	case TransitionPay:
		if o.Paid {
			return fail("order already paid")
		}
	default:
		return fail("unknown transition")
	}
	return nil
}

// Apply performs t, setting exactly one flag. Flags never go back to false.
func (o *Order) Apply(t Transition, at time.Time) error {
	if err := o.Check(t); err != nil {
		return err
	}

	switch t {
	case TransitionAccept:
		o.AcceptedStatus = true
	case TransitionPickUp:
		o.PickUpStatus = true
	case TransitionDeliver:
		o.DeliveredStatus = true
	case TransitionPay:
		o.Paid = true
	}
	o.UpdatedAt = at
	return nil
}
