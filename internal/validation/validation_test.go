package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuswash/laundry/internal/dto"
	"github.com/campuswash/laundry/pkg/errorbank"
)

func validSignup() dto.SignupRequest {
	return dto.SignupRequest{
		Username:        "studentone",
		Email:           "student@campus.edu",
		Password:        "Sup3r$ecret",
		ConfirmPassword: "Sup3r$ecret",
		Role:            "student",
	}
}

func TestValidate_Signup(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *dto.SignupRequest)
		wantField string
	}{
		{name: "valid", mutate: func(*dto.SignupRequest) {}},
		{name: "short username", mutate: func(r *dto.SignupRequest) { r.Username = "bob" }, wantField: "username"},
		{name: "bad email", mutate: func(r *dto.SignupRequest) { r.Email = "not-an-email" }, wantField: "email"},
		{name: "weak password", mutate: func(r *dto.SignupRequest) {
			r.Password = "password1"
			r.ConfirmPassword = "password1"
		}, wantField: "password"},
		{name: "mismatched confirmation", mutate: func(r *dto.SignupRequest) { r.ConfirmPassword = "Sup3r$ecreT" }, wantField: "confirmPassword"},
		{name: "unknown role", mutate: func(r *dto.SignupRequest) { r.Role = "admin" }, wantField: "role"},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSignup()
			tt.mutate(&req)

			err := v.Validate(req)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			appErr := errorbank.From(err)
			assert.Equal(t, errorbank.KindBadRequest, appErr.Kind())
			assert.Contains(t, appErr.Details(), tt.wantField)
		})
	}
}

func TestValidate_CreateOrder(t *testing.T) {
	v := New()

	ok := dto.CreateOrderRequest{
		PickupAddress:   "Hostel 4, Room 210",
		DeliveryAddress: "Hostel 4, Room 210",
		Items: []dto.CreateOrderItem{
			{Name: "shirt", WashType: "simple_wash", Quantity: 2, PricePerItem: decimal.NewFromInt(15)},
		},
	}
	assert.NoError(t, v.Validate(ok))

	noItems := ok
	noItems.Items = nil
	err := v.Validate(noItems)
	require.Error(t, err)
	assert.Contains(t, errorbank.From(err).Details(), "items")

	badItem := ok
	badItem.Items = []dto.CreateOrderItem{{Name: "coat", WashType: "steam", Quantity: 0}}
	err = v.Validate(badItem)
	require.Error(t, err)
	details := errorbank.From(err).Details()
	assert.Contains(t, details, "items[0].washType")
	assert.Contains(t, details, "items[0].quantity")
}

func TestValidate_NotificationOrderID(t *testing.T) {
	v := New()
	err := v.Validate(dto.CreateNotificationRequest{OrderID: "123", Message: "hi"})
	require.Error(t, err)
	assert.Contains(t, errorbank.From(err).Details(), "orderId")
}
