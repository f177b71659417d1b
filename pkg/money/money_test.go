package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "0", want: "₹0.00"},
		{in: "40", want: "₹40.00"},
		{in: "12.5", want: "₹12.50"},
		{in: "99.995", want: "₹100.00"},
		{in: "7.004", want: "₹7.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(decimal.RequireFromString(tt.in)))
		})
	}
}
