package order

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuswash/laundry/internal/entity"
	"github.com/campuswash/laundry/internal/messaging"
	"github.com/campuswash/laundry/internal/mocks"
	ordersvc "github.com/campuswash/laundry/internal/service/order"
)

func TestStatusChangedHandler(t *testing.T) {
	id := uuid.New()
	valid, err := json.Marshal(ordersvc.StatusChangedEvent{
		OrderID:    id.String(),
		Transition: entity.TransitionDeliver,
		Status:     entity.StatusDelivered,
		ActorID:    uuid.NewString(),
		ChangedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)

	tests := []struct {
		name       string
		payload    []byte
		setupMocks func(*mocks.MockCache)
		wantErr    bool
	}{
		{
			name:    "evicts the cached order",
			payload: valid,
			setupMocks: func(c *mocks.MockCache) {
				c.On("Delete", mock.Anything, ordersvc.CacheKey(id)).Return(nil)
			},
		},
		{
			name:    "eviction failure asks for redelivery",
			payload: valid,
			setupMocks: func(c *mocks.MockCache) {
				c.On("Delete", mock.Anything, ordersvc.CacheKey(id)).Return(errors.New("redis down"))
			},
			wantErr: true,
		},
		{name: "garbage is dropped", payload: []byte("{not json")},
		{name: "bad id is dropped", payload: []byte(`{"order_id":"nope"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := new(mocks.MockCache)
			if tt.setupMocks != nil {
				tt.setupMocks(c)
			}
			client := messaging.NewNoop("orders.status")
			reg := NewStatusChangedHandler(zap.NewNop(), client, c)
			assert.Equal(t, "orders.status", reg.Topic)

			err := reg.Handler(context.Background(), messaging.Message{Topic: "orders.status", Value: tt.payload})

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			c.AssertExpectations(t)
		})
	}
}
