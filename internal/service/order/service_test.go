package order

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/campuswash/laundry/internal/auth"
	"github.com/campuswash/laundry/internal/cache"
	"github.com/campuswash/laundry/internal/config"
	"github.com/campuswash/laundry/internal/entity"
	"github.com/campuswash/laundry/internal/mocks"
	"github.com/campuswash/laundry/internal/orderview"
	repo "github.com/campuswash/laundry/internal/repository/order"
	"github.com/campuswash/laundry/pkg/errorbank"
)

var (
	studentID   = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	otherID     = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	laundererID = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	orderID     = uuid.MustParse("44444444-4444-4444-4444-444444444444")

	student   = auth.Principal{UserID: studentID, Username: "student_one", Role: entity.RoleStudent}
	launderer = auth.Principal{UserID: laundererID, Username: "laundry_ops", Role: entity.RoleLaunderer}
)

func testConfig() config.Config {
	return config.Config{
		Cache:     config.Cache{DefaultTTL: time.Minute},
		Messaging: config.Messaging{Enabled: true, Kafka: config.Kafka{Topic: "orders.status"}},
	}
}

func newOrder(mutators ...func(*entity.Order)) *entity.Order {
	o := &entity.Order{
		ID:        orderID,
		StudentID: studentID,
		Student:   &entity.User{ID: studentID, Username: "student_one"},
		Items: []*entity.OrderItem{
			{Name: "Shirt", WashType: entity.WashSimple, Quantity: 2, PricePerItem: decimal.NewFromInt(20)},
		},
		Version: 1,
	}
	o.RefreshTotal()
	for _, m := range mutators {
		m(o)
	}
	return o
}

func accepted(o *entity.Order) {
	o.AcceptedStatus = true
	id := laundererID
	o.LaundererID = &id
}

func pickedUp(o *entity.Order) { o.PickUpStatus = true }

type testDeps struct {
	store     *mocks.MockOrderStore
	notifier  *mocks.MockNotifier
	publisher *mocks.MockPublisher
}

func newTestService(deps testDeps, c cache.Store) *Service {
	return NewService(Params{
		Store:     deps.store,
		Cache:     c,
		Config:    testConfig(),
		Publisher: deps.publisher,
		Notifier:  deps.notifier,
	})
}

func TestService_Transitions(t *testing.T) {
	tests := []struct {
		name       string
		principal  auth.Principal
		call       func(*Service, context.Context, auth.Principal, uuid.UUID) (*entity.Order, error)
		transition entity.Transition
		setupMocks func(testDeps)
		wantKind   errorbank.Kind
		check      func(*testing.T, *entity.Order)
	}{
		{
			name:       "accept assigns launderer and notifies",
			principal:  launderer,
			call:       (*Service).Accept,
			transition: entity.TransitionAccept,
			setupMocks: func(d testDeps) {
				d.store.On("ApplyTransition", mock.Anything, orderID, entity.TransitionAccept, laundererID).Return(newOrder(), nil)
				d.publisher.On("Publish", mock.Anything, []byte("orders:"+orderID.String()), mock.Anything).Return(nil)
				d.notifier.On("Notify", mock.Anything, mock.AnythingOfType("*entity.Order"), entity.TransitionAccept, "laundry_ops").Return(nil)
			},
			check: func(t *testing.T, o *entity.Order) {
				assert.True(t, o.AcceptedStatus)
				require.NotNil(t, o.LaundererID)
				assert.Equal(t, laundererID, *o.LaundererID)
				assert.Equal(t, entity.StatusAccepted, o.Status())
			},
		},
		{
			name:       "accept twice is a conflict",
			principal:  launderer,
			call:       (*Service).Accept,
			transition: entity.TransitionAccept,
			setupMocks: func(d testDeps) {
				d.store.On("ApplyTransition", mock.Anything, orderID, entity.TransitionAccept, laundererID).Return(newOrder(accepted), nil)
			},
			wantKind: errorbank.KindConflict,
		},
		{
			name:       "students cannot accept",
			principal:  student,
			call:       (*Service).Accept,
			transition: entity.TransitionAccept,
			setupMocks: func(d testDeps) {
				d.store.On("ApplyTransition", mock.Anything, orderID, entity.TransitionAccept, studentID).Return(newOrder(), nil)
			},
			wantKind: errorbank.KindForbidden,
		},
		{
			name:       "unknown order",
			principal:  launderer,
			call:       (*Service).Accept,
			transition: entity.TransitionAccept,
			setupMocks: func(d testDeps) {
				d.store.On("ApplyTransition", mock.Anything, orderID, entity.TransitionAccept, laundererID).Return(nil, repo.ErrNotFound)
			},
			wantKind: errorbank.KindNotFound,
		},
		{
			name:       "lost race is a conflict",
			principal:  launderer,
			call:       (*Service).Accept,
			transition: entity.TransitionAccept,
			setupMocks: func(d testDeps) {
				d.store.On("ApplyTransition", mock.Anything, orderID, entity.TransitionAccept, laundererID).Return(nil, repo.ErrStaleOrder)
			},
			wantKind: errorbank.KindConflict,
		},
		{
			name:       "database failure is internal",
			principal:  launderer,
			call:       (*Service).Accept,
			transition: entity.TransitionAccept,
			setupMocks: func(d testDeps) {
				d.store.On("ApplyTransition", mock.Anything, orderID, entity.TransitionAccept, laundererID).Return(nil, errors.New("connection reset"))
			},
			wantKind: errorbank.KindInternal,
		},
		{
			name:       "notification failure does not fail the transition",
			principal:  launderer,
			call:       (*Service).MarkPickedUp,
			transition: entity.TransitionPickUp,
			setupMocks: func(d testDeps) {
				d.store.On("ApplyTransition", mock.Anything, orderID, entity.TransitionPickUp, laundererID).Return(newOrder(accepted), nil)
				d.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)
				d.notifier.On("Notify", mock.Anything, mock.Anything, entity.TransitionPickUp, "laundry_ops").Return(errors.New("smtp down"))
			},
			check: func(t *testing.T, o *entity.Order) {
				assert.True(t, o.PickUpStatus)
			},
		},
		{
			name:       "deliver before pickup is a conflict",
			principal:  launderer,
			call:       (*Service).MarkDelivered,
			transition: entity.TransitionDeliver,
			setupMocks: func(d testDeps) {
				d.store.On("ApplyTransition", mock.Anything, orderID, entity.TransitionDeliver, laundererID).Return(newOrder(accepted), nil)
			},
			wantKind: errorbank.KindConflict,
		},
		{
			name:       "deliver before accept is a conflict",
			principal:  launderer,
			call:       (*Service).MarkDelivered,
			transition: entity.TransitionDeliver,
			setupMocks: func(d testDeps) {
				d.store.On("ApplyTransition", mock.Anything, orderID, entity.TransitionDeliver, laundererID).Return(newOrder(), nil)
			},
			wantKind: errorbank.KindConflict,
		},
		{
			name:       "deliver by another launderer is forbidden",
			principal:  auth.Principal{UserID: otherID, Username: "other_ops", Role: entity.RoleLaunderer},
			call:       (*Service).MarkDelivered,
			transition: entity.TransitionDeliver,
			setupMocks: func(d testDeps) {
				d.store.On("ApplyTransition", mock.Anything, orderID, entity.TransitionDeliver, otherID).Return(newOrder(accepted, pickedUp), nil)
			},
			wantKind: errorbank.KindForbidden,
		},
		{
			name:       "deliver after pickup",
			principal:  launderer,
			call:       (*Service).MarkDelivered,
			transition: entity.TransitionDeliver,
			setupMocks: func(d testDeps) {
				d.store.On("ApplyTransition", mock.Anything, orderID, entity.TransitionDeliver, laundererID).Return(newOrder(accepted, pickedUp), nil)
				d.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)
				d.notifier.On("Notify", mock.Anything, mock.Anything, entity.TransitionDeliver, "laundry_ops").Return(nil)
			},
			check: func(t *testing.T, o *entity.Order) {
				assert.Equal(t, entity.StatusDelivered, o.Status())
				assert.False(t, o.Paid)
			},
		},
		{
			name:       "owning student pays without a notification",
			principal:  student,
			call:       (*Service).MarkPaid,
			transition: entity.TransitionPay,
			setupMocks: func(d testDeps) {
				d.store.On("ApplyTransition", mock.Anything, orderID, entity.TransitionPay, studentID).Return(newOrder(), nil)
				d.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)
			},
			check: func(t *testing.T, o *entity.Order) {
				assert.True(t, o.Paid)
				assert.Equal(t, entity.StatusCreated, o.Status())
			},
		},
		{
			name:       "another student cannot pay",
			principal:  auth.Principal{UserID: otherID, Username: "student_two", Role: entity.RoleStudent},
			call:       (*Service).MarkPaid,
			transition: entity.TransitionPay,
			setupMocks: func(d testDeps) {
				d.store.On("ApplyTransition", mock.Anything, orderID, entity.TransitionPay, otherID).Return(newOrder(), nil)
			},
			wantKind: errorbank.KindForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := testDeps{
				store:     new(mocks.MockOrderStore),
				notifier:  new(mocks.MockNotifier),
				publisher: new(mocks.MockPublisher),
			}
			tt.setupMocks(deps)
			svc := newTestService(deps, nil)

			got, err := tt.call(svc, context.Background(), tt.principal, orderID)

			if tt.wantKind != "" {
				require.Error(t, err)
				assert.True(t, errorbank.Is(err, tt.wantKind), "got %v", err)
				assert.Nil(t, got)
				deps.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				deps.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				require.NotNil(t, got)
				tt.check(t, got)
			}
			deps.store.AssertExpectations(t)
			deps.notifier.AssertExpectations(t)
			deps.publisher.AssertExpectations(t)
		})
	}
}

func TestService_TransitionConflictDetails(t *testing.T) {
	deps := testDeps{store: new(mocks.MockOrderStore), notifier: new(mocks.MockNotifier), publisher: new(mocks.MockPublisher)}
	deps.store.On("ApplyTransition", mock.Anything, orderID, entity.TransitionAccept, laundererID).Return(newOrder(accepted), nil)

	_, err := newTestService(deps, nil).Accept(context.Background(), launderer, orderID)

	appErr := errorbank.From(err)
	assert.Equal(t, errorbank.KindConflict, appErr.Kind())
	assert.Equal(t, "order already accepted", appErr.Message())
	assert.Equal(t, "accept", appErr.Details()["transition"])
	assert.Equal(t, "accepted", appErr.Details()["status"])
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)
}

func TestService_TransitionWritesCache(t *testing.T) {
	deps := testDeps{store: new(mocks.MockOrderStore), notifier: new(mocks.MockNotifier), publisher: new(mocks.MockPublisher)}
	c := new(mocks.MockCache)

	deps.store.On("ApplyTransition", mock.Anything, orderID, entity.TransitionPay, studentID).Return(newOrder(), nil)
	deps.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	c.On("Set", mock.Anything, "orders:"+orderID.String(), mock.MatchedBy(func(b []byte) bool {
		var o entity.Order
		return json.Unmarshal(b, &o) == nil && o.Paid
	}), time.Minute).Return(nil)

	_, err := newTestService(deps, c).MarkPaid(context.Background(), student, orderID)

	require.NoError(t, err)
	c.AssertExpectations(t)
}

func TestService_Create(t *testing.T) {
	tests := []struct {
		name       string
		principal  auth.Principal
		order      *entity.Order
		setupMocks func(*mocks.MockOrderStore)
		wantKind   errorbank.Kind
	}{
		{
			name:      "computes total and owner",
			principal: student,
			order: &entity.Order{
				OrderTotal: decimal.NewFromInt(1),
				Items: []*entity.OrderItem{
					{Name: "Shirt", WashType: entity.WashSimple, Quantity: 2, PricePerItem: decimal.NewFromInt(20)},
					{Name: "Blazer", WashType: entity.WashDry, Quantity: 1, PricePerItem: decimal.RequireFromString("150.50")},
				},
			},
			setupMocks: func(s *mocks.MockOrderStore) {
				s.On("Create", mock.Anything, mock.MatchedBy(func(o *entity.Order) bool {
					return o.StudentID == studentID && o.OrderTotal.Equal(decimal.RequireFromString("190.50"))
				})).Return(nil)
			},
		},
		{
			name:      "launderers cannot order",
			principal: launderer,
			order:     newOrder(),
			wantKind:  errorbank.KindForbidden,
		},
		{
			name:      "empty cart",
			principal: student,
			order:     &entity.Order{},
			wantKind:  errorbank.KindBadRequest,
		},
		{
			name:      "non-positive quantity",
			principal: student,
			order: &entity.Order{Items: []*entity.OrderItem{
				{Name: "Shirt", WashType: entity.WashSimple, Quantity: 0, PricePerItem: decimal.NewFromInt(20)},
			}},
			wantKind: errorbank.KindBadRequest,
		},
		{
			name:      "price below a paisa is rejected before storing",
			principal: student,
			order: &entity.Order{Items: []*entity.OrderItem{
				{Name: "Sock", WashType: entity.WashSimple, Quantity: 3, PricePerItem: decimal.RequireFromString("0.333")},
			}},
			wantKind: errorbank.KindBadRequest,
		},
		{
			name:      "repository failure",
			principal: student,
			order:     newOrder(),
			setupMocks: func(s *mocks.MockOrderStore) {
				s.On("Create", mock.Anything, mock.Anything).Return(errors.New("boom"))
			},
			wantKind: errorbank.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mocks.MockOrderStore)
			if tt.setupMocks != nil {
				tt.setupMocks(store)
			}
			svc := newTestService(testDeps{store: store}, nil)

			err := svc.Create(context.Background(), tt.principal, tt.order)

			if tt.wantKind != "" {
				assert.True(t, errorbank.Is(err, tt.wantKind), "got %v", err)
			} else {
				require.NoError(t, err)
				assert.NotEqual(t, uuid.Nil, tt.order.ID)
				assert.Equal(t, entity.StatusCreated, tt.order.Status())
				assert.Nil(t, tt.order.LaundererID)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestService_Get(t *testing.T) {
	cached, err := json.Marshal(newOrder())
	require.NoError(t, err)

	tests := []struct {
		name       string
		principal  auth.Principal
		setupMocks func(*mocks.MockOrderStore, *mocks.MockCache)
		wantKind   errorbank.Kind
	}{
		{
			name:      "cache hit skips the store",
			principal: student,
			setupMocks: func(s *mocks.MockOrderStore, c *mocks.MockCache) {
				c.On("Get", mock.Anything, "orders:"+orderID.String()).Return(cached, nil)
			},
		},
		{
			name:      "cache miss loads and fills",
			principal: student,
			setupMocks: func(s *mocks.MockOrderStore, c *mocks.MockCache) {
				c.On("Get", mock.Anything, mock.Anything).Return(nil, cache.ErrCacheMiss)
				s.On("GetByID", mock.Anything, orderID).Return(newOrder(), nil)
				c.On("Set", mock.Anything, "orders:"+orderID.String(), mock.Anything, time.Minute).Return(nil)
			},
		},
		{
			name:      "cache errors fall through to the store",
			principal: launderer,
			setupMocks: func(s *mocks.MockOrderStore, c *mocks.MockCache) {
				c.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("redis down"))
				s.On("GetByID", mock.Anything, orderID).Return(newOrder(), nil)
				c.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))
			},
		},
		{
			name:      "other students do not see the order",
			principal: auth.Principal{UserID: otherID, Role: entity.RoleStudent},
			setupMocks: func(s *mocks.MockOrderStore, c *mocks.MockCache) {
				c.On("Get", mock.Anything, mock.Anything).Return(cached, nil)
			},
			wantKind: errorbank.KindNotFound,
		},
		{
			name:      "orders taken by another launderer are hidden",
			principal: auth.Principal{UserID: otherID, Role: entity.RoleLaunderer},
			setupMocks: func(s *mocks.MockOrderStore, c *mocks.MockCache) {
				c.On("Get", mock.Anything, mock.Anything).Return(nil, cache.ErrCacheMiss)
				s.On("GetByID", mock.Anything, orderID).Return(newOrder(accepted), nil)
				c.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
			},
			wantKind: errorbank.KindNotFound,
		},
		{
			name:      "missing order",
			principal: student,
			setupMocks: func(s *mocks.MockOrderStore, c *mocks.MockCache) {
				c.On("Get", mock.Anything, mock.Anything).Return(nil, cache.ErrCacheMiss)
				s.On("GetByID", mock.Anything, orderID).Return(nil, repo.ErrNotFound)
			},
			wantKind: errorbank.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mocks.MockOrderStore)
			c := new(mocks.MockCache)
			tt.setupMocks(store, c)
			svc := newTestService(testDeps{store: store}, c)

			got, err := svc.Get(context.Background(), tt.principal, orderID)

			if tt.wantKind != "" {
				assert.True(t, errorbank.Is(err, tt.wantKind), "got %v", err)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, orderID, got.ID)
				assert.True(t, got.OrderTotal.Equal(decimal.NewFromInt(40)))
			}
			store.AssertExpectations(t)
			c.AssertExpectations(t)
		})
	}
}

func TestService_List(t *testing.T) {
	open := newOrder()
	open.ID = uuid.New()
	mine := newOrder(accepted, pickedUp)
	mine.ID = uuid.New()

	t.Run("launderer sees open and assigned orders", func(t *testing.T) {
		store := new(mocks.MockOrderStore)
		store.On("List", mock.Anything, repo.ListQuery{LaundererID: &laundererID}).Return([]*entity.Order{open, mine}, nil)

		got, err := newTestService(testDeps{store: store}, nil).List(context.Background(), launderer, orderview.NewFilterSet())

		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("filters are a conjunction", func(t *testing.T) {
		store := new(mocks.MockOrderStore)
		store.On("List", mock.Anything, repo.ListQuery{LaundererID: &laundererID}).Return([]*entity.Order{open, mine}, nil)
		filters, err := orderview.FromClicks([]string{"accepted", "pickedUp"})
		require.NoError(t, err)

		got, err := newTestService(testDeps{store: store}, nil).List(context.Background(), launderer, filters)

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, mine.ID, got[0].ID)
	})

	t.Run("student is scoped to own orders", func(t *testing.T) {
		store := new(mocks.MockOrderStore)
		store.On("List", mock.Anything, repo.ListQuery{StudentID: &studentID}).Return([]*entity.Order{open}, nil)

		got, err := newTestService(testDeps{store: store}, nil).List(context.Background(), student, orderview.FilterSet{})

		require.NoError(t, err)
		assert.Len(t, got, 1)
		store.AssertExpectations(t)
	})

	t.Run("store failure", func(t *testing.T) {
		store := new(mocks.MockOrderStore)
		store.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

		_, err := newTestService(testDeps{store: store}, nil).List(context.Background(), student, orderview.FilterSet{})

		assert.True(t, errorbank.Is(err, errorbank.KindInternal))
	})
}

func TestService_History(t *testing.T) {
	events := []*entity.OrderEvent{
		{OrderID: orderID, Transition: entity.TransitionAccept, FromStatus: entity.StatusCreated, ToStatus: entity.StatusAccepted, ActorID: laundererID},
	}

	tests := []struct {
		name       string
		principal  auth.Principal
		setupMocks func(*mocks.MockOrderStore)
		wantKind   errorbank.Kind
	}{
		{
			name:      "owner reads history",
			principal: student,
			setupMocks: func(s *mocks.MockOrderStore) {
				s.On("GetByID", mock.Anything, orderID).Return(newOrder(accepted), nil)
				s.On("Events", mock.Anything, orderID).Return(events, nil)
			},
		},
		{
			name:      "hidden from other students",
			principal: auth.Principal{UserID: otherID, Role: entity.RoleStudent},
			setupMocks: func(s *mocks.MockOrderStore) {
				s.On("GetByID", mock.Anything, orderID).Return(newOrder(), nil)
			},
			wantKind: errorbank.KindNotFound,
		},
		{
			name:      "missing order",
			principal: launderer,
			setupMocks: func(s *mocks.MockOrderStore) {
				s.On("GetByID", mock.Anything, orderID).Return(nil, repo.ErrNotFound)
			},
			wantKind: errorbank.KindNotFound,
		},
		{
			name:      "event query fails",
			principal: launderer,
			setupMocks: func(s *mocks.MockOrderStore) {
				s.On("GetByID", mock.Anything, orderID).Return(newOrder(accepted), nil)
				s.On("Events", mock.Anything, orderID).Return(nil, errors.New("connection reset"))
			},
			wantKind: errorbank.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mocks.MockOrderStore)
			tt.setupMocks(store)
			svc := newTestService(testDeps{store: store}, cache.Noop())

			got, err := svc.History(context.Background(), tt.principal, orderID)

			if tt.wantKind != "" {
				assert.True(t, errorbank.Is(err, tt.wantKind), "got %v", err)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, events, got)
			}
			store.AssertExpectations(t)
		})
	}
}
