// Package mocks holds hand-written testify mocks for service and handler tests.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/campuswash/laundry/internal/auth"
	"github.com/campuswash/laundry/internal/dto"
	"github.com/campuswash/laundry/internal/entity"
	"github.com/campuswash/laundry/internal/messaging"
	"github.com/campuswash/laundry/internal/orderview"
	orderrepo "github.com/campuswash/laundry/internal/repository/order"
)

type MockOrderStore struct {
	mock.Mock
}

func (m *MockOrderStore) Create(ctx context.Context, order *entity.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderStore) List(ctx context.Context, q orderrepo.ListQuery) ([]*entity.Order, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Order), args.Error(1)
}

// ApplyTransition returns the configured stored order after running mutate on it,
// the way the repository does inside its transaction.
func (m *MockOrderStore) ApplyTransition(ctx context.Context, id uuid.UUID, transition entity.Transition, actorID uuid.UUID, mutate func(*entity.Order) error) (*entity.Order, error) {
	args := m.Called(ctx, id, transition, actorID)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	order, _ := args.Get(0).(*entity.Order)
	if order == nil {
		return nil, orderrepo.ErrNotFound
	}
	if err := mutate(order); err != nil {
		return nil, err
	}
	order.Version++
	return order, nil
}

func (m *MockOrderStore) Events(ctx context.Context, id uuid.UUID) ([]*entity.OrderEvent, error) {
	return eventsResult(m.Called(ctx, id))
}

func eventsResult(args mock.Arguments) ([]*entity.OrderEvent, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.OrderEvent), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, order *entity.Order, transition entity.Transition, launderer string) error {
	args := m.Called(ctx, order, transition, launderer)
	return args.Error(0)
}

type MockNotificationStore struct {
	mock.Mock
}

func (m *MockNotificationStore) Create(ctx context.Context, n *entity.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationStore) ListByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]*entity.Notification, error) {
	args := m.Called(ctx, studentID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Notification), args.Error(1)
}

func (m *MockNotificationStore) MarkRead(ctx context.Context, id, studentID uuid.UUID) error {
	args := m.Called(ctx, id, studentID)
	return args.Error(0)
}

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, u *entity.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, key []byte, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockPublisher) Consume(ctx context.Context, handler messaging.Handler) error {
	args := m.Called(ctx, handler)
	return args.Error(0)
}

func (m *MockPublisher) Topic() string {
	args := m.Called()
	return args.String(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, p auth.Principal, order *entity.Order) error {
	args := m.Called(ctx, p, order)
	return args.Error(0)
}

func (m *MockOrderService) Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*entity.Order, error) {
	args := m.Called(ctx, p, id)
	return orderResult(args)
}

func (m *MockOrderService) List(ctx context.Context, p auth.Principal, filters orderview.FilterSet) ([]*entity.Order, error) {
	args := m.Called(ctx, p, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Order), args.Error(1)
}

func (m *MockOrderService) Accept(ctx context.Context, p auth.Principal, id uuid.UUID) (*entity.Order, error) {
	return orderResult(m.Called(ctx, p, id))
}

func (m *MockOrderService) MarkPickedUp(ctx context.Context, p auth.Principal, id uuid.UUID) (*entity.Order, error) {
	return orderResult(m.Called(ctx, p, id))
}

func (m *MockOrderService) MarkDelivered(ctx context.Context, p auth.Principal, id uuid.UUID) (*entity.Order, error) {
	return orderResult(m.Called(ctx, p, id))
}

func (m *MockOrderService) MarkPaid(ctx context.Context, p auth.Principal, id uuid.UUID) (*entity.Order, error) {
	return orderResult(m.Called(ctx, p, id))
}

func (m *MockOrderService) History(ctx context.Context, p auth.Principal, id uuid.UUID) ([]*entity.OrderEvent, error) {
	return eventsResult(m.Called(ctx, p, id))
}

func orderResult(args mock.Arguments) (*entity.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Signup(ctx context.Context, req dto.SignupRequest) (*entity.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(dto.LoginResponse), args.Error(1)
}

func (m *MockUserService) Me(ctx context.Context, p auth.Principal) (*entity.User, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Create(ctx context.Context, p auth.Principal, orderID uuid.UUID, message string) (*entity.Notification, error) {
	args := m.Called(ctx, p, orderID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Notification), args.Error(1)
}

func (m *MockNotificationService) List(ctx context.Context, p auth.Principal) ([]*entity.Notification, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	args := m.Called(ctx, p, id)
	return args.Error(0)
}
