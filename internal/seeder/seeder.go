package seeder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/campuswash/laundry/internal/auth"
	"github.com/campuswash/laundry/internal/entity"
	orderrepo "github.com/campuswash/laundry/internal/repository/order"
	userrepo "github.com/campuswash/laundry/internal/repository/user"
)

// DevPassword is the password of every seeded account.
const DevPassword = "Laundry@2024"

// UserStore is the subset of the user repository the seeder needs.
type UserStore interface {
	Create(ctx context.Context, u *entity.User) error
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}

// OrderStore is the subset of the order repository the seeder needs.
type OrderStore interface {
	Create(ctx context.Context, order *entity.Order) error
	List(ctx context.Context, q orderrepo.ListQuery) ([]*entity.Order, error)
}

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	users  UserStore
	orders OrderStore
	hasher *auth.Hasher
	logger *zap.Logger
	now    func() time.Time
}

// Params defines dependencies for constructing Seeder.
type Params struct {
	fx.In

	Users  UserStore
	Orders OrderStore
	Hasher *auth.Hasher
	Logger *zap.Logger
}

// New constructs a Seeder.
func New(p Params) *Seeder {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{
		users:  p.Users,
		orders: p.Orders,
		hasher: p.Hasher,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Accounts are the seeded users, keyed by role.
type Accounts struct {
	Student   *entity.User
	Launderer *entity.User
}

// Users ensures one student and one launderer exist.
func (s *Seeder) Users(ctx context.Context) (Accounts, error) {
	student, err := s.ensureUser(ctx, &entity.User{
		Username:    "student_demo",
		Email:       "student.demo@campus.test",
		Role:        entity.RoleStudent,
		Hostel:      "Hostel 4",
		RoomNumber:  "212",
		PhoneNumber: "9876543210",
	})
	if err != nil {
		return Accounts{}, err
	}
	launderer, err := s.ensureUser(ctx, &entity.User{
		Username: "laundry_demo",
		Email:    "laundry.demo@campus.test",
		Role:     entity.RoleLaunderer,
	})
	if err != nil {
		return Accounts{}, err
	}
	return Accounts{Student: student, Launderer: launderer}, nil
}

func (s *Seeder) ensureUser(ctx context.Context, u *entity.User) (*entity.User, error) {
	existing, err := s.users.GetByUsername(ctx, u.Username)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, userrepo.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(DevPassword)
	if err != nil {
		return nil, err
	}
	now := s.now()
	u.ID = uuid.New()
	u.PasswordHash = hash
	u.CreatedAt = now
	u.UpdatedAt = now
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("seed user %s: %w", u.Username, err)
	}
	s.logger.Info("seeded user", zap.String("username", u.Username), zap.String("role", string(u.Role)))
	return u, nil
}

// Orders seeds example orders for the demo student when they have none.
func (s *Seeder) Orders(ctx context.Context) error {
	accounts, err := s.Users(ctx)
	if err != nil {
		return err
	}

	existing, err := s.orders.List(ctx, orderrepo.ListQuery{StudentID: &accounts.Student.ID})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		s.logger.Info("orders already seeded", zap.Int("count", len(existing)))
		return nil
	}

	samples := sampleOrders(accounts.Student, s.now())
	for _, order := range samples {
		if err := s.orders.Create(ctx, order); err != nil {
			return fmt.Errorf("seed order: %w", err)
		}
	}

	s.logger.Info("seeded orders", zap.Int("count", len(samples)))
	return nil
}

func sampleOrders(student *entity.User, now time.Time) []*entity.Order {
	item := func(name string, wash entity.WashType, qty int, price string) *entity.OrderItem {
		return &entity.OrderItem{Name: name, WashType: wash, Quantity: qty, PricePerItem: decimal.RequireFromString(price)}
	}
	base := func(items ...*entity.OrderItem) *entity.Order {
		o := &entity.Order{
			ID:              uuid.New(),
			StudentID:       student.ID,
			Items:           items,
			PickupAddress:   student.Hostel + ", Room " + student.RoomNumber,
			DeliveryAddress: student.Hostel + ", Room " + student.RoomNumber,
			PickupDate:      now.Format("2006-01-02"),
			PickupTime:      "10:00",
			DeliveryDate:    now.AddDate(0, 0, 2).Format("2006-01-02"),
			DeliveryTime:    "18:00",
			Version:         1,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		o.RefreshTotal()
		return o
	}

	return []*entity.Order{
		base(
			item("Shirt", entity.WashSimple, 4, "15"),
			item("Jeans", entity.WashPower, 2, "30"),
		),
		base(
			item("Blazer", entity.WashDry, 1, "120"),
			item("Bedsheet", entity.WashSimple, 2, "25.50"),
		),
	}
}
