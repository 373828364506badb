package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"supernova/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// ProductFilter narrows a product listing. Zero values mean no constraint.
type ProductFilter struct {
	Query    string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Seller   *primitive.ObjectID
	Skip     int64
	Limit    int64
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// FindByLogin matches either email or username; empty arguments are ignored.
	FindByLogin(ctx context.Context, email, username string) (*models.User, error)
	UpdateAddresses(ctx context.Context, id primitive.ObjectID, addresses []models.Address) error
}

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, f ProductFilter) ([]models.Product, error)
}

// CartRepository mutates carts one line at a time so concurrent writers
// to the same cart never overwrite each other.
type CartRepository interface {
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	// GetOrCreate returns the owner's cart, inserting an empty one if absent.
	GetOrCreate(ctx context.Context, userID primitive.ObjectID, now time.Time) (*models.Cart, error)
	// AddItem increments a line, appending it (and creating the cart) when missing.
	AddItem(ctx context.Context, userID, productID primitive.ObjectID, qty int, now time.Time) (*models.Cart, error)
	// SetQuantity replaces a line's quantity; qty <= 0 removes the line.
	// Returns ErrNotFound when the cart or the line is missing.
	SetQuantity(ctx context.Context, userID, productID primitive.ObjectID, qty int, now time.Time) (*models.Cart, error)
	Clear(ctx context.Context, userID primitive.ObjectID, now time.Time) (*models.Cart, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	Update(ctx context.Context, o *models.Order) error
	ListByUser(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Order, int64, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error
	FindPendingByGatewayOrder(ctx context.Context, gatewayOrderID string) (*models.Payment, error)
	Update(ctx context.Context, p *models.Payment) error
}

// Denylist records revoked session tokens until they would have expired anyway.
type Denylist interface {
	Add(ctx context.Context, token string, expiresAt time.Time) error
	Contains(ctx context.Context, token string) (bool, error)
}

func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
