package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"supernova/models"
	"supernova/repository"
)

// CartSource reads the caller's cart from the cart service.
type CartSource interface {
	GetCart(ctx context.Context, credential string) (*models.Cart, error)
}

// ProductSource reads catalog entries from the product service.
type ProductSource interface {
	GetProduct(ctx context.Context, credential string, id primitive.ObjectID) (*models.Product, error)
}

// Checkout assembles an order from the caller's cart and the catalog.
// It holds no state between calls and never retries; the first failure aborts
// the whole assembly before anything is written.
type Checkout struct {
	carts    CartSource
	products ProductSource
	orders   repository.OrderRepository
	events   EventPublisher
	now      func() time.Time
}

func NewCheckout(carts CartSource, products ProductSource, orders repository.OrderRepository, events EventPublisher) *Checkout {
	return &Checkout{carts: carts, products: products, orders: orders, events: events, now: time.Now}
}

func (c *Checkout) PlaceOrder(ctx context.Context, session *models.Session, address models.ShippingAddress) (*models.Order, error) {
	cart, err := c.carts.GetCart(ctx, session.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch cart: %w", ErrUpstream, err)
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	var currency string
	total := decimal.Zero

	for _, line := range cart.Items {
		product, err := c.products.GetProduct(ctx, session.Token, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: fetch product %s: %w", ErrUpstream, line.ProductID.Hex(), err)
		}
		if product.Stock < line.Quantity {
			return nil, fmt.Errorf("%w: %s has %d left, %d requested", ErrOutOfStock, product.Title, product.Stock, line.Quantity)
		}

		if currency == "" {
			currency = product.Price.Currency
		} else if product.Price.Currency != currency {
			return nil, fmt.Errorf("%w: cart mixes %s and %s prices", ErrInvalidInput, currency, product.Price.Currency)
		}

		linePrice := product.Price.Times(line.Quantity)
		total = total.Add(linePrice.Amount)
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Title:     product.Title,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
			Price:     linePrice,
		})
	}

	now := c.now()
	order := &models.Order{
		UserID:          session.UserID,
		Items:           items,
		Status:          models.OrderStatusPending,
		TotalPrice:      models.Money{Amount: total, Currency: currency},
		ShippingAddress: address,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := c.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("checkout: persist order: %w", err)
	}

	publish(ctx, c.events, "order.created", order)
	return order, nil
}
