package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"supernova/models"
	"supernova/repository"
)

const (
	DefaultOrderPageSize = 10
	MaxOrderPageSize     = 100
)

type OrderService struct {
	orders repository.OrderRepository
	events EventPublisher
	now    func() time.Time
}

func NewOrderService(orders repository.OrderRepository, events EventPublisher) *OrderService {
	return &OrderService{orders: orders, events: events, now: time.Now}
}

type Page struct {
	Total int64 `json:"total"`
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
	Skip  int64 `json:"skip"`
}

// NewPage normalises 1-based paging parameters.
func NewPage(page, limit int64) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultOrderPageSize
	}
	limit = min(limit, MaxOrderPageSize)
	return Page{Page: page, Limit: limit, Skip: (page - 1) * limit}
}

func (s *OrderService) ListMine(ctx context.Context, session *models.Session, page Page) ([]models.Order, Page, error) {
	orders, total, err := s.orders.ListByUser(ctx, session.UserID, page.Skip, page.Limit)
	if err != nil {
		return nil, page, fmt.Errorf("orders.ListMine: %w", err)
	}
	page.Total = total
	return orders, page, nil
}

// Get returns an order visible to the caller: its owner or an admin.
func (s *OrderService) Get(ctx context.Context, session *models.Session, id primitive.ObjectID) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != session.UserID && !session.IsAdmin() {
		return nil, fmt.Errorf("%w: you do not have access to this order", ErrForbidden)
	}
	return order, nil
}

func (s *OrderService) Cancel(ctx context.Context, session *models.Session, id primitive.ObjectID) (*models.Order, error) {
	order, err := s.Get(ctx, session, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(models.OrderStatusCancelled) {
		return nil, fmt.Errorf("%w: order cannot be cancelled in %s status", ErrConflict, order.Status)
	}

	order.Status = models.OrderStatusCancelled
	if err := s.save(ctx, order); err != nil {
		return nil, err
	}
	publish(ctx, s.events, "order.cancelled", order)
	return order, nil
}

// UpdateShippingAddress replaces the address of the caller's own pending order.
func (s *OrderService) UpdateShippingAddress(ctx context.Context, session *models.Session, id primitive.ObjectID, address models.ShippingAddress) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != session.UserID {
		return nil, fmt.Errorf("%w: you can only update your own orders", ErrForbidden)
	}
	if order.Status != models.OrderStatusPending {
		return nil, fmt.Errorf("%w: address can only be changed while the order is pending", ErrConflict)
	}

	order.ShippingAddress = address
	if err := s.save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id primitive.ObjectID, next models.OrderStatus) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: cannot change status from %s to %s", ErrConflict, order.Status, next)
	}

	previous := order.Status
	order.Status = next
	if err := s.save(ctx, order); err != nil {
		return nil, err
	}
	publish(ctx, s.events, "order.status_changed", map[string]any{
		"orderId": order.ID.Hex(),
		"from":    previous,
		"to":      next,
	})
	return order, nil
}

func (s *OrderService) load(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: order not found", ErrNotFound)
		}
		return nil, fmt.Errorf("orders.load: %w", err)
	}
	return order, nil
}

func (s *OrderService) save(ctx context.Context, order *models.Order) error {
	order.UpdatedAt = s.now()
	if err := s.orders.Update(ctx, order); err != nil {
		return fmt.Errorf("orders.save: %w", err)
	}
	return nil
}
