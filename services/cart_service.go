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

type CartService struct {
	carts repository.CartRepository
	now   func() time.Time
}

func NewCartService(carts repository.CartRepository) *CartService {
	return &CartService{carts: carts, now: time.Now}
}

// Get returns the caller's cart, creating an empty one on first access.
func (s *CartService) Get(ctx context.Context, session *models.Session) (*models.Cart, error) {
	cart, err := s.carts.GetOrCreate(ctx, session.UserID, s.now())
	if err != nil {
		return nil, fmt.Errorf("carts.Get: %w", err)
	}
	return cart, nil
}

func (s *CartService) AddItem(ctx context.Context, session *models.Session, productID primitive.ObjectID, qty int) (*models.Cart, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidInput)
	}
	cart, err := s.carts.AddItem(ctx, session.UserID, productID, qty, s.now())
	if err != nil {
		return nil, fmt.Errorf("carts.AddItem: %w", err)
	}
	return cart, nil
}

// UpdateItem sets a line's quantity; qty <= 0 removes it.
func (s *CartService) UpdateItem(ctx context.Context, session *models.Session, productID primitive.ObjectID, qty int) (*models.Cart, error) {
	return s.setQuantity(ctx, session, productID, qty)
}

func (s *CartService) RemoveItem(ctx context.Context, session *models.Session, productID primitive.ObjectID) (*models.Cart, error) {
	return s.setQuantity(ctx, session, productID, 0)
}

func (s *CartService) Clear(ctx context.Context, session *models.Session) (*models.Cart, error) {
	cart, err := s.carts.Clear(ctx, session.UserID, s.now())
	if err != nil {
		return nil, fmt.Errorf("carts.Clear: %w", err)
	}
	return cart, nil
}

func (s *CartService) setQuantity(ctx context.Context, session *models.Session, productID primitive.ObjectID, qty int) (*models.Cart, error) {
	cart, err := s.carts.SetQuantity(ctx, session.UserID, productID, qty, s.now())
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("carts.setQuantity: %w", err)
	}
	if _, err := s.carts.GetByUser(ctx, session.UserID); errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: cart not found", ErrNotFound)
	}
	return nil, fmt.Errorf("%w: item not found in cart", ErrNotFound)
}
