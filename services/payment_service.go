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

// OrderSource reads orders from the order service.
type OrderSource interface {
	GetOrder(ctx context.Context, credential string, id primitive.ObjectID) (*models.Order, error)
}

// Gateway is an external payment processor.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error)
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
}

type PaymentService struct {
	payments repository.PaymentRepository
	orders   OrderSource
	gateway  Gateway
	events   EventPublisher
	now      func() time.Time
}

func NewPaymentService(payments repository.PaymentRepository, orders OrderSource, gateway Gateway, events EventPublisher) *PaymentService {
	return &PaymentService{payments: payments, orders: orders, gateway: gateway, events: events, now: time.Now}
}

type VerifyInput struct {
	GatewayOrderID string
	PaymentID      string
	Signature      string
}

// Create opens a gateway order for a pending order and records a pending payment.
func (s *PaymentService) Create(ctx context.Context, session *models.Session, orderID primitive.ObjectID) (*models.Payment, error) {
	order, err := s.orders.GetOrder(ctx, session.Token, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch order: %w", ErrUpstream, err)
	}
	if order.Status != models.OrderStatusPending {
		return nil, fmt.Errorf("%w: order is %s, only pending orders can be paid", ErrConflict, order.Status)
	}

	gatewayOrderID, err := s.gateway.CreateOrder(ctx, order.TotalPrice.MinorUnits(), order.TotalPrice.Currency, order.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("%w: create gateway order: %w", ErrUpstream, err)
	}

	now := s.now()
	payment := &models.Payment{
		OrderID:        order.ID,
		GatewayOrderID: gatewayOrderID,
		UserID:         session.UserID,
		Price:          order.TotalPrice,
		Status:         models.PaymentStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("payments.Create: %w", err)
	}
	return payment, nil
}

// Verify checks the gateway signature and marks the matching payment completed.
func (s *PaymentService) Verify(ctx context.Context, in VerifyInput) (*models.Payment, error) {
	if !s.gateway.VerifySignature(in.GatewayOrderID, in.PaymentID, in.Signature) {
		return nil, ErrInvalidSignature
	}

	payment, err := s.payments.FindPendingByGatewayOrder(ctx, in.GatewayOrderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: payment not found", ErrNotFound)
		}
		return nil, fmt.Errorf("payments.Verify: %w", err)
	}

	payment.PaymentID = in.PaymentID
	payment.Signature = in.Signature
	payment.Status = models.PaymentStatusCompleted
	payment.UpdatedAt = s.now()
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("payments.Verify: %w", err)
	}

	publish(ctx, s.events, "payment.completed", payment)
	return payment, nil
}
