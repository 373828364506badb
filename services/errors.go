package services

import (
	"context"
	"errors"
	"log/slog"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOutOfStock         = errors.New("out of stock")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidSignature   = errors.New("invalid signature")
	// ErrUpstream marks a failed call to another service.
	ErrUpstream = errors.New("upstream service failure")
)

// EventPublisher emits domain events. Publishing is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

func publish(ctx context.Context, events EventPublisher, key string, payload any) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, key, payload); err != nil {
		slog.WarnContext(ctx, "event publish failed", "event", key, "error", err)
	}
}
