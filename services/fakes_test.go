package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"supernova/models"
)

var errBoom = errors.New("boom")

type stubIssuer struct{}

func (stubIssuer) Issue(user *models.User) (string, time.Time, error) {
	return "token-" + user.ID.Hex() + "-" + gofakeit.UUID(), time.Now().Add(time.Hour), nil
}

type fakeCarts struct {
	cart *models.Cart
	err  error
}

func (f *fakeCarts) GetCart(context.Context, string) (*models.Cart, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cart, nil
}

type fakeProducts struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]*models.Product
	failOn   primitive.ObjectID
	calls    []primitive.ObjectID
}

func newFakeProducts(products ...*models.Product) *fakeProducts {
	f := &fakeProducts{products: map[primitive.ObjectID]*models.Product{}}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProducts) GetProduct(_ context.Context, _ string, id primitive.ObjectID) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	if id == f.failOn {
		return nil, errBoom
	}
	p, ok := f.products[id]
	if !ok {
		return nil, errors.New("product not found")
	}
	cp := *p
	return &cp, nil
}

type recordedEvent struct {
	key     string
	payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{key: key, payload: payload})
	return p.err
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.key)
	}
	return out
}

type fakeOrders struct {
	order *models.Order
	err   error
}

func (f *fakeOrders) GetOrder(context.Context, string, primitive.ObjectID) (*models.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.order
	return &cp, nil
}

type fakeGateway struct {
	amount   int64
	currency string
	receipt  string
	err      error
	valid    bool
}

func (g *fakeGateway) CreateOrder(_ context.Context, amountMinor int64, currency, receipt string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	g.amount, g.currency, g.receipt = amountMinor, currency, receipt
	return "order_" + receipt, nil
}

func (g *fakeGateway) VerifySignature(string, string, string) bool {
	return g.valid
}

func newSession(role string) *models.Session {
	return &models.Session{
		UserID:    primitive.NewObjectID(),
		Username:  gofakeit.Username(),
		Email:     gofakeit.Email(),
		Role:      role,
		Token:     gofakeit.UUID(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func newProduct(title string, amount string, currency string, stock int) *models.Product {
	return &models.Product{
		ID:     primitive.NewObjectID(),
		Title:  title,
		Price:  models.Money{Amount: decimal.RequireFromString(amount), Currency: currency},
		Seller: primitive.NewObjectID(),
		Stock:  stock,
	}
}
