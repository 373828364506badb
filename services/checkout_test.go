package services

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"supernova/models"
	"supernova/repository"
)

var testAddress = models.ShippingAddress{Street: "12 MG Road", City: "Bengaluru", State: "KA", ZipCode: "560001", Country: "IN"}

func TestCheckout_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	session := newSession(models.RoleUser)
	a := newProduct("Notebook", "50", "INR", 5)
	b := newProduct("Pen", "150", "INR", 2)

	cart := &models.Cart{UserID: session.UserID}
	cart.AddItem(a.ID, 2)
	cart.AddItem(b.ID, 1)

	orders := repository.NewMemoryOrders()
	events := &recordingPublisher{}
	checkout := NewCheckout(&fakeCarts{cart: cart}, newFakeProducts(a, b), orders, events)

	order, err := checkout.PlaceOrder(ctx, session, testAddress)
	require.NoError(t, err)

	want := &models.Order{
		ID:     order.ID,
		UserID: session.UserID,
		Status: models.OrderStatusPending,
		Items: []models.OrderItem{
			{ProductID: a.ID, Title: "Notebook", Quantity: 2, UnitPrice: a.Price, Price: models.Money{Amount: decimal.NewFromInt(100), Currency: "INR"}},
			{ProductID: b.ID, Title: "Pen", Quantity: 1, UnitPrice: b.Price, Price: models.Money{Amount: decimal.NewFromInt(150), Currency: "INR"}},
		},
		TotalPrice:      models.Money{Amount: decimal.NewFromInt(250), Currency: "INR"},
		ShippingAddress: testAddress,
	}
	if diff := cmp.Diff(want, order,
		cmpopts.IgnoreFields(models.Order{}, "CreatedAt", "UpdatedAt"),
		cmp.Comparer(func(x, y decimal.Decimal) bool { return x.Equal(y) }),
	); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	stored, err := orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
	assert.Equal(t, []string{"order.created"}, events.keys())
}

func TestCheckout_TotalEqualsSumOfLines(t *testing.T) {
	ctx := context.Background()
	session := newSession(models.RoleUser)
	products := []*models.Product{
		newProduct("A", "19.99", "USD", 10),
		newProduct("B", "0.01", "USD", 10),
		newProduct("C", "1234.50", "USD", 10),
	}
	cart := &models.Cart{UserID: session.UserID}
	for i, p := range products {
		cart.AddItem(p.ID, i+1)
	}

	order, err := NewCheckout(&fakeCarts{cart: cart}, newFakeProducts(products...), repository.NewMemoryOrders(), &recordingPublisher{}).
		PlaceOrder(ctx, session, testAddress)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, item := range order.Items {
		assert.True(t, item.UnitPrice.Times(item.Quantity).Amount.Equal(item.Price.Amount))
		sum = sum.Add(item.Price.Amount)
	}
	assert.True(t, sum.Equal(order.TotalPrice.Amount), "total %s != sum %s", order.TotalPrice.Amount, sum)
	assert.Equal(t, "3723.51", order.TotalPrice.Amount.StringFixed(2))
	assert.Equal(t, "USD", order.TotalPrice.Currency)
}

func TestCheckout_Failures(t *testing.T) {
	session := newSession(models.RoleUser)
	inStock := newProduct("Lamp", "10", "INR", 5)
	scarce := newProduct("Rare vase", "999", "INR", 1)
	dollars := newProduct("Import", "3", "USD", 5)

	cartOf := func(lines ...*models.Product) *models.Cart {
		cart := &models.Cart{UserID: session.UserID}
		for _, p := range lines {
			cart.AddItem(p.ID, 2)
		}
		return cart
	}

	tests := []struct {
		name     string
		carts    *fakeCarts
		products *fakeProducts
		wantErr  error
		wantMsg  string
	}{
		{
			name:     "cart service fails",
			carts:    &fakeCarts{err: errBoom},
			products: newFakeProducts(),
			wantErr:  ErrUpstream,
		},
		{
			name:     "empty cart",
			carts:    &fakeCarts{cart: &models.Cart{}},
			products: newFakeProducts(),
			wantErr:  ErrEmptyCart,
		},
		{
			name:     "product lookup fails",
			carts:    &fakeCarts{cart: cartOf(inStock, scarce)},
			products: func() *fakeProducts { f := newFakeProducts(inStock, scarce); f.failOn = scarce.ID; return f }(),
			wantErr:  ErrUpstream,
		},
		{
			name:     "insufficient stock",
			carts:    &fakeCarts{cart: cartOf(inStock, scarce)},
			products: newFakeProducts(inStock, scarce),
			wantErr:  ErrOutOfStock,
			wantMsg:  "Rare vase",
		},
		{
			name:     "mixed currencies",
			carts:    &fakeCarts{cart: cartOf(inStock, dollars)},
			products: newFakeProducts(inStock, dollars),
			wantErr:  ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := repository.NewMemoryOrders()
			events := &recordingPublisher{}

			order, err := NewCheckout(tt.carts, tt.products, orders, events).PlaceOrder(context.Background(), session, testAddress)

			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, order)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}

			list, total, listErr := orders.ListByUser(context.Background(), session.UserID, 0, 0)
			require.NoError(t, listErr)
			assert.Zero(t, total)
			assert.Empty(t, list)
			assert.Empty(t, events.keys())
		})
	}
}

func TestCheckout_FetchesProductsInCartOrder(t *testing.T) {
	session := newSession(models.RoleUser)
	a, b, c := newProduct("A", "1", "INR", 9), newProduct("B", "1", "INR", 9), newProduct("C", "1", "INR", 9)
	cart := &models.Cart{UserID: session.UserID}
	cart.AddItem(c.ID, 1)
	cart.AddItem(a.ID, 1)
	cart.AddItem(b.ID, 1)
	products := newFakeProducts(a, b, c)

	_, err := NewCheckout(&fakeCarts{cart: cart}, products, repository.NewMemoryOrders(), &recordingPublisher{}).
		PlaceOrder(context.Background(), session, testAddress)
	require.NoError(t, err)

	assert.Equal(t, []primitive.ObjectID{c.ID, a.ID, b.ID}, products.calls)
}

func TestCheckout_PublishFailureDoesNotFailOrder(t *testing.T) {
	session := newSession(models.RoleUser)
	p := newProduct("A", "5", "INR", 3)
	cart := &models.Cart{UserID: session.UserID}
	cart.AddItem(p.ID, 1)

	order, err := NewCheckout(&fakeCarts{cart: cart}, newFakeProducts(p), repository.NewMemoryOrders(), &recordingPublisher{err: errBoom}).
		PlaceOrder(context.Background(), session, testAddress)

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
}
