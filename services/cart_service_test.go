package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"supernova/models"
	"supernova/repository"
)

func TestCartService(t *testing.T) {
	ctx := context.Background()
	carts := repository.NewMemoryCarts()
	svc := NewCartService(carts)
	session := newSession(models.RoleUser)
	product := primitive.NewObjectID()

	_, err := svc.UpdateItem(ctx, session, product, 1)
	assert.ErrorIs(t, err, ErrNotFound, "no cart yet")

	cart, err := svc.Get(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, session.UserID, cart.UserID)

	_, err = svc.AddItem(ctx, session, product, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	cart, err = svc.AddItem(ctx, session, product, 2)
	require.NoError(t, err)
	cart, err = svc.AddItem(ctx, session, product, 3)
	require.NoError(t, err)
	assert.Equal(t, models.CartTotals{ItemCount: 1, TotalQuantity: 5}, cart.Totals())

	_, err = svc.UpdateItem(ctx, session, primitive.NewObjectID(), 1)
	assert.ErrorIs(t, err, ErrNotFound)

	cart, err = svc.UpdateItem(ctx, session, product, -1)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	_, err = svc.RemoveItem(ctx, session, product)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AddItem(ctx, session, product, 1)
	require.NoError(t, err)
	cart, err = svc.Clear(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	stored, err := carts.GetByUser(ctx, session.UserID)
	require.NoError(t, err)
	assert.Empty(t, stored.Items)
}

func TestCartService_ConcurrentAddsOnOneSession(t *testing.T) {
	ctx := context.Background()
	carts := repository.NewMemoryCarts()
	svc := NewCartService(carts)
	session := newSession(models.RoleUser)

	const adds = 50
	var wg sync.WaitGroup
	for range adds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, session, primitive.NewObjectID(), 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	cart, err := svc.Get(ctx, session)
	require.NoError(t, err)
	assert.Len(t, cart.Items, adds)
}
