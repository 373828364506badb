package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCartItemOperations(t *testing.T) {
	p1, p2 := primitive.NewObjectID(), primitive.NewObjectID()
	cart := &Cart{}

	cart.AddItem(p1, 2)
	cart.AddItem(p2, 1)
	cart.AddItem(p1, 3)

	assert.Equal(t, CartTotals{ItemCount: 2, TotalQuantity: 6}, cart.Totals())
	assert.Equal(t, 5, cart.Items[0].Quantity)

	assert.True(t, cart.SetQuantity(p2, 4))
	assert.Equal(t, 4, cart.Items[1].Quantity)

	assert.True(t, cart.SetQuantity(p1, 0))
	assert.Equal(t, []CartItem{{ProductID: p2, Quantity: 4}}, cart.Items)

	assert.False(t, cart.SetQuantity(p1, 1))
	assert.False(t, cart.RemoveItem(p1))
	assert.True(t, cart.RemoveItem(p2))
	assert.Equal(t, CartTotals{}, cart.Totals())
}

// Each product appears at most once and quantities stay positive
// whatever sequence of operations is applied.
func TestCartLinesStayUnique(t *testing.T) {
	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()}
	cart := &Cart{}

	for i := 0; i < 60; i++ {
		id := ids[i%len(ids)]
		switch i % 4 {
		case 0, 1:
			cart.AddItem(id, i%5+1)
		case 2:
			cart.SetQuantity(id, i%3-1)
		case 3:
			cart.RemoveItem(id)
		}

		seen := map[primitive.ObjectID]bool{}
		for _, item := range cart.Items {
			assert.False(t, seen[item.ProductID], "duplicate line for %s", item.ProductID.Hex())
			assert.Positive(t, item.Quantity)
			seen[item.ProductID] = true
		}
	}
}

func TestCartClear(t *testing.T) {
	cart := &Cart{}
	cart.AddItem(primitive.NewObjectID(), 1)

	cart.Clear()

	assert.NotNil(t, cart.Items)
	assert.Empty(t, cart.Items)
}
