package models

import (
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	Items     []CartItem         `bson:"items" json:"items"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type CartTotals struct {
	ItemCount     int `json:"itemCount"`
	TotalQuantity int `json:"totalQuantity"`
}

func (c *Cart) Totals() CartTotals {
	return CartTotals{
		ItemCount:     len(c.Items),
		TotalQuantity: lo.SumBy(c.Items, func(item CartItem) int { return item.Quantity }),
	}
}

// AddItem increments an existing line or appends a new one.
func (c *Cart) AddItem(productID primitive.ObjectID, qty int) {
	if _, i, ok := c.find(productID); ok {
		c.Items[i].Quantity += qty
		return
	}
	c.Items = append(c.Items, CartItem{ProductID: productID, Quantity: qty})
}

// SetQuantity replaces a line's quantity; qty <= 0 removes the line.
// Reports false when the product is not in the cart.
func (c *Cart) SetQuantity(productID primitive.ObjectID, qty int) bool {
	_, i, ok := c.find(productID)
	if !ok {
		return false
	}
	if qty <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return true
	}
	c.Items[i].Quantity = qty
	return true
}

func (c *Cart) RemoveItem(productID primitive.ObjectID) bool {
	return c.SetQuantity(productID, 0)
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
}

func (c *Cart) find(productID primitive.ObjectID) (CartItem, int, bool) {
	return lo.FindIndexOf(c.Items, func(item CartItem) bool { return item.ProductID == productID })
}
