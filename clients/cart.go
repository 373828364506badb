package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"supernova/models"
)

type CartClient struct {
	base
}

func NewCartClient(baseURL string, timeout time.Duration) *CartClient {
	return &CartClient{base: newBase("cart", baseURL, timeout)}
}

func (c *CartClient) GetCart(ctx context.Context, credential string) (*models.Cart, error) {
	var body struct {
		Cart models.Cart `json:"cart"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/cart", credential, nil, &body); err != nil {
		return nil, err
	}
	return &body.Cart, nil
}

// AddItem adds qty of a product and returns the cart service's raw response.
func (c *CartClient) AddItem(ctx context.Context, credential, productID string, qty int) (json.RawMessage, error) {
	req := map[string]any{"productId": productID, "qty": qty}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/cart/items", credential, req, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
