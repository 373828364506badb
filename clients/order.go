package clients

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"supernova/models"
)

type OrderClient struct {
	base
}

func NewOrderClient(baseURL string, timeout time.Duration) *OrderClient {
	return &OrderClient{base: newBase("order", baseURL, timeout)}
}

func (c *OrderClient) GetOrder(ctx context.Context, credential string, id primitive.ObjectID) (*models.Order, error) {
	var body struct {
		Order models.Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+id.Hex(), credential, nil, &body); err != nil {
		return nil, err
	}
	return &body.Order, nil
}
