package clients

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"supernova/models"
)

type ProductClient struct {
	base
}

func NewProductClient(baseURL string, timeout time.Duration) *ProductClient {
	return &ProductClient{base: newBase("product", baseURL, timeout)}
}

func (c *ProductClient) GetProduct(ctx context.Context, credential string, id primitive.ObjectID) (*models.Product, error) {
	var body struct {
		Product models.Product `json:"product"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/products/"+id.Hex(), credential, nil, &body); err != nil {
		return nil, err
	}
	return &body.Product, nil
}

func (c *ProductClient) Search(ctx context.Context, credential, query string) ([]models.Product, error) {
	var body struct {
		Data []models.Product `json:"data"`
	}
	path := "/api/products?" + url.Values{"q": {query}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, credential, nil, &body); err != nil {
		return nil, err
	}
	if body.Data == nil {
		body.Data = []models.Product{}
	}
	return body.Data, nil
}
