package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"supernova/models"
	"supernova/services"
)

type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

type productListQuery struct {
	Q        string `form:"q"`
	MinPrice string `form:"minprice"`
	MaxPrice string `form:"maxprice"`
	Skip     int64  `form:"skip" binding:"gte=0"`
	Limit    int64  `form:"limit" binding:"gte=0"`
}

func (q productListQuery) toQuery() (services.ProductQuery, bool) {
	out := services.ProductQuery{Query: q.Q, Skip: q.Skip, Limit: q.Limit}
	for _, bound := range []struct {
		raw string
		dst **decimal.Decimal
	}{{q.MinPrice, &out.MinPrice}, {q.MaxPrice, &out.MaxPrice}} {
		if bound.raw == "" {
			continue
		}
		d, err := decimal.NewFromString(bound.raw)
		if err != nil {
			return out, false
		}
		*bound.dst = &d
	}
	return out, true
}

func (ctl *ProductController) parseListQuery(c *gin.Context) (services.ProductQuery, bool) {
	var raw productListQuery
	if !bindQuery(c, &raw) {
		return services.ProductQuery{}, false
	}
	query, ok := raw.toQuery()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "minprice and maxprice must be numbers"})
		return services.ProductQuery{}, false
	}
	return query, true
}

func (ctl *ProductController) GetProducts(c *gin.Context) {
	query, ok := ctl.parseListQuery(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	products, err := ctl.products.List(ctx, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": products})
}

func (ctl *ProductController) GetSellerProducts(c *gin.Context) {
	query, ok := ctl.parseListQuery(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	products, err := ctl.products.ListBySeller(ctx, currentSession(c), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": products})
}

func (ctl *ProductController) GetProduct(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	product, err := ctl.products.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (ctl *ProductController) CreateProduct(c *gin.Context) {
	var input struct {
		Title         string           `json:"title" binding:"required,min=3"`
		Description   string           `json:"description" binding:"omitempty,min=10"`
		PriceAmount   *decimal.Decimal `json:"priceAmount" binding:"required"`
		PriceCurrency string           `json:"priceCurrency" binding:"omitempty,oneof=USD INR"`
		Stock         int              `json:"stock" binding:"gte=0"`
		Images        []models.Image   `json:"images"`
	}
	if !bindJSON(c, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	product, err := ctl.products.Create(ctx, currentSession(c), services.CreateProductInput{
		Title:         input.Title,
		Description:   input.Description,
		PriceAmount:   *input.PriceAmount,
		PriceCurrency: input.PriceCurrency,
		Stock:         input.Stock,
		Images:        input.Images,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Product created", "data": product})
}

// UpdateProduct applies only the allow-listed fields; anything else in the body is ignored.
func (ctl *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var input struct {
		Title       *string `json:"title" binding:"omitempty,min=3"`
		Description *string `json:"description" binding:"omitempty,min=10"`
		Price       *struct {
			Amount   *decimal.Decimal `json:"amount"`
			Currency *string          `json:"currency" binding:"omitempty,oneof=USD INR"`
		} `json:"price"`
		Stock *int `json:"stock" binding:"omitempty,gte=0"`
	}
	if !bindJSON(c, &input) {
		return
	}

	update := services.ProductUpdate{Title: input.Title, Description: input.Description, Stock: input.Stock}
	if input.Price != nil {
		update.PriceAmount = input.Price.Amount
		update.PriceCurrency = input.Price.Currency
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	product, err := ctl.products.Update(ctx, currentSession(c), id, update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated", "product": product})
}

func (ctl *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := ctl.products.Delete(ctx, currentSession(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
