package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"supernova/models"
	"supernova/services"
)

// checkoutTimeout bounds the whole assembly including the calls to the
// cart and product services.
const checkoutTimeout = 15 * time.Second

type OrderController struct {
	checkout *services.Checkout
	orders   *services.OrderService
}

func NewOrderController(checkout *services.Checkout, orders *services.OrderService) *OrderController {
	return &OrderController{checkout: checkout, orders: orders}
}

type shippingAddressInput struct {
	Street  string `json:"street" binding:"required,min=3"`
	City    string `json:"city" binding:"required,min=2"`
	State   string `json:"state" binding:"required,min=2"`
	ZipCode string `json:"zipCode" binding:"required,zip"`
	Country string `json:"country" binding:"required,min=2"`
}

// Checkout turns the caller's cart into a pending order. Assembly failures
// answer 500 with a descriptive message.
func (ctl *OrderController) Checkout(c *gin.Context) {
	var body struct {
		Street    string `json:"street" binding:"required,min=3"`
		City      string `json:"city" binding:"required,min=2"`
		State     string `json:"state" binding:"required,min=2"`
		Zip       string `json:"zip" binding:"required,zip"`
		Country   string `json:"country" binding:"required,min=2"`
		IsDefault bool   `json:"isDefault"`
	}
	if !bindJSON(c, &body) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), checkoutTimeout)
	defer cancel()

	order, err := ctl.checkout.PlaceOrder(ctx, currentSession(c), models.ShippingAddress{
		Street:    body.Street,
		City:      body.City,
		State:     body.State,
		ZipCode:   body.Zip,
		Country:   body.Country,
		IsDefault: body.IsDefault,
	})
	if err != nil {
		respondDescriptive(c, err, services.ErrEmptyCart, services.ErrOutOfStock, services.ErrUpstream, services.ErrInvalidInput)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Order created successfully", "order": order})
}

func (ctl *OrderController) GetMyOrders(c *gin.Context) {
	var query struct {
		Page  int64 `form:"page" binding:"gte=0"`
		Limit int64 `form:"limit" binding:"gte=0"`
	}
	if !bindQuery(c, &query) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	orders, meta, err := ctl.orders.ListMine(ctx, currentSession(c), services.NewPage(query.Page, query.Limit))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "meta": meta})
}

func (ctl *OrderController) GetOrder(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := ctl.orders.Get(ctx, currentSession(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (ctl *OrderController) CancelOrder(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := ctl.orders.Cancel(ctx, currentSession(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled", "order": order})
}

func (ctl *OrderController) UpdateShippingAddress(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		ShippingAddress *shippingAddressInput `json:"shippingAddress" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	addr := body.ShippingAddress
	order, err := ctl.orders.UpdateShippingAddress(ctx, currentSession(c), id, models.ShippingAddress{
		Street:  addr.Street,
		City:    addr.City,
		State:   addr.State,
		ZipCode: addr.ZipCode,
		Country: addr.Country,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shipping address updated", "order": order})
}

func (ctl *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}
	status, err := models.ToOrderStatus(body.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status value"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := ctl.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order": order})
}
