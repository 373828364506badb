package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"supernova/models"
	"supernova/services"
)

type CartController struct {
	carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

func cartResponse(message string, cart *models.Cart) gin.H {
	body := gin.H{"cart": cart, "totals": cart.Totals()}
	if message != "" {
		body["message"] = message
	}
	return body
}

func (ctl *CartController) GetCart(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	cart, err := ctl.carts.Get(ctx, currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse("", cart))
}

func (ctl *CartController) AddToCart(c *gin.Context) {
	var body struct {
		ProductID string `json:"productId" binding:"required,objectid"`
		Qty       int    `json:"qty" binding:"required,gt=0"`
	}
	if !bindJSON(c, &body) {
		return
	}
	productID, _ := primitive.ObjectIDFromHex(body.ProductID)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	cart, err := ctl.carts.AddItem(ctx, currentSession(c), productID, body.Qty)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse("Item added to cart", cart))
}

// UpdateCart sets a line's quantity; a quantity of zero or less removes the line.
func (ctl *CartController) UpdateCart(c *gin.Context) {
	productID, ok := objectIDParam(c, "productId")
	if !ok {
		return
	}
	var body struct {
		Qty *int `json:"qty" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	cart, err := ctl.carts.UpdateItem(ctx, currentSession(c), productID, *body.Qty)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse("Cart updated", cart))
}

func (ctl *CartController) RemoveFromCart(c *gin.Context) {
	productID, ok := objectIDParam(c, "productId")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	cart, err := ctl.carts.RemoveItem(ctx, currentSession(c), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse("Item removed from cart", cart))
}

func (ctl *CartController) ClearCart(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	cart, err := ctl.carts.Clear(ctx, currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse("Cart cleared", cart))
}
