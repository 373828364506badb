package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"supernova/services"
)

type PaymentController struct {
	payments *services.PaymentService
	keyID    string
}

func NewPaymentController(payments *services.PaymentService, keyID string) *PaymentController {
	return &PaymentController{payments: payments, keyID: keyID}
}

func (ctl *PaymentController) CreatePayment(c *gin.Context) {
	orderID, ok := objectIDParam(c, "orderId")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	payment, err := ctl.payments.Create(ctx, currentSession(c), orderID)
	if err != nil {
		respondDescriptive(c, err, services.ErrUpstream)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Payment initiated",
		"data":    payment,
		"keyId":   ctl.keyID,
	})
}

func (ctl *PaymentController) VerifyPayment(c *gin.Context) {
	var body struct {
		RazorpayOrderID   string `json:"razorpayOrderId" binding:"required"`
		RazorpayPaymentID string `json:"razorpayPaymentId" binding:"required"`
		Signature         string `json:"signature" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	payment, err := ctl.payments.Verify(ctx, services.VerifyInput{
		GatewayOrderID: body.RazorpayOrderID,
		PaymentID:      body.RazorpayPaymentID,
		Signature:      body.Signature,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment verified", "data": payment})
}
