package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
)

type Payment struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID        primitive.ObjectID `bson:"order" json:"order"`
	GatewayOrderID string             `bson:"razorpayOrderId" json:"razorpayOrderId"`
	UserID         primitive.ObjectID `bson:"user" json:"user"`
	Price          Money              `bson:"price" json:"price"`
	PaymentID      string             `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	Signature      string             `bson:"signature,omitempty" json:"signature,omitempty"`
	Status         PaymentStatus      `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
