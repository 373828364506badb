package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"supernova/database"
	"supernova/models"
)

type MongoPayments struct {
	coll *mongo.Collection
}

func NewMongoPayments(db *mongo.Database) *MongoPayments {
	return &MongoPayments{coll: db.Collection(database.PaymentCollection)}
}

func (r *MongoPayments) Create(ctx context.Context, p *models.Payment) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("payments.Create: %w", err)
	}
	return nil
}

func (r *MongoPayments) FindPendingByGatewayOrder(ctx context.Context, gatewayOrderID string) (*models.Payment, error) {
	filter := bson.M{"razorpayOrderId": gatewayOrderID, "status": models.PaymentStatusPending}

	var p models.Payment
	if err := r.coll.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("payments.FindPendingByGatewayOrder: %w", err)
	}
	return &p, nil
}

func (r *MongoPayments) Update(ctx context.Context, p *models.Payment) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("payments.Update: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
