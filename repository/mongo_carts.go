package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"supernova/database"
	"supernova/models"
)

// upsertAttempts bounds retries when two writers race to create the same
// cart and the loser trips the unique index on user.
const upsertAttempts = 3

type MongoCarts struct {
	coll *mongo.Collection
}

func NewMongoCarts(db *mongo.Database) *MongoCarts {
	return &MongoCarts{coll: db.Collection(database.CartCollection)}
}

func (r *MongoCarts) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var c models.Cart
	if err := r.coll.FindOne(ctx, bson.M{"user": userID}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("carts.GetByUser: %w", err)
	}
	return normalizeCart(&c), nil
}

func (r *MongoCarts) GetOrCreate(ctx context.Context, userID primitive.ObjectID, now time.Time) (*models.Cart, error) {
	update := bson.M{"$setOnInsert": newCartFields(now, true)}
	c, err := r.upsert(ctx, bson.M{"user": userID}, update)
	if err != nil {
		return nil, fmt.Errorf("carts.GetOrCreate: %w", err)
	}
	return c, nil
}

func (r *MongoCarts) AddItem(ctx context.Context, userID, productID primitive.ObjectID, qty int, now time.Time) (*models.Cart, error) {
	for range upsertAttempts {
		c, err := r.findOneAndUpdate(ctx,
			bson.M{"user": userID, "items.productId": productID},
			bson.M{
				"$inc": bson.M{"items.$.quantity": qty},
				"$set": bson.M{"updatedAt": now},
			},
			false,
		)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("carts.AddItem: %w", err)
		}

		// The $ne guard stops a concurrent push of the same product from
		// producing a second line; the upsert then collides on user and we
		// go round again to take the $inc path.
		c, err = r.findOneAndUpdate(ctx,
			bson.M{"user": userID, "items.productId": bson.M{"$ne": productID}},
			bson.M{
				"$push":        bson.M{"items": models.CartItem{ProductID: productID, Quantity: qty}},
				"$set":         bson.M{"updatedAt": now},
				"$setOnInsert": newCartFields(now, false),
			},
			true,
		)
		if err == nil {
			return c, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("carts.AddItem: %w", err)
		}
	}
	return nil, fmt.Errorf("carts.AddItem: %w", ErrDuplicate)
}

func (r *MongoCarts) SetQuantity(ctx context.Context, userID, productID primitive.ObjectID, qty int, now time.Time) (*models.Cart, error) {
	update := bson.M{"$set": bson.M{"items.$.quantity": qty, "updatedAt": now}}
	if qty <= 0 {
		update = bson.M{
			"$pull": bson.M{"items": bson.M{"productId": productID}},
			"$set":  bson.M{"updatedAt": now},
		}
	}
	c, err := r.findOneAndUpdate(ctx, bson.M{"user": userID, "items.productId": productID}, update, false)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("carts.SetQuantity: %w", err)
	}
	return c, nil
}

func (r *MongoCarts) Clear(ctx context.Context, userID primitive.ObjectID, now time.Time) (*models.Cart, error) {
	update := bson.M{
		"$set":         bson.M{"items": []models.CartItem{}, "updatedAt": now},
		"$setOnInsert": newCartFields(now, false),
	}
	c, err := r.upsert(ctx, bson.M{"user": userID}, update)
	if err != nil {
		return nil, fmt.Errorf("carts.Clear: %w", err)
	}
	return c, nil
}

func (r *MongoCarts) upsert(ctx context.Context, filter, update bson.M) (*models.Cart, error) {
	var err error
	for range upsertAttempts {
		var c *models.Cart
		c, err = r.findOneAndUpdate(ctx, filter, update, true)
		if err == nil {
			return c, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, err
		}
	}
	return nil, err
}

func (r *MongoCarts) findOneAndUpdate(ctx context.Context, filter, update bson.M, upsert bool) (*models.Cart, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetUpsert(upsert)
	var c models.Cart
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&c); err != nil {
		return nil, err
	}
	return normalizeCart(&c), nil
}

// newCartFields are the values written only when an update inserts the cart.
// withState also seeds items and updatedAt for updates that set neither.
func newCartFields(now time.Time, withState bool) bson.M {
	fields := bson.M{"_id": primitive.NewObjectID(), "createdAt": now}
	if withState {
		fields["items"] = []models.CartItem{}
		fields["updatedAt"] = now
	}
	return fields
}

func normalizeCart(c *models.Cart) *models.Cart {
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	return c
}
