package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"supernova/database"
)

var (
	_ Denylist = (*MongoDenylist)(nil)
	_ Denylist = (*RedisDenylist)(nil)
)

// MongoDenylist stores revoked tokens in blacklist_tokens; a TTL index on
// expiresAt purges them once they lapse.
type MongoDenylist struct {
	coll *mongo.Collection
}

func NewMongoDenylist(db *mongo.Database) *MongoDenylist {
	return &MongoDenylist{coll: db.Collection(database.BlacklistCollection)}
}

func (d *MongoDenylist) Add(ctx context.Context, token string, expiresAt time.Time) error {
	if !expiresAt.After(time.Now()) {
		return nil
	}
	_, err := d.coll.InsertOne(ctx, bson.M{"token": token, "expiresAt": expiresAt, "createdAt": time.Now()})
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("denylist.Add: %w", err)
	}
	return nil
}

func (d *MongoDenylist) Contains(ctx context.Context, token string) (bool, error) {
	filter := bson.M{"token": token, "expiresAt": bson.M{"$gt": time.Now()}}
	err := d.coll.FindOne(ctx, filter).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("denylist.Contains: %w", err)
	}
	return true, nil
}

// RedisDenylist shares revocations across services through one Redis keyspace.
type RedisDenylist struct {
	rdb redis.UniversalClient
}

func NewRedisDenylist(rdb redis.UniversalClient) *RedisDenylist {
	return &RedisDenylist{rdb: rdb}
}

func redisDenylistKey(token string) string {
	return "blacklist:" + token
}

func (d *RedisDenylist) Add(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := d.rdb.Set(ctx, redisDenylistKey(token), "true", ttl).Err(); err != nil {
		return fmt.Errorf("denylist.Add: %w", err)
	}
	return nil
}

func (d *RedisDenylist) Contains(ctx context.Context, token string) (bool, error) {
	n, err := d.rdb.Exists(ctx, redisDenylistKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("denylist.Contains: %w", err)
	}
	return n > 0, nil
}
