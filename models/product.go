package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Image struct {
	URL       string `bson:"url" json:"url"`
	Thumbnail string `bson:"thumbnail" json:"thumbnail"`
	ID        string `bson:"id" json:"id"`
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Price       Money              `bson:"price" json:"price"`
	Seller      primitive.ObjectID `bson:"seller" json:"seller"`
	Stock       int                `bson:"stock" json:"stock"`
	Images      []Image            `bson:"images" json:"images"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
