package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Medicine is the catalog entry behind the medicines collection. The
// frontend cart reads it; no order flow exists server-side yet.
type Medicine struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	Stock       int                `bson:"stock" json:"stock"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
