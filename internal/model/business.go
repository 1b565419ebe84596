package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Business is the tenant that owns locations and review pools.
// Only the fields the review pool reads are modelled here.
type Business struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name           string             `json:"name" bson:"name"`
	ReviewStrategy string             `json:"reviewStrategy" bson:"reviewStrategy"` // Tone/content instructions for generated reviews
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
}

// Location is a physical site of a business; its strategy overrides the business strategy
type Location struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BusinessID     primitive.ObjectID `json:"businessId" bson:"businessId"`
	Name           string             `json:"name" bson:"name"`
	ReviewStrategy string             `json:"reviewStrategy" bson:"reviewStrategy"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
}
