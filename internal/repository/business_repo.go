package repository

import (
	"context"
	"reviewpilot/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// BusinessRepo is the read side of the business directory the review pool needs.
// Business CRUD lives elsewhere.
type BusinessRepo interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Business, error)
}

type businessRepo struct {
	collection *mongo.Collection
}

// NewBusinessRepo creates a new business repository
func NewBusinessRepo(db *mongo.Database) BusinessRepo {
	return &businessRepo{
		collection: db.Collection("businesses"),
	}
}

func (r *businessRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Business, error) {
	var business model.Business
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&business)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &business, nil
}
