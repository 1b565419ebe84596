package repository

import (
	"context"
	"reviewpilot/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type LocationRepo interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Location, error)
}

type locationRepo struct {
	collection *mongo.Collection
}

func NewLocationRepo(db *mongo.Database) LocationRepo {
	return &locationRepo{
		collection: db.Collection("locations"),
	}
}

func (r *locationRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Location, error) {
	var location model.Location
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&location)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &location, nil
}
