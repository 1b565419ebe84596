package repository

import (
	"context"
	"reviewpilot/internal/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReviewRepo handles MongoDB operations for generated review suggestions
type ReviewRepo interface {
	Find(ctx context.Context, key model.PoolKey, consumed *bool) ([]*model.CandidateReview, error)
	InsertBatch(ctx context.Context, reviews []*model.CandidateReview) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.CandidateReview, error)
	MarkConsumed(ctx context.Context, id primitive.ObjectID) error
	CountConsumed(ctx context.Context, key model.PoolKey) (int64, error)
	DeletePool(ctx context.Context, key model.PoolKey) error
	EnsureIndexes(ctx context.Context) error
}

type reviewRepo struct {
	collection *mongo.Collection
}

// NewReviewRepo creates a new review suggestion repository
func NewReviewRepo(db *mongo.Database) ReviewRepo {
	return &reviewRepo{
		collection: db.Collection("review_suggestions"),
	}
}

func poolFilter(key model.PoolKey) bson.M {
	filter := bson.M{
		"businessId":  key.BusinessID,
		"fingerprint": key.Fingerprint,
		"locationId":  nil, // matches null and missing
	}
	if key.LocationID != nil {
		filter["locationId"] = *key.LocationID
	}
	return filter
}

func (r *reviewRepo) Find(ctx context.Context, key model.PoolKey, consumed *bool) ([]*model.CandidateReview, error) {
	filter := poolFilter(key)
	if consumed != nil {
		filter["consumed"] = *consumed
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reviews := []*model.CandidateReview{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepo) InsertBatch(ctx context.Context, reviews []*model.CandidateReview) error {
	if len(reviews) == 0 {
		return nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, len(reviews))
	for i, review := range reviews {
		if review.ID.IsZero() {
			review.ID = primitive.NewObjectID()
		}
		if review.CreatedAt.IsZero() {
			review.CreatedAt = now
		}
		docs[i] = review
	}

	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *reviewRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.CandidateReview, error) {
	var review model.CandidateReview
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// MarkConsumed only matches unconsumed documents, so repeating it is a no-op
func (r *reviewRepo) MarkConsumed(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "consumed": false},
		bson.M{"$set": bson.M{"consumed": true, "consumedAt": time.Now().UTC()}},
	)
	return err
}

func (r *reviewRepo) CountConsumed(ctx context.Context, key model.PoolKey) (int64, error) {
	filter := poolFilter(key)
	filter["consumed"] = true
	return r.collection.CountDocuments(ctx, filter)
}

func (r *reviewRepo) DeletePool(ctx context.Context, key model.PoolKey) error {
	_, err := r.collection.DeleteMany(ctx, poolFilter(key))
	return err
}

func (r *reviewRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "businessId", Value: 1},
			{Key: "locationId", Value: 1},
			{Key: "fingerprint", Value: 1},
			{Key: "consumed", Value: 1},
		},
		Options: options.Index().SetName("pool_lookup"),
	})
	return err
}
