package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PoolSource tells the caller whether a fetch was served from an existing pool
type PoolSource string

const (
	PoolSourceCached PoolSource = "cached"
	PoolSourceFresh  PoolSource = "fresh"
)

// CandidateReview is one AI-generated review suggestion
type CandidateReview struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	BusinessID  primitive.ObjectID  `json:"businessId" bson:"businessId"`
	LocationID  *primitive.ObjectID `json:"locationId" bson:"locationId"` // nil => business-level pool
	Fingerprint string              `json:"fingerprint" bson:"fingerprint"`
	Text        string              `json:"text" bson:"text"`
	Consumed    bool                `json:"consumed" bson:"consumed"`
	ConsumedAt  *time.Time          `json:"consumedAt,omitempty" bson:"consumedAt,omitempty"`
	CreatedAt   time.Time           `json:"createdAt" bson:"createdAt"`
}

// PoolKey identifies one pool: every record sharing (business, location, fingerprint)
type PoolKey struct {
	BusinessID  primitive.ObjectID
	LocationID  *primitive.ObjectID
	Fingerprint string
}

// Key returns the pool key the review belongs to
func (r *CandidateReview) Key() PoolKey {
	return PoolKey{
		BusinessID:  r.BusinessID,
		LocationID:  r.LocationID,
		Fingerprint: r.Fingerprint,
	}
}

// String renders the key for logs and cache keys
func (k PoolKey) String() string {
	loc := "-"
	if k.LocationID != nil {
		loc = k.LocationID.Hex()
	}
	return k.BusinessID.Hex() + ":" + loc + ":" + k.Fingerprint
}

// FetchResult is returned by a fetch of review suggestions
type FetchResult struct {
	Reviews  []*CandidateReview `json:"reviews"`
	Strategy string             `json:"strategy"`
	Source   PoolSource         `json:"source"`
}

// ConsumeResult is returned after a suggestion was consumed (copied)
type ConsumeResult struct {
	Reviews     []*CandidateReview `json:"reviews"`
	Regenerated bool               `json:"regenerated"`
}

// PoolStats summarises the current pool for the owner dashboard
type PoolStats struct {
	Strategy    string `json:"strategy"`
	Fingerprint string `json:"fingerprint"`
	Total       int    `json:"total"`
	Consumed    int    `json:"consumed"`
	Unconsumed  int    `json:"unconsumed"`
	Threshold   int    `json:"threshold"`
}
