package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"reviewpilot/internal/cache"
	"reviewpilot/internal/logger"
	"reviewpilot/internal/model"
	"reviewpilot/internal/repository"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultBatchSize  = 15
	DefaultSampleSize = 5
)

// PoolSettings sizes the review pool. A pool regenerates once BatchSize-1 records are consumed.
type PoolSettings struct {
	BatchSize  int
	SampleSize int
	LockWait   time.Duration
}

// ReviewPoolService hands out AI-generated review suggestions from a pool cached
// per (business, location, strategy fingerprint) and regenerates it when nearly exhausted.
//
// There is no in-process state; concurrent callers may both generate for the
// same empty pool, or both regenerate an exhausted one, unless a PoolLock is set.
type ReviewPoolService struct {
	reviewRepo   repository.ReviewRepo
	businessRepo repository.BusinessRepo
	locationRepo repository.LocationRepo
	generator    ReviewGenerator
	poolLock     cache.PoolLock
	broadcaster  Broadcaster
	settings     PoolSettings
	log          *logger.Logger
}

// NewReviewPoolService creates a new review pool service
func NewReviewPoolService(
	reviewRepo repository.ReviewRepo,
	businessRepo repository.BusinessRepo,
	locationRepo repository.LocationRepo,
	generator ReviewGenerator,
	settings PoolSettings,
	log *logger.Logger,
) *ReviewPoolService {
	if settings.BatchSize < 2 {
		settings.BatchSize = DefaultBatchSize
	}
	if settings.SampleSize < 1 {
		settings.SampleSize = DefaultSampleSize
	}
	if settings.LockWait <= 0 {
		settings.LockWait = 5 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ReviewPoolService{
		reviewRepo:   reviewRepo,
		businessRepo: businessRepo,
		locationRepo: locationRepo,
		generator:    generator,
		settings:     settings,
		log:          log.With("service", "ReviewPoolService"),
	}
}

// SetPoolLock enables advisory locking around pool generation
func (s *ReviewPoolService) SetPoolLock(l cache.PoolLock) {
	s.poolLock = l
}

// SetBroadcaster sets the broadcaster for dashboard events
func (s *ReviewPoolService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

func (s *ReviewPoolService) threshold() int {
	return s.settings.BatchSize - 1
}

// Fetch returns up to SampleSize unconsumed suggestions for the scope, generating
// the pool first when no record exists under the current strategy fingerprint.
// It never changes consumption state.
func (s *ReviewPoolService) Fetch(ctx context.Context, businessID, locationID string) (*model.FetchResult, error) {
	scope, err := parseScope(businessID, locationID)
	if err != nil {
		return nil, err
	}

	strategy, err := s.resolveStrategy(ctx, scope, false)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrStrategyMissing, err)
	}
	if err != nil {
		return nil, err
	}

	key := scope.poolKey(Fingerprint(strategy))
	records, err := s.reviewRepo.Find(ctx, key, nil)
	if err != nil {
		return nil, storeErr("find pool", err)
	}

	source := model.PoolSourceCached
	if len(records) == 0 {
		var generated bool
		records, generated, err = s.fillPool(ctx, key, strategy)
		if err != nil {
			return nil, err
		}
		if generated {
			source = model.PoolSourceFresh
			s.broadcast(scope, EventPoolCreated, map[string]interface{}{
				"locationId":  scope.locationHex(),
				"fingerprint": key.Fingerprint,
				"count":       len(records),
			})
		}
	}

	sample := sampleReviews(records, s.settings.SampleSize)
	s.log.Debug("Fetched review suggestions",
		"businessId", businessID,
		"locationId", locationID,
		"fingerprint", shortFingerprint(key.Fingerprint),
		"source", source,
		"poolSize", len(records),
		"returned", len(sample),
	)

	return &model.FetchResult{
		Reviews:  sample,
		Strategy: strategy,
		Source:   source,
	}, nil
}

// fillPool generates and stores a batch for an empty pool. generated is false when
// another caller filled the pool while we waited on the lock.
func (s *ReviewPoolService) fillPool(ctx context.Context, key model.PoolKey, strategy string) (records []*model.CandidateReview, generated bool, err error) {
	if s.poolLock != nil {
		token, ok, lockErr := s.poolLock.Acquire(ctx, key.String())
		switch {
		case lockErr != nil:
			s.log.Warn("Pool lock unavailable, generating unlocked", "pool", key.String(), "error", lockErr)
		case ok:
			defer s.releaseLock(ctx, key, token)
		default:
			if _, waitErr := s.poolLock.Wait(ctx, key.String(), s.settings.LockWait); waitErr != nil {
				s.log.Warn("Waiting for pool lock failed", "pool", key.String(), "error", waitErr)
			}
		}
		if lockErr == nil {
			existing, err := s.reviewRepo.Find(ctx, key, nil)
			if err != nil {
				return nil, false, storeErr("find pool", err)
			}
			if len(existing) > 0 {
				return existing, false, nil
			}
		}
	}

	batch, err := s.generatePool(ctx, key, strategy)
	if err != nil {
		return nil, false, err
	}
	if err := s.reviewRepo.InsertBatch(ctx, batch); err != nil {
		return nil, false, storeErr("insert pool", err)
	}

	records, err = s.reviewRepo.Find(ctx, key, nil)
	if err != nil {
		return nil, false, storeErr("find pool", err)
	}
	s.log.Info("Generated review pool",
		"pool", key.String(),
		"count", len(batch),
	)
	return records, true, nil
}

// Consume marks a suggestion as used and returns a fresh sample. Once the pool has
// BatchSize-1 consumed records it is deleted and regenerated under the current strategy.
func (s *ReviewPoolService) Consume(ctx context.Context, reviewID string) (*model.ConsumeResult, error) {
	id, err := primitive.ObjectIDFromHex(reviewID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid reviewId", ErrValidation)
	}

	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get review", err)
	}
	if review == nil {
		return nil, fmt.Errorf("%w: review %s", ErrNotFound, reviewID)
	}

	if !review.Consumed {
		if err := s.reviewRepo.MarkConsumed(ctx, id); err != nil {
			return nil, storeErr("mark consumed", err)
		}
	}

	key := review.Key()
	consumed, err := s.reviewRepo.CountConsumed(ctx, key)
	if err != nil {
		return nil, storeErr("count consumed", err)
	}

	scope := ownerScope{businessID: key.BusinessID, locationID: key.LocationID}
	unconsumed := false
	remaining, err := s.reviewRepo.Find(ctx, key, &unconsumed)
	if err != nil {
		return nil, storeErr("find pool", err)
	}

	// Every consumption is broadcast, including the one that triggers regeneration.
	s.broadcast(scope, EventReviewConsumed, map[string]interface{}{
		"reviewId":   reviewID,
		"locationId": scope.locationHex(),
		"consumed":   consumed,
		"remaining":  len(remaining),
	})

	if consumed >= int64(s.threshold()) {
		result, err := s.regenerate(ctx, scope, key)
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}
	}

	return &model.ConsumeResult{
		Reviews:     sampleReviews(remaining, s.settings.SampleSize),
		Regenerated: false,
	}, nil
}

// regenerate replaces an exhausted pool. It returns nil, nil when another caller
// holds the pool lock and is regenerating already.
func (s *ReviewPoolService) regenerate(ctx context.Context, scope ownerScope, old model.PoolKey) (*model.ConsumeResult, error) {
	if s.poolLock != nil {
		token, ok, err := s.poolLock.Acquire(ctx, old.String())
		switch {
		case err != nil:
			s.log.Warn("Pool lock unavailable, regenerating unlocked", "pool", old.String(), "error", err)
		case ok:
			defer s.releaseLock(ctx, old, token)
		default:
			s.log.Info("Pool regeneration already in progress", "pool", old.String())
			return nil, nil
		}
	}

	strategy, err := s.resolveStrategy(ctx, scope, true)
	if err != nil {
		return nil, err
	}
	key := scope.poolKey(Fingerprint(strategy))

	// Generate before deleting so a failed generation leaves the old pool in place.
	batch, err := s.generatePool(ctx, key, strategy)
	if err != nil {
		return nil, err
	}
	if err := s.reviewRepo.DeletePool(ctx, old); err != nil {
		return nil, storeErr("delete pool", err)
	}
	if err := s.reviewRepo.InsertBatch(ctx, batch); err != nil {
		return nil, storeErr("insert pool", err)
	}

	s.log.Info("Regenerated review pool",
		"oldPool", old.String(),
		"pool", key.String(),
		"strategyChanged", old.Fingerprint != key.Fingerprint,
		"count", len(batch),
	)
	s.broadcast(scope, EventPoolRegenerated, map[string]interface{}{
		"locationId":     scope.locationHex(),
		"oldFingerprint": old.Fingerprint,
		"fingerprint":    key.Fingerprint,
		"count":          len(batch),
	})

	return &model.ConsumeResult{
		Reviews:     sampleReviews(batch, s.settings.SampleSize),
		Regenerated: true,
	}, nil
}

// Stats reports the state of the pool under the scope's current strategy. It never generates.
func (s *ReviewPoolService) Stats(ctx context.Context, businessID, locationID string) (*model.PoolStats, error) {
	scope, err := parseScope(businessID, locationID)
	if err != nil {
		return nil, err
	}

	strategy, err := s.resolveStrategy(ctx, scope, false)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrStrategyMissing, err)
	}
	if err != nil {
		return nil, err
	}

	key := scope.poolKey(Fingerprint(strategy))
	records, err := s.reviewRepo.Find(ctx, key, nil)
	if err != nil {
		return nil, storeErr("find pool", err)
	}

	stats := &model.PoolStats{
		Strategy:    strategy,
		Fingerprint: key.Fingerprint,
		Total:       len(records),
		Threshold:   s.threshold(),
	}
	for _, r := range records {
		if r.Consumed {
			stats.Consumed++
		}
	}
	stats.Unconsumed = stats.Total - stats.Consumed
	return stats, nil
}

func (s *ReviewPoolService) generatePool(ctx context.Context, key model.PoolKey, strategy string) ([]*model.CandidateReview, error) {
	texts, err := s.generator.Generate(ctx, strategy, s.settings.BatchSize)
	if err != nil {
		if !errors.Is(err, ErrGeneration) && !errors.Is(err, ErrParse) {
			err = fmt.Errorf("%w: %w", ErrGeneration, err)
		}
		s.log.Warn("Review generation failed", "pool", key.String(), "error", err)
		return nil, err
	}

	batch := make([]*model.CandidateReview, 0, len(texts))
	for _, text := range texts {
		batch = append(batch, &model.CandidateReview{
			BusinessID:  key.BusinessID,
			LocationID:  key.LocationID,
			Fingerprint: key.Fingerprint,
			Text:        text,
		})
	}
	return batch, nil
}

func (s *ReviewPoolService) releaseLock(ctx context.Context, key model.PoolKey, token string) {
	if err := s.poolLock.Release(context.WithoutCancel(ctx), key.String(), token); err != nil {
		s.log.Warn("Failed to release pool lock", "pool", key.String(), "error", err)
	}
}

func (s *ReviewPoolService) broadcast(scope ownerScope, msgType string, payload interface{}) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToBusiness(scope.businessID.Hex(), msgType, payload)
}

// sampleReviews picks up to n unconsumed records uniformly at random (shuffle, then take n)
func sampleReviews(records []*model.CandidateReview, n int) []*model.CandidateReview {
	pool := make([]*model.CandidateReview, 0, len(records))
	for _, r := range records {
		if !r.Consumed {
			pool = append(pool, r)
		}
	}
	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if len(pool) > n {
		pool = pool[:n]
	}
	return pool
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
