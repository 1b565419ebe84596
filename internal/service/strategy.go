package service

import (
	"context"
	"fmt"
	"reviewpilot/internal/model"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ownerScope is the (business, optional location) a pool belongs to
type ownerScope struct {
	businessID primitive.ObjectID
	locationID *primitive.ObjectID
}

func parseScope(businessID, locationID string) (ownerScope, error) {
	if strings.TrimSpace(businessID) == "" {
		return ownerScope{}, fmt.Errorf("%w: businessId is required", ErrValidation)
	}
	biz, err := primitive.ObjectIDFromHex(businessID)
	if err != nil {
		return ownerScope{}, fmt.Errorf("%w: invalid businessId", ErrValidation)
	}
	scope := ownerScope{businessID: biz}

	if strings.TrimSpace(locationID) != "" {
		loc, err := primitive.ObjectIDFromHex(locationID)
		if err != nil {
			return ownerScope{}, fmt.Errorf("%w: invalid locationId", ErrValidation)
		}
		scope.locationID = &loc
	}
	return scope, nil
}

func (o ownerScope) poolKey(fingerprint string) model.PoolKey {
	return model.PoolKey{
		BusinessID:  o.businessID,
		LocationID:  o.locationID,
		Fingerprint: fingerprint,
	}
}

func (o ownerScope) locationHex() string {
	if o.locationID == nil {
		return ""
	}
	return o.locationID.Hex()
}

// resolveStrategy returns the strategy text in effect for the scope. A location's
// strategy is used when a location is given; otherwise the business strategy.
// Unknown owners yield ErrNotFound, blank strategies ErrStrategyMissing.
// With requireBusiness the owning business must also still exist for location scopes.
func (s *ReviewPoolService) resolveStrategy(ctx context.Context, scope ownerScope, requireBusiness bool) (string, error) {
	if scope.locationID != nil {
		location, err := s.locationRepo.GetByID(ctx, *scope.locationID)
		if err != nil {
			return "", storeErr("get location", err)
		}
		if location == nil || location.BusinessID != scope.businessID {
			return "", fmt.Errorf("%w: location %s of business %s", ErrNotFound, scope.locationID.Hex(), scope.businessID.Hex())
		}
		if requireBusiness {
			business, err := s.businessRepo.GetByID(ctx, scope.businessID)
			if err != nil {
				return "", storeErr("get business", err)
			}
			if business == nil {
				return "", fmt.Errorf("%w: business %s", ErrNotFound, scope.businessID.Hex())
			}
		}
		if strings.TrimSpace(location.ReviewStrategy) == "" {
			return "", fmt.Errorf("%w (location %s)", ErrStrategyMissing, location.ID.Hex())
		}
		return location.ReviewStrategy, nil
	}

	business, err := s.businessRepo.GetByID(ctx, scope.businessID)
	if err != nil {
		return "", storeErr("get business", err)
	}
	if business == nil {
		return "", fmt.Errorf("%w: business %s", ErrNotFound, scope.businessID.Hex())
	}
	if strings.TrimSpace(business.ReviewStrategy) == "" {
		return "", fmt.Errorf("%w (business %s)", ErrStrategyMissing, business.ID.Hex())
	}
	return business.ReviewStrategy, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}
