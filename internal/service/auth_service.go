package service

import (
	"fmt"
	"reviewpilot/internal/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService validates business owner tokens for dashboard endpoints.
// Interactive login is handled by the account service.
type AuthService struct {
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(secret string) *AuthService {
	return &AuthService{
		jwtSecret: []byte(secret),
		tokenTTL:  30 * 24 * time.Hour,
	}
}

// IssueOwnerToken creates a token scoped to one business
func (s *AuthService) IssueOwnerToken(businessID string) (string, error) {
	if businessID == "" {
		return "", fmt.Errorf("%w: businessId is required", ErrValidation)
	}
	now := time.Now()
	claims := &model.OwnerClaims{
		BusinessID: businessID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateOwnerToken validates an owner JWT and returns claims
func (s *AuthService) ValidateOwnerToken(tokenString string) (*model.OwnerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.OwnerClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.OwnerClaims)
	if !ok || !token.Valid || claims.BusinessID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
