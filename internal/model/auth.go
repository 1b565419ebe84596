package model

import "github.com/golang-jwt/jwt/v5"

// OwnerClaims are JWT claims for a business owner's dashboard token
type OwnerClaims struct {
	BusinessID string `json:"businessId"`
	jwt.RegisteredClaims
}
