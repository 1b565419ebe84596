package service

import "errors"

var (
	ErrValidation      = errors.New("validation failed")
	ErrStrategyMissing = errors.New("review strategy not configured: add a review strategy before generating suggestions")
	ErrNotFound        = errors.New("not found")
	ErrGeneration      = errors.New("review generation failed, please try again")
	ErrParse           = errors.New("review generation returned unreadable output, please try again")
	ErrStore           = errors.New("review store unavailable")

	ErrInvalidToken = errors.New("invalid or expired token")
)
