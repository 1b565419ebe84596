package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"reviewpilot/internal/logger"
	"reviewpilot/internal/model"
	"reviewpilot/internal/transport/rest/middleware"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// ReviewSuggester is the review pool API the handlers need
type ReviewSuggester interface {
	Fetch(ctx context.Context, businessID, locationID string) (*model.FetchResult, error)
	Consume(ctx context.Context, reviewID string) (*model.ConsumeResult, error)
	Stats(ctx context.Context, businessID, locationID string) (*model.PoolStats, error)
}

// ReviewHandler handles review suggestion endpoints
type ReviewHandler struct {
	pool     ReviewSuggester
	validate *validator.Validate
	log      *logger.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(pool ReviewSuggester, log *logger.Logger) *ReviewHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ReviewHandler{
		pool:     pool,
		validate: newValidator(),
		log:      log.With("handler", "ReviewHandler"),
	}
}

// PoolScopeParams identifies the pool a request is about
type PoolScopeParams struct {
	BusinessID string `json:"businessId" validate:"required,mongodb"`
	LocationID string `json:"locationId" validate:"omitempty,mongodb"`
}

// ConsumeParams identifies the suggestion being consumed
type ConsumeParams struct {
	ReviewID string `json:"reviewId" validate:"required,mongodb"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationMessage turns validator errors into a single client-facing message
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "mongodb":
			msgs = append(msgs, fmt.Sprintf("%s must be a 24 character hex id", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}

func scopeFromRequest(r *http.Request) PoolScopeParams {
	return PoolScopeParams{
		BusinessID: mux.Vars(r)["businessId"],
		LocationID: strings.TrimSpace(r.URL.Query().Get("locationId")),
	}
}

// Suggestions handles GET /v1/businesses/{businessId}/review-suggestions
func (h *ReviewHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	params := scopeFromRequest(r)
	if err := h.validate.Struct(params); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	result, err := h.pool.Fetch(r.Context(), params.BusinessID, params.LocationID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Consume handles POST /v1/review-suggestions/{reviewId}/consume
func (h *ReviewHandler) Consume(w http.ResponseWriter, r *http.Request) {
	params := ConsumeParams{ReviewID: mux.Vars(r)["reviewId"]}
	if err := h.validate.Struct(params); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	result, err := h.pool.Consume(r.Context(), params.ReviewID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Stats handles GET /v1/businesses/{businessId}/review-pool/stats (owner only)
func (h *ReviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	params := scopeFromRequest(r)
	if err := h.validate.Struct(params); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	ownerOf := middleware.GetBusinessID(r.Context())
	if ownerOf == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if ownerOf != params.BusinessID {
		writeError(w, http.StatusForbidden, "token not valid for this business")
		return
	}

	stats, err := h.pool.Stats(r.Context(), params.BusinessID, params.LocationID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
