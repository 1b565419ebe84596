package rest

import (
	"net/http"
	"reviewpilot/internal/logger"
	"reviewpilot/internal/service"
	"reviewpilot/internal/transport/rest/handler"
	"reviewpilot/internal/transport/rest/middleware"
	"reviewpilot/internal/transport/ws"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	ReviewPool         handler.ReviewSuggester
	AuthService        *service.AuthService
	WSHub              *ws.Hub
	Logger             *logger.Logger
	CORSAllowedOrigins string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	log := c.Logger
	if log == nil {
		log = logger.Nop()
	}
	r := mux.NewRouter()

	// Initialize handlers
	reviewHandler := handler.NewReviewHandler(c.ReviewPool, log)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, log)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORSAllowedOrigins))
	r.Use(middleware.RequestLogger(log))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes used by the review widget
	v1.HandleFunc("/businesses/{businessId}/review-suggestions", reviewHandler.Suggestions).Methods("GET", "OPTIONS")
	v1.HandleFunc("/review-suggestions/{reviewId}/consume", reviewHandler.Consume).Methods("POST", "OPTIONS")

	// WebSocket routes (token in query param)
	v1.HandleFunc("/ws/businesses/{businessId}", wsHandler.DashboardWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Owner routes
	ownerRoutes := v1.NewRoute().Subrouter()
	ownerRoutes.Use(authMW.RequireOwner)

	ownerRoutes.HandleFunc("/businesses/{businessId}/review-pool/stats", reviewHandler.Stats).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
