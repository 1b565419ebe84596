package service

// Broadcaster pushes events to a business owner's dashboards (avoids import cycle with ws)
type Broadcaster interface {
	BroadcastToBusiness(businessID string, msgType string, payload interface{})
}

// Review pool event types
const (
	EventPoolCreated     = "review_pool_created"
	EventReviewConsumed  = "review_consumed"
	EventPoolRegenerated = "review_pool_regenerated"
)
