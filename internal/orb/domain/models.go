package domain

import "time"

// Customer is a platform customer record.
type Customer struct {
	ID                 string `json:"id"`
	ExternalCustomerID string `json:"external_customer_id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
}

// Event is a single usage-event submission.
type Event struct {
	IdempotencyKey string         `json:"idempotency_key"`
	CustomerID     string         `json:"customer_id"`
	EventName      string         `json:"event_name"`
	Timestamp      time.Time      `json:"timestamp"`
	Properties     map[string]any `json:"properties"`
}

// Backfill is a platform job that re-processes historical events
// inside a bounded timeframe.
type Backfill struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	TimeframeStart time.Time `json:"timeframe_start"`
	TimeframeEnd   time.Time `json:"timeframe_end"`
}

// ValidationFailure reports why the platform rejected one event.
type ValidationFailure struct {
	IdempotencyKey   string   `json:"idempotency_key"`
	ValidationErrors []string `json:"validation_errors"`
}
