package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type CreateCustomerRequest struct {
	ExternalCustomerID string
	Name               string
	Email              string
}

type CreateBackfillRequest struct {
	TimeframeStart        time.Time
	TimeframeEnd          time.Time
	ReplaceExistingEvents bool
}

type IngestRequest struct {
	Events     []Event
	BackfillID string
	Debug      bool
}

type IngestResponse struct {
	Ingested         []string
	Duplicate        []string
	ValidationFailed []ValidationFailure
}

type ListCustomersRequest struct {
	Cursor string
	Limit  int
}

type ListCustomersResponse struct {
	Customers  []Customer
	NextCursor string
	HasMore    bool
}

// Client is the narrow contract this tool needs from the billing platform.
type Client interface {
	CreateCustomer(context.Context, CreateCustomerRequest) (Customer, error)
	CreateBackfill(context.Context, CreateBackfillRequest) (Backfill, error)
	IngestEvents(context.Context, IngestRequest) (IngestResponse, error)
	ListCustomers(context.Context, ListCustomersRequest) (ListCustomersResponse, error)
}

var (
	ErrInvalidCustomer  = errors.New("invalid_customer")
	ErrInvalidTimeframe = errors.New("invalid_timeframe")
	ErrEmptyIngest      = errors.New("empty_ingest")
)

// Error is a decoded platform error envelope.
type Error struct {
	Status           int
	Title            string
	Detail           string
	ValidationErrors []string
}

func (e *Error) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Title
	}
	if len(e.ValidationErrors) > 0 {
		msg = fmt.Sprintf("%s (%s)", msg, strings.Join(e.ValidationErrors, "; "))
	}
	return fmt.Sprintf("orb: %d %s", e.Status, msg)
}
