package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/orbload/internal/config"
	orbdomain "github.com/smallbiznis/orbload/internal/orb/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg    config.Config
	Loader config.LoaderConfig
	Log    *zap.Logger
}

// Client talks to the Orb REST API.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	log     *zap.Logger
}

func New(p Params) orbdomain.Client {
	return &Client{
		baseURL: strings.TrimRight(p.Cfg.OrbBaseURL, "/"),
		apiKey:  p.Cfg.OrbAPIKey,
		httpc:   &http.Client{Timeout: p.Loader.RequestTimeout},
		log:     p.Log.Named("orb.client"),
	}
}

type customerPayload struct {
	ExternalCustomerID string `json:"external_customer_id,omitempty"`
	Name               string `json:"name"`
	Email              string `json:"email"`
}

func (c *Client) CreateCustomer(ctx context.Context, req orbdomain.CreateCustomerRequest) (orbdomain.Customer, error) {
	email := strings.TrimSpace(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" || name == "" {
		return orbdomain.Customer{}, orbdomain.ErrInvalidCustomer
	}

	var customer orbdomain.Customer
	err := c.do(ctx, http.MethodPost, "/customers", nil, customerPayload{
		ExternalCustomerID: strings.TrimSpace(req.ExternalCustomerID),
		Name:               name,
		Email:              email,
	}, &customer)
	if err != nil {
		return orbdomain.Customer{}, err
	}
	return customer, nil
}

type backfillPayload struct {
	TimeframeStart        string `json:"timeframe_start"`
	TimeframeEnd          string `json:"timeframe_end"`
	ReplaceExistingEvents bool   `json:"replace_existing_events"`
}

func (c *Client) CreateBackfill(ctx context.Context, req orbdomain.CreateBackfillRequest) (orbdomain.Backfill, error) {
	if req.TimeframeStart.IsZero() || !req.TimeframeEnd.After(req.TimeframeStart) {
		return orbdomain.Backfill{}, orbdomain.ErrInvalidTimeframe
	}

	var backfill orbdomain.Backfill
	err := c.do(ctx, http.MethodPost, "/events/backfills", nil, backfillPayload{
		TimeframeStart:        req.TimeframeStart.UTC().Format(time.RFC3339),
		TimeframeEnd:          req.TimeframeEnd.UTC().Format(time.RFC3339),
		ReplaceExistingEvents: req.ReplaceExistingEvents,
	}, &backfill)
	if err != nil {
		return orbdomain.Backfill{}, err
	}
	return backfill, nil
}

type eventPayload struct {
	IdempotencyKey string         `json:"idempotency_key"`
	CustomerID     string         `json:"customer_id"`
	EventName      string         `json:"event_name"`
	Timestamp      string         `json:"timestamp"`
	Properties     map[string]any `json:"properties"`
}

type ingestPayload struct {
	Events []eventPayload `json:"events"`
}

type ingestEnvelope struct {
	ValidationFailed []orbdomain.ValidationFailure `json:"validation_failed"`
	Debug            *struct {
		Ingested  []string `json:"ingested"`
		Duplicate []string `json:"duplicate"`
	} `json:"debug"`
}

func (c *Client) IngestEvents(ctx context.Context, req orbdomain.IngestRequest) (orbdomain.IngestResponse, error) {
	if len(req.Events) == 0 {
		return orbdomain.IngestResponse{}, orbdomain.ErrEmptyIngest
	}

	payload := ingestPayload{Events: make([]eventPayload, 0, len(req.Events))}
	for _, event := range req.Events {
		payload.Events = append(payload.Events, eventPayload{
			IdempotencyKey: event.IdempotencyKey,
			CustomerID:     event.CustomerID,
			EventName:      event.EventName,
			Timestamp:      event.Timestamp.UTC().Format(time.RFC3339),
			Properties:     event.Properties,
		})
	}

	query := url.Values{}
	if req.Debug {
		query.Set("debug", "true")
	}
	if req.BackfillID != "" {
		query.Set("backfill_id", req.BackfillID)
	}

	var envelope ingestEnvelope
	if err := c.do(ctx, http.MethodPost, "/ingest", query, payload, &envelope); err != nil {
		return orbdomain.IngestResponse{}, err
	}

	resp := orbdomain.IngestResponse{ValidationFailed: envelope.ValidationFailed}
	if envelope.Debug != nil {
		resp.Ingested = envelope.Debug.Ingested
		resp.Duplicate = envelope.Debug.Duplicate
	}
	return resp, nil
}

type listCustomersEnvelope struct {
	Data               []orbdomain.Customer `json:"data"`
	PaginationMetadata struct {
		HasMore    bool   `json:"has_more"`
		NextCursor string `json:"next_cursor"`
	} `json:"pagination_metadata"`
}

func (c *Client) ListCustomers(ctx context.Context, req orbdomain.ListCustomersRequest) (orbdomain.ListCustomersResponse, error) {
	query := url.Values{}
	if req.Cursor != "" {
		query.Set("cursor", req.Cursor)
	}
	if req.Limit > 0 {
		query.Set("limit", strconv.Itoa(req.Limit))
	}

	var envelope listCustomersEnvelope
	if err := c.do(ctx, http.MethodGet, "/customers", query, nil, &envelope); err != nil {
		return orbdomain.ListCustomersResponse{}, err
	}

	return orbdomain.ListCustomersResponse{
		Customers:  envelope.Data,
		NextCursor: envelope.PaginationMetadata.NextCursor,
		HasMore:    envelope.PaginationMetadata.HasMore,
	}, nil
}

type errorEnvelope struct {
	Status           int      `json:"status"`
	Title            string   `json:"title"`
	Detail           string   `json:"detail"`
	ValidationErrors []string `json:"validation_errors"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(status int, raw []byte) error {
	envelope := errorEnvelope{Status: status}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Title == "" && envelope.Detail == "" {
		return &orbdomain.Error{Status: status, Detail: strings.TrimSpace(string(raw))}
	}
	if envelope.Status == 0 {
		envelope.Status = status
	}
	return &orbdomain.Error{
		Status:           envelope.Status,
		Title:            envelope.Title,
		Detail:           envelope.Detail,
		ValidationErrors: envelope.ValidationErrors,
	}
}
