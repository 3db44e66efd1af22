package client

import (
	"context"
	"testing"
	"time"

	"github.com/h2non/gock"
	"github.com/smallbiznis/orbload/internal/config"
	orbdomain "github.com/smallbiznis/orbload/internal/orb/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testBaseURL = "https://api.orb.test/v1"

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := config.Config{OrbAPIKey: "test-key", OrbBaseURL: testBaseURL}
	c := New(Params{Cfg: cfg, Loader: config.DefaultLoaderConfig(), Log: zap.NewNop()}).(*Client)
	gock.InterceptClient(c.httpc)
	t.Cleanup(func() {
		gock.Off()
	})
	return c
}

func TestCreateCustomer(t *testing.T) {
	c := newTestClient(t)

	gock.New("https://api.orb.test").
		Post("/v1/customers").
		MatchHeader("Authorization", "Bearer test-key").
		JSON(map[string]any{
			"external_customer_id": "acct-1",
			"name":                 "Customer acct-1",
			"email":                "acct-1@example.com",
		}).
		Reply(201).
		JSON(map[string]any{
			"id":                   "cus_123",
			"external_customer_id": "acct-1",
			"name":                 "Customer acct-1",
			"email":                "acct-1@example.com",
		})

	customer, err := c.CreateCustomer(context.Background(), orbdomain.CreateCustomerRequest{
		ExternalCustomerID: "acct-1",
		Name:               "Customer acct-1",
		Email:              "acct-1@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "cus_123", customer.ID)
	assert.True(t, gock.IsDone())
}

func TestCreateCustomer_PlatformError(t *testing.T) {
	c := newTestClient(t)

	gock.New("https://api.orb.test").
		Post("/v1/customers").
		Reply(400).
		JSON(map[string]any{
			"status":            400,
			"title":             "Invalid request",
			"detail":            "email is not valid",
			"validation_errors": []string{"email must contain @"},
		})

	_, err := c.CreateCustomer(context.Background(), orbdomain.CreateCustomerRequest{
		Name:  "Customer acct-1",
		Email: "not-an-email",
	})

	var orbErr *orbdomain.Error
	require.ErrorAs(t, err, &orbErr)
	assert.Equal(t, 400, orbErr.Status)
	assert.Contains(t, orbErr.Error(), "email is not valid")
	assert.Contains(t, orbErr.Error(), "email must contain @")
}

func TestCreateCustomer_RejectsBlankFields(t *testing.T) {
	c := newTestClient(t)

	_, err := c.CreateCustomer(context.Background(), orbdomain.CreateCustomerRequest{Email: " "})
	assert.ErrorIs(t, err, orbdomain.ErrInvalidCustomer)
}

func TestCreateBackfill(t *testing.T) {
	c := newTestClient(t)

	gock.New("https://api.orb.test").
		Post("/v1/events/backfills").
		JSON(map[string]any{
			"timeframe_start":         "2024-01-01T00:00:00Z",
			"timeframe_end":           "2024-01-11T00:00:00Z",
			"replace_existing_events": true,
		}).
		Reply(201).
		JSON(map[string]any{"id": "bf_42", "status": "pending"})

	backfill, err := c.CreateBackfill(context.Background(), orbdomain.CreateBackfillRequest{
		TimeframeStart:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		TimeframeEnd:          time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
		ReplaceExistingEvents: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "bf_42", backfill.ID)
	assert.True(t, gock.IsDone())
}

func TestCreateBackfill_InvalidTimeframe(t *testing.T) {
	c := newTestClient(t)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := c.CreateBackfill(context.Background(), orbdomain.CreateBackfillRequest{
		TimeframeStart: start,
		TimeframeEnd:   start,
	})
	assert.ErrorIs(t, err, orbdomain.ErrInvalidTimeframe)
}

func TestIngestEvents_DebugResponse(t *testing.T) {
	c := newTestClient(t)

	gock.New("https://api.orb.test").
		Post("/v1/ingest").
		MatchParam("debug", "true").
		MatchParam("backfill_id", "bf_42").
		Reply(200).
		JSON(map[string]any{
			"validation_failed": []map[string]any{
				{"idempotency_key": "event_2", "validation_errors": []string{"customer not found"}},
			},
			"debug": map[string]any{
				"ingested":  []string{"event_0"},
				"duplicate": []string{"event_1"},
			},
		})

	resp, err := c.IngestEvents(context.Background(), orbdomain.IngestRequest{
		Events: []orbdomain.Event{
			{IdempotencyKey: "event_0", CustomerID: "cus_1", EventName: "ingest_event", Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		BackfillID: "bf_42",
		Debug:      true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"event_0"}, resp.Ingested)
	assert.Equal(t, []string{"event_1"}, resp.Duplicate)
	require.Len(t, resp.ValidationFailed, 1)
	assert.Equal(t, "event_2", resp.ValidationFailed[0].IdempotencyKey)
}

func TestIngestEvents_Empty(t *testing.T) {
	c := newTestClient(t)

	_, err := c.IngestEvents(context.Background(), orbdomain.IngestRequest{})
	assert.ErrorIs(t, err, orbdomain.ErrEmptyIngest)
}

func TestListCustomers_Pagination(t *testing.T) {
	c := newTestClient(t)

	gock.New("https://api.orb.test").
		Get("/v1/customers").
		MatchParam("limit", "2").
		Reply(200).
		JSON(map[string]any{
			"data": []map[string]any{
				{"id": "cus_1", "external_customer_id": "acct-1"},
				{"id": "cus_2", "external_customer_id": "acct-2"},
			},
			"pagination_metadata": map[string]any{"has_more": true, "next_cursor": "abc"},
		})

	resp, err := c.ListCustomers(context.Background(), orbdomain.ListCustomersRequest{Limit: 2})
	require.NoError(t, err)

	assert.Len(t, resp.Customers, 2)
	assert.True(t, resp.HasMore)
	assert.Equal(t, "abc", resp.NextCursor)
}

func TestDecodeError_NonJSONBody(t *testing.T) {
	err := decodeError(502, []byte("bad gateway"))

	var orbErr *orbdomain.Error
	require.ErrorAs(t, err, &orbErr)
	assert.Equal(t, 502, orbErr.Status)
	assert.Contains(t, orbErr.Error(), "bad gateway")
}
