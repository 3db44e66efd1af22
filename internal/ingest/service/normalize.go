package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	ingestdomain "github.com/smallbiznis/orbload/internal/ingest/domain"
	orbdomain "github.com/smallbiznis/orbload/internal/orb/domain"
)

const monthLayout = "01-2006"

// normalizeRow converts one source row into a usage event. The month
// column becomes the first instant of that month in UTC; the amount
// columns are cleaned of thousands separators and default to zero when
// unparsable. Structural problems (missing ids, bad month) fail the row.
func normalizeRow(row ingestdomain.Row, eventName, customerID string) (orbdomain.Event, error) {
	if row.AccountID == "" {
		return orbdomain.Event{}, &ingestdomain.RowError{
			Row: row.Index + 1,
			Err: fmt.Errorf("%w: account_id", ingestdomain.ErrMissingField),
		}
	}
	if row.TransactionID == "" {
		return orbdomain.Event{}, &ingestdomain.RowError{
			Row: row.Index + 1,
			Err: fmt.Errorf("%w: transaction_id", ingestdomain.ErrMissingField),
		}
	}

	timestamp, err := parseMonth(row.Month)
	if err != nil {
		return orbdomain.Event{}, &ingestdomain.RowError{Row: row.Index + 1, Err: err}
	}

	standard := cleanAmount(row.Standard)
	sameday := cleanAmount(row.Sameday)

	return orbdomain.Event{
		IdempotencyKey: fmt.Sprintf("event_%d", row.Index),
		CustomerID:     customerID,
		EventName:      eventName,
		Timestamp:      timestamp,
		Properties: map[string]any{
			"account_id":     row.AccountID,
			"month":          row.Month,
			"transaction_id": row.TransactionID,
			"account_type":   row.AccountType,
			"bank_id":        row.BankID,
			"standard":       standard,
			"sameday":        sameday,
		},
	}, nil
}

// parseMonth turns MM-YYYY into the first instant of that month in UTC.
func parseMonth(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation(monthLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not MM-YYYY", ingestdomain.ErrBadMonth, value)
	}
	return parsed, nil
}

// cleanAmount strips thousands separators and parses a decimal amount,
// defaulting to zero for blank or unparsable values.
func cleanAmount(value string) float64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if cleaned == "" {
		return 0
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0
	}
	return amount.InexactFloat64()
}
