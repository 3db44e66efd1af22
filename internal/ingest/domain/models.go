package domain

import (
	"time"
)

// Row is one record of the billing transactions file. Index is the
// zero-based position of the record below the header.
type Row struct {
	Index         int
	AccountID     string
	Month         string
	TransactionID string
	AccountType   string
	BankID        string
	Standard      string
	Sameday       string
}

// Table is the parsed input file.
type Table struct {
	Columns []string
	Rows    []Row
}

// BackfillWindow is a bounded historical time range. The platform caps
// each backfill job at ten days, so a longer range is split into
// consecutive windows.
type BackfillWindow struct {
	Start time.Time
	End   time.Time
}

func (w BackfillWindow) Days() float64 {
	return w.End.Sub(w.Start).Hours() / 24
}

// RunSummary is the final tally of one ingestion run.
type RunSummary struct {
	RowsRead         int
	RowsSkipped      int
	CustomersCreated int
	CustomersReused  int
	EventsPrepared   int
	EventsIngested   int
	EventsDuplicate  int
	EventsFailed     int
	BackfillsCreated int
	BackfillsFailed  int
	Elapsed          time.Duration
}
