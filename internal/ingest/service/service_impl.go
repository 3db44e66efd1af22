package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/smallbiznis/orbload/internal/cache"
	"github.com/smallbiznis/orbload/internal/clock"
	"github.com/smallbiznis/orbload/internal/config"
	ingestdomain "github.com/smallbiznis/orbload/internal/ingest/domain"
	orbdomain "github.com/smallbiznis/orbload/internal/orb/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Loader config.LoaderConfig
	Log    *zap.Logger
	Clock  clock.Clock
	Source ingestdomain.RowSource
	Orb    orbdomain.Client
	Cache  cache.CustomerCache
}

// Service drives one CSV-to-platform ingestion run.
type Service struct {
	loader config.LoaderConfig
	log    *zap.Logger
	clock  clock.Clock
	source ingestdomain.RowSource
	orb    orbdomain.Client
	cache  cache.CustomerCache
}

func New(p Params) ingestdomain.Service {
	return &Service{
		loader: p.Loader,
		log:    p.Log.Named("ingest.service"),
		clock:  p.Clock,
		source: p.Source,
		orb:    p.Orb,
		cache:  p.Cache,
	}
}

// Run executes the linear pipeline: load rows, resolve customers,
// normalize rows, compute backfill windows, create backfills, submit
// events, report. Row, window and event failures are isolated; only an
// unreadable file or a missing column aborts the run.
func (s *Service) Run(ctx context.Context, req ingestdomain.RunRequest) (ingestdomain.RunSummary, error) {
	started := s.clock.Now()
	log := s.log.With(zap.String("run_id", uuid.NewString()))

	var summary ingestdomain.RunSummary

	table, err := s.source.Read(req.FilePath)
	if err != nil {
		log.Error("failed to read input file", zap.String("file", req.FilePath), zap.Error(err))
		return summary, err
	}
	summary.RowsRead = len(table.Rows)
	log.Info("loaded input file",
		zap.String("file", req.FilePath),
		zap.Int("rows", len(table.Rows)),
		zap.Int("columns", len(table.Columns)),
	)

	if req.WarmCache && !req.DryRun {
		if err := s.warmCache(ctx, log); err != nil {
			log.Warn("customer cache warm-up failed", zap.Error(err))
		}
	}

	events := s.buildEvents(ctx, log, table.Rows, req.DryRun, &summary)
	summary.EventsPrepared = len(events)

	if len(events) == 0 {
		log.Info("no events were prepared for ingestion")
		summary.Elapsed = s.clock.Now().Sub(started)
		s.report(log, summary)
		return summary, nil
	}

	backfillID := s.createBackfills(ctx, log, events, req.DryRun, &summary)
	s.submitEvents(ctx, log, events, backfillID, req.DryRun, &summary)

	summary.Elapsed = s.clock.Now().Sub(started)
	s.report(log, summary)
	return summary, nil
}

// buildEvents resolves each row's customer and normalizes the row,
// skipping rows individually on failure. Customer resolution happens
// before event construction so an event never references an unknown
// customer.
func (s *Service) buildEvents(
	ctx context.Context,
	log *zap.Logger,
	rows []ingestdomain.Row,
	dryRun bool,
	summary *ingestdomain.RunSummary,
) []orbdomain.Event {
	events := make([]orbdomain.Event, 0, len(rows))
	for _, row := range rows {
		if row.AccountID == "" {
			summary.RowsSkipped++
			log.Warn("skipping row",
				zap.Int("row", row.Index+1),
				zap.Error(&ingestdomain.RowError{
					Row: row.Index + 1,
					Err: fmt.Errorf("%w: account_id", ingestdomain.ErrMissingField),
				}),
			)
			continue
		}

		customerID, err := s.resolveCustomer(ctx, row.AccountID, dryRun, summary)
		if err != nil {
			summary.RowsSkipped++
			log.Warn("skipping row: unable to create customer",
				zap.Int("row", row.Index+1),
				zap.String("account_id", row.AccountID),
				zap.Error(err),
			)
			continue
		}

		event, err := normalizeRow(row, s.loader.EventName, customerID)
		if err != nil {
			summary.RowsSkipped++
			log.Warn("skipping row", zap.Int("row", row.Index+1), zap.Error(err))
			continue
		}
		events = append(events, event)
	}
	return events
}

// resolveCustomer returns the platform customer id for an account,
// creating the customer on first sight. The cache is insert-only and
// never written on failure.
func (s *Service) resolveCustomer(
	ctx context.Context,
	accountID string,
	dryRun bool,
	summary *ingestdomain.RunSummary,
) (string, error) {
	if id, ok := s.cache.Get(accountID); ok {
		summary.CustomersReused++
		return id, nil
	}

	if dryRun {
		id := "dry-run:" + accountID
		s.cache.Set(accountID, id)
		summary.CustomersCreated++
		return id, nil
	}

	customer, err := s.orb.CreateCustomer(ctx, orbdomain.CreateCustomerRequest{
		ExternalCustomerID: accountID,
		Name:               "Customer " + accountID,
		Email:              accountID + "@" + s.loader.CustomerDomain,
	})
	if err != nil {
		return "", err
	}

	s.cache.Set(accountID, customer.ID)
	summary.CustomersCreated++
	return customer.ID, nil
}

// createBackfills opens one backfill job per computed window, in order.
// A failed window is reported and does not stop later windows; events
// are submitted regardless. Returns the first created backfill id.
func (s *Service) createBackfills(
	ctx context.Context,
	log *zap.Logger,
	events []orbdomain.Event,
	dryRun bool,
	summary *ingestdomain.RunSummary,
) string {
	windows := computeBackfillWindows(events)

	var firstID string
	for _, window := range windows {
		if dryRun {
			summary.BackfillsCreated++
			log.Info("dry run: would create backfill",
				zap.Time("timeframe_start", window.Start),
				zap.Time("timeframe_end", window.End),
			)
			continue
		}

		backfill, err := s.orb.CreateBackfill(ctx, orbdomain.CreateBackfillRequest{
			TimeframeStart:        window.Start,
			TimeframeEnd:          window.End,
			ReplaceExistingEvents: s.loader.ReplaceExisting,
		})
		if err != nil {
			summary.BackfillsFailed++
			log.Error("failed to create backfill",
				zap.Time("timeframe_start", window.Start),
				zap.Time("timeframe_end", window.End),
				zap.Error(err),
			)
			continue
		}

		summary.BackfillsCreated++
		log.Info("backfill created",
			zap.String("backfill_id", backfill.ID),
			zap.Time("timeframe_start", window.Start),
			zap.Time("timeframe_end", window.End),
		)
		if firstID == "" {
			firstID = backfill.ID
		}
	}
	return firstID
}

// submitEvents sends the prepared events in batches with debug response
// handling enabled. Per-event validation failures are reported
// individually and do not block the rest of the batch.
func (s *Service) submitEvents(
	ctx context.Context,
	log *zap.Logger,
	events []orbdomain.Event,
	backfillID string,
	dryRun bool,
	summary *ingestdomain.RunSummary,
) {
	if dryRun {
		log.Info("dry run: skipping event submission", zap.Int("events", len(events)))
		return
	}

	batchSize := s.loader.IngestBatchSize
	for start := 0; start < len(events); start += batchSize {
		end := start + batchSize
		if end > len(events) {
			end = len(events)
		}
		batch := events[start:end]

		resp, err := s.orb.IngestEvents(ctx, orbdomain.IngestRequest{
			Events:     batch,
			BackfillID: backfillID,
			Debug:      true,
		})
		if err != nil {
			summary.EventsFailed += len(batch)
			log.Error("failed to ingest events", zap.Int("events", len(batch)), zap.Error(err))
			continue
		}

		summary.EventsIngested += len(resp.Ingested)
		summary.EventsDuplicate += len(resp.Duplicate)
		summary.EventsFailed += len(resp.ValidationFailed)

		for _, failure := range resp.ValidationFailed {
			log.Warn("event rejected by platform",
				zap.String("idempotency_key", failure.IdempotencyKey),
				zap.String("reason", strings.Join(failure.ValidationErrors, "; ")),
			)
		}
	}
}

// warmCache pages through the platform's existing customers and seeds
// the cache by external account id, so re-runs do not create duplicates.
func (s *Service) warmCache(ctx context.Context, log *zap.Logger) error {
	seeded := 0
	cursor := ""
	for {
		resp, err := s.orb.ListCustomers(ctx, orbdomain.ListCustomersRequest{Cursor: cursor, Limit: 500})
		if err != nil {
			return err
		}
		for _, customer := range resp.Customers {
			if customer.ExternalCustomerID == "" {
				continue
			}
			s.cache.Set(customer.ExternalCustomerID, customer.ID)
			seeded++
		}
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	log.Info("customer cache warmed", zap.Int("customers", seeded))
	return nil
}

func (s *Service) report(log *zap.Logger, summary ingestdomain.RunSummary) {
	log.Info("run complete",
		zap.Int("rows_read", summary.RowsRead),
		zap.Int("rows_skipped", summary.RowsSkipped),
		zap.Int("customers_created", summary.CustomersCreated),
		zap.Int("customers_reused", summary.CustomersReused),
		zap.Int("events_prepared", summary.EventsPrepared),
		zap.Int("events_ingested", summary.EventsIngested),
		zap.Int("events_duplicate", summary.EventsDuplicate),
		zap.Int("events_failed", summary.EventsFailed),
		zap.Int("backfills_created", summary.BackfillsCreated),
		zap.Int("backfills_failed", summary.BackfillsFailed),
		zap.Duration("elapsed", summary.Elapsed),
	)
}
