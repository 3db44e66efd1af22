package service

import (
	"time"

	ingestdomain "github.com/smallbiznis/orbload/internal/ingest/domain"
	orbdomain "github.com/smallbiznis/orbload/internal/orb/domain"
)

// maxBackfillWindow is the platform's per-job timeframe limit.
const maxBackfillWindow = 10 * 24 * time.Hour

// computeBackfillWindows partitions the observed event range into
// consecutive windows the platform will accept: chronological, no gaps,
// no overlap, each at most ten days, the last ending exactly at the
// latest timestamp. When every event lands on the same instant the
// range is widened to cover that day, since the platform rejects an
// empty timeframe.
func computeBackfillWindows(events []orbdomain.Event) []ingestdomain.BackfillWindow {
	if len(events) == 0 {
		return nil
	}

	earliest := events[0].Timestamp
	latest := events[0].Timestamp
	for _, event := range events[1:] {
		if event.Timestamp.Before(earliest) {
			earliest = event.Timestamp
		}
		if event.Timestamp.After(latest) {
			latest = event.Timestamp
		}
	}

	earliest = earliest.UTC()
	latest = latest.UTC()
	if !latest.After(earliest) {
		latest = earliest.Add(24 * time.Hour)
	}

	var windows []ingestdomain.BackfillWindow
	for start := earliest; start.Before(latest); {
		end := start.Add(maxBackfillWindow)
		if end.After(latest) {
			end = latest
		}
		windows = append(windows, ingestdomain.BackfillWindow{Start: start, End: end})
		start = end
	}
	return windows
}
