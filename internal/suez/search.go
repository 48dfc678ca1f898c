package suez

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// maxSearchDays bounds the recovery search. It is a day count, not a
// month count: near a year start it may walk three month pages.
const maxSearchDays = 60

// lastKnown walks back from today, one calendar day per step, and returns
// the first cumulative total above Epsilon. Each month page is fetched at
// most once. A month answering with the error envelope has no readings,
// and so has a day beyond the end of its page.
func (s *session) lastKnown(ctx context.Context, today time.Time, counterID string) (float64, error) {
	pages := make(map[string][]any)
	day := today

	for step := 0; step < maxSearchDays; step++ {
		key := fmt.Sprintf("%d/%d", day.Year(), int(day.Month()))
		page, fetched := pages[key]
		if !fetched {
			var err error
			page, err = s.fetchMonth(ctx, day, counterID)
			var remote *RemoteError
			if errors.As(err, &remote) {
				s.log.Debug("Month page unavailable during search", "month", key, "reason", remote.Message)
				page = nil
			} else if err != nil {
				return 0, err
			}
			pages[key] = page
		}

		if idx := day.Day() - 1; idx < len(page) {
			r, err := row(page, idx, 3, "last_known")
			if err != nil {
				return 0, err
			}
			total, err := number(r[2], "last_known")
			if err != nil {
				return 0, err
			}
			if total > Epsilon {
				s.log.Debug("Found last known total", "day", day.Format(time.DateOnly), "total", total, "steps", step+1)
				return total, nil
			}
		}

		day = day.AddDate(0, 0, -1)
	}
	return 0, ErrLastKnownNotFound
}
