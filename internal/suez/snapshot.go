package suez

import (
	"time"
)

// Epsilon separates a real reading from the zero the portal publishes
// for days it has no data for yet.
const Epsilon = 1e-6

// Reading is one day of a month page: the day's consumption and the meter total, in m³
type Reading struct {
	Delta float64 `json:"delta"`
	Total float64 `json:"total"`
}

// HistoryEntry is one month of the yearly history, this year against last year
type HistoryEntry struct {
	ThisYear float64 `json:"this_year"`
	LastYear float64 `json:"last_year"`
}

// Snapshot is the result of one Update. It is built whole and never
// patched afterwards.
type Snapshot struct {
	Success  bool `json:"success"`
	Uptodate bool `json:"uptodate"`

	Last      Reading            `json:"last"`
	ThisMonth map[string]Reading `json:"this_month"`
	PrevMonth map[string]Reading `json:"prev_month"`

	History         map[string]HistoryEntry `json:"history"`
	ThisYearOverall float64                 `json:"this_year_overall"`
	LastYearOverall float64                 `json:"last_year_overall"`
	HighestMonthly  float64                 `json:"highest_monthly"`

	LastKnown float64 `json:"last_known"`

	Attribution string    `json:"attribution"`
	CounterID   string    `json:"counter_id"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// pages holds the raw payloads an Update fetched
type pages struct {
	today     []any
	yesterday []any
	prevMonth []any
	history   []any
}

// assemble derives the snapshot fields from raw pages, validating every
// positional read. The first failure aborts with the offending field.
func assemble(p pages, yesterday time.Time) (*Snapshot, error) {
	snap := &Snapshot{}
	var err error

	if p.yesterday == nil {
		// today's page was unavailable and yesterday lives on it
		snap.Last = Reading{}
	} else if snap.Last, err = readingAt(p.yesterday, yesterday.Day()-1, "yesterday"); err != nil {
		return nil, err
	}

	if snap.ThisMonth, err = dailyReadings(p.today, "this_month"); err != nil {
		return nil, err
	}
	if snap.PrevMonth, err = dailyReadings(p.prevMonth, "prev_month"); err != nil {
		return nil, err
	}
	if err = assembleHistory(snap, p.history); err != nil {
		return nil, err
	}

	snap.Success = true
	snap.Uptodate = snap.Last.Delta > Epsilon
	return snap, nil
}

func readingAt(payload []any, i int, field string) (Reading, error) {
	r, err := row(payload, i, 3, field)
	if err != nil {
		return Reading{}, err
	}
	return reading(r, field)
}

func reading(r []any, field string) (Reading, error) {
	delta, err := number(r[1], field)
	if err != nil {
		return Reading{}, err
	}
	total, err := number(r[2], field)
	if err != nil {
		return Reading{}, err
	}
	return Reading{Delta: delta, Total: total}, nil
}

// dailyReadings maps day label (row[0]) to the row's reading
func dailyReadings(payload []any, field string) (map[string]Reading, error) {
	out := make(map[string]Reading, len(payload))
	for i := range payload {
		r, err := row(payload, i, 3, field)
		if err != nil {
			return nil, err
		}
		label, err := text(r[0], field)
		if err != nil {
			return nil, err
		}
		if out[label], err = reading(r, field); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// assembleHistory reads the yearly history: monthly rows keyed by row[3]
// followed by this year's total, last year's total and the highest month.
func assembleHistory(snap *Snapshot, payload []any) error {
	n := len(payload)
	scalars := []struct {
		field  string
		offset int
		dst    *float64
	}{
		{"highest_monthly", 1, &snap.HighestMonthly},
		{"last_year_overall", 2, &snap.LastYearOverall},
		{"this_year_overall", 3, &snap.ThisYearOverall},
	}
	for _, sc := range scalars {
		if n < sc.offset {
			return malformed(sc.field, "history has only %d elements", n)
		}
		v, err := number(payload[n-sc.offset], sc.field)
		if err != nil {
			return err
		}
		*sc.dst = v
	}

	months := payload[:n-3]
	snap.History = make(map[string]HistoryEntry, len(months))
	for i := range months {
		r, err := row(months, i, 4, "history")
		if err != nil {
			return err
		}
		label, err := text(r[3], "history")
		if err != nil {
			return err
		}
		thisYear, err := number(r[1], "history")
		if err != nil {
			return err
		}
		lastYear, err := number(r[2], "history")
		if err != nil {
			return err
		}
		snap.History[label] = HistoryEntry{ThisYear: thisYear, LastYear: lastYear}
	}
	return nil
}
