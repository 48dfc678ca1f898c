package commands

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/zgpcy/toutsurmoneau-exporter/internal/suez"
)

func newShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Fetches and prints the consumption data of the counter.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, opts)
		},
	}
}

func runShow(cmd *cobra.Command, opts *globalOptions) error {
	client, _, err := opts.newClient(cmd)
	if err != nil {
		return err
	}

	snap, err := client.Update(cmd.Context())
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	renderSnapshot(cmd.OutOrStdout(), snap)
	return nil
}

func m3(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64) + " m³"
}

func renderSnapshot(w io.Writer, snap *suez.Snapshot) {
	uptodate := "no"
	if snap.Uptodate {
		uptodate = "yes"
	}

	t := newTable(w)
	t.SetTitle("Counter %s", snap.CounterID)
	t.AppendRows([]table.Row{
		{"Up to date", uptodate},
		{"Yesterday", m3(snap.Last.Delta)},
		{"Meter index", m3(snap.Last.Total)},
		{"Last known index", m3(snap.LastKnown)},
		{"This year", m3(snap.ThisYearOverall)},
		{"Last year", m3(snap.LastYearOverall)},
		{"Highest month", m3(snap.HighestMonthly)},
	})
	t.Render()

	renderDays(w, "This month", snap.ThisMonth)
	renderDays(w, "Previous month", snap.PrevMonth)

	if len(snap.History) > 0 {
		h := newTable(w)
		h.SetTitle("History")
		h.AppendHeader(table.Row{"Month", "This year", "Last year"})
		for _, month := range sortedKeys(snap.History) {
			entry := snap.History[month]
			h.AppendRow(table.Row{month, m3(entry.ThisYear), m3(entry.LastYear)})
		}
		h.Render()
	}

	fmt.Fprintln(w, snap.Attribution)
}

func renderDays(w io.Writer, title string, days map[string]suez.Reading) {
	if len(days) == 0 {
		return
	}
	t := newTable(w)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Day", "Consumption", "Index"})
	for _, day := range sortedDays(days) {
		r := days[day]
		t.AppendRow(table.Row{day, m3(r.Delta), m3(r.Total)})
	}
	t.Render()
}

// sortedDays orders day labels numerically, non numeric labels last
func sortedDays(days map[string]suez.Reading) []string {
	keys := sortedKeys(days)
	sort.SliceStable(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		default:
			return errA == nil && errB != nil
		}
	})
	return keys
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
