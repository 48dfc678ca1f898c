package suez

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	consumptionPath = "/mon-compte-en-ligne/historique-de-consommation-tr"
	dataPath        = "/mon-compte-en-ligne/statJData"
	historyPath     = "/mon-compte-en-ligne/statMData"

	errorMarker         = "ERR"
	unknownRemoteReason = "Unknown error"
)

var counterPattern = regexp.MustCompile(`exporter-consommation/month/([0-9]+)`)

// fetchJSON GETs endpoint[/tail] and decodes a JSON array. The error
// envelope is detected here, before any caller indexes into the payload.
func (s *session) fetchJSON(ctx context.Context, tail, endpoint string) ([]any, error) {
	path := endpoint
	if tail != "" {
		path = endpoint + "/" + tail
	}

	resp, err := s.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}

	var payload any
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		if resp.IsError() {
			return nil, &StatusError{Endpoint: path, StatusCode: resp.StatusCode()}
		}
		return nil, &MalformedResponseError{Field: path, Err: err}
	}

	rows, ok := payload.([]any)
	if !ok {
		return nil, malformed(path, "expected a JSON array, got %T", payload)
	}
	if len(rows) > 0 && fmt.Sprint(rows[0]) == errorMarker {
		message := unknownRemoteReason
		if len(rows) > 1 {
			message = fmt.Sprint(rows[1])
		}
		return nil, &RemoteError{Endpoint: path, Message: message}
	}
	if resp.IsError() {
		return nil, &StatusError{Endpoint: path, StatusCode: resp.StatusCode()}
	}

	s.log.Debug("Loaded portal data", "path", path, "rows", len(rows))
	return rows, nil
}

// fetchMonth loads the daily rows of the month containing day
func (s *session) fetchMonth(ctx context.Context, day time.Time, counterID string) ([]any, error) {
	return s.fetchJSON(ctx, fmt.Sprintf("%d/%d/%s", day.Year(), int(day.Month()), counterID), dataPath)
}

// fetchHistory loads the monthly history with its three trailing totals
func (s *session) fetchHistory(ctx context.Context, counterID string) ([]any, error) {
	return s.fetchJSON(ctx, counterID, historyPath)
}

// discoverCounterID finds the meter id in the export links of the consumption page
func (s *session) discoverCounterID(ctx context.Context) (string, error) {
	resp, err := s.http.R().SetContext(ctx).Get(consumptionPath)
	if err != nil {
		return "", fmt.Errorf("failed to load consumption page: %w", err)
	}

	var counterID string
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err == nil {
		doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			if groups := counterPattern.FindStringSubmatch(href); groups != nil {
				counterID = groups[1]
				return false
			}
			return true
		})
	}
	if counterID != "" {
		return counterID, nil
	}

	// the link is sometimes only built by an inline script
	if groups := counterPattern.FindSubmatch(resp.Body()); groups != nil {
		return string(groups[1]), nil
	}
	return "", ErrCounterNotFound
}

func number(v any, field string) (float64, error) {
	f, ok := v.(float64)
	if !ok {
		return 0, malformed(field, "%v was expected to be a number, got %T", v, v)
	}
	return f, nil
}

func text(v any, field string) (string, error) {
	str, ok := v.(string)
	if !ok {
		return "", malformed(field, "%v was expected to be a string, got %T", v, v)
	}
	return str, nil
}

// row returns payload[i] as an array of at least width elements
func row(payload []any, i, width int, field string) ([]any, error) {
	if i < 0 || i >= len(payload) {
		return nil, malformed(field, "no row %d in %d rows", i, len(payload))
	}
	r, ok := payload[i].([]any)
	if !ok {
		return nil, malformed(field, "row %d was expected to be an array, got %T", i, payload[i])
	}
	if len(r) < width {
		return nil, malformed(field, "row %d has %d columns, want at least %d", i, len(r), width)
	}
	return r, nil
}
