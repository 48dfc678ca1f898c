package collector

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zgpcy/toutsurmoneau-exporter/internal/clock"
	"github.com/zgpcy/toutsurmoneau-exporter/internal/config"
	"github.com/zgpcy/toutsurmoneau-exporter/internal/logger"
	"github.com/zgpcy/toutsurmoneau-exporter/internal/suez"
	"github.com/zgpcy/toutsurmoneau-exporter/internal/timezone"
	"github.com/zgpcy/toutsurmoneau-exporter/internal/version"
)

// RetryInitialInterval is the first retry delay after a failed poll
const RetryInitialInterval = time.Minute

// Updater fetches a fresh snapshot. *suez.Client implements it.
type Updater interface {
	Update(ctx context.Context) (*suez.Snapshot, error)
}

// WaterCollector implements prometheus.Collector for water consumption metrics
type WaterCollector struct {
	updater Updater
	cfg     *config.Config
	logger  *logger.Logger
	clock   clock.Clock // Time provider for testing
	retry   *backoff.ExponentialBackOff

	// Metrics
	sensorMetric         *prometheus.Desc
	dailyMetric          *prometheus.Desc
	monthlyMetric        *prometheus.Desc
	uptodateMetric       *prometheus.Desc
	upMetric             *prometheus.Desc
	scrapeDurationMetric *prometheus.Desc
	scrapeErrorsTotal    *prometheus.CounterVec
	lastScrapeTimeMetric *prometheus.Desc
	buildInfo            *prometheus.GaugeVec

	// State
	mu                 sync.RWMutex
	latest             *suez.Snapshot // last successful update
	held               *suez.Snapshot // last update with fresh data, source of sensor values
	lastError          error
	lastScrape         time.Time
	lastScrapeDuration time.Duration
	freshOn            time.Time // when held was fetched; polls are skipped for the rest of that day
	refreshStarted     atomic.Bool
	isReady            bool
}

// NewWaterCollector creates a new WaterCollector
func NewWaterCollector(updater Updater, cfg *config.Config, log *logger.Logger) *WaterCollector {
	scrapeErrorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suez_water_exporter_scrape_errors_total",
			Help: "Total number of failed portal updates since startup",
		},
		[]string{"provider", "reason"},
	)

	buildInfo := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "suez_water_exporter_build_info",
			Help: "Build version information",
		},
		[]string{"version", "git_commit", "build_date", "go_version"},
	)

	versionInfo := version.Info()
	buildInfo.With(prometheus.Labels{
		"version":    versionInfo["version"],
		"git_commit": versionInfo["git_commit"],
		"build_date": versionInfo["build_date"],
		"go_version": versionInfo["go_version"],
	}).Set(1)

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = RetryInitialInterval
	retry.MaxInterval = cfg.RefreshIntervalDuration()
	retry.MaxElapsedTime = 0 // never give up, the next poll is always scheduled
	retry.Reset()

	return &WaterCollector{
		updater: updater,
		cfg:     cfg,
		logger:  log,
		clock:   clock.RealClock{},
		retry:   retry,
		sensorMetric: prometheus.NewDesc(
			"suez_water_sensor_m3",
			"Water sensor value in cubic meters. Holds the last fresh reading when the portal has not published yesterday yet.",
			[]string{"counter_id", "sensor", "state_class"},
			nil,
		),
		dailyMetric: prometheus.NewDesc(
			"suez_water_daily_m3",
			"Daily consumption (kind=delta) and meter index (kind=total) in cubic meters for the current and previous month.",
			[]string{"counter_id", "period", "day", "kind"},
			nil,
		),
		monthlyMetric: prometheus.NewDesc(
			"suez_water_monthly_m3",
			"Monthly consumption in cubic meters from the yearly history, for this year and last year.",
			[]string{"counter_id", "month", "year"},
			nil,
		),
		uptodateMetric: prometheus.NewDesc(
			"suez_water_uptodate",
			"Whether the last update carried a real reading for yesterday (1) or a zero placeholder (0)",
			[]string{"counter_id"},
			nil,
		),
		upMetric: prometheus.NewDesc(
			"up",
			"Was the last portal update successful (1 = success, 0 = failure)",
			[]string{"provider"},
			nil,
		),
		scrapeDurationMetric: prometheus.NewDesc(
			"suez_water_exporter_scrape_duration_seconds",
			"Duration of the last portal update in seconds",
			[]string{"provider"},
			nil,
		),
		scrapeErrorsTotal: scrapeErrorsTotal,
		lastScrapeTimeMetric: prometheus.NewDesc(
			"suez_water_exporter_last_scrape_timestamp_seconds",
			"Unix timestamp of the last portal update attempt",
			[]string{"provider"},
			nil,
		),
		buildInfo: buildInfo,
	}
}

// Describe implements prometheus.Collector
func (c *WaterCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.sensorMetric
	ch <- c.dailyMetric
	ch <- c.monthlyMetric
	ch <- c.uptodateMetric
	ch <- c.upMetric
	ch <- c.scrapeDurationMetric
	c.scrapeErrorsTotal.Describe(ch)
	ch <- c.lastScrapeTimeMetric
	c.buildInfo.Describe(ch)
}

// Collect implements prometheus.Collector
func (c *WaterCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	providerName := c.cfg.Provider

	if c.held != nil {
		for _, s := range Sensors {
			ch <- prometheus.MustNewConstMetric(
				c.sensorMetric,
				prometheus.GaugeValue,
				s.Value(c.held),
				c.held.CounterID,
				s.Name,
				s.StateClass,
			)
		}
	}

	if c.latest != nil {
		counterID := c.latest.CounterID
		uptodate := 0.0
		if c.latest.Uptodate {
			uptodate = 1.0
		}
		ch <- prometheus.MustNewConstMetric(c.uptodateMetric, prometheus.GaugeValue, uptodate, counterID)

		if c.cfg.DailyMetricsEnabled() {
			c.collectDaily(ch, counterID, "this_month", c.latest.ThisMonth)
			c.collectDaily(ch, counterID, "prev_month", c.latest.PrevMonth)
			for month, entry := range c.latest.History {
				ch <- prometheus.MustNewConstMetric(c.monthlyMetric, prometheus.GaugeValue, entry.ThisYear, counterID, month, "this_year")
				ch <- prometheus.MustNewConstMetric(c.monthlyMetric, prometheus.GaugeValue, entry.LastYear, counterID, month, "last_year")
			}
		}
	}

	upValue := 0.0
	if c.lastError == nil && c.latest != nil {
		upValue = 1.0
	}
	ch <- prometheus.MustNewConstMetric(
		c.upMetric,
		prometheus.GaugeValue,
		upValue,
		providerName,
	)

	ch <- prometheus.MustNewConstMetric(
		c.scrapeDurationMetric,
		prometheus.GaugeValue,
		c.lastScrapeDuration.Seconds(),
		providerName,
	)

	c.scrapeErrorsTotal.Collect(ch)

	if !c.lastScrape.IsZero() {
		ch <- prometheus.MustNewConstMetric(
			c.lastScrapeTimeMetric,
			prometheus.GaugeValue,
			float64(c.lastScrape.Unix()),
			providerName,
		)
	}

	c.buildInfo.Collect(ch)
}

func (c *WaterCollector) collectDaily(ch chan<- prometheus.Metric, counterID, period string, days map[string]suez.Reading) {
	for day, r := range days {
		ch <- prometheus.MustNewConstMetric(c.dailyMetric, prometheus.GaugeValue, r.Delta, counterID, period, day, "delta")
		ch <- prometheus.MustNewConstMetric(c.dailyMetric, prometheus.GaugeValue, r.Total, counterID, period, day, "total")
	}
}

// StartBackgroundRefresh polls the portal now, then keeps polling in a goroutine.
// Uses atomic flag to prevent multiple refresh goroutines
func (c *WaterCollector) StartBackgroundRefresh(ctx context.Context) {
	if !c.refreshStarted.CompareAndSwap(false, true) {
		c.logger.Warn("Background refresh already started, skipping")
		return
	}

	delay := c.poll(ctx)

	go func() {
		defer c.refreshStarted.Store(false)
		timer := time.NewTimer(delay)
		defer timer.Stop()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Stopping background refresh")
				return
			case <-timer.C:
				timer.Reset(c.poll(ctx))
			}
		}
	}()
}

// poll runs one scheduled update unless today's fresh reading is already held,
// and returns the delay until the next poll.
func (c *WaterCollector) poll(ctx context.Context) time.Duration {
	interval := c.cfg.RefreshIntervalDuration()

	if c.hasFreshReadingToday() {
		c.logger.Debug("Fresh reading already held for today, skipping portal update")
		return interval
	}

	err := c.refresh(ctx)
	if err == nil {
		c.retry.Reset()
		return interval
	}

	if errors.Is(err, suez.ErrInvalidCredentials) || errors.Is(err, suez.ErrTokenNotFound) {
		// retrying sooner cannot fix these
		return interval
	}

	next := c.retry.NextBackOff()
	if next == backoff.Stop || next > interval {
		next = interval
	}
	c.logger.Info("Scheduling early retry", "retry_in_seconds", next.Seconds())
	return next
}

func (c *WaterCollector) hasFreshReadingToday() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.freshOn.IsZero() && timezone.SameDay(c.freshOn, c.clock.Now())
}

// refresh updates from the portal and stores the outcome
func (c *WaterCollector) refresh(ctx context.Context) error {
	providerName := c.cfg.Provider
	c.logger.Info("Refreshing water data", "provider", providerName)
	start := time.Now()

	snap, err := c.updater.Update(ctx)
	duration := time.Since(start)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastScrape = c.clock.Now()
	c.lastScrapeDuration = duration
	c.lastError = err

	if err != nil {
		c.scrapeErrorsTotal.With(prometheus.Labels{"provider": providerName, "reason": errorReason(err)}).Inc()
		c.logger.Error("Failed to refresh water data", "provider", providerName, "error", err)
		return err
	}

	c.latest = snap
	c.isReady = true
	if snap.Uptodate {
		c.held = snap
		c.freshOn = c.lastScrape
	} else {
		c.logger.Warn("Portal has not published yesterday's reading yet, sensors keep their previous value",
			"provider", providerName,
			"last_known", snap.LastKnown)
	}

	c.logger.Info("Successfully refreshed water data",
		"provider", providerName,
		"counter_id", snap.CounterID,
		"uptodate", snap.Uptodate,
		"duration_seconds", duration.Seconds())
	return nil
}

// errorReason buckets an update error for the errors counter
func errorReason(err error) string {
	var remote *suez.RemoteError
	var malformed *suez.MalformedResponseError
	var submit *suez.LoginSubmissionError
	switch {
	case errors.Is(err, suez.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, suez.ErrTokenNotFound):
		return "token_not_found"
	case errors.Is(err, suez.ErrCounterNotFound):
		return "counter_not_found"
	case errors.As(err, &submit):
		return "login_submission"
	case errors.As(err, &remote):
		return "remote_error"
	case errors.As(err, &malformed):
		return "malformed_response"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "transport"
	}
}

// IsReady returns true if the collector has successfully fetched data at least once
func (c *WaterCollector) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isReady
}

// LastError returns the last error encountered during refresh
func (c *WaterCollector) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// LastScrapeTime returns the time of the last update attempt
func (c *WaterCollector) LastScrapeTime() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastScrape
}

// Snapshot returns the last successful snapshot, nil before the first one
func (c *WaterCollector) Snapshot() *suez.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest
}

// SensorReadings evaluates the sensor table against the held fresh snapshot
func (c *WaterCollector) SensorReadings() []SensorReading {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.held == nil {
		return nil
	}
	return ReadSensors(c.held)
}
