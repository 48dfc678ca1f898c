package suez

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zgpcy/toutsurmoneau-exporter/internal/clock"
	"github.com/zgpcy/toutsurmoneau-exporter/internal/logger"
	"github.com/zgpcy/toutsurmoneau-exporter/internal/provider"
	"github.com/zgpcy/toutsurmoneau-exporter/internal/telemetry"
	"github.com/zgpcy/toutsurmoneau-exporter/internal/timezone"
)

// DefaultTimeout bounds each portal request when Options.Timeout is zero
const DefaultTimeout = 30 * time.Second

const tracerName = "github.com/zgpcy/toutsurmoneau-exporter/internal/suez"

// Options configures a Client
type Options struct {
	Username string
	Password string

	// CounterID is discovered from the portal on first update when empty
	CounterID string

	// Provider is a provider registry name, empty selects the default
	Provider string

	// BaseURL overrides the registry URL of Provider
	BaseURL string

	// Timeout applies to each HTTP request
	Timeout time.Duration

	Logger *logger.Logger
	Clock  clock.Clock
	Tracer trace.Tracer
}

// Client reads water consumption from a portal account.
//
// Calls on one Client must not overlap: the scheduler driving Update is
// expected to serialize them. Separate Clients share nothing.
type Client struct {
	username string
	password string
	portal   provider.Portal
	baseURL  *url.URL
	timeout  time.Duration

	log    *logger.Logger
	clock  clock.Clock
	tracer trace.Tracer

	counterID string
	snapshot  Snapshot
}

// NewClient validates opts and resolves the portal
func NewClient(opts Options) (*Client, error) {
	portal, err := provider.Lookup(opts.Provider)
	if err != nil {
		return nil, err
	}

	base := portal.BaseURL
	if opts.BaseURL != "" {
		base = strings.TrimRight(opts.BaseURL, "/")
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid portal URL %q: %w", base, err)
	}
	portal.BaseURL = base

	c := &Client{
		username:  opts.Username,
		password:  opts.Password,
		portal:    portal,
		baseURL:   baseURL,
		timeout:   opts.Timeout,
		log:       opts.Logger,
		clock:     opts.Clock,
		tracer:    opts.Tracer,
		counterID: opts.CounterID,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.log == nil {
		c.log = logger.Discard()
	}
	if c.clock == nil {
		c.clock = clock.RealClock{}
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	c.log = c.log.WithFields("provider", string(portal.Name))

	return c, nil
}

// Update logs in, fetches every page and replaces the stored snapshot.
// On failure the stored snapshot is reset and the error returned.
func (c *Client) Update(ctx context.Context) (*Snapshot, error) {
	c.snapshot = Snapshot{}

	var snap *Snapshot
	err := c.withSession(ctx, func(ctx context.Context, s *session) error {
		var err error
		snap, err = c.update(ctx, s)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.snapshot = *snap
	return snap, nil
}

func (c *Client) update(ctx context.Context, s *session) (snap *Snapshot, err error) {
	ctx, end := telemetry.StartStep(ctx, c.tracer, "suez.update")
	defer end(&err)

	if err := c.step(ctx, "login", func(ctx context.Context) error {
		return s.login(ctx, c.username, c.password)
	}); err != nil {
		return nil, err
	}

	if c.counterID == "" {
		if err := c.step(ctx, "discover_counter", func(ctx context.Context) error {
			id, err := s.discoverCounterID(ctx)
			if err != nil {
				return err
			}
			c.log.Info("Discovered counter id", "counter_id", id)
			c.counterID = id
			return nil
		}); err != nil {
			return nil, err
		}
	}
	counterID := c.counterID

	now := timezone.In(c.clock.Now())
	yesterday := now.AddDate(0, 0, -1)
	prevMonth := time.Date(now.Year(), now.Month(), 1, 12, 0, 0, 0, timezone.Location).AddDate(0, 0, -1)

	var lastKnown float64
	_ = c.step(ctx, "last_known", func(ctx context.Context) error {
		var err error
		lastKnown, err = s.lastKnown(ctx, now, counterID)
		if err != nil {
			c.log.Warn("Recovery search failed, last known total set to 0", "step", "recovery_search", "error", err)
			lastKnown = 0
		}
		return err
	})

	var p pages
	if err := c.step(ctx, "fetch_pages", func(ctx context.Context) error {
		var err error
		p.today, err = s.fetchMonth(ctx, now, counterID)
		var remote *RemoteError
		if errors.As(err, &remote) {
			c.log.Warn("Today's data not available, continuing without it", "step", "today_fetch", "error", err)
			p.today = nil
		} else if err != nil {
			return err
		}

		if yesterday.Month() != now.Month() {
			if p.yesterday, err = s.fetchMonth(ctx, yesterday, counterID); err != nil {
				return err
			}
		} else {
			p.yesterday = p.today
			if p.yesterday == nil {
				c.log.Warn("Yesterday's reading unavailable, using zero", "step", "yesterday_row")
			}
		}

		if p.prevMonth, err = s.fetchMonth(ctx, prevMonth, counterID); err != nil {
			return err
		}
		p.history, err = s.fetchHistory(ctx, counterID)
		return err
	}); err != nil {
		return nil, err
	}

	snap, err = assemble(p, yesterday)
	if err != nil {
		return nil, err
	}
	snap.LastKnown = lastKnown
	snap.CounterID = counterID
	snap.FetchedAt = now
	snap.Attribution = c.Attribution()

	c.log.Info("Water data updated",
		"counter_id", counterID,
		"uptodate", snap.Uptodate,
		"yesterday_delta", snap.Last.Delta,
		"last_known", snap.LastKnown)
	return snap, nil
}

// step runs fn inside its own span
func (c *Client) step(ctx context.Context, name string, fn func(context.Context) error) (err error) {
	ctx, end := telemetry.StartStep(ctx, c.tracer, "suez."+name, attribute.String("counter_id", c.counterID))
	defer end(&err)
	return fn(ctx)
}

// CheckCredentials posts the login form and reports whether the portal
// answered with a session cookie. Client state is left untouched.
func (c *Client) CheckCredentials(ctx context.Context) (bool, error) {
	var ok bool
	err := c.withSession(ctx, func(ctx context.Context, s *session) error {
		var err error
		ok, err = s.checkCredentials(ctx, c.username, c.password)
		return err
	})
	return ok, err
}

// Snapshot returns the result of the last Update, zero if it failed
func (c *Client) Snapshot() Snapshot {
	return c.snapshot
}

// CounterID returns the configured or discovered counter id
func (c *Client) CounterID() string {
	return c.counterID
}

// Attribution names the portal the data comes from
func (c *Client) Attribution() string {
	return fmt.Sprintf("Data provided by %s (%s)", c.portal.Name, c.portal.BaseURL)
}
