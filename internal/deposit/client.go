package deposit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/palpa-deposit/internal/fault"
	"github.com/zombor/palpa-deposit/internal/locale"
)

const (
	// DefaultOrigin is the PALPA extranet serving deposit lookups
	DefaultOrigin = "https://extra.palpa.fi"
	// DefaultEndpoint is the lookup page path below the origin
	DefaultEndpoint = "pantillisuus"

	defaultTimeout = 30 * time.Second
)

// Client looks up deposit information. It only holds configuration: every
// Fetch runs its own session, so a Client may be shared between goroutines.
type Client struct {
	origin    string
	host      string
	endpoint  string
	timeout   time.Duration
	transport http.RoundTripper
	logger    *slog.Logger
	metrics   *Metrics
	catalog   *locale.Catalog
}

// Option configures a Client
type Option func(*Client)

// WithOrigin points the client at another scheme://host, e.g. a test server
func WithOrigin(origin string) Option {
	return func(c *Client) {
		c.origin = origin
	}
}

// WithEndpoint overrides the lookup page path
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithTimeout bounds every single HTTP request of a lookup
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithTransport sets the round tripper used by every session
func WithTransport(transport http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = transport
	}
}

// WithLogger sets the logger receiving the localized status messages
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records lookup outcomes and durations
func WithMetrics(metrics *Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// NewClient creates a Client for the PALPA service
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		origin:   DefaultOrigin,
		endpoint: DefaultEndpoint,
		timeout:  defaultTimeout,
		logger:   slog.Default(),
		catalog:  locale.Messages,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.origin = strings.TrimRight(c.origin, "/")
	u, err := url.Parse(c.origin)
	if err != nil {
		return nil, fmt.Errorf("parsing origin: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("origin must be scheme://host, got %q", c.origin)
	}
	c.host = u.Host
	c.endpoint = strings.Trim(c.endpoint, "/")

	return c, nil
}

// Fetch looks up the deposit information of ean, asking the service to
// answer in loc. ean must be an integer kind; loc is anything
// locale.Resolve accepts, or nil for EN.
func Fetch(ctx context.Context, ean any, loc any) (*Record, error) {
	c, err := NewClient()
	if err != nil {
		return nil, err
	}
	return c.Fetch(ctx, ean, loc)
}

// Fetch looks up the deposit information of ean in a fresh session
func (c *Client) Fetch(ctx context.Context, ean any, loc any) (*Record, error) {
	start := time.Now()
	rec, label, err := c.fetch(ctx, ean, loc)
	c.metrics.observe(label, err, time.Since(start))
	return rec, err
}

func (c *Client) fetch(ctx context.Context, ean any, loc any) (*Record, string, error) {
	l := locale.EN
	if loc != nil {
		var err error
		if l, err = locale.Resolve(loc); err != nil {
			return nil, unknownLocale, err
		}
	}

	code, ok := ToEAN(ean)
	if !ok {
		return nil, l.String(), fault.New(fault.TypeMismatch, c.catalog.EANTypeError(l))
	}

	logger := c.logger.With("lookup_id", uuid.NewString(), "ean", code.String(), "locale", l.String())
	logger.Info(c.catalog.CheckingEANCode(l, code))

	s, err := c.newSession(logger)
	if err != nil {
		return nil, l.String(), err
	}

	if err := s.loadToken(ctx); err != nil {
		return nil, l.String(), err
	}

	if l != locale.Default {
		if msg := c.catalog.SetLocaleCookies(l); msg != "" {
			logger.Debug(msg)
		}
		if err := s.setLocale(ctx, l); err != nil {
			return nil, l.String(), err
		}
	}

	logger.Debug(c.catalog.FetchDepositInformation(l))
	p, err := s.lookup(ctx, code)
	if err != nil {
		return nil, l.String(), err
	}

	rec, err := newRecord(code, p)
	if err != nil {
		return nil, l.String(), err
	}
	return rec, l.String(), nil
}

func (c *Client) pageURL() string {
	return c.origin + "/" + c.endpoint
}
