package streammagic

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/streammagic/internal/logging"
	"github.com/muurk/streammagic/internal/version"
)

const (
	// DefaultTimeout bounds one call, including retries, backoff and reading
	// the body
	DefaultTimeout = 100 * time.Second

	// DefaultZone is the only zone the control API exposes on current devices
	DefaultZone = "ZONE1"

	// acceptHeader is sent with every request
	acceptHeader = "application/json, text/plain, */*"
)

// Client talks to one StreamMagic device over its SMOIP HTTP API.
//
// A Client is safe for concurrent use. Call Close when done; it releases the
// HTTP transport if the Client created it.
type Client struct {
	host      string
	timeout   time.Duration
	userAgent string
	retry     RetryPolicy
	log       *zap.Logger
	tracer    Tracer
	session   *session

	// httpClient is only set while options are applied
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient makes the Client use an existing *http.Client.
// The Client never closes a supplied client; its owner does.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the timeout for a whole call, retries included.
// Non-positive values are ignored.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRetry enables retrying of retryable connection errors
func WithRetry(policy RetryPolicy) Option {
	return func(c *Client) {
		c.retry = policy
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithLogger sets the logger used for request tracing at debug level
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.log = logger
		}
	}
}

// WithTracer registers a Tracer that receives every request attempt
func WithTracer(tracer Tracer) Option {
	return func(c *Client) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// NewClient creates a client for the device at host ("192.168.1.20" or
// "192.168.1.20:8080"). Without WithHTTPClient the Client creates and owns its
// own transport.
func NewClient(host string, opts ...Option) (*Client, error) {
	host = strings.TrimSpace(host)
	if err := validateHost(host); err != nil {
		return nil, err
	}

	c := &Client{
		host:      host,
		timeout:   DefaultTimeout,
		userAgent: version.UserAgent(),
		retry:     NoRetry(),
		log:       logging.GetLogger().Named("streammagic"),
		tracer:    noopTracer{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient != nil {
		c.session = newExternalSession(c.httpClient)
	} else {
		c.session = newOwnedSession()
	}
	c.httpClient = nil

	return c, nil
}

// Host returns the device host the client talks to
func (c *Client) Host() string {
	return c.host
}

// Timeout returns the per-call timeout
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// OwnsTransport reports whether Close releases the HTTP transport.
// It is true exactly when no *http.Client was supplied.
func (c *Client) OwnsTransport() bool {
	return c.session.owned
}

// Close releases the client. It is safe to call more than once; only the first
// call has an effect. A supplied *http.Client is left untouched.
func (c *Client) Close() error {
	c.session.close()
	return nil
}
