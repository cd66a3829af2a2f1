// Package natsclient manages the NATS connection the service publishes on,
// with reconnect handling and connection state logging.
package natsclient

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/sonicbind/surfacemap/errors"
)

// ConnectionStatus represents the state of the NATS connection.
type ConnectionStatus int32

// Possible connection statuses.
const (
	StatusDisconnected ConnectionStatus = iota
	StatusConnected
	StatusReconnecting
	StatusClosed
)

// String returns the string representation of ConnectionStatus.
func (s ConnectionStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnected:
		return "connected"
	case StatusReconnecting:
		return "reconnecting"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Client wraps a NATS connection with status tracking. Publish and Subscribe
// delegate to the underlying connection, which buffers during reconnects.
type Client struct {
	conn   *nats.Conn
	logger *slog.Logger

	status     atomic.Int32
	reconnects atomic.Int32
}

// Option configures the client.
type Option func(*options)

type options struct {
	name          string
	maxReconnects int
	reconnectWait time.Duration
	timeout       time.Duration
}

// WithName sets the client name reported to the server.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithMaxReconnects sets the reconnect attempt limit (-1 for infinite).
func WithMaxReconnects(n int) Option {
	return func(o *options) { o.maxReconnects = n }
}

// WithReconnectWait sets the wait between reconnect attempts.
func WithReconnectWait(d time.Duration) Option {
	return func(o *options) { o.reconnectWait = d }
}

// WithTimeout sets the initial connect timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func defaultOptions() options {
	return options{
		name:          "surfacemap",
		maxReconnects: -1,
		reconnectWait: 2 * time.Second,
		timeout:       5 * time.Second,
	}
}

// Connect establishes the connection.
func Connect(url string, logger *slog.Logger, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{logger: logger.With("component", "natsclient")}

	conn, err := nats.Connect(url,
		nats.Name(o.name),
		nats.MaxReconnects(o.maxReconnects),
		nats.ReconnectWait(o.reconnectWait),
		nats.Timeout(o.timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			c.status.Store(int32(StatusReconnecting))
			c.logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			c.status.Store(int32(StatusConnected))
			c.reconnects.Add(1)
			c.logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			c.status.Store(int32(StatusClosed))
			c.logger.Info("nats connection closed")
		}),
	)
	if err != nil {
		return nil, errors.WrapTransient(err, "Client", "Connect", "connect to "+url)
	}

	c.conn = conn
	c.status.Store(int32(StatusConnected))
	c.logger.Info("nats connected", "url", conn.ConnectedUrl())
	return c, nil
}

// Publish sends data on subject.
func (c *Client) Publish(subject string, data []byte) error {
	return c.conn.Publish(subject, data)
}

// Subscribe registers handler for subject.
func (c *Client) Subscribe(subject string, handler nats.MsgHandler) (*nats.Subscription, error) {
	return c.conn.Subscribe(subject, handler)
}

// Status returns the current connection status.
func (c *Client) Status() ConnectionStatus {
	return ConnectionStatus(c.status.Load())
}

// Reconnects returns the number of reconnects seen so far.
func (c *Client) Reconnects() int32 {
	return c.reconnects.Load()
}

// Close drains and closes the connection.
func (c *Client) Close() {
	if c.conn == nil {
		return
	}
	if err := c.conn.Drain(); err != nil {
		c.logger.Warn("nats drain failed", "error", err)
		c.conn.Close()
	}
	c.status.Store(int32(StatusClosed))
}
