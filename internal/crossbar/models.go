package crossbar

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/practable/chat/internal/chat"
	"github.com/practable/chat/internal/hub"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// Config represents configuration options for a crossbar instance
// Use this struct to pass configuration as argument during testing
type Config struct {

	// Listen is the listening port
	Listen int

	// Host is the interface to listen on, empty for all
	Host string

	// StaticDir, if set, is served on /
	StaticDir string

	// AllowedOrigins restricts websocket upgrades; empty allows any origin
	AllowedOrigins []string

	// ClientBuffer is how many outbound events can queue per connection
	ClientBuffer int

	// RateLimit is the inbound events per second allowed per connection; 0 is unlimited
	RateLimit float64

	// RateBurst is how many inbound events can arrive at once
	RateBurst int

	// MaxMessageSize is the largest inbound frame accepted, in bytes
	MaxMessageSize int64

	// Manager coordinates the chat
	Manager *chat.Manager

	// Hub is the dispatcher the manager sends with, for statistics
	Hub *hub.Hub
}

// NewDefaultConfig returns a pointer to a Config struct with default parameters
func NewDefaultConfig() *Config {
	c := &Config{}
	c.Listen = 3000
	c.ClientBuffer = 256
	c.RateLimit = 20
	c.RateBurst = 40
	c.MaxMessageSize = 8192
	return c
}

// WithListen specified which (int) port to listen on
func (c *Config) WithListen(listen int) *Config {
	c.Listen = listen
	return c
}

// WithHost specifies the interface to listen on
func (c *Config) WithHost(host string) *Config {
	c.Host = host
	return c
}

// WithStaticDir specifies a directory of files to serve on /
func (c *Config) WithStaticDir(dir string) *Config {
	c.StaticDir = dir
	return c
}

// WithAllowedOrigins restricts which origins may open a websocket
func (c *Config) WithAllowedOrigins(origins []string) *Config {
	c.AllowedOrigins = origins
	return c
}

// WithClientBuffer specifies the per-connection outbound queue length
func (c *Config) WithClientBuffer(n int) *Config {
	c.ClientBuffer = n
	return c
}

// WithRateLimit specifies the inbound rate limit per connection
func (c *Config) WithRateLimit(limit float64, burst int) *Config {
	c.RateLimit = limit
	c.RateBurst = burst
	return c
}

// WithMaxMessageSize specifies the largest inbound frame accepted
func (c *Config) WithMaxMessageSize(n int64) *Config {
	c.MaxMessageSize = n
	return c
}

// WithManager specifies the chat manager
func (c *Config) WithManager(m *chat.Manager) *Config {
	c.Manager = m
	return c
}

// WithHub specifies the hub, for statistics
func (c *Config) WithHub(h *hub.Hub) *Config {
	c.Hub = h
	return c
}

// Client is a middleperson between the websocket connection and the manager.
type Client struct {

	// id of the connection, shared with the manager and hub
	id string

	// The websocket connection.
	conn *websocket.Conn

	// queue of outbound events, and statistics
	events *hub.Client

	manager *chat.Manager

	// nil when unlimited
	limiter *rate.Limiter

	userAgent string

	remoteAddr string
}

// newLimiter returns nil when limit is not positive
func newLimiter(limit float64, burst int) *rate.Limiter {
	if limit <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(limit), burst)
}
