package hub

import (
	"errors"
	"sync"
	"time"

	"github.com/eclesh/welford"
	"github.com/practable/chat/internal/chanstats"
	"github.com/practable/chat/internal/event"
)

var (
	// ErrNilClient is returned when adding a nil client
	ErrNilClient = errors.New("nil client")

	// ErrDuplicateClient is returned when a client ID is already live
	ErrDuplicateClient = errors.New("client ID already in use")
)

// Hub maintains the set of live clients and
// fans events out to them.
// Mutations are expected from a single goroutine; the lock
// protects concurrent readers such as the stats API.
type Hub struct {
	mu *sync.RWMutex

	// Live clients by ID
	clients map[string]*Client

	// Client IDs in connection order
	order []string

	Stats Stats
}

// Client is a middleperson between the hub and whatever is sending/receiving events on it
type Client struct {
	ID          string           // for filtering who to send events to
	Send        chan event.Event // for outbound events to client
	ConnectedAt time.Time
	Stats       *chanstats.ChanStats
}

// Stats represents statistics about the fan out
type Stats struct {
	// number of recipients per broadcast
	Audience *welford.Stats

	// payload size per broadcast
	Bytes *welford.Stats

	// seconds between broadcasts
	Dt *welford.Stats

	// seconds spent queueing each broadcast
	Latency *welford.Stats

	Last time.Time
}

// Report represents hub statistics that we report externally
type Report struct {
	Clients   int                     `json:"clients"`
	Audience  chanstats.WelfordStats  `json:"audience"`
	Bytes     chanstats.WelfordStats  `json:"bytes"`
	Dt        chanstats.WelfordStats  `json:"dt"`
	Latency   chanstats.WelfordStats  `json:"latency"`
	Rate      float64                 `json:"rate"` // broadcasts per second
	PerClient map[string]ClientReport `json:"perClient"`
}

// ClientReport represents client statistics that we report externally
type ClientReport struct {
	ConnectedAt string            `json:"connected"`
	Queued      int               `json:"queued"`
	Stats       *chanstats.Report `json:"stats"`
}
