package hub

import (
	"sync"
	"time"

	"github.com/eclesh/welford"
	"github.com/practable/chat/internal/chanstats"
	"github.com/practable/chat/internal/event"
	"github.com/practable/chat/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// New returns a pointer to an initialised Hub
func New() *Hub {
	return &Hub{
		mu:      &sync.RWMutex{},
		clients: make(map[string]*Client),
		order:   []string{},
		Stats: Stats{Audience: welford.New(),
			Bytes:   welford.New(),
			Latency: welford.New(),
			Dt:      welford.New()},
	}
}

// NewClient returns a pointer to a new Client with a send buffer
// that can hold buffer events
func NewClient(id string, buffer int) *Client {
	return &Client{
		ID:          id,
		Send:        make(chan event.Event, buffer),
		ConnectedAt: time.Now(),
		Stats:       chanstats.New(),
	}
}

// Add makes a client live so that it receives broadcasts
func (h *Hub) Add(c *Client) error {

	if c == nil {
		return ErrNilClient
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.ID]; ok {
		return ErrDuplicateClient
	}

	h.clients[c.ID] = c
	h.order = append(h.order, c.ID)

	return nil
}

// Remove takes the client out of the live set and closes its
// send channel, so that its writer knows it is finished
func (h *Hub) Remove(id string) (*Client, bool) {

	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[id]

	if !ok {
		return nil, false
	}

	delete(h.clients, id)

	for i, cid := range h.order {
		if cid == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}

	close(c.Send)

	return c, true
}

// Get returns the live client with the given ID
func (h *Hub) Get(id string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[id]
	return c, ok
}

// Count returns the number of live clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.order)
}

// IDs returns the live client IDs in connection order
func (h *Hub) IDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, len(h.order))
	copy(ids, h.order)
	return ids
}

// ToAll queues e for every live client, returning the number queued
func (h *Hub) ToAll(e event.Event) int {
	return h.broadcast(e, "")
}

// ToAllExcept queues e for every live client except the excluded one
func (h *Hub) ToAllExcept(e event.Event, excluded string) int {
	return h.broadcast(e, excluded)
}

// ToOne queues e for a single client
func (h *Hub) ToOne(e event.Event, id string) bool {

	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[id]

	if !ok {
		log.WithFields(log.Fields{"client": id, "event": e.Name}).Debug("hub: no live client for direct event")
		return false
	}

	return deliver(c, e)
}

func (h *Hub) broadcast(e event.Event, excluded string) int {

	// write lock because the statistics are updated too
	h.mu.Lock()
	defer h.mu.Unlock()

	start := time.Now()

	dt := start.Sub(h.Stats.Last)
	if dt < 24*time.Hour {
		h.Stats.Dt.Add(dt.Seconds())
	}
	h.Stats.Last = start

	queued := 0

	for _, id := range h.order {
		if id == excluded {
			continue
		}
		if deliver(h.clients[id], e) {
			queued++
		}
	}

	h.Stats.Audience.Add(float64(queued))
	h.Stats.Bytes.Add(float64(len(e.Data)))
	h.Stats.Latency.Add(time.Since(start).Seconds())

	return queued
}

// deliver never blocks; a client that cannot keep up misses the event
func deliver(c *Client, e event.Event) bool {
	select {
	case c.Send <- e:
		metrics.Broadcasts.WithLabelValues(e.Name).Inc()
		return true
	default:
		metrics.Dropped.Inc()
		log.WithFields(log.Fields{"client": c.ID, "event": e.Name}).Warn("hub: send buffer full, dropping event")
		return false
	}
}

// Report returns statistics on the hub and each live client
func (h *Hub) Report() Report {

	h.mu.RLock()
	defer h.mu.RUnlock()

	r := Report{
		Clients:   len(h.order),
		Audience:  *chanstats.NewWelford(h.Stats.Audience),
		Bytes:     *chanstats.NewWelford(h.Stats.Bytes),
		Dt:        *chanstats.NewWelford(h.Stats.Dt),
		Latency:   *chanstats.NewWelford(h.Stats.Latency),
		PerClient: make(map[string]ClientReport),
	}

	r.Rate = RateFromSeconds(r.Dt.Mean)

	for _, id := range h.order {
		c := h.clients[id]
		r.PerClient[id] = ClientReport{
			ConnectedAt: c.ConnectedAt.String(),
			Queued:      len(c.Send),
			Stats:       chanstats.NewReport(c.Stats),
		}
	}

	return r
}
