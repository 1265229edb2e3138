// Package chat coordinates the attached chat clients. A single event loop
// owns the connections, the username registry and the typing presence set,
// and tells the dispatcher what to send to whom. Each command is processed
// to completion before the next one starts.
package chat

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/practable/chat/internal/event"
	"github.com/practable/chat/internal/hub"
	"github.com/practable/chat/internal/metrics"
	"github.com/practable/chat/internal/presence"
	"github.com/practable/chat/internal/registry"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// Manager represents the connection lifecycle manager
type Manager struct {
	config   Config
	dispatch Dispatcher

	// owned by the event loop
	conns    map[string]*Connection
	registry *registry.Registry
	presence *presence.Tracker // by connection id

	// connections whose last stop typing has already been announced
	announced map[string]bool

	commands chan command
	done     chan struct{}
}

// New returns a pointer to a Manager that sends events with d.
// Commands are queued until Run is called.
func New(config Config, d Dispatcher) *Manager {

	if config.QueueLength < 0 {
		config.QueueLength = 0
	}

	return &Manager{
		config:    config,
		dispatch:  d,
		conns:     make(map[string]*Connection),
		registry:  registry.New(),
		presence:  presence.New(),
		announced: make(map[string]bool),
		commands:  make(chan command, config.QueueLength),
		done:      make(chan struct{}),
	}
}

// Run processes commands until ctx is cancelled, then removes every
// remaining client from the dispatcher. It must only be called once.
func (m *Manager) Run(ctx context.Context) {

	defer close(m.done)

	log.WithFields(log.Fields{
		"requireRegistration": m.config.RequireRegistration,
		"identifyByID":        m.config.IdentifyByID,
	}).Debug("chat: manager started")

	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			log.Debug("chat: manager stopped")
			return
		case cmd := <-m.commands:
			cmd.reply <- m.process(cmd)
		}
	}
}

// Done is closed when Run has returned
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Connect attaches a client as an anonymous connection
func (m *Manager) Connect(ctx context.Context, c *hub.Client) error {
	if c == nil {
		return ErrNilClient
	}
	r, err := m.submit(ctx, command{kind: connect, id: c.ID, client: c})
	if err != nil {
		return err
	}
	return r.err
}

// SetUsername tries to register name for connection id, reporting success
func (m *Manager) SetUsername(ctx context.Context, id, name string) (bool, error) {
	r, err := m.submit(ctx, command{kind: setUsername, id: id, text: name})
	return r.ok, err
}

// ChatMessage sends text from connection id to everyone
func (m *Manager) ChatMessage(ctx context.Context, id, text string) error {
	_, err := m.submit(ctx, command{kind: chatMessage, id: id, text: text})
	return err
}

// Typing marks connection id as typing
func (m *Manager) Typing(ctx context.Context, id string) error {
	_, err := m.submit(ctx, command{kind: typing, id: id})
	return err
}

// StopTyping marks connection id as no longer typing
func (m *Manager) StopTyping(ctx context.Context, id string) error {
	_, err := m.submit(ctx, command{kind: stopTyping, id: id})
	return err
}

// Disconnect detaches connection id and purges its state
func (m *Manager) Disconnect(ctx context.Context, id string) error {
	_, err := m.submit(ctx, command{kind: disconnect, id: id})
	return err
}

// Handle processes an inbound event from connection id
func (m *Manager) Handle(ctx context.Context, id string, e event.Event) error {

	switch e.Name {

	case event.SetUsername:
		name, err := e.Text()
		if err != nil {
			// an undecodable name is answered like an empty one
			log.WithFields(log.Fields{"id": id, "error": err.Error()}).Debug("chat: bad username payload")
			name = ""
		}
		_, err = m.SetUsername(ctx, id, name)
		return err

	case event.ChatMessage:
		text, err := e.Text()
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrBadPayload, e.Name, err)
		}
		return m.ChatMessage(ctx, id, text)

	case event.Typing:
		return m.Typing(ctx, id)

	case event.StopTyping:
		return m.StopTyping(ctx, id)

	default:
		return fmt.Errorf("%w: %s", ErrUnknownEvent, e.Name)
	}
}

// Snapshot returns the registered users, typing identities and connection count
func (m *Manager) Snapshot(ctx context.Context) (Snapshot, error) {
	r, err := m.submit(ctx, command{kind: snapshot})
	return r.snapshot, err
}

// Users returns the registered display names in claim order
func (m *Manager) Users(ctx context.Context) ([]string, error) {
	s, err := m.Snapshot(ctx)
	return s.Users, err
}

// TypingList returns the identities currently typing
func (m *Manager) TypingList(ctx context.Context) ([]string, error) {
	s, err := m.Snapshot(ctx)
	return s.Typing, err
}

// Count returns the number of live connections
func (m *Manager) Count(ctx context.Context) (int, error) {
	s, err := m.Snapshot(ctx)
	return s.Connections, err
}

// Lookup returns a copy of the live connection with id
func (m *Manager) Lookup(ctx context.Context, id string) (Connection, bool, error) {
	r, err := m.submit(ctx, command{kind: lookup, id: id})
	return r.connection, r.ok, err
}

// submit queues cmd and waits for the event loop to process it
func (m *Manager) submit(ctx context.Context, cmd command) (result, error) {

	cmd.reply = make(chan result, 1)

	select {
	case m.commands <- cmd:
	case <-ctx.Done():
		return result{}, ctx.Err()
	case <-m.done:
		return result{}, ErrStopped
	}

	select {
	case r := <-cmd.reply:
		return r, nil
	case <-m.done:
		// the loop may have answered just before stopping
		select {
		case r := <-cmd.reply:
			return r, nil
		default:
			return result{}, ErrStopped
		}
	}
}

func (m *Manager) process(cmd command) result {

	if cmd.kind < snapshot {
		metrics.Events.WithLabelValues(cmd.kind.name()).Inc()
	}

	switch cmd.kind {
	case connect:
		return result{err: m.connect(cmd.client)}
	case setUsername:
		return result{ok: m.setUsername(cmd.id, cmd.text)}
	case chatMessage:
		m.chatMessage(cmd.id, cmd.text)
	case typing:
		m.typing(cmd.id)
	case stopTyping:
		m.stopTyping(cmd.id)
	case disconnect:
		m.disconnect(cmd.id)
	case snapshot:
		return result{snapshot: Snapshot{
			Users:       m.registry.Snapshot(),
			Typing:      m.typingLabels(),
			Connections: len(m.conns),
		}}
	case lookup:
		if c, ok := m.conns[cmd.id]; ok {
			return result{ok: true, connection: *c}
		}
	}

	return result{}
}

func (m *Manager) connect(c *hub.Client) error {

	if err := m.dispatch.Add(c); err != nil {
		log.WithFields(log.Fields{"id": c.ID, "error": err.Error()}).Error("chat: could not add client")
		return err
	}

	conn := &Connection{
		ID:          c.ID,
		State:       Anonymous,
		ConnectedAt: c.ConnectedAt,
	}

	m.conns[c.ID] = conn
	metrics.Connections.Inc()

	log.WithFields(log.Fields{"id": c.ID}).Info("chat: connected")

	if m.config.IdentifyByID && m.registry.TryClaim(c.ID, c.ID) {
		conn.Identity = c.ID
		conn.State = Named
		m.dispatch.ToAll(event.Users(m.registry.Snapshot()))
	}

	return nil
}

func (m *Manager) setUsername(id, raw string) bool {

	conn, ok := m.conns[id]

	if !ok {
		log.WithFields(log.Fields{"id": id}).Debug("chat: set username for unknown connection ignored")
		return false
	}

	name := strings.TrimSpace(raw)

	if reason := m.reject(conn, name); reason != "" {
		metrics.Registrations.WithLabelValues("rejected").Inc()
		log.WithFields(log.Fields{"id": id, "name": name, "reason": reason}).Info("chat: username rejected")
		m.dispatch.ToOne(event.Register(false), id)
		return false
	}

	metrics.Registrations.WithLabelValues("accepted").Inc()

	conn.Identity = name
	conn.State = Named

	log.WithFields(log.Fields{"id": id, "name": name}).Info("chat: username registered")

	m.dispatch.ToOne(event.Register(true), id)
	m.dispatch.ToAll(event.Users(m.registry.Snapshot()))

	// a connection already typing now shows under its new name
	if m.presence.Has(id) {
		m.dispatch.ToAllExcept(event.TypingList(m.typingLabels()), id)
	}

	return true
}

// reject claims name for conn, or explains why not
func (m *Manager) reject(conn *Connection, name string) string {
	switch {
	case m.config.IdentifyByID:
		return "identified by id"
	case conn.State == Named:
		return "already named"
	case name == "":
		return "empty"
	case m.config.MaxNameLength > 0 && utf8.RuneCountInString(name) > m.config.MaxNameLength:
		return "too long"
	case m.reserved(name, conn.ID):
		return "reserved"
	case !m.registry.TryClaim(name, conn.ID):
		return "taken"
	}
	return ""
}

// reserved reports whether name would pass for the raw id of
// another live connection, which anonymous connections are shown as
func (m *Manager) reserved(name, self string) bool {
	canonical := m.registry.Canonical(name)
	for id := range m.conns {
		if id != self && m.registry.Canonical(id) == canonical {
			return true
		}
	}
	return false
}

// typingLabels returns how the typing connections are shown, in the order they started
func (m *Manager) typingLabels() []string {
	return lo.Map(m.presence.Snapshot(), func(id string, _ int) string {
		return m.conns[id].Label()
	})
}

// allowed reports whether conn may chat or type
func (m *Manager) allowed(conn *Connection) bool {
	return !m.config.RequireRegistration || conn.State == Named
}

func (m *Manager) chatMessage(id, text string) {

	conn, ok := m.conns[id]

	if !ok {
		log.WithFields(log.Fields{"id": id}).Debug("chat: message from unknown connection ignored")
		return
	}

	if !m.allowed(conn) {
		log.WithFields(log.Fields{"id": id}).Debug("chat: message from anonymous connection ignored")
		return
	}

	// sending ends typing, even when the message itself is dropped
	wasTyping := m.presence.Clear(id)

	if reason := m.dropMessage(text); reason != "" {
		log.WithFields(log.Fields{"id": id, "length": utf8.RuneCountInString(text), "reason": reason}).Warn("chat: message dropped")
		if wasTyping {
			m.dispatch.ToAllExcept(event.TypingList(m.typingLabels()), id)
		}
		return
	}

	m.dispatch.ToAll(event.Chat(conn.Label(), text))
	m.dispatch.ToAllExcept(event.TypingList(m.typingLabels()), id)
}

// dropMessage explains why text should not be sent, if it shouldn't
func (m *Manager) dropMessage(text string) string {
	switch {
	case m.config.DropBlankMessages && strings.TrimSpace(text) == "":
		return "blank"
	case m.config.MaxMessageLength > 0 && utf8.RuneCountInString(text) > m.config.MaxMessageLength:
		return "too long"
	}
	return ""
}

func (m *Manager) typing(id string) {

	conn, ok := m.conns[id]

	if !ok {
		log.WithFields(log.Fields{"id": id}).Debug("chat: typing from unknown connection ignored")
		return
	}

	if !m.allowed(conn) {
		log.WithFields(log.Fields{"id": id}).Debug("chat: typing from anonymous connection ignored")
		return
	}

	m.presence.Mark(id)
	delete(m.announced, id)

	m.dispatch.ToAllExcept(event.TypingList(m.typingLabels()), id)
}

func (m *Manager) stopTyping(id string) {

	conn, ok := m.conns[id]

	if !ok {
		log.WithFields(log.Fields{"id": id}).Debug("chat: stop typing from unknown connection ignored")
		return
	}

	if !m.allowed(conn) {
		log.WithFields(log.Fields{"id": id}).Debug("chat: stop typing from anonymous connection ignored")
		return
	}

	// only the first stop typing since the last typing is announced
	if !m.presence.Clear(id) && m.announced[id] {
		return
	}

	m.announced[id] = true

	m.dispatch.ToAllExcept(event.TypingList(m.typingLabels()), id)
}

func (m *Manager) disconnect(id string) {

	conn, ok := m.conns[id]

	if !ok {
		log.WithFields(log.Fields{"id": id}).Debug("chat: disconnect of unknown connection ignored")
		return
	}

	delete(m.conns, id)
	delete(m.announced, id)

	wasTyping := m.presence.Clear(id)
	m.registry.ReleaseOwner(id)
	m.dispatch.Remove(id)

	conn.State = Disconnected
	metrics.Connections.Dec()

	log.WithFields(log.Fields{"id": id, "name": conn.Identity}).Info("chat: disconnected")

	m.dispatch.ToAll(event.Users(m.registry.Snapshot()))

	if wasTyping {
		m.dispatch.ToAll(event.TypingList(m.typingLabels()))
	}
}

// shutdown drops every client without telling the others
func (m *Manager) shutdown() {
	for id := range m.conns {
		m.dispatch.Remove(id)
		delete(m.conns, id)
		metrics.Connections.Dec()
	}
}
