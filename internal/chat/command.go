package chat

import (
	"github.com/practable/chat/internal/event"
	"github.com/practable/chat/internal/hub"
)

type kind int

const (
	connect kind = iota
	setUsername
	chatMessage
	typing
	stopTyping
	disconnect
	snapshot
	lookup
)

// name is used to label metrics
func (k kind) name() string {
	switch k {
	case connect:
		return "connect"
	case setUsername:
		return event.SetUsername
	case chatMessage:
		return event.ChatMessage
	case typing:
		return event.Typing
	case stopTyping:
		return event.StopTyping
	case disconnect:
		return "disconnect"
	case snapshot:
		return "snapshot"
	case lookup:
		return "lookup"
	default:
		return "unknown"
	}
}

// command is one unit of work for the event loop
type command struct {
	kind   kind
	id     string
	text   string
	client *hub.Client
	reply  chan result
}

type result struct {
	ok         bool
	err        error
	snapshot   Snapshot
	connection Connection
}

// Snapshot represents the shared state at one point in the event order
type Snapshot struct {
	Users       []string `json:"users"`
	Typing      []string `json:"typing"`
	Connections int      `json:"connections"`
}
