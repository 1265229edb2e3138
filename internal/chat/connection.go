package chat

import "time"

// State is the lifecycle state of a connection
type State int

const (
	// Anonymous connections have not registered a display name
	Anonymous State = iota

	// Named connections own a display name in the registry
	Named

	// Disconnected connections are gone and ignored from then on
	Disconnected
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Named:
		return "named"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Connection represents one attached client
type Connection struct {
	ID          string
	Identity    string // empty until registered
	State       State
	ConnectedAt time.Time
}

// Label is how the connection is shown to others: its display
// name once registered, otherwise its raw id
func (c Connection) Label() string {
	if c.Identity != "" {
		return c.Identity
	}
	return c.ID
}
