package chat

// Config represents configuration of the Manager
type Config struct {

	// RequireRegistration ignores chat and typing from anonymous connections
	RequireRegistration bool

	// IdentifyByID names every connection by its raw id on connect,
	// and refuses all attempts to set a username
	IdentifyByID bool

	// MaxNameLength is the longest display name accepted, in runes; 0 is unlimited
	MaxNameLength int

	// MaxMessageLength is the longest chat message accepted, in runes; 0 is unlimited
	MaxMessageLength int

	// DropBlankMessages drops chat messages that are empty or only whitespace
	DropBlankMessages bool

	// QueueLength is how many commands can wait for the event loop
	QueueLength int
}

// NewDefaultConfig returns the permissive, display-name configuration
func NewDefaultConfig() Config {
	return Config{
		MaxNameLength:    32,
		MaxMessageLength:  1000,
		DropBlankMessages: true,
		QueueLength:       64,
	}
}

// WithRequireRegistration sets whether anonymous connections may chat
func (c Config) WithRequireRegistration(require bool) Config {
	c.RequireRegistration = require
	return c
}

// WithIdentifyByID sets whether connections are named by their raw id
func (c Config) WithIdentifyByID(byID bool) Config {
	c.IdentifyByID = byID
	return c
}

// WithMaxNameLength sets the longest display name accepted
func (c Config) WithMaxNameLength(n int) Config {
	c.MaxNameLength = n
	return c
}

// WithMaxMessageLength sets the longest chat message accepted
func (c Config) WithMaxMessageLength(n int) Config {
	c.MaxMessageLength = n
	return c
}

// WithDropBlankMessages sets whether blank chat messages are dropped
func (c Config) WithDropBlankMessages(drop bool) Config {
	c.DropBlankMessages = drop
	return c
}

// WithQueueLength sets the command queue length
func (c Config) WithQueueLength(n int) Config {
	c.QueueLength = n
	return c
}
