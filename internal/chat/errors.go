package chat

import "errors"

var (
	// ErrStopped is returned when the event loop is no longer running
	ErrStopped = errors.New("manager stopped")

	// ErrUnknownEvent is returned for an inbound event we do not handle
	ErrUnknownEvent = errors.New("unknown event")

	// ErrBadPayload is returned when an inbound event payload cannot be decoded
	ErrBadPayload = errors.New("bad payload")

	// ErrNilClient is returned when connecting without a client
	ErrNilClient = errors.New("nil client")
)
