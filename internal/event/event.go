// Package event defines the named events exchanged between chat clients and
// the coordinator, and how they are framed as JSON on the wire
package event

import (
	"encoding/json"
	"errors"
)

// Names of the events in both directions
const (
	// client -> server
	SetUsername = "set username"
	StopTyping  = "stop typing"

	// server -> client
	UsernameRegister = "username register"
	UserList         = "user list"

	// both directions
	ChatMessage = "chat message"
	Typing      = "typing"
)

// ErrNoName is returned when a frame does not name its event
var ErrNoName = errors.New("event has no name")

// Event is one named event, with an optional JSON payload
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Message is the payload of a chat message sent to clients
type Message struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// New returns an event with data marshalled as its payload.
// A nil data leaves the payload empty.
func New(name string, data interface{}) (Event, error) {
	e := Event{Name: name}
	if data == nil {
		return e, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return e, err
	}
	e.Data = b
	return e, nil
}

// Parse decodes a single frame received from the wire
func Parse(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return e, err
	}
	if e.Name == "" {
		return e, ErrNoName
	}
	return e, nil
}

// Marshal encodes the event for the wire
func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Text decodes a string payload
func (e Event) Text() (string, error) {
	var s string
	err := json.Unmarshal(e.Data, &s)
	return s, err
}

// Bool decodes a boolean payload
func (e Event) Bool() (bool, error) {
	var b bool
	err := json.Unmarshal(e.Data, &b)
	return b, err
}

// Strings decodes a list payload
func (e Event) Strings() ([]string, error) {
	var s []string
	err := json.Unmarshal(e.Data, &s)
	return s, err
}

// Message decodes a chat message payload
func (e Event) Message() (Message, error) {
	var m Message
	err := json.Unmarshal(e.Data, &m)
	return m, err
}

// Register is the acknowledgement of a registration attempt
func Register(ok bool) Event {
	return Event{Name: UsernameRegister, Data: encode(ok)}
}

// Users is the list of registered display names, in claim order
func Users(names []string) Event {
	return Event{Name: UserList, Data: encode(nonNil(names))}
}

// Chat is a chat message from username
func Chat(username, message string) Event {
	return Event{Name: ChatMessage, Data: encode(Message{Username: username, Message: message})}
}

// TypingList is the list of identities currently typing
func TypingList(identities []string) Event {
	return Event{Name: Typing, Data: encode(nonNil(identities))}
}

// encode is only used with payload types that always marshal
func encode(v interface{}) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

// clients expect an empty list, not null
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
