package chat

import (
	"github.com/practable/chat/internal/event"
	"github.com/practable/chat/internal/hub"
)

//go:generate mockgen -source=dispatcher.go -destination=mock_dispatcher_test.go -package=chat

// Dispatcher delivers events to live clients. *hub.Hub satisfies it.
type Dispatcher interface {
	Add(c *hub.Client) error
	Remove(id string) (*hub.Client, bool)
	ToAll(e event.Event) int
	ToAllExcept(e event.Event, excluded string) int
	ToOne(e event.Event, id string) bool
}
