package hub

import (
	"fmt"
	"testing"

	"github.com/practable/chat/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain returns the events waiting for a client without blocking
func drain(c *Client) []event.Event {
	var got []event.Event
	for {
		select {
		case e, ok := <-c.Send:
			if !ok {
				return got
			}
			got = append(got, e)
		default:
			return got
		}
	}
}

func TestAddRemove(t *testing.T) {

	h := New()

	a := NewClient("a", 4)
	b := NewClient("b", 4)

	require.NoError(t, h.Add(a))
	require.NoError(t, h.Add(b))

	assert.Equal(t, ErrDuplicateClient, h.Add(NewClient("a", 4)))
	assert.Equal(t, ErrNilClient, h.Add(nil))

	assert.Equal(t, 2, h.Count())
	assert.Equal(t, []string{"a", "b"}, h.IDs())

	c, ok := h.Remove("a")
	assert.True(t, ok)
	assert.Equal(t, a, c)

	_, ok = <-a.Send
	assert.False(t, ok, "send channel should be closed on removal")

	_, ok = h.Remove("a")
	assert.False(t, ok)

	_, ok = h.Get("a")
	assert.False(t, ok)

	got, ok := h.Get("b")
	assert.True(t, ok)
	assert.Equal(t, b, got)

	assert.Equal(t, []string{"b"}, h.IDs())
}

func TestToAll(t *testing.T) {

	h := New()

	clients := []*Client{}
	for i := 0; i < 3; i++ {
		c := NewClient(fmt.Sprintf("c%d", i), 4)
		require.NoError(t, h.Add(c))
		clients = append(clients, c)
	}

	n := h.ToAll(event.Chat("alice", "hi"))
	assert.Equal(t, 3, n)

	for _, c := range clients {
		got := drain(c)
		require.Len(t, got, 1)
		assert.Equal(t, event.ChatMessage, got[0].Name)
	}
}

func TestToAllExcept(t *testing.T) {

	h := New()

	a := NewClient("a", 4)
	b := NewClient("b", 4)
	require.NoError(t, h.Add(a))
	require.NoError(t, h.Add(b))

	n := h.ToAllExcept(event.TypingList([]string{"alice"}), "a")
	assert.Equal(t, 1, n)

	assert.Empty(t, drain(a))
	assert.Len(t, drain(b), 1)

	// excluding an unknown id sends to everyone
	n = h.ToAllExcept(event.TypingList(nil), "zz")
	assert.Equal(t, 2, n)
}

func TestToOne(t *testing.T) {

	h := New()

	a := NewClient("a", 4)
	b := NewClient("b", 4)
	require.NoError(t, h.Add(a))
	require.NoError(t, h.Add(b))

	assert.True(t, h.ToOne(event.Register(true), "b"))
	assert.False(t, h.ToOne(event.Register(true), "nobody"))

	assert.Empty(t, drain(a))
	got := drain(b)
	require.Len(t, got, 1)
	assert.Equal(t, event.UsernameRegister, got[0].Name)
}

func TestOrderPreservedPerRecipient(t *testing.T) {

	h := New()

	a := NewClient("a", 100)
	require.NoError(t, h.Add(a))

	for i := 0; i < 50; i++ {
		h.ToAll(event.Chat("bob", fmt.Sprintf("%d", i)))
	}

	got := drain(a)
	require.Len(t, got, 50)

	for i, e := range got {
		m, err := e.Message()
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%d", i), m.Message)
	}
}

func TestSlowClientDoesNotBlock(t *testing.T) {

	h := New()

	slow := NewClient("slow", 1)
	fast := NewClient("fast", 10)
	require.NoError(t, h.Add(slow))
	require.NoError(t, h.Add(fast))

	for i := 0; i < 5; i++ {
		h.ToAll(event.Chat("bob", "x"))
	}

	assert.Len(t, drain(slow), 1)
	assert.Len(t, drain(fast), 5)
}

func TestReport(t *testing.T) {

	h := New()

	a := NewClient("a", 4)
	require.NoError(t, h.Add(a))

	h.ToAll(event.Chat("bob", "x"))
	h.ToAll(event.Chat("bob", "y"))

	r := h.Report()

	assert.Equal(t, 1, r.Clients)
	assert.Equal(t, uint64(2), r.Audience.Count)
	assert.Equal(t, float64(1), r.Audience.Mean)
	assert.Equal(t, uint64(1), r.Dt.Count)

	cr, ok := r.PerClient["a"]
	require.True(t, ok)
	assert.Equal(t, 2, cr.Queued)
	assert.NotNil(t, cr.Stats)
}

func TestRateFromSeconds(t *testing.T) {
	assert.Equal(t, float64(2), RateFromSeconds(0.5))
	assert.Equal(t, float64(0), RateFromSeconds(0))
}
