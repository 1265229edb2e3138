package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkIsIdempotent(t *testing.T) {

	p := New()

	assert.True(t, p.Mark("Alice"))
	assert.False(t, p.Mark("Alice"))
	assert.False(t, p.Mark(""))

	assert.Equal(t, []string{"Alice"}, p.Snapshot())
	assert.True(t, p.Has("Alice"))
	assert.Equal(t, 1, p.Len())
}

func TestClearIsIdempotent(t *testing.T) {

	p := New()

	assert.False(t, p.Clear("Alice"))

	p.Mark("Alice")
	assert.True(t, p.Clear("Alice"))
	assert.False(t, p.Clear("Alice"))

	assert.Equal(t, []string{}, p.Snapshot())
	assert.False(t, p.Has("Alice"))
}

func TestSnapshotInsertionOrder(t *testing.T) {

	p := New()

	p.Mark("Carol")
	p.Mark("Alice")
	p.Mark("Bob")
	assert.Equal(t, []string{"Carol", "Alice", "Bob"}, p.Snapshot())

	p.Clear("Alice")
	p.Mark("Alice")
	assert.Equal(t, []string{"Carol", "Bob", "Alice"}, p.Snapshot())

	// snapshot is a copy
	s := p.Snapshot()
	s[0] = "Mallory"
	assert.Equal(t, []string{"Carol", "Bob", "Alice"}, p.Snapshot())
}
