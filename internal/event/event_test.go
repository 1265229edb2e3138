package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {

	e, err := Parse([]byte(`{"event":"set username","data":"Alice"}`))
	assert.NoError(t, err)
	assert.Equal(t, SetUsername, e.Name)
	name, err := e.Text()
	assert.NoError(t, err)
	assert.Equal(t, "Alice", name)

	e, err = Parse([]byte(`{"event":"typing"}`))
	assert.NoError(t, err)
	assert.Equal(t, Typing, e.Name)
	assert.Empty(t, e.Data)

	_, err = Parse([]byte(`{"data":"Alice"}`))
	assert.Equal(t, ErrNoName, err)

	_, err = Parse([]byte(`not json`))
	assert.Error(t, err)
}

func TestEmptyListsAreNotNull(t *testing.T) {

	b, err := Users(nil).Marshal()
	assert.NoError(t, err)
	assert.JSONEq(t, `{"event":"user list","data":[]}`, string(b))

	b, err = TypingList(nil).Marshal()
	assert.NoError(t, err)
	assert.JSONEq(t, `{"event":"typing","data":[]}`, string(b))
}

func TestConstructors(t *testing.T) {

	b, err := Register(true).Marshal()
	assert.NoError(t, err)
	assert.JSONEq(t, `{"event":"username register","data":true}`, string(b))

	b, err = Chat("Alice", "Hi").Marshal()
	assert.NoError(t, err)
	assert.JSONEq(t, `{"event":"chat message","data":{"username":"Alice","message":"Hi"}}`, string(b))

	m, err := Chat("Alice", "Hi").Message()
	assert.NoError(t, err)
	assert.Equal(t, Message{Username: "Alice", Message: "Hi"}, m)

	names, err := Users([]string{"Alice", "Bob"}).Strings()
	assert.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob"}, names)

	e, err := New(StopTyping, nil)
	assert.NoError(t, err)
	b, err = e.Marshal()
	assert.NoError(t, err)
	assert.JSONEq(t, `{"event":"stop typing"}`, string(b))
}
