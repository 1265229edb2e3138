package reconws

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/practable/chat/internal/event"
	"github.com/sirupsen/logrus"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

var upgrader = websocket.Upgrader{}

func TestMain(m *testing.M) {
	flag.Parse()

	if testing.Verbose() {
		log.SetLevel(log.TraceLevel)
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
		defer log.SetOutput(os.Stdout)
	} else {
		var ignore bytes.Buffer
		logignore := bufio.NewWriter(&ignore)
		log.SetOutput(logignore)
	}

	os.Exit(m.Run())
}

// echo sends back every frame it receives
func echo(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer c.Close()
	for {
		mt, data, err := c.ReadMessage()
		if err != nil {
			return
		}
		if err := c.WriteMessage(mt, data); err != nil {
			return
		}
	}
}

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func TestDialBadURL(t *testing.T) {

	r := New()
	ctx := context.Background()

	assert.Equal(t, ErrEmptyURL, r.Dial(ctx, ""))
	assert.Equal(t, ErrScheme, r.Dial(ctx, "http://127.0.0.1"))
	assert.Equal(t, ErrUserInfo, r.Dial(ctx, "ws://user:pass@127.0.0.1"))
}

func TestDialEcho(t *testing.T) {

	s := httptest.NewServer(http.HandlerFunc(echo))
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New()

	done := make(chan error)
	go func() {
		done <- r.Dial(ctx, wsURL(s))
	}()

	select {
	case <-r.Connected:
	case <-time.After(time.Second):
		t.Fatal("did not connect")
	}

	sent := event.Chat("alice", "hello")
	r.Out <- sent

	select {
	case got := <-r.In:
		assert.Equal(t, sent, got)
	case <-time.After(time.Second):
		t.Fatal("no echo")
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("dial did not return after cancel")
	}
}

func TestReconnect(t *testing.T) {

	// closes the first connection straight away, echoes on later ones
	var first int32
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.CompareAndSwapInt32(&first, 0, 1) {
			c, err := upgrader.Upgrade(w, r, nil)
			if err == nil {
				c.Close()
			}
			return
		}
		echo(w, r)
	}))
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New()
	r.Retry.Min = 10 * time.Millisecond
	r.Retry.Max = 50 * time.Millisecond

	go r.Reconnect(ctx, wsURL(s))

	sent := event.Register(true)

	// the first connection may already be gone, so keep trying
	deadline := time.After(3 * time.Second)

	for {
		select {
		case r.Out <- sent:
		case <-deadline:
			t.Fatal("no echo after reconnect")
		}

		select {
		case got := <-r.In:
			assert.Equal(t, sent, got)
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
}
