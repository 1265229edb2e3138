package relay

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/phayes/freeport"
	"github.com/practable/chat/internal/event"
	"github.com/practable/chat/internal/reconws"
	"github.com/sirupsen/logrus"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func TestValidate(t *testing.T) {

	c := NewDefaultConfig()
	assert.NoError(t, c.Validate())
	assert.True(t, c.DropBlankMessages)

	bad := c
	bad.Port = 0
	assert.Error(t, bad.Validate())

	bad = c
	bad.ClientBuffer = 0
	assert.Error(t, bad.Validate())

	bad = c
	bad.RateLimit = -1
	assert.Error(t, bad.Validate())

	bad = c
	bad.StaticDir = "/no/such/directory/here"
	assert.Error(t, bad.Validate())

	bad = c
	bad.AllowedOrigins = []string{"not a url"}
	assert.Error(t, bad.Validate())

	good := c
	good.Host = "127.0.0.1"
	good.StaticDir = t.TempDir()
	good.AllowedOrigins = []string{"https://chat.example.org"}
	assert.NoError(t, good.Validate())
}

func TestRelay(t *testing.T) {

	port, err := freeport.GetFreePort()
	require.NoError(t, err)

	config := NewDefaultConfig()
	config.Port = port
	config.Host = "127.0.0.1"
	config.IdentifyByID = true
	require.NoError(t, config.Validate())

	closed := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go Relay(closed, &wg, config)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := reconws.New()
	r.Retry.Min = 10 * time.Millisecond
	r.Retry.Max = 100 * time.Millisecond

	// the server may not be listening yet
	go r.Reconnect(ctx, "ws://127.0.0.1:"+strconv.Itoa(port)+"/ws")

	select {
	case <-r.Connected:
	case <-time.After(2 * time.Second):
		t.Fatal("did not connect")
	}

	// identified by id, so the user list arrives on connect
	select {
	case e := <-r.In:
		assert.Equal(t, event.UserList, e.Name)
		users, err := e.Strings()
		require.NoError(t, err)
		assert.Len(t, users, 1)
	case <-time.After(time.Second):
		t.Fatal("no user list")
	}

	cancel()
	close(closed)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("relay did not stop")
	}
}
