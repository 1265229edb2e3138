/*
   reconws is a websocket chat client that automatically reconnects
   Copyright (C) 2019 Timothy Drysdale <timothy.d.drysdale@gmail.com>

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Affero General Public License as
   published by the Free Software Foundation, either version 3 of the
   License, or (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU Affero General Public License for more details.

   You should have received a copy of the GNU Affero General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package reconws

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jpillora/backoff"
	"github.com/practable/chat/internal/event"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrEmptyURL is returned when dialling without a url
	ErrEmptyURL = errors.New("can't dial an empty url")

	// ErrScheme is returned when the url is not ws or wss
	ErrScheme = errors.New("url needs to start with ws or wss")

	// ErrUserInfo is returned when the url carries credentials
	ErrUserInfo = errors.New("url can't contain user name and password")
)

// ReconWs represents a websocket chat client that will reconnect if the connection is closed
type ReconWs struct {
	// Connected is closed the first time a connection is made, which helps with testing
	Connected   chan struct{}
	ConnectedAt time.Time
	In          chan event.Event
	Out         chan event.Event
	Retry       RetryConfig
	ID          string

	once *sync.Once
}

// RetryConfig represents the parameters for when to retry to connect
type RetryConfig struct {
	Factor float64
	Jitter bool
	Min    time.Duration
	Max    time.Duration
}

// New returns a pointer to a new reconnecting websocket client ReconWs
func New() *ReconWs {
	r := &ReconWs{
		Connected: make(chan struct{}),
		// don't initialise connectedAt; set when connected
		In:  make(chan event.Event, 64),
		Out: make(chan event.Event),
		Retry: RetryConfig{Factor: 2,
			Min:    1 * time.Second,
			Max:    10 * time.Second,
			Jitter: false},
		ID:   uuid.New().String()[0:6],
		once: &sync.Once{},
	}
	return r
}

// Reconnect runs the client, dialling url again whenever the connection
// ends, until ctx is cancelled. Run it in a separate goroutine.
func (r *ReconWs) Reconnect(ctx context.Context, url string) {

	id := "reconws.Reconnect(" + r.ID + ")"

	boff := &backoff.Backoff{
		Min:    r.Retry.Min,
		Max:    r.Retry.Max,
		Factor: r.Retry.Factor,
		Jitter: r.Retry.Jitter,
	}

	for {

		err := r.Dial(ctx, url)

		wait := boff.Duration()

		if err == nil {
			boff.Reset()
			wait = 0
			log.Tracef("%s: dial finished successfully, resetting timeout to zero", id)
		} else {
			log.WithField("error", err).Tracef("%s: dial finished with error, increasing timeout", id)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// Dial the websocket server once.
// If dial fails then return immediately
// If dial succeeds then handle event traffic until
// the context is cancelled or the server closes the connection
func (r *ReconWs) Dial(ctx context.Context, urlStr string) error {

	id := "reconws.Dial(" + r.ID + ")"

	if urlStr == "" {
		log.Errorf("%s: %s", id, ErrEmptyURL.Error())
		return ErrEmptyURL
	}

	// parse to check, dial with original string
	u, err := url.Parse(urlStr)

	if err != nil {
		log.Errorf("%s: error with url because %s:", id, err.Error())
		return err
	}

	if u.Scheme != "ws" && u.Scheme != "wss" {
		log.Errorf("%s: %s", id, ErrScheme.Error())
		return ErrScheme
	}

	if u.User != nil {
		log.Errorf("%s: %s", id, ErrUserInfo.Error())
		return ErrUserInfo
	}

	log.WithField("To", u).Tracef("%s: connecting to %s", id, u)

	//assume our context has been given a deadline if needed
	c, _, err := websocket.DefaultDialer.DialContext(ctx, urlStr, nil)

	if err != nil {
		log.WithField("error", err).Errorf("%s: dialing error because %s", id, err.Error())
		return err
	}

	r.ConnectedAt = time.Now()
	r.once.Do(func() { close(r.Connected) })

	log.WithField("To", u).Tracef("%s: connected to %s", id, u)

	readClosed := make(chan struct{})

	go func() {
		defer close(readClosed)
		for {
			//assume this will produce non-nil err when the conn is closed
			_, data, err := c.ReadMessage()

			// log as info since we expect an error here on a normal exit
			if err != nil {
				log.WithField("error", err).Infof("%s: error reading from conn; closing", id)
				return
			}

			e, err := event.Parse(data)
			if err != nil {
				log.WithField("error", err).Warnf("%s: ignoring malformed event", id)
				continue
			}

			select {
			case r.In <- e:
				log.Tracef("%s: received %s", id, e.Name)
			case <-ctx.Done():
				return
			}
		}
	}()

	// handle our writing tasks
LOOPWRITING:
	for {
		select {
		case <-readClosed:
			err = nil // nil error resets the backoff
			break LOOPWRITING
		case e := <-r.Out:

			data, merr := e.Marshal()
			if merr != nil {
				log.WithField("error", merr).Errorf("%s: can't marshal %s", id, e.Name)
				continue
			}

			err = c.WriteMessage(websocket.TextMessage, data)
			if err != nil {
				log.WithField("error", err).Infof("%s: error writing to conn; closing", id)
				break LOOPWRITING
			}
			log.Tracef("%s: sent %s", id, e.Name)

		case <-ctx.Done(): // context has finished, either timeout or cancel
			// Cleanly close the connection by sending a close message
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.WithField("error", err).Infof("%s: error sending close message; closing", id)
			} else {
				log.Infof("%s: connection closed", id)
			}
			break LOOPWRITING
		}
	}

	c.Close()
	log.Tracef("%s: done", id)
	return err

}
