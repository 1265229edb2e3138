package crossbar

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/practable/chat/internal/chat"
	"github.com/practable/chat/internal/event"
	log "github.com/sirupsen/logrus"
)

// readPump pumps events from the websocket connection to the manager.
//
// The application runs readPump in a per-connection goroutine. The application
// ensures that there is at most one reader on a connection by executing all
// reads from this goroutine.
func (c *Client) readPump(maxMessageSize int64) {

	ctx := context.Background()

	defer func() {
		if err := c.manager.Disconnect(ctx, c.id); err != nil {
			log.WithFields(log.Fields{"id": c.id, "error": err.Error()}).Debug("readPump: disconnect")
		}
		c.conn.Close()
		log.WithField("id", c.id).Trace("readpump closed")
	}()

	if maxMessageSize > 0 {
		c.conn.SetReadLimit(maxMessageSize)
	}

	err := c.conn.SetReadDeadline(time.Now().Add(pongWait))

	if err != nil {
		log.Errorf("readPump deadline error: %v", err)
		return
	}

	c.conn.SetPongHandler(func(string) error {
		err := c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return err
	})

	for {

		mt, data, err := c.conn.ReadMessage()

		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.WithFields(log.Fields{"id": c.id, "error": err.Error()}).Warn("readPump: unexpected close")
			}
			break
		}

		c.events.Stats.RecordTx(len(data))

		if mt != websocket.TextMessage {
			log.WithField("id", c.id).Debug("readPump: ignoring non-text frame")
			continue
		}

		if c.limiter != nil && !c.limiter.Allow() {
			log.WithField("id", c.id).Warn("readPump: rate limited, event dropped")
			continue
		}

		e, err := event.Parse(data)

		if err != nil {
			log.WithFields(log.Fields{"id": c.id, "error": err.Error()}).Info("readPump: malformed event ignored")
			continue
		}

		err = c.manager.Handle(ctx, c.id, e)

		if errors.Is(err, chat.ErrStopped) {
			return
		}

		if err != nil {
			log.WithFields(log.Fields{"id": c.id, "event": e.Name, "error": err.Error()}).Info("readPump: event ignored")
		}
	}
}

// writePump pumps events from the hub to the websocket connection.
//
// A goroutine running writePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) writePump(closed <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		log.WithField("id", c.id).Trace("write pump dead")
	}()
	for {
		select {

		case e, ok := <-c.events.Send:
			err := c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err != nil {
				log.Errorf("writePump deadline error: %s", err.Error())
				return
			}

			if !ok {
				// The manager removed us from the hub.
				err := c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				if err != nil {
					log.Debugf("writePump closeMessage error: %s", err.Error())
				}
				return
			}

			data, err := e.Marshal()
			if err != nil {
				log.WithFields(log.Fields{"id": c.id, "event": e.Name, "error": err.Error()}).Error("writePump: marshal")
				continue
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.WithFields(log.Fields{"id": c.id, "error": err.Error()}).Debug("writePump: write failed, closing")
				return
			}

			c.events.Stats.RecordRx(len(data))

		case <-ticker.C:
			err := c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err != nil {
				log.Errorf("writePump ping deadline error: %v", err)
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
