package crossbar

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/practable/chat/internal/hub"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

func newUpgrader(allowed []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			return lo.Contains(allowed, r.Header.Get("Origin"))
		},
	}
}

// serveWs handles websocket requests from clients.
func serveWs(closed <-chan struct{}, w http.ResponseWriter, r *http.Request, config Config) {

	conn, err := newUpgrader(config.AllowedOrigins).Upgrade(w, r, nil)
	if err != nil {
		log.WithField("error", err).Error("serveWs failed to upgrade to websocket")
		return
	}

	//Cannot return any http responses from here on

	id := uuid.New().String()

	client := &Client{
		id:         id,
		conn:       conn,
		events:     hub.NewClient(id, config.ClientBuffer),
		manager:    config.Manager,
		limiter:    newLimiter(config.RateLimit, config.RateBurst),
		userAgent:  r.UserAgent(),
		remoteAddr: remoteAddr(r),
	}

	if err := config.Manager.Connect(r.Context(), client.events); err != nil {
		log.WithFields(log.Fields{"id": id, "error": err.Error()}).Error("serveWs could not connect client")
		conn.Close()
		return
	}

	log.WithFields(log.Fields{
		"id":         id,
		"remoteAddr": client.remoteAddr,
		"userAgent":  client.userAgent,
	}).Debug("serveWs: new connection")

	go client.writePump(closed)
	go client.readPump(config.MaxMessageSize)
}

func remoteAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}
