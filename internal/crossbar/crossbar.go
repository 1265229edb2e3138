// Package crossbar serves the chat over websockets, along with
// a small status API and metrics
package crossbar

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/practable/chat/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// Crossbar creates and runs a new crossbar instance, until closed is closed
func Crossbar(config Config, closed <-chan struct{}, parentwg *sync.WaitGroup) {

	defer parentwg.Done()

	a := &api{manager: config.Manager, hub: config.Hub}

	router := mux.NewRouter()

	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(closed, w, r, config)
	})
	router.HandleFunc("/api/users", a.users).Methods("GET")
	router.HandleFunc("/api/typing", a.typing).Methods("GET")
	router.HandleFunc("/api/stats", a.stats).Methods("GET")
	router.HandleFunc("/healthz", healthz).Methods("GET")
	router.Handle("/metrics", metrics.Handler())

	if config.StaticDir != "" {
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(config.StaticDir)))
	}

	addr := fmt.Sprintf("%s:%d", config.Host, config.Listen)

	h := &http.Server{Addr: addr, Handler: router}

	go func() {
		log.WithField("addr", addr).Info("crossbar: listening")
		if err := h.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithField("error", err.Error()).Error("crossbar: ListenAndServe")
		}
	}()

	<-closed

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.Shutdown(ctx); err != nil {
		log.WithField("error", err.Error()).Warn("crossbar: shutdown")
	}

	log.Trace("crossbar: done")
}
