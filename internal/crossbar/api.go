package crossbar

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/practable/chat/internal/chat"
	"github.com/practable/chat/internal/hub"
	"github.com/shirou/gopsutil/v4/process"
	log "github.com/sirupsen/logrus"
)

type api struct {
	manager *chat.Manager
	hub     *hub.Hub
}

// Stats represents the report served on /api/stats
type Stats struct {
	Chat    chat.Snapshot `json:"chat"`
	Hub     *hub.Report   `json:"hub,omitempty"`
	Process *Process      `json:"process,omitempty"`
}

// Process represents resource usage of this process
type Process struct {
	PID        int32   `json:"pid"`
	RSS        uint64  `json:"rss"`
	CPUPercent float64 `json:"cpuPercent"`
	Threads    int32   `json:"threads"`
}

func (a *api) users(w http.ResponseWriter, r *http.Request) {
	users, err := a.manager.Users(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, users)
}

func (a *api) typing(w http.ResponseWriter, r *http.Request) {
	typing, err := a.manager.TypingList(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, typing)
}

func (a *api) stats(w http.ResponseWriter, r *http.Request) {

	snapshot, err := a.manager.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	s := Stats{Chat: snapshot}

	if a.hub != nil {
		report := a.hub.Report()
		s.Hub = &report
	}

	p, err := processStats()
	if err != nil {
		log.WithField("error", err.Error()).Warn("api: process stats unavailable")
	} else {
		s.Process = p
	}

	writeJSON(w, s)
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func processStats() (*Process, error) {

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}

	mem, err := p.MemoryInfo()
	if err != nil {
		return nil, err
	}

	cpu, err := p.CPUPercent()
	if err != nil {
		return nil, err
	}

	threads, err := p.NumThreads()
	if err != nil {
		return nil, err
	}

	return &Process{
		PID:        p.Pid,
		RSS:        mem.RSS,
		CPUPercent: cpu,
		Threads:    threads,
	}, nil
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithField("error", err.Error()).Error("api: encoding response")
	}
}
