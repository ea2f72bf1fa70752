// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/env_logger/internal/config"
	"github.com/relabs-tech/env_logger/internal/env"
)

const wsWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// envHub keeps the latest record and fans new ones out to websocket clients.
type envHub struct {
	mu      sync.RWMutex
	last    env.Record
	have    bool
	clients map[chan env.Record]struct{}
}

func newEnvHub() *envHub {
	return &envHub{clients: make(map[chan env.Record]struct{})}
}

func (h *envHub) update(rec env.Record) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = rec
	h.have = true
	for ch := range h.clients {
		select {
		case ch <- rec:
		default:
			// slow client, it will catch up with the next record
		}
	}
}

func (h *envHub) latest() (env.Record, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.have
}

func (h *envHub) subscribe() chan env.Record {
	ch := make(chan env.Record, 4)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *envHub) unsubscribe(ch chan env.Record) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
}

// handleLatest serves the latest record, 503 until one has arrived.
func (h *envHub) handleLatest(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.latest()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rec); err != nil {
		log.WithError(err).Warn("web: json encode error")
	}
}

// handleStream pushes every record to the websocket client, starting with
// the latest one if any.
func (h *envHub) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("web: websocket upgrade error")
		return
	}
	defer conn.Close()

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	// Reader goroutine only notices the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.WithError(err).Debug("web: websocket closed")
				}
				return
			}
		}
	}()

	if rec, ok := h.latest(); ok {
		if err := writeRecord(conn, rec); err != nil {
			return
		}
	}
	for {
		select {
		case <-gone:
			return
		case rec := <-ch:
			if err := writeRecord(conn, rec); err != nil {
				log.WithError(err).Debug("web: websocket write error")
				return
			}
		}
	}
}

func writeRecord(conn *websocket.Conn, rec env.Record) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(rec)
}

func (h *envHub) routes(staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/env", h.handleLatest)
	mux.HandleFunc("/ws", h.handleStream)
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

// RunWeb subscribes to the record topic and serves the latest record over
// HTTP and websocket.
func RunWeb(cfg *config.Config) error {
	hub := newEnvHub()

	client, err := ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer client.Disconnect(disconnectQuiesce)

	if err := subscribeRecords(client, cfg.TopicEnv, "web", hub.update); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Infof("web server listening on %s", addr)
	return http.ListenAndServe(addr, hub.routes("web"))
}
