package main

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// monitorUpdate is the JSON message streamed to websocket clients after
// every simulation step.
type monitorUpdate struct {
	Time  float32 `json:"time"`
	Front float32 `json:"front"`
	Back  float32 `json:"back"`
}

// monitorHub maintains the set of connected websocket clients and
// broadcasts surface temperatures to them. A slow or dead client is dropped
// on its first failed write rather than stalling the simulation loop.
type monitorHub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newMonitorHub() *monitorHub {
	return &monitorHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// serveWs upgrades one monitoring client. Reads are drained and discarded;
// the stream is one-way.
func (h *monitorHub) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
	log.WithField("remote", conn.RemoteAddr()).Info("monitor client connected")

	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *monitorHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	h.mu.Unlock()
}

// broadcast sends one update to every connected client.
func (h *monitorHub) broadcast(update monitorUpdate) {
	h.mu.Lock()
	var failed []*websocket.Conn
	for conn := range h.clients {
		if err := conn.WriteJSON(&update); err != nil {
			failed = append(failed, conn)
		}
	}
	h.mu.Unlock()
	for _, conn := range failed {
		log.WithField("remote", conn.RemoteAddr()).Info("dropping monitor client")
		h.drop(conn)
	}
}

// serve starts the monitoring endpoint on addr under /ws. It runs in its
// own goroutine for the lifetime of the process.
func (h *monitorHub) serve(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.serveWs)
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.WithError(err).Error("monitor server stopped")
		}
	}()
	log.WithField("addr", addr).Info("serving surface temperatures on /ws")
}
