// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/narrowly/middleware"
	"github.com/danielhkuo/narrowly/pubsub"
	"github.com/danielhkuo/narrowly/session"
)

const (
	// pingInterval keeps idle connections alive through proxies that cut
	// silent streams.
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LiveHandler streams session state to connected viewers: an initial
// snapshot on connect, then every committed change until the connection
// closes. Viewing requires no token; mutation always goes through the
// regular actions.
type LiveHandler struct {
	engine *session.Engine
	broker *pubsub.Broker
}

func NewLiveHandler(engine *session.Engine, broker *pubsub.Broker) *LiveHandler {
	return &LiveHandler{engine: engine, broker: broker}
}

// Stream handles GET /sessions/:list/live
func (h *LiveHandler) Stream(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("list")
	if listID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "bad_request", "list id is required")
		return
	}

	// Resolve the snapshot before upgrading so an unknown list is a plain
	// HTTP error, not a doomed websocket.
	snapshot, err := h.engine.Get(r.Context(), listID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "list_id", listID, "error", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.broker.Subscribe(listID)
	defer cancel()

	// Reads are discarded; their only purpose is prompt teardown when the
	// viewer goes away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	slog.Info("viewer connected", "list_id", listID, "remote", r.RemoteAddr)

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(snapshot); err != nil {
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case view, ok := <-updates:
			if !ok {
				// Broker shut down.
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(view); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-done:
			slog.Info("viewer disconnected", "list_id", listID)
			return
		}
	}
}
