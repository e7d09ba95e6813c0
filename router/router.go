// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/narrowly/cliparse"
	"github.com/danielhkuo/narrowly/handlers"
	"github.com/danielhkuo/narrowly/middleware"
	"github.com/danielhkuo/narrowly/pubsub"
	"github.com/danielhkuo/narrowly/session"
	"github.com/danielhkuo/narrowly/store"
)

func NewRouter(dbConn *sql.DB, cfg cliparse.Config, broker *pubsub.Broker) *http.ServeMux {
	mux := http.NewServeMux()

	// Wire the engine: one SQL store serves both collaborator contracts.
	sqlStore := store.New(dbConn)
	engine := session.NewEngine(sqlStore, sqlStore, broker, session.Options{
		ResetOrganizerOnly: cfg.ResetOrganizerOnly,
	})

	sessionHandler := handlers.NewSessionHandler(engine, cfg)
	liveHandler := handlers.NewLiveHandler(engine, broker)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Narrowing actions
	mux.HandleFunc("GET /sessions/{list}", middleware.WithLogging(sessionHandler.GetState))
	mux.HandleFunc("POST /sessions/{list}/select", middleware.WithLogging(sessionHandler.Select))
	mux.HandleFunc("POST /sessions/{list}/deselect", middleware.WithLogging(sessionHandler.Deselect))
	mux.HandleFunc("POST /sessions/{list}/confirm", middleware.WithLogging(sessionHandler.Confirm))
	mux.HandleFunc("POST /sessions/{list}/undo", middleware.WithLogging(sessionHandler.Undo))
	mux.HandleFunc("POST /sessions/{list}/reset", middleware.WithLogging(sessionHandler.Reset))

	// Live updates (long-lived; logged on connect/disconnect instead)
	mux.HandleFunc("GET /sessions/{list}/live", liveHandler.Stream)

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("narrowly API v1"))
	})

	return mux
}
