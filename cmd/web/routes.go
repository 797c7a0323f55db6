package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	api := alice.New(corsHeaders)

	mux.Handle("GET /{$}", api.ThenFunc(app.apiMeta))
	mux.Handle("GET /api/healthy", api.ThenFunc(app.healthy))

	mux.Handle("POST /chat_legal", api.ThenFunc(app.chatLegal))
	mux.Handle("POST /query", api.ThenFunc(app.query))
	mux.Handle("POST /process", api.ThenFunc(app.process))
	mux.Handle("GET /process/events/{sessionID}", api.ThenFunc(app.processEvents))

	mux.Handle("POST /validate-session", api.ThenFunc(app.validateSession))
	mux.Handle("GET /session/{sessionID}/status", api.ThenFunc(app.sessionStatus))
	mux.Handle("GET /namespaces", api.ThenFunc(app.namespaces))

	return app.recoverPanic(app.logRequest(secureHeaders(mux)))
}
