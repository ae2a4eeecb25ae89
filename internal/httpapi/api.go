// Copyright 2026 The Provisionr Authors
// SPDX-License-Identifier: Apache-2.0

package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sam-ruff/provisionr/internal/provisionr"
	"github.com/sam-ruff/provisionr/pkg/middleware"
)

// API wires HTTP handlers to a provisionr Dispatcher.
type API struct {
	dispatcher   *provisionr.Dispatcher
	logger       *slog.Logger
	replyTimeout time.Duration
	validate     *validator.Validate
}

// New builds an API. replyTimeout <= 0 uses provisionr.DefaultReplyTimeout.
func New(dispatcher *provisionr.Dispatcher, logger *slog.Logger, replyTimeout time.Duration) *API {
	if replyTimeout <= 0 {
		replyTimeout = provisionr.DefaultReplyTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		dispatcher:   dispatcher,
		logger:       logger.With("module", "httpapi"),
		replyTimeout: replyTimeout,
		validate:     validator.New(),
	}
}

// Routes builds the full /api/v1 surface, in the teacher's RouteBuilder
// idiom, wrapped with the given middleware (typically request-ID/access
// logging).
func (a *API) Routes(middlewares ...middleware.Middleware) http.Handler {
	mux := http.NewServeMux()
	rb := middleware.NewRouteBuilder(mux).With(middlewares...)

	rb.HandleFunc("POST /api/v1/template/{name}", a.setTemplate)
	rb.HandleFunc("GET /api/v1/template/{name}", a.renderTemplate)
	rb.HandleFunc("DELETE /api/v1/template/{name}", a.deleteTemplate)
	rb.HandleFunc("PUT /api/v1/template/{name}/values", a.setValues)
	rb.HandleFunc("GET /api/v1/config/{name}", a.getConfig)
	rb.HandleFunc("PUT /api/v1/config/{name}", a.setConfig)
	rb.HandleFunc("GET /api/v1/rendered/{name}", a.listRendered)
	rb.HandleFunc("GET /api/v1/rendered/{name}/{id_value}", a.getRendered)
	rb.HandleFunc("GET /healthz", a.health)

	return mux
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	writeJSONMessage(w, http.StatusOK, "ok")
}

// doSend enqueues cmd and waits up to the API's reply timeout for a value
// on reply, translating queue-full and timeout conditions into the
// dispatchOutcome the caller's handler renders.
func doSend[T any](a *API, cmd provisionr.Command, reply <-chan T) (T, *dispatchOutcome) {
	var zero T
	if err := a.dispatcher.Enqueue(cmd); err != nil {
		outcome := classifyEnqueueError(err)
		return zero, &outcome
	}
	val, err := provisionr.AwaitReply(reply, a.replyTimeout)
	if err != nil {
		outcome := classifyReplyTimeout()
		return zero, &outcome
	}
	return val, nil
}
