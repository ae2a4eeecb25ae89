// Copyright 2026 The Provisionr Authors
// SPDX-License-Identifier: Apache-2.0

package httpapi

import (
	"errors"
	"net/http"

	"github.com/sam-ruff/provisionr/internal/provisionr"
)

// dispatchOutcome classifies a failure to get a command accepted and
// answered by the dispatcher into an HTTP status and two message
// variants: one for the JSON envelope used by most endpoints, one for
// the plain-text body the render endpoint always uses.
type dispatchOutcome struct {
	status      int
	jsonMessage string
	textMessage string
}

// classifyEnqueueError maps a failure to get a command onto the
// dispatcher's queue (queue full or dispatcher stopped) to a 503 and its
// message pair. Reply timeouts and domain errors returned by the
// dispatcher are classified by classifyReplyTimeout and
// classifyHandlerError.
func classifyEnqueueError(err error) dispatchOutcome {
	switch {
	case errors.Is(err, provisionr.ErrQueueFull), errors.Is(err, provisionr.ErrDispatcherClosed):
		return dispatchOutcome{status: http.StatusServiceUnavailable, jsonMessage: "handler-unavailable", textMessage: "Handler unavailable"}
	default:
		return dispatchOutcome{status: http.StatusServiceUnavailable, jsonMessage: "handler-unavailable", textMessage: "Handler unavailable"}
	}
}

func classifyReplyTimeout() dispatchOutcome {
	return dispatchOutcome{status: http.StatusGatewayTimeout, jsonMessage: "timeout", textMessage: "Request timeout"}
}

// classifyHandlerError maps a domain error returned by the dispatcher
// itself to the 400 response both the JSON and plain-text paths use.
func classifyHandlerError(err error) dispatchOutcome {
	return dispatchOutcome{status: http.StatusBadRequest, jsonMessage: err.Error(), textMessage: err.Error()}
}

func writeOutcomeJSON(w http.ResponseWriter, o dispatchOutcome) {
	writeJSONError(w, o.status, o.jsonMessage)
}

func writeOutcomePlain(w http.ResponseWriter, o dispatchOutcome) {
	writePlainText(w, o.status, o.textMessage)
}
