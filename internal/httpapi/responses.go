// Copyright 2026 The Provisionr Authors
// SPDX-License-Identifier: Apache-2.0

// Package httpapi implements the HTTP boundary over the provisionr
// dispatcher: translating requests into commands, awaiting their replies,
// and shaping the exact response bodies this service's callers expect.
package httpapi

import (
	"encoding/json"
	"net/http"
)

// errorResponse is the JSON shape returned for every failed request except
// a template render, which always replies in plain text regardless of
// outcome.
type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// successMessage is the JSON shape returned for operations that mutate
// state but have no data of their own to return.
type successMessage struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Status: "error", Error: message})
}

func writeJSONMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, successMessage{Status: "ok", Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writePlainText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
