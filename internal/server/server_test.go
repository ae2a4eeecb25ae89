// Copyright 2026 The Provisionr Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"
)

func TestServer_Run_GracefulShutdownOnContextCancel(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := New(Config{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second}, handler, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v, want nil on graceful shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after context cancellation")
	}
}

func TestServer_New_DefaultShutdownTimeout(t *testing.T) {
	srv := New(Config{Addr: "127.0.0.1:0"}, http.NotFoundHandler(), slog.Default())
	if srv.shutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("shutdownTimeout = %v, want %v", srv.shutdownTimeout, DefaultShutdownTimeout)
	}
}
