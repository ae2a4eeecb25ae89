// Copyright 2026 The Provisionr Authors
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"context"
	"log/slog"
)

type contextKey struct{}

var loggerContextKey = contextKey{}

// WithLogger attaches a request-scoped logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext returns the request-scoped logger, or slog.Default() if none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
