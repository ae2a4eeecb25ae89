// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package middleware provides the route-builder a single small HTTP
// service needs: compose a middleware stack once, then register every
// handler through it without repeating the wrapping at each call site.
package middleware

import "net/http"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// chain applies middlewares in order, the first in the slice outermost.
func chain(middlewares ...Middleware) Middleware {
	return func(handler http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			handler = middlewares[i](handler)
		}
		return handler
	}
}

// RouteBuilder registers handlers on a ServeMux wrapped in a fixed
// middleware stack, so route registration stays a one-liner per endpoint.
type RouteBuilder struct {
	mux         *http.ServeMux
	middlewares []Middleware
}

// NewRouteBuilder builds a RouteBuilder with no middleware yet attached.
func NewRouteBuilder(mux *http.ServeMux) *RouteBuilder {
	return &RouteBuilder{mux: mux}
}

// With returns a RouteBuilder that additionally applies middlewares.
func (rb *RouteBuilder) With(middlewares ...Middleware) *RouteBuilder {
	return &RouteBuilder{
		mux:         rb.mux,
		middlewares: append(append([]Middleware{}, rb.middlewares...), middlewares...),
	}
}

// HandleFunc registers handlerFunc for pattern, wrapped in the builder's
// middleware stack.
func (rb *RouteBuilder) HandleFunc(pattern string, handlerFunc http.HandlerFunc) {
	var handler http.Handler = handlerFunc
	if len(rb.middlewares) > 0 {
		handler = chain(rb.middlewares...)(handler)
	}
	rb.mux.Handle(pattern, handler)
}
