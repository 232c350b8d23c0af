package middleware

import (
	"net/http"
	"slices"
)

// Middleware decorates an http.Handler. The stack wraps the whole mux, so it
// covers every mounted route and not only the Gin ones.
type Middleware func(http.Handler) http.Handler

// Chain nests mws so that mws[0] sees the request first.
func Chain(mws ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for _, mw := range slices.Backward(mws) {
			h = mw(h)
		}
		return h
	}
}
