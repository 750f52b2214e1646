// Package middlewares contiene los decoradores HTTP compartidos por todas las rutas.
package middlewares

import "net/http"

// Middleware es un decorador de http.Handler
type Middleware func(http.Handler) http.Handler

// Chain aplica middlewares en orden de izquierda a derecha.
// Chain(h, A, B, C) ejecuta: A -> B -> C -> h
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] == nil {
			continue
		}
		h = mws[i](h)
	}
	return h
}

// Std adapta los middlewares al formato func(http.Handler) http.Handler que espera chi.
func Std(mws ...Middleware) []func(http.Handler) http.Handler {
	out := make([]func(http.Handler) http.Handler, 0, len(mws))
	for _, m := range mws {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}
