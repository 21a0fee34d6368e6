package requestid

import (
	"context"
	"net/http"
)

// Middleware reuses a valid incoming ID or generates one, stores it in the
// request context and echoes it in the response header.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if !Valid(id) {
			id = New()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), id)))
	})
}

// SetHeader copies the ID from ctx onto an outgoing request header.
func SetHeader(ctx context.Context, h http.Header) {
	if id := FromContext(ctx); Valid(id) {
		h.Set(Header, id)
	}
}
