package middleware

import (
	"net/http"

	"conreach/internal/services"
)

// LookupCache gives every request its own account lookup cache so repeated user
// matching within one request hits the store once.
func LookupCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := services.WithLookupCache(r.Context(), services.NewLookupCache())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
