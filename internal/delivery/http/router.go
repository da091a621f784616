package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"conreach/internal/delivery/http/controllers"
	"conreach/internal/delivery/http/middleware"
)

// Routes bundles what NewRouter mounts.
type Routes struct {
	OptIn        *controllers.OptInController
	Feed         *controllers.FeedController
	VendorEvents *controllers.VendorEventController
	Broadcasts   *controllers.BroadcastController
	// RequireAuth guards the vendor routes.
	RequireAuth func(http.HandlerFunc) http.HandlerFunc
	// RequireOperator guards the operator routes. Nil falls back to RequireAuth.
	RequireOperator func(http.HandlerFunc) http.HandlerFunc
	// OptionalAuth links a signed-in visitor to their scan. Nil leaves scans anonymous.
	OptionalAuth func(http.HandlerFunc) http.HandlerFunc
	Metrics      http.Handler
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(rt Routes) *http.ServeMux {
	mux := http.NewServeMux()
	auth := rt.RequireAuth
	operator := rt.RequireOperator
	if operator == nil {
		operator = auth
	}
	visitor := rt.OptionalAuth
	if visitor == nil {
		visitor = func(h http.HandlerFunc) http.HandlerFunc { return h }
	}

	// Visitor routes (public)
	mux.HandleFunc("GET /optin/{token}", rt.OptIn.Landing)
	mux.Handle("POST /optin/{token}", middleware.LookupCache(visitor(rt.OptIn.Scan)))
	mux.HandleFunc("POST /checkin/{token}", rt.OptIn.CheckIn)
	mux.HandleFunc("GET /events/{eventID}/feed", rt.Feed.ListFeed)

	// Vendor routes
	mux.HandleFunc("POST /vendor-events", auth(rt.VendorEvents.Register))
	mux.HandleFunc("POST /vendor-events/{id}/deactivate", auth(rt.VendorEvents.Deactivate))
	mux.HandleFunc("POST /broadcasts", auth(rt.Broadcasts.Create))
	mux.HandleFunc("GET /broadcasts/{id}", auth(rt.Broadcasts.Get))
	mux.HandleFunc("GET /broadcasts/{id}/receipts", auth(rt.Broadcasts.ListReceipts))
	mux.HandleFunc("POST /broadcasts/{id}/redeliver", auth(rt.Broadcasts.Redeliver))

	// Operator
	mux.HandleFunc("GET /operator/broadcasts/stalled", operator(rt.Broadcasts.ListStalled))

	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics)
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
