package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Overland-East-Bay/greetings-api/internal/adapters/httpapi/oas"
)

type RouterOptions struct {
	// Logger receives access logs and is attached to each request context.
	// The zero value discards output.
	Logger zerolog.Logger
}

// NewRouter constructs the API HTTP router with a no-op logger.
func NewRouter(si oas.ServerInterface) http.Handler {
	return NewRouterWithOptions(si, RouterOptions{Logger: zerolog.Nop()})
}

// NewRouterWithOptions constructs the API HTTP router.
//
// The oas layer binds request parameters; this package wires routes/middleware
// and delegates to an oas.ServerInterface implementation.
func NewRouterWithOptions(si oas.ServerInterface, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(opts.Logger))
	r.Use(accessLog())
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeOASError(w, r, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeOASError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	// Health endpoint is used for infra checks and sits outside the API contract.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	_ = oas.HandlerWithOptions(si, oas.ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: paramErrorHandler,
	})
	return r
}
