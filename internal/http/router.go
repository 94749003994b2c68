// Package httpapi assembles the public router: request metadata and auth
// middleware plus the domain handlers.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"arbiter/internal/platform/middleware"
	"arbiter/pkg/platform/httputil"
)

// Registrar mounts a handler's routes on a chi router.
type Registrar interface {
	Register(r chi.Router)
}

// RouterConfig carries everything the router needs. Auth routes stay public;
// everything else sits behind token validation.
type RouterConfig struct {
	Auth         Registrar
	Confirmation Registrar
	Validator    middleware.TokenValidator
	Logger       *slog.Logger
}

// NewRouter wires all endpoints.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestMeta)

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	cfg.Auth.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.Validator, cfg.Logger))
		cfg.Confirmation.Register(r)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
