package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"authd/internal/platform/metrics"
	"authd/internal/platform/middleware"
)

// NewRouter wires the authorization endpoints behind the shared middleware
// chain plus health and metrics endpoints for operators.
func NewRouter(logger *slog.Logger, m *metrics.Metrics, authorize *AuthorizeHandler, login *LoginHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(middleware.Latency(m))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/login", login.Login)
	r.Post("/login", login.Login)

	r.Get("/authorize", authorize.Authorize)
	r.Get("/authorize/confirm", authorize.Confirm)
	r.Post("/authorize/confirm", authorize.Confirm)
	r.Get("/authorize/success", authorize.Success)
	r.Get("/authorize/logout", authorize.Logout)

	return r
}
