package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tenantgrid/internal/platform/middleware"
	dErrors "tenantgrid/pkg/domain-errors"
	"tenantgrid/pkg/platform/httputil"
)

// NewRouter wires all endpoints. Admin routes require a valid bearer token.
func NewRouter(h *Handler, adminAuth func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/healthz", h.HandleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/config/tree/{db}", h.HandleTree)
	r.Get("/config/registry", h.HandleRegistry)
	r.Post("/rules/evaluate", h.HandleEvaluate)

	r.Group(func(r chi.Router) {
		r.Use(adminAuth)
		r.Post("/admin/config/reload", h.HandleReload)
	})

	return r
}

// decode reads a JSON request body into T, writing a bad-request response on
// failure.
func decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return v, false
	}
	return v, true
}
