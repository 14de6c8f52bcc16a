// Package httpapi exposes the snapshot pull API, the manual reload fallback
// and the rule-evaluation endpoint. Handlers stay thin: they translate HTTP
// to the config manager and rule processor and back.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tenantgrid/internal/config"
	"tenantgrid/internal/platform/metrics"
	"tenantgrid/internal/rules"
	dErrors "tenantgrid/pkg/domain-errors"
	"tenantgrid/pkg/platform/httputil"
	"tenantgrid/pkg/platform/sentinel"
)

// SnapshotSource serves published snapshots.
type SnapshotSource interface {
	Snapshot() (*config.Snapshot, error)
}

// Reloader triggers a rebuild and the follow-up notification.
type Reloader interface {
	Rebuild(ctx context.Context) error
}

// Publisher re-announces the config after a manual reload.
type Publisher interface {
	Publish(ctx context.Context) error
}

// Handler wires the config endpoints.
type Handler struct {
	snapshots SnapshotSource
	reloader  Reloader
	notifier  Publisher
	processor *rules.Processor
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewHandler constructs the handler with its dependencies.
func NewHandler(snapshots SnapshotSource, reloader Reloader, notifier Publisher,
	processor *rules.Processor, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		snapshots: snapshots,
		reloader:  reloader,
		notifier:  notifier,
		processor: processor,
		logger:    logger,
		metrics:   m,
	}
}

// HandleTree serves the full tenant tree rooted at the named database.
func (h *Handler) HandleTree(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshots.Snapshot()
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "configuration not yet available"))
		return
	}

	dbName := chi.URLParam(r, "db")
	node := snap.Registry.LookupTenant(dbName)
	if node == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "unknown tenant database"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, node)
}

// HandleRegistry serves the full global registry for the current snapshot.
func (h *Handler) HandleRegistry(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshots.Snapshot()
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "configuration not yet available"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snap.Registry)
}

// HandleReload is the manual rebuild fallback for operators.
func (h *Handler) HandleReload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.reloader.Rebuild(ctx); err != nil {
		h.logger.ErrorContext(ctx, "manual rebuild failed", "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "rebuild failed"))
		return
	}
	if err := h.notifier.Publish(ctx); err != nil {
		h.logger.ErrorContext(ctx, "manual rebuild notification failed", "error", err)
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

type evaluateRequest struct {
	TenantDB string         `json:"tenant_db"`
	Data     map[string]any `json:"data"`
}

// HandleEvaluate runs the hierarchical rule pipeline for a tenant against
// the current snapshot.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := decode[evaluateRequest](w, r)
	if !ok {
		return
	}
	if req.TenantDB == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "tenant_db is required"))
		return
	}

	snap, err := h.snapshots.Snapshot()
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "configuration not yet available"))
		return
	}

	levels, err := config.AncestorLevels(snap, req.TenantDB)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "unknown tenant database"))
			return
		}
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "resolve tenant hierarchy"))
		return
	}

	pctx := rules.NewPipelineContext(req.TenantDB)
	for k, v := range req.Data {
		pctx.SetData(k, v)
	}

	outcome := h.processor.Process(ctx, pctx, levels)
	if outcome.Aborted {
		h.metrics.RuleEvaluations.WithLabelValues("abort").Inc()
	} else {
		h.metrics.RuleEvaluations.WithLabelValues("success").Inc()
	}
	httputil.WriteJSON(w, http.StatusOK, outcome)
}

// HandleHealthz reports liveness and whether a snapshot is published.
func (h *Handler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	_, err := h.snapshots.Snapshot()
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"ready":  err == nil,
	})
}
