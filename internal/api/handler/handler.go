// Package handler provides HTTP handlers for all API endpoints.
// Handlers share one store handle built at startup; reads that rarely change
// go through the TTL cache with ETag support.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vflfantasy/vfl-data/internal/api/respond"
	"github.com/vflfantasy/vfl-data/internal/cache"
	"github.com/vflfantasy/vfl-data/internal/config"
	"github.com/vflfantasy/vfl-data/internal/maintenance"
	"github.com/vflfantasy/vfl-data/internal/match"
	"github.com/vflfantasy/vfl-data/internal/reconcile"
	"github.com/vflfantasy/vfl-data/internal/registry"
	"github.com/vflfantasy/vfl-data/internal/statsimport"
	"github.com/vflfantasy/vfl-data/internal/store"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	store    store.Store
	cache    *cache.Cache
	cfg      *config.Config
	logger   *slog.Logger
	resolver *match.Resolver
	scanner  *reconcile.Scanner
	applier  *reconcile.Applier
	importer *statsimport.Importer
	registry *registry.Service
	auditor  *maintenance.Auditor
}

// New creates a Handler with shared dependencies. auditor may be nil when
// the background audit is disabled.
func New(st store.Store, c *cache.Cache, cfg *config.Config, auditor *maintenance.Auditor, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	resolver := match.NewResolver()
	return &Handler{
		store:    st,
		cache:    c,
		cfg:      cfg,
		logger:   logger,
		resolver: resolver,
		scanner:  reconcile.NewScanner(resolver),
		applier:  reconcile.NewApplier(st, cfg.BatchLimit, logger),
		importer: statsimport.NewImporter(st, logger),
		registry: registry.New(st, logger),
		auditor:  auditor,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version and status.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "VFL Data API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
		"backend": h.cfg.Backend,
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies store connectivity.
// @Summary Database health check
// @Description Pings the configured store backend.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("Store health check failed", "error", err)
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"backend":   h.cfg.Backend,
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"backend":   h.cfg.Backend,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory cache statistics (active keys, expired keys).
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckAudit returns the latest background link audit.
// @Summary Link audit status
// @Description Returns the most recent mismatch audit report.
// @Tags health
// @Produce json
// @Success 200 {object} maintenance.AuditReport
// @Failure 404 {object} respond.ErrorResponse
// @Router /health/audit [get]
func (h *Handler) HealthCheckAudit(w http.ResponseWriter, r *http.Request) {
	if h.auditor == nil {
		respond.WriteError(w, http.StatusNotFound, "AUDIT_DISABLED", "Background audit is not running")
		return
	}
	report, ok := h.auditor.Last()
	if !ok {
		respond.WriteError(w, http.StatusNotFound, "NO_AUDIT", "No audit has completed yet")
		return
	}
	key := fmt.Sprintf("%s%d", cache.PrefixAudit, report.RanAt.UnixNano())
	h.writeCached(w, r, key, cache.TTLAudit, func() (interface{}, error) {
		return report, nil
	})
}

// writeCached serves key from the cache, or builds it with fn and caches it.
func (h *Handler) writeCached(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, fn func() (interface{}, error)) {
	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	v, err := fn()
	if err != nil {
		h.logger.Error("Query failed", "key", key, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to load data")
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_FAILED", "Failed to encode response")
		return
	}
	etag := h.cache.Set(key, data, ttl)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, ttl, false)
}
