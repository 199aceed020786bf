// Package api wires up the Gin HTTP router with all handler functions.
package api

import (
	"net/http"
	"time"

	"github.com/agilira/go-errors"
	"github.com/gin-gonic/gin"

	"github.com/agilira/kvnest/internal/store"
)

// Handler holds the store dependency injected from main.
type Handler struct {
	store *store.Store
}

// NewHandler creates a Handler.
func NewHandler(s *store.Store) *Handler {
	return &Handler{store: s}
}

// Register mounts all routes on r.
func (h *Handler) Register(r *gin.Engine) {
	kv := r.Group("/kv")
	kv.PUT("/:key", h.Put)
	kv.GET("/:key", h.Get)
	kv.DELETE("/:key", h.Delete)

	r.GET("/stats", h.Stats)
	r.GET("/namespaces", h.ListNamespaces)
	r.DELETE("/namespaces/:namespace", h.ClearNamespace)
	r.GET("/namespaces/:namespace/keys", h.NamespaceSize)
	r.POST("/compact", h.Compact)
	r.GET("/health", h.Health)
}

// putBody is the PUT /kv/:key request body.
type putBody struct {
	Value string `json:"value" binding:"required"`
	TTL   int64  `json:"ttl"` // seconds, 0 means no expiry
}

// Put handles PUT /kv/:key.
func (h *Handler) Put(c *gin.Context) {
	key := c.Param("key")
	ns := c.Query("ns")

	var body putBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ttl := time.Duration(body.TTL) * time.Second
	if err := h.store.Set(ns, key, body.Value, ttl); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "namespace": ns})
}

// Get handles GET /kv/:key.
func (h *Handler) Get(c *gin.Context) {
	key := c.Param("key")
	ns := c.Query("ns")

	value, ok := h.store.Get(ns, key)
	if !ok {
		writeError(c, store.NewErrNotFound(ns, key))
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "namespace": ns, "value": value})
}

// Delete handles DELETE /kv/:key.
func (h *Handler) Delete(c *gin.Context) {
	key := c.Param("key")
	ns := c.Query("ns")

	ok, err := h.store.Delete(ns, key)
	if err != nil {
		writeError(c, err)
		return
	}
	if !ok {
		writeError(c, store.NewErrNotFound(ns, key))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": key, "namespace": ns})
}

// Stats handles GET /stats.
func (h *Handler) Stats(c *gin.Context) {
	ns := c.Query("ns")
	c.JSON(http.StatusOK, h.store.GetStats(ns))
}

// ListNamespaces handles GET /namespaces.
func (h *Handler) ListNamespaces(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"namespaces": h.store.ListNamespaces()})
}

// ClearNamespace handles DELETE /namespaces/:namespace.
func (h *Handler) ClearNamespace(c *gin.Context) {
	ns := c.Param("namespace")
	removed, err := h.store.ClearNamespace(ns)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"namespace": ns, "removed": removed})
}

// NamespaceSize handles GET /namespaces/:namespace/keys.
func (h *Handler) NamespaceSize(c *gin.Context) {
	ns := c.Param("namespace")
	c.JSON(http.StatusOK, gin.H{"namespace": ns, "size": h.store.Size(ns)})
}

// Compact handles POST /compact.
func (h *Handler) Compact(c *gin.Context) {
	if err := h.store.Compact(); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"compacted": true})
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	ns := c.Query("ns")
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"size":   h.store.Size(ns),
	})
}

// writeError maps a store error to an HTTP status via its go-errors code
// instead of matching on the error message.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.HasCode(err, store.ErrCodeNotFound):
		status = http.StatusNotFound
	case errors.HasCode(err, store.ErrCodeInvalidKey):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
