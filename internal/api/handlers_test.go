package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agilira/kvnest/internal/store"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := store.New(store.Options{
		Capacity:           10,
		LogFile:            filepath.Join(t.TempDir(), "wal.log"),
		CleanupInterval:    time.Hour,
		CompactionInterval: time.Hour,
	})
	require.NoError(t, err)
	require.NoError(t, s.Initialize())
	t.Cleanup(func() { _ = s.Shutdown() })

	r := gin.New()
	NewHandler(s).Register(r)
	return r
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_PutThenGet(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodPut, "/kv/k1", map[string]any{"value": "v1"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodGet, "/kv/k1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "v1", body["value"])
}

func TestHandler_GetMissingReturns404(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/kv/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_PutMissingValueReturns400(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(r, http.MethodPut, "/kv/k1", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_DeleteThenGetMisses(t *testing.T) {
	r := newTestRouter(t)
	doRequest(r, http.MethodPut, "/kv/k1", map[string]any{"value": "v1"})

	w := doRequest(r, http.MethodDelete, "/kv/k1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodGet, "/kv/k1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_StatsReflectsHitsAndMisses(t *testing.T) {
	r := newTestRouter(t)
	doRequest(r, http.MethodPut, "/kv/k1", map[string]any{"value": "v1"})
	doRequest(r, http.MethodGet, "/kv/k1", nil)
	doRequest(r, http.MethodGet, "/kv/missing", nil)

	w := doRequest(r, http.MethodGet, "/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var stats store.StatsSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, uint64(1), stats.CacheHits)
	assert.Equal(t, uint64(1), stats.CacheMisses)
}

func TestHandler_NamespaceRoutes(t *testing.T) {
	r := newTestRouter(t)
	doRequest(r, http.MethodPut, "/kv/k1?ns=app1", map[string]any{"value": "v1"})

	w := doRequest(r, http.MethodGet, "/namespaces", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "app1")

	w = doRequest(r, http.MethodGet, "/namespaces/app1/keys", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"size":1`)

	w = doRequest(r, http.MethodDelete, "/namespaces/app1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"removed":1`)
}

func TestHandler_Compact(t *testing.T) {
	r := newTestRouter(t)
	doRequest(r, http.MethodPut, "/kv/k1", map[string]any{"value": "v1"})

	w := doRequest(r, http.MethodPost, "/compact", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestHandler_Health(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
