package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/upb/proof-layer/app"
	"github.com/upb/proof-layer/config"
)

func setupTestRouter(t *testing.T) (*app.Dependencies, http.Handler) {
	t.Helper()
	cfg := &config.Config{
		Environment: "test",
		Storage: config.StorageConfig{
			Backend:    config.StoreBackendSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "routes.db"),
			Bucket:     "proof-bucket",
			Region:     "us-east-1",
			PresignTTL: time.Hour,
		},
		Embedding: config.EmbeddingConfig{Mode: config.EmbeddingModeFake, Dimension: 8},
		Retrieval: config.RetrievalConfig{
			SimilarityThreshold: 0.5,
			DefaultTopK:         10,
			MinTopK:             1,
			MaxTopK:             20,
		},
		Chunking: config.ChunkingConfig{Size: 1000, Overlap: 200},
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	deps, err := app.NewDependencies(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = deps.Close(context.Background()) })

	return deps, SetupRoutes(deps)
}

func doRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthRoutes(t *testing.T) {
	_, router := setupTestRouter(t)

	tests := []struct {
		name string
		path string
	}{
		{"health", "/health"},
		{"liveness", "/healthz"},
		{"readiness", "/readyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, tt.path, "")
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		})
	}

	w := doRequest(router, http.MethodGet, "/health", "")
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestAskRoute(t *testing.T) {
	deps, router := setupTestRouter(t)

	t.Run("empty knowledge base refuses", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/ask", `{"question":"What is the refund window?"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, true, body["refused"])
		assert.Equal(t, "", body["answer"])
		assert.Equal(t, []interface{}{}, body["citations"])
		assert.NotEmpty(t, body["trace_id"])
	})

	t.Run("answers from ingested text", func(t *testing.T) {
		const text = "The refund window is 14 days."
		_, err := deps.Ingest.IngestData(context.Background(), "proof-bucket", "uploads/manual/faq.txt", []byte(text))
		require.NoError(t, err)

		w := doRequest(router, http.MethodPost, "/ask", `{"question":"The refund window is 14 days.","top_k":3}`)
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, false, body["refused"])
		assert.Nil(t, body["refusal_reason"])
		assert.Equal(t, text, body["answer"])
	})

	t.Run("missing question", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/ask", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("top_k out of range", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/ask", `{"question":"q","top_k":0}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("top_k above configured max", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/ask", `{"question":"q","top_k":21}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "top_k must be between 1 and 20")
	})

	t.Run("wrong method", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/ask", "")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestPresignRoute(t *testing.T) {
	_, router := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/presign", `{"filename":"faq.txt"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "proof-bucket", body["bucket"])
	assert.True(t, strings.HasPrefix(body["key"], "uploads/"))
	assert.True(t, strings.HasSuffix(body["key"], "/faq.txt"))
	assert.Contains(t, body["key"], body["trace_id"])
	assert.Contains(t, body["url"], "X-Amz-Signature")
}

func TestTraceDocumentsRoute(t *testing.T) {
	deps, router := setupTestRouter(t)

	const traceID = "0f8fad5b-d9cb-469f-a165-70867728950e"
	_, err := deps.Ingest.IngestData(context.Background(), "proof-bucket",
		"uploads/2024/01/02/"+traceID+"/notes.txt", []byte("Some notes."))
	require.NoError(t, err)

	w := doRequest(router, http.MethodGet, "/traces/"+traceID+"/documents", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"filename":"notes.txt"`)

	w = doRequest(router, http.MethodGet, "/traces/not-a-uuid/documents", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/traces/"+"7c9e6679-7425-40de-944b-e07fc1f90ae7"+"/documents", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotFoundRoute(t *testing.T) {
	_, router := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/nonexistent", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "endpoint not found")
}

func TestMiddleware(t *testing.T) {
	_, router := setupTestRouter(t)

	t.Run("request id header", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/healthz", "")
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/ask", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	})
}
