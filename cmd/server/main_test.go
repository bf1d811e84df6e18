package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hydrocode-de/metacatalog-ingest/internal/handlers"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CATALOG_PORT", "")
	t.Setenv("MAX_UPLOAD_MB", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	config := loadConfig()

	assert.Equal(t, "8000", config.Port)
	assert.Equal(t, int64(32), config.MaxUploadMB)
	assert.Equal(t, []string{"*"}, config.CORSAllowedOrigins)
	assert.Equal(t, "data", config.DataSchema)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("CATALOG_PORT", "9090")
	t.Setenv("MAX_UPLOAD_MB", "128")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("MINIO_USE_SSL", "true")

	config := loadConfig()

	assert.Equal(t, "9090", config.Port)
	assert.Equal(t, int64(128), config.MaxUploadMB)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, config.CORSAllowedOrigins)
	assert.True(t, config.MinIOUseSSL)
}

func TestGetEnvIntFallsBackOnInvalidValues(t *testing.T) {
	t.Setenv("MAX_UPLOAD_MB", "lots")
	assert.Equal(t, int64(32), getEnvInt("MAX_UPLOAD_MB", 32))

	t.Setenv("MAX_UPLOAD_MB", "-4")
	assert.Equal(t, int64(32), getEnvInt("MAX_UPLOAD_MB", 32))
}

func TestRouterServesHealthAndMetrics(t *testing.T) {
	router := setupRouter(handlers.NewHandler(nil, nil, nil, nil, nil, 1<<20), []string{"*"})

	for _, path := range []string{"/health", "/api/health", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Origin", "https://portal.example")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"), path)
	}
}

func TestRouterRejectsWrongMethod(t *testing.T) {
	router := setupRouter(handlers.NewHandler(nil, nil, nil, nil, nil, 1<<20), []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/api/upload", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
