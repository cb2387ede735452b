package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Sam-D-04/access-control-building/internal/app"
	"github.com/Sam-D-04/access-control-building/internal/database/testutil"
	"github.com/Sam-D-04/access-control-building/pkg/response"
)

func newTestRouter(t *testing.T, cfg *app.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	router, err := NewRouter(db, cfg, nil)
	require.NoError(t, err)
	return router
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, &app.Config{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var payload response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.True(t, payload.Success)

	data := payload.Data.(map[string]any)
	require.Equal(t, "ok", data["status"])
	require.Equal(t, "ok", data["database"])
}

func TestRouterMetricsToggle(t *testing.T) {
	cfg := &app.Config{}
	cfg.Monitoring.MetricsEnabled = true
	router := newTestRouter(t, cfg)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	disabled := newTestRouter(t, &app.Config{})
	w = httptest.NewRecorder()
	disabled.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterUnknownRouteEnvelope(t *testing.T) {
	router := newTestRouter(t, &app.Config{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	var payload response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
}

func TestRouterRequiresDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, err := NewRouter(nil, &app.Config{}, nil)
	require.Error(t, err)
}
