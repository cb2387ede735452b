package testutil

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Sam-D-04/access-control-building/internal/api"
	"github.com/Sam-D-04/access-control-building/internal/app"
	sharedtestutil "github.com/Sam-D-04/access-control-building/internal/database/testutil"
	"github.com/Sam-D-04/access-control-building/internal/realtime"
	"github.com/Sam-D-04/access-control-building/pkg/response"
)

// Env encapsulates a fully-wired API instance backed by an in-memory database
// for handler tests.
type Env struct {
	T      *testing.T
	DB     *gorm.DB
	Router *gin.Engine
	Hub    *realtime.Hub
}

// EnvOption adjusts the application config the test router is built from.
type EnvOption func(*app.Config)

// NewEnv provisions a fresh handler test environment with migrations and seed
// data applied.
func NewEnv(t *testing.T, opts ...EnvOption) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithSeedData())

	cfg := &app.Config{}
	cfg.Server.RateLimitPerMinute = 0
	cfg.Monitoring.MetricsEnabled = false
	for _, opt := range opts {
		opt(cfg)
	}

	hub := realtime.NewHub()
	router, err := api.NewRouter(db, cfg, hub)
	require.NoError(t, err)

	return &Env{T: t, DB: db, Router: router, Hub: hub}
}

// Do performs a JSON request against the wired router.
func (e *Env) Do(method, path string, body any) *httptest.ResponseRecorder {
	e.T.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(e.T, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// DecodeSuccess unmarshals a success envelope and fails the test on error
// payloads.
func (e *Env) DecodeSuccess(w *httptest.ResponseRecorder, out any) {
	e.T.Helper()

	var envelope response.Response
	require.NoError(e.T, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(e.T, envelope.Success, "expected success envelope, got %s", w.Body.String())

	if out != nil {
		raw, err := json.Marshal(envelope.Data)
		require.NoError(e.T, err)
		require.NoError(e.T, json.Unmarshal(raw, out))
	}
}

// DecodeError unmarshals an error envelope and returns its code.
func (e *Env) DecodeError(w *httptest.ResponseRecorder) string {
	e.T.Helper()

	var envelope response.Response
	require.NoError(e.T, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.False(e.T, envelope.Success, "expected error envelope, got %s", w.Body.String())
	require.NotNil(e.T, envelope.Error)
	return envelope.Error.Code
}

