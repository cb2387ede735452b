package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Sam-D-04/access-control-building/internal/handlers/testutil"
	"github.com/Sam-D-04/access-control-building/internal/models"
	"github.com/Sam-D-04/access-control-building/internal/services"
)

func TestQRPassIssueAndRender(t *testing.T) {
	env := testutil.NewEnv(t)

	user := models.User{
		Username:   "passuser",
		FullName:   "Pass User",
		EmployeeID: "EMP-5001",
		Role:       models.RoleEmployee,
		IsActive:   true,
	}
	require.NoError(t, env.DB.Create(&user).Error)

	w := env.Do(http.MethodPost, "/api/users/"+user.ID+"/qr-pass", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var pass services.QRPass
	env.DecodeSuccess(w, &pass)
	require.Equal(t, user.ID, pass.UserID)
	require.Equal(t, "EMP-5001", pass.EmployeeID)
	require.InDelta(t, time.Now().UnixMilli(), pass.Timestamp, float64(5*time.Second/time.Millisecond))

	// The issued pass unmarshals back into the scan payload shape.
	raw, err := json.Marshal(pass)
	require.NoError(t, err)
	var scan struct {
		UserID     string `json:"user_id"`
		EmployeeID string `json:"employee_id"`
		Timestamp  int64  `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(raw, &scan))
	require.Equal(t, user.ID, scan.UserID)

	w = env.Do(http.MethodGet, "/api/users/"+user.ID+"/qr-pass.png?size=128", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "image/png", w.Header().Get("Content-Type"))
	require.NotEmpty(t, w.Body.Bytes())
}

func TestQRPassUnknownUser(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Do(http.MethodPost, "/api/users/77777777-7777-4777-8777-777777777777/qr-pass", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
