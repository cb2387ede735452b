package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sam-D-04/access-control-building/internal/handlers/testutil"
	"github.com/Sam-D-04/access-control-building/internal/models"
)

func TestDoorCRUDAndLock(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Do(http.MethodPost, "/api/doors", map[string]any{
		"name":     "Server Room",
		"location": "Basement",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var door models.Door
	env.DecodeSuccess(w, &door)
	require.NotEmpty(t, door.ID)
	require.False(t, door.IsLocked)

	w = env.Do(http.MethodPost, "/api/doors/"+door.ID+"/lock", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env.DecodeSuccess(w, &door)
	require.True(t, door.IsLocked)

	w = env.Do(http.MethodPost, "/api/doors/"+door.ID+"/unlock", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env.DecodeSuccess(w, &door)
	require.False(t, door.IsLocked)

	w = env.Do(http.MethodPatch, "/api/doors/"+door.ID, map[string]any{"location": "Sub-basement"})
	require.Equal(t, http.StatusOK, w.Code)
	env.DecodeSuccess(w, &door)
	require.Equal(t, "Sub-basement", door.Location)

	w = env.Do(http.MethodDelete, "/api/doors/"+door.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.Do(http.MethodGet, "/api/doors/"+door.ID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDoorCreateValidation(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Do(http.MethodPost, "/api/doors", map[string]any{"location": "nowhere"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
