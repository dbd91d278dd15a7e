package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/pantrypal/pantrypal/backend/go-services/internal/preferences"
)

func prefsRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	api := g.Group("/api", func(c *gin.Context) {
		c.Set("userID", "test-user")
		c.Next()
	})
	RegisterPreferenceRoutes(api, preferences.NewAggregator(preferences.NewMemoryRepo()))
	return g
}

func TestPreferencesHandler_AddAndGet(t *testing.T) {
	g := prefsRouter()

	w := do(t, g, http.MethodPost, "/api/preferences/allergies", `{"value":"peanuts"}`)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, g, http.MethodPost, "/api/preferences/dietary", `{"value":"vegan"}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, g, http.MethodGet, "/api/preferences", "")
	require.Equal(t, http.StatusOK, w.Code)
	var p preferences.Preferences
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.Equal(t, []string{"peanuts"}, p.Allergies)
	require.Equal(t, []string{"vegan"}, p.Dietary)
	require.Empty(t, p.Cuisines)
}

func TestPreferencesHandler_RemoveValue(t *testing.T) {
	g := prefsRouter()

	do(t, g, http.MethodPost, "/api/preferences/dislikes", `{"value":"cilantro"}`)
	w := do(t, g, http.MethodDelete, "/api/preferences/dislikes?value=cilantro", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, g, http.MethodGet, "/api/preferences", "")
	var p preferences.Preferences
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.Empty(t, p.Dislikes)
}

func TestPreferencesHandler_UnknownKey(t *testing.T) {
	g := prefsRouter()

	w := do(t, g, http.MethodPost, "/api/preferences/favorite-colors", `{"value":"blue"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
