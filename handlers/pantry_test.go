package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/pantrypal/pantrypal/backend/go-services/internal/catalog"
	"github.com/pantrypal/pantrypal/backend/go-services/internal/category"
	"github.com/pantrypal/pantrypal/backend/go-services/internal/pantry"
)

func testRouter() (*gin.Engine, *pantry.MemoryRepo, *category.MemoryRepo) {
	gin.SetMode(gin.TestMode)
	items := pantry.NewMemoryRepo()
	cats := category.NewMemoryRepo()
	engine := catalog.NewEngine(items, cats)

	g := gin.New()
	api := g.Group("/api", func(c *gin.Context) {
		c.Set("userID", "test-user")
		c.Next()
	})
	RegisterPantryRoutes(api, items)
	RegisterCategoryRoutes(api, engine)
	return g, items, cats
}

func reqCtx() context.Context { return context.Background() }

func do(t *testing.T, g *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func TestPantryHandler_CRUD(t *testing.T) {
	g, _, _ := testRouter()

	w := do(t, g, http.MethodPost, "/api/pantry", `{"name":"Milk","category":["Dairy"],"quantity":"2","unit":"l"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created ItemView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	require.Equal(t, []string{"dairy"}, created.Category)
	require.True(t, created.LowStock)
	require.Equal(t, "fresh", created.Status)
	require.Empty(t, created.Badge)

	w = do(t, g, http.MethodGet, "/api/pantry", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []ItemView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	w = do(t, g, http.MethodPatch, "/api/pantry/"+created.ID, `{"quantity":""}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, g, http.MethodGet, "/api/pantry/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got ItemView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Empty(t, got.Quantity)
	require.False(t, got.LowStock)
	require.Equal(t, "l", got.Unit)

	w = do(t, g, http.MethodDelete, "/api/pantry/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, g, http.MethodGet, "/api/pantry/"+created.ID, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPantryHandler_CreateWithNumericQuantity(t *testing.T) {
	g, _, _ := testRouter()

	w := do(t, g, http.MethodPost, "/api/pantry", `{"name":"eggs","category":["dairy"],"quantity":2}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created ItemView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, "2", created.Quantity)
	require.True(t, created.LowStock)

	w = do(t, g, http.MethodPost, "/api/pantry", `{"name":"flour","quantity":1.5}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, "1.5", created.Quantity)
}

func TestPantryHandler_CreateWithoutCategory(t *testing.T) {
	g, _, _ := testRouter()

	w := do(t, g, http.MethodPost, "/api/pantry", `{"name":"mystery can"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created ItemView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, []string{"other"}, created.Category)
}

func TestPantryHandler_Stats(t *testing.T) {
	g, _, _ := testRouter()

	do(t, g, http.MethodPost, "/api/pantry", `{"name":"milk","category":["a"],"quantity":"1"}`)
	do(t, g, http.MethodPost, "/api/pantry", `{"name":"cheese","category":["a","b"],"quantity":"9"}`)
	do(t, g, http.MethodPost, "/api/pantry", `{"name":"bread","category":["b"]}`)

	w := do(t, g, http.MethodGet, "/api/pantry/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var s struct {
		TotalItems    int `json:"totalItems"`
		CategoryCount int `json:"categoryCount"`
		LowStockCount int `json:"lowStockCount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	require.Equal(t, 3, s.TotalItems)
	require.Equal(t, 2, s.CategoryCount)
	require.Equal(t, 1, s.LowStockCount)
}

func TestCategoryHandler_AddRenameDelete(t *testing.T) {
	g, items, _ := testRouter()

	w := do(t, g, http.MethodPost, "/api/categories", `{"name":"Dairy"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created category.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, "dairy", created.Name)

	// duplicate rejected case-insensitively
	w = do(t, g, http.MethodPost, "/api/categories", `{"name":"DAIRY"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	// empty rejected
	w = do(t, g, http.MethodPost, "/api/categories", `{"name":"  "}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, g, http.MethodGet, "/api/categories/exists?name=DaIrY", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"exists":true`)

	do(t, g, http.MethodPost, "/api/pantry", `{"name":"milk","category":["dairy"]}`)

	w = do(t, g, http.MethodPatch, "/api/categories/"+created.ID, `{"name":"fridge"}`)
	require.Equal(t, http.StatusOK, w.Code)
	snap, err := items.FindByCategory(reqCtx(), "test-user", "fridge")
	require.NoError(t, err)
	require.Len(t, snap, 1)

	w = do(t, g, http.MethodDelete, "/api/categories/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, w.Code)
	snap, err = items.FindByCategory(reqCtx(), "test-user", "other")
	require.NoError(t, err)
	require.Len(t, snap, 1)
}

func TestCategoryHandler_Sync(t *testing.T) {
	g, _, _ := testRouter()

	do(t, g, http.MethodPost, "/api/pantry", `{"name":"milk","category":["dairy"]}`)
	do(t, g, http.MethodPost, "/api/pantry", `{"name":"rice","category":["grains"]}`)

	w := do(t, g, http.MethodPost, "/api/categories/sync", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Created []string `json:"created"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.ElementsMatch(t, []string{"dairy", "grains"}, resp.Created)

	// second run creates nothing
	w = do(t, g, http.MethodPost, "/api/categories/sync", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Empty(t, resp.Created)
}
