package recipes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestClientSearchByIngredients(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		require.Equal(t, "/recipes/findByIngredients", r.URL.Path)
		require.Equal(t, "milk,eggs", r.URL.Query().Get("ingredients"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":7,"title":"Pancakes","image":"p.jpg","usedIngredientCount":2,"missedIngredientCount":1}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", nil, time.Minute)
	got, err := c.SearchByIngredients(context.Background(), []string{"milk", "eggs"}, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 7, got[0].ID)
	require.Equal(t, "Pancakes", got[0].Title)
	require.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestClientCachesResponses(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":42,"title":"Shakshuka","readyInMinutes":25,"servings":2}`))
	}))
	defer srv.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	c := NewClient(srv.URL, "", rdb, time.Minute)
	ctx := context.Background()

	first, err := c.Detail(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, "Shakshuka", first.Title)

	second, err := c.Detail(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, first, second)
	// second call served from cache
	require.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestClientPropagatesProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil, time.Minute)
	_, err := c.Detail(context.Background(), 1)
	require.Error(t, err)
}

func TestMemoryRepoAddRemoveList(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()

	require.NoError(t, r.Add(ctx, &Saved{UserID: "u1", RecipeID: "42", Title: "Shakshuka"}))
	// re-liking is idempotent
	require.NoError(t, r.Add(ctx, &Saved{UserID: "u1", RecipeID: "42", Title: "Shakshuka"}))

	list, err := r.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, r.Remove(ctx, "u1", "42"))
	require.ErrorIs(t, r.Remove(ctx, "u1", "42"), ErrNotFound)
}
