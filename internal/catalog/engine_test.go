package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pantrypal/pantrypal/backend/go-services/internal/category"
	"github.com/pantrypal/pantrypal/backend/go-services/internal/pantry"
)

const user = "user-1"

func newEngine() (*Engine, *pantry.MemoryRepo, *category.MemoryRepo) {
	items := pantry.NewMemoryRepo()
	cats := category.NewMemoryRepo()
	return NewEngine(items, cats), items, cats
}

func addItem(t *testing.T, items *pantry.MemoryRepo, name string, categories ...string) string {
	t.Helper()
	id, err := items.Create(context.Background(), &pantry.Item{UserID: user, Name: name, Category: categories})
	require.NoError(t, err)
	return id
}

func TestAddCategoryValidation(t *testing.T) {
	e, _, _ := newEngine()
	ctx := context.Background()

	_, err := e.AddCategory(ctx, user, "   ", 0, 0)
	require.ErrorIs(t, err, ErrEmptyName)

	c, err := e.AddCategory(ctx, user, "  Dairy ", 0, 0)
	require.NoError(t, err)
	require.Equal(t, "dairy", c.Name)

	// duplicate differing only in case is rejected
	_, err = e.AddCategory(ctx, user, "DAIRY", 0, 0)
	require.ErrorIs(t, err, ErrDuplicateName)
	_, err = e.AddCategory(ctx, user, "Dairy", 0, 0)
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestCategoryExistsIsCaseInsensitive(t *testing.T) {
	e, _, _ := newEngine()
	ctx := context.Background()

	ok, err := e.CategoryExists(ctx, user, "dairy")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = e.AddCategory(ctx, user, "Dairy", 0, 0)
	require.NoError(t, err)

	for _, name := range []string{"dairy", "DAIRY", " Dairy "} {
		ok, err := e.CategoryExists(ctx, user, name)
		require.NoError(t, err)
		require.Truef(t, ok, "name=%q", name)
	}
}

func TestRenameCategoryRewritesItems(t *testing.T) {
	e, items, _ := newEngine()
	ctx := context.Background()

	c, err := e.AddCategory(ctx, user, "veggies", 0, 0)
	require.NoError(t, err)

	a := addItem(t, items, "carrot", "veggies")
	b := addItem(t, items, "soup", "canned", "veggies")
	other := addItem(t, items, "milk", "dairy")

	require.NoError(t, e.RenameCategory(ctx, user, c.ID, "Vegetables"))

	got, err := items.Get(ctx, user, a)
	require.NoError(t, err)
	require.Equal(t, []string{"vegetables"}, got.Category)

	// position preserved
	got, err = items.Get(ctx, user, b)
	require.NoError(t, err)
	require.Equal(t, []string{"canned", "vegetables"}, got.Category)

	// unrelated items untouched
	got, err = items.Get(ctx, user, other)
	require.NoError(t, err)
	require.Equal(t, []string{"dairy"}, got.Category)

	// no item still references the old name
	stale, err := items.FindByCategory(ctx, user, "veggies")
	require.NoError(t, err)
	require.Empty(t, stale)
}

func TestRenameCategoryDedupesWhenTargetAlreadyPresent(t *testing.T) {
	e, items, _ := newEngine()
	ctx := context.Background()

	c, err := e.AddCategory(ctx, user, "veg", 0, 0)
	require.NoError(t, err)
	id := addItem(t, items, "stirfry mix", "veg", "frozen", "vegetables")

	// the target name belongs to no other category document, so the rename
	// is legal; the item would end up with "vegetables" twice without dedup
	require.NoError(t, e.RenameCategory(ctx, user, c.ID, "vegetables"))

	got, err := items.Get(ctx, user, id)
	require.NoError(t, err)
	require.Equal(t, []string{"vegetables", "frozen"}, got.Category)
}

func TestRenameCategoryValidation(t *testing.T) {
	e, _, _ := newEngine()
	ctx := context.Background()

	c1, err := e.AddCategory(ctx, user, "snacks", 0, 0)
	require.NoError(t, err)
	c2, err := e.AddCategory(ctx, user, "drinks", 0, 0)
	require.NoError(t, err)

	require.ErrorIs(t, e.RenameCategory(ctx, user, c1.ID, "  "), ErrEmptyName)
	require.ErrorIs(t, e.RenameCategory(ctx, user, c1.ID, "Drinks"), ErrDuplicateName)
	// renaming to its own name in a different case is allowed
	require.NoError(t, e.RenameCategory(ctx, user, c2.ID, "DRINKS"))
	require.ErrorIs(t, e.RenameCategory(ctx, user, "missing", "juice"), category.ErrNotFound)
}

func TestDeleteCategoryCascade(t *testing.T) {
	e, items, _ := newEngine()
	ctx := context.Background()

	c, err := e.AddCategory(ctx, user, "spices", 0, 0)
	require.NoError(t, err)

	lone := addItem(t, items, "paprika", "spices")
	mixed := addItem(t, items, "chili oil", "spices", "condiments")

	require.NoError(t, e.DeleteCategory(ctx, user, c.ID))

	// last remaining category deleted -> sentinel fallback
	got, err := items.Get(ctx, user, lone)
	require.NoError(t, err)
	require.Equal(t, []string{pantry.FallbackCategory}, got.Category)

	// other remaining categories kept unchanged
	got, err = items.Get(ctx, user, mixed)
	require.NoError(t, err)
	require.Equal(t, []string{"condiments"}, got.Category)

	ok, err := e.CategoryExists(ctx, user, "spices")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSyncFromPantryIsIdempotent(t *testing.T) {
	e, items, cats := newEngine()
	ctx := context.Background()

	addItem(t, items, "milk", "dairy")
	addItem(t, items, "cheese", "dairy")
	addItem(t, items, "rice", "grains")
	_, err := e.AddCategory(ctx, user, "grains", 0, 0)
	require.NoError(t, err)

	created, err := e.SyncFromPantry(ctx, user)
	require.NoError(t, err)
	require.Equal(t, []string{"dairy"}, created)

	// second run converges to nothing
	created, err = e.SyncFromPantry(ctx, user)
	require.NoError(t, err)
	require.Empty(t, created)

	list, err := cats.List(ctx, user)
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, c := range list {
		names = append(names, c.Name)
	}
	require.ElementsMatch(t, []string{"dairy", "grains"}, names)
}

func TestSyncFromPantryHealsPartialDeleteCascade(t *testing.T) {
	e, items, cats := newEngine()
	ctx := context.Background()

	c, err := e.AddCategory(ctx, user, "frozen", 0, 0)
	require.NoError(t, err)
	addItem(t, items, "peas", "frozen")

	// simulate the crash window: category document gone, item rewrite never ran
	require.NoError(t, cats.Delete(ctx, user, c.ID))

	created, err := e.SyncFromPantry(ctx, user)
	require.NoError(t, err)
	require.Equal(t, []string{"frozen"}, created)

	ok, err := e.CategoryExists(ctx, user, "frozen")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCategoriesWithCounts(t *testing.T) {
	e, items, _ := newEngine()
	ctx := context.Background()

	_, err := e.AddCategory(ctx, user, "dairy", 0, 0)
	require.NoError(t, err)
	_, err = e.AddCategory(ctx, user, "bakery", 0, 0)
	require.NoError(t, err)

	addItem(t, items, "milk", "dairy")
	addItem(t, items, "cheese", "dairy")
	addItem(t, items, "butter croissant", "dairy", "bakery")

	counts, err := e.CategoriesWithCounts(ctx, user)
	require.NoError(t, err)
	byName := map[string]int{}
	for _, c := range counts {
		byName[c.Name] = c.ItemCount
	}
	require.Equal(t, map[string]int{"bakery": 1, "dairy": 3}, byName)

	// a category nothing references reports zero
	_, err = e.AddCategory(ctx, user, "cleaning", 0, 0)
	require.NoError(t, err)
	counts, err = e.CategoriesWithCounts(ctx, user)
	require.NoError(t, err)
	found := false
	for _, c := range counts {
		if c.Name == "cleaning" {
			found = true
			require.Zero(t, c.ItemCount)
		}
	}
	require.True(t, found)
}

func TestCountsItemWithCaseVariantDuplicatesOnce(t *testing.T) {
	e, items, _ := newEngine()
	ctx := context.Background()

	_, err := e.AddCategory(ctx, user, "dairy", 0, 0)
	require.NoError(t, err)
	id := addItem(t, items, "milk", "Dairy", "DAIRY")

	got, err := items.Get(ctx, user, id)
	require.NoError(t, err)
	require.Equal(t, []string{"dairy"}, got.Category)

	counts, err := e.CategoriesWithCounts(ctx, user)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	require.Equal(t, 1, counts[0].ItemCount)
}

func TestAddItemWithoutCategoryFallsBackToOther(t *testing.T) {
	_, items, _ := newEngine()
	ctx := context.Background()

	id, err := items.Create(ctx, &pantry.Item{UserID: user, Name: "mystery can"})
	require.NoError(t, err)
	got, err := items.Get(ctx, user, id)
	require.NoError(t, err)
	require.Equal(t, []string{pantry.FallbackCategory}, got.Category)
}
