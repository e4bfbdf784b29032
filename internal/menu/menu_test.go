package menu

import (
	"testing"

	"menuboard/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id string, c models.Category) models.MenuItem {
	return models.MenuItem{
		ID:              id,
		Name:            "Dish " + id,
		Category:        c,
		Price:           decimal.NewFromInt(100),
		PreparationTime: 10,
		IsAvailable:     true,
	}
}

func ids(items []models.MenuItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestGroup_FirstOccurrenceOrder(t *testing.T) {
	items := []models.MenuItem{
		item("1", models.CategoryRice),
		item("2", models.CategoryAppetizers),
		item("3", models.CategoryRice),
	}

	buckets := Group(items)

	require.Len(t, buckets, 2)
	assert.Equal(t, models.CategoryRice, buckets[0].Category)
	assert.Equal(t, []string{"1", "3"}, ids(buckets[0].Items))
	assert.Equal(t, models.CategoryAppetizers, buckets[1].Category)
	assert.Equal(t, []string{"2"}, ids(buckets[1].Items))
}

func TestGroup_EveryItemInExactlyOneBucket(t *testing.T) {
	items := []models.MenuItem{
		item("a", models.CategoryDesserts),
		item("b", models.CategoryBreads),
		item("c", models.CategorySnacks),
		item("d", models.CategoryBreads),
		item("e", models.CategoryDesserts),
		item("f", models.CategoryBeverages),
		item("g", models.CategorySnacks),
	}

	buckets := Group(items)

	// four distinct codes
	require.Len(t, buckets, 4)
	assert.Equal(t, []models.Category{
		models.CategoryDesserts,
		models.CategoryBreads,
		models.CategorySnacks,
		models.CategoryBeverages,
	}, []models.Category{buckets[0].Category, buckets[1].Category, buckets[2].Category, buckets[3].Category})

	seen := make(map[string]int)
	for _, b := range buckets {
		for _, it := range b.Items {
			assert.Equal(t, b.Category, it.Category)
			seen[it.ID]++
		}
	}
	assert.Len(t, seen, len(items))
	for id, n := range seen {
		assert.Equal(t, 1, n, "item %s", id)
	}

	assert.Equal(t, []string{"a", "e"}, ids(buckets[0].Items))
	assert.Equal(t, []string{"b", "d"}, ids(buckets[1].Items))
}

func TestGroup_Empty(t *testing.T) {
	assert.Empty(t, Group(nil))
	assert.Empty(t, Group([]models.MenuItem{}))
	assert.Empty(t, Build(nil, models.RestaurantInfo{}).Sections)
}

func TestGroup_UnknownCategoryKeepsRawCode(t *testing.T) {
	buckets := Group([]models.MenuItem{
		item("1", "chef_specials"),
		item("2", models.CategoryRice),
	})

	require.Len(t, buckets, 2)
	assert.Equal(t, models.Category("chef_specials"), buckets[0].Category)
}

func TestProject_Ingredients(t *testing.T) {
	five := item("1", models.CategoryAppetizers)
	five.Ingredients = []string{"a", "b", "c", "d", "e"}

	view := Project(five)
	assert.Equal(t, []string{"a", "b", "c", "d"}, view.IngredientsShown)
	assert.Equal(t, 1, view.IngredientsOverflow)
	assert.Equal(t, "+1 more", view.MoreLabel)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, five.Ingredients, "source item must not change")

	three := item("2", models.CategoryAppetizers)
	three.Ingredients = []string{"a", "b", "c"}

	view = Project(three)
	assert.Equal(t, []string{"a", "b", "c"}, view.IngredientsShown)
	assert.Equal(t, 0, view.IngredientsOverflow)
	assert.Empty(t, view.MoreLabel)

	exact := item("3", models.CategoryAppetizers)
	exact.Ingredients = []string{"a", "b", "c", "d"}
	view = Project(exact)
	assert.Equal(t, 0, view.IngredientsOverflow)

	none := Project(item("4", models.CategoryAppetizers))
	assert.Empty(t, none.IngredientsShown)
	assert.Equal(t, 0, none.IngredientsOverflow)
}

func TestProject_Flags(t *testing.T) {
	plain := Project(item("1", models.CategoryRice))
	assert.Empty(t, plain.AvailabilityBadge)
	assert.Empty(t, plain.SpiceMarker)

	hot := item("2", models.CategoryRice)
	hot.IsSpicy = true
	hot.IsAvailable = false
	view := Project(hot)
	assert.Equal(t, OutOfStockBadge, view.AvailabilityBadge)
	assert.Equal(t, SpicyMarker, view.SpiceMarker)
}

func TestProject_Labels(t *testing.T) {
	it := item("1", models.CategoryRice)
	it.Price = decimal.RequireFromString("180.0")
	it.PreparationTime = 25

	view := Project(it)
	assert.Equal(t, "₹180", view.PriceLabel)
	assert.Equal(t, "25 mins", view.PrepTimeLabel)

	it.Price = decimal.RequireFromString("12.50")
	assert.Equal(t, "₹12.5", Project(it).PriceLabel)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "🍚 Rice & Biryani", Label(models.CategoryRice))
	assert.Equal(t, "🍛 Main Course", Label(models.CategoryMainCourse))
	for _, c := range models.Categories {
		assert.NotEqual(t, string(c), Label(c), "known category %s needs a label", c)
	}
	assert.Equal(t, "chef_specials", Label("chef_specials"))
}

func TestBuild(t *testing.T) {
	info, err := models.NewRestaurantInfo([]byte(`{"name":"Shriyansh Restaurant"}`))
	require.NoError(t, err)

	items := []models.MenuItem{
		item("1", models.CategoryRice),
		item("2", models.CategoryAppetizers),
		item("3", models.CategoryRice),
	}

	vm := Build(items, info)

	assert.Equal(t, StatusReady, vm.Status)
	assert.False(t, vm.Retryable)
	assert.Equal(t, 3, vm.ItemCount())
	require.Len(t, vm.Sections, 2)
	assert.Equal(t, "🍚 Rice & Biryani", vm.Sections[0].Label)
	assert.Equal(t, "🥘 Appetizers", vm.Sections[1].Label)
	assert.JSONEq(t, `{"name":"Shriyansh Restaurant"}`, string(vm.Info.Raw()))

	var got []models.MenuItem
	for _, s := range vm.Sections {
		for _, v := range s.Items {
			got = append(got, v.MenuItem)
		}
	}
	assert.ElementsMatch(t, items, got)
}

func TestPlaceholders(t *testing.T) {
	loading := Loading()
	assert.Equal(t, StatusLoading, loading.Status)
	assert.False(t, loading.Retryable)
	assert.Zero(t, loading.ItemCount())

	failed := Failed("boom")
	assert.Equal(t, StatusError, failed.Status)
	assert.Equal(t, "boom", failed.Message)
	assert.True(t, failed.Retryable)
}
