// Package menu turns a flat list of menu items into the grouped,
// display-ready view model consumed by the renderers.
package menu

import "menuboard/internal/models"

// Bucket holds the items of one category in their input order.
type Bucket struct {
	Category models.Category
	Items    []models.MenuItem
}

// Group buckets items by category. Buckets appear in the order each category
// is first seen scanning items left to right, so section order follows the
// order the menu API returned. Codes outside the known set get their own
// bucket like any other.
func Group(items []models.MenuItem) []Bucket {
	buckets := make([]Bucket, 0)
	index := make(map[models.Category]int)

	for _, item := range items {
		i, ok := index[item.Category]
		if !ok {
			i = len(buckets)
			index[item.Category] = i
			buckets = append(buckets, Bucket{Category: item.Category})
		}
		buckets[i].Items = append(buckets[i].Items, item)
	}

	return buckets
}
