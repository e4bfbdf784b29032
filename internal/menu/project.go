package menu

import (
	"fmt"

	"menuboard/internal/models"
)

// MaxIngredientsShown is how many ingredients a card lists before "+n more".
const MaxIngredientsShown = 4

const (
	OutOfStockBadge = "Out of Stock"
	SpicyMarker     = "🌶️"
	CurrencySymbol  = "₹"
)

var categoryLabels = map[models.Category]string{
	models.CategoryAppetizers: "🥘 Appetizers",
	models.CategoryMainCourse: "🍛 Main Course",
	models.CategoryBreads:     "🍞 Breads",
	models.CategoryRice:       "🍚 Rice & Biryani",
	models.CategoryBeverages:  "🥤 Beverages",
	models.CategoryDesserts:   "🍮 Desserts",
	models.CategorySnacks:     "🍴 Snacks",
}

// Label returns the section heading for a category code. Codes missing from
// the table are shown as the raw code.
func Label(c models.Category) string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// ItemView is the display record for one menu card.
type ItemView struct {
	models.MenuItem

	PriceLabel          string   `json:"price_label"`
	PrepTimeLabel       string   `json:"prep_time_label"`
	IngredientsShown    []string `json:"ingredients_shown"`
	IngredientsOverflow int      `json:"ingredients_overflow"`
	MoreLabel           string   `json:"more_label,omitempty"`
	AvailabilityBadge   string   `json:"availability_badge,omitempty"`
	SpiceMarker         string   `json:"spice_marker,omitempty"`
}

// Project shapes a single item for display. It does not modify item.
func Project(item models.MenuItem) ItemView {
	shown := item.Ingredients
	if len(shown) > MaxIngredientsShown {
		shown = shown[:MaxIngredientsShown]
	}

	view := ItemView{
		MenuItem:            item,
		PriceLabel:          CurrencySymbol + item.Price.String(),
		PrepTimeLabel:       fmt.Sprintf("%d mins", item.PreparationTime),
		IngredientsShown:    append([]string{}, shown...),
		IngredientsOverflow: max(0, len(item.Ingredients)-MaxIngredientsShown),
	}

	if view.IngredientsOverflow > 0 {
		view.MoreLabel = fmt.Sprintf("+%d more", view.IngredientsOverflow)
	}
	if !item.IsAvailable {
		view.AvailabilityBadge = OutOfStockBadge
	}
	if item.IsSpicy {
		view.SpiceMarker = SpicyMarker
	}

	return view
}
