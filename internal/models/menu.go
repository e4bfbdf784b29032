package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices go over the wire as JSON numbers, matching the menu API.
	decimal.MarshalJSONWithoutQuotes = true
}

// MenuItem represents a dish on the menu as published by the menu API
type MenuItem struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Category        Category        `json:"category"`
	Price           decimal.Decimal `json:"price"`
	Ingredients     []string        `json:"ingredients"`
	PreparationTime int             `json:"preparation_time"` // minutes
	IsSpicy         bool            `json:"is_spicy"`
	IsAvailable     bool            `json:"is_available"`
}

// Category represents the category of a menu item
type Category string

const (
	// Menu categories
	CategoryAppetizers Category = "appetizers"
	CategoryMainCourse Category = "main_course"
	CategoryBreads     Category = "breads"
	CategoryRice       Category = "rice"
	CategoryBeverages  Category = "beverages"
	CategoryDesserts   Category = "desserts"
	CategorySnacks     Category = "snacks"
)

// Categories lists the closed set of category codes in their canonical order.
var Categories = []Category{
	CategoryAppetizers,
	CategoryMainCourse,
	CategoryBreads,
	CategoryRice,
	CategoryBeverages,
	CategoryDesserts,
	CategorySnacks,
}

// Known reports whether c belongs to the closed category set
func (c Category) Known() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ValidateMenuItem checks the fields the menu contract guarantees.
// Category membership is not checked here; unknown codes are tolerated downstream.
func ValidateMenuItem(item *MenuItem) error {
	if item.ID == "" {
		return fmt.Errorf("menu item id is required")
	}
	if item.Name == "" {
		return fmt.Errorf("menu item %s: name is required", item.ID)
	}
	if item.Category == "" {
		return fmt.Errorf("menu item %s: category is required", item.ID)
	}
	if item.Price.IsNegative() {
		return fmt.Errorf("menu item %s: price must not be negative", item.ID)
	}
	if item.PreparationTime <= 0 {
		return fmt.Errorf("menu item %s: preparation time must be greater than 0", item.ID)
	}
	return nil
}

