// Package backend is a development menu API serving the two read endpoints
// the menu board consumes, backed by a gorm store.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"menuboard/internal/models"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// ErrUnknownCategory is returned for category codes outside the fixed set.
var ErrUnknownCategory = errors.New("unknown menu category")

// ErrNoRestaurantInfo is returned when the store has no info row.
var ErrNoRestaurantInfo = errors.New("restaurant info not found")

// Store reads the published menu.
type Store interface {
	RestaurantInfo(ctx context.Context) (models.RestaurantInfo, error)
	Menu(ctx context.Context) ([]models.MenuItem, error)
	MenuByCategory(ctx context.Context, category models.Category) ([]models.MenuItem, error)
}

// menuItemRecord is the stored form of a menu item. Position keeps the
// order items were seeded in.
type menuItemRecord struct {
	ID              string          `gorm:"primary_key"`
	Position        int             `gorm:"index"`
	Name            string          `gorm:"not null"`
	Description     string          `gorm:"type:text"`
	Category        string          `gorm:"index;not null"`
	Price           decimal.Decimal `gorm:"type:numeric"`
	Ingredients     string          `gorm:"type:text"` // JSON array
	PreparationTime int
	IsSpicy         bool
	IsAvailable     bool
	CreatedAt       time.Time
}

func (menuItemRecord) TableName() string { return "menu_items" }

type restaurantInfoRecord struct {
	ID        uint   `gorm:"primary_key"`
	Payload   string `gorm:"type:text"`
	UpdatedAt time.Time
}

func (restaurantInfoRecord) TableName() string { return "restaurant_info" }

func newRecord(position int, item models.MenuItem) (menuItemRecord, error) {
	ingredients, err := json.Marshal(item.Ingredients)
	if err != nil {
		return menuItemRecord{}, err
	}
	return menuItemRecord{
		ID:              item.ID,
		Position:        position,
		Name:            item.Name,
		Description:     item.Description,
		Category:        string(item.Category),
		Price:           item.Price,
		Ingredients:     string(ingredients),
		PreparationTime: item.PreparationTime,
		IsSpicy:         item.IsSpicy,
		IsAvailable:     item.IsAvailable,
	}, nil
}

func (r menuItemRecord) toModel() (models.MenuItem, error) {
	item := models.MenuItem{
		ID:              r.ID,
		Name:            r.Name,
		Description:     r.Description,
		Category:        models.Category(r.Category),
		Price:           r.Price,
		Ingredients:     []string{},
		PreparationTime: r.PreparationTime,
		IsSpicy:         r.IsSpicy,
		IsAvailable:     r.IsAvailable,
	}
	if r.Ingredients != "" {
		if err := json.Unmarshal([]byte(r.Ingredients), &item.Ingredients); err != nil {
			return models.MenuItem{}, fmt.Errorf("item %s ingredients: %w", r.ID, err)
		}
	}
	return item, nil
}

// GormStore implements Store on a gorm database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db. Call Migrate before first use.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the menu tables.
func (s *GormStore) Migrate() error {
	if err := s.db.AutoMigrate(&menuItemRecord{}, &restaurantInfoRecord{}).Error; err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// RestaurantInfo returns the stored info object.
func (s *GormStore) RestaurantInfo(_ context.Context) (models.RestaurantInfo, error) {
	var rec restaurantInfoRecord
	err := s.db.Order("id").First(&rec).Error
	if gorm.IsRecordNotFoundError(err) {
		return models.RestaurantInfo{}, ErrNoRestaurantInfo
	}
	if err != nil {
		return models.RestaurantInfo{}, fmt.Errorf("query restaurant info: %w", err)
	}
	return models.NewRestaurantInfo([]byte(rec.Payload))
}

// Menu returns every item in seeded order.
func (s *GormStore) Menu(_ context.Context) ([]models.MenuItem, error) {
	var recs []menuItemRecord
	if err := s.db.Order("position").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("query menu: %w", err)
	}
	return toModels(recs)
}

// MenuByCategory returns the items of one category in seeded order.
func (s *GormStore) MenuByCategory(_ context.Context, category models.Category) ([]models.MenuItem, error) {
	if !category.Known() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	var recs []menuItemRecord
	if err := s.db.Where("category = ?", string(category)).Order("position").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("query menu by category: %w", err)
	}
	return toModels(recs)
}

func toModels(recs []menuItemRecord) ([]models.MenuItem, error) {
	items := make([]models.MenuItem, 0, len(recs))
	for _, rec := range recs {
		item, err := rec.toModel()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
