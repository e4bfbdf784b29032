package backend

import (
	"embed"
	"encoding/json"
	"fmt"

	"menuboard/internal/models"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
)

//go:embed seed/*.json
var seedFS embed.FS

// SeedData is the initial menu and restaurant info.
type SeedData struct {
	Items []models.MenuItem
	Info  models.RestaurantInfo
}

// DefaultSeed returns the bundled restaurant data.
func DefaultSeed() (SeedData, error) {
	menuJSON, err := seedFS.ReadFile("seed/menu.json")
	if err != nil {
		return SeedData{}, err
	}
	infoJSON, err := seedFS.ReadFile("seed/restaurant.json")
	if err != nil {
		return SeedData{}, err
	}

	var data SeedData
	if err := json.Unmarshal(menuJSON, &data.Items); err != nil {
		return SeedData{}, fmt.Errorf("decode seed menu: %w", err)
	}
	if data.Info, err = models.NewRestaurantInfo(infoJSON); err != nil {
		return SeedData{}, fmt.Errorf("decode seed restaurant info: %w", err)
	}
	return data, nil
}

// Seed inserts data into empty tables. Tables that already hold rows are left
// alone. It returns the number of menu items inserted.
func (s *GormStore) Seed(data SeedData) (int, error) {
	inserted := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var infoCount int
		if err := tx.Model(&restaurantInfoRecord{}).Count(&infoCount).Error; err != nil {
			return err
		}
		if infoCount == 0 && !data.Info.IsZero() {
			if err := tx.Create(&restaurantInfoRecord{Payload: string(data.Info.Raw())}).Error; err != nil {
				return err
			}
		}

		var itemCount int
		if err := tx.Model(&menuItemRecord{}).Count(&itemCount).Error; err != nil {
			return err
		}
		if itemCount > 0 {
			return nil
		}

		for i, item := range data.Items {
			if item.ID == "" {
				item.ID = uuid.NewString()
			}
			if err := models.ValidateMenuItem(&item); err != nil {
				return fmt.Errorf("seed item %d: %w", i, err)
			}
			rec, err := newRecord(i, item)
			if err != nil {
				return err
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	return inserted, nil
}
