package seeders

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/dukaanlabs/dukaan/app/models"
)

func init() {
	Register("products", SeedProducts)
}

// SeedProducts fills an empty catalogue with a handful of sample items.
func SeedProducts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for i := 1; i <= 5; i++ {
		product := models.Product{
			Name:        fmt.Sprintf("Sample Product %d", i),
			Description: "Seeded catalogue item",
			Price:       float64(i) * 9.99,
			Stock:       i * 10,
			SKU:         fmt.Sprintf("SKU-%04d", i),
		}
		if err := db.Create(&product).Error; err != nil {
			return err
		}
	}
	return nil
}
