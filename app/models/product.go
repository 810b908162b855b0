package models

import "gorm.io/gorm"

// Product is a catalogue item. Image and OtherImages hold fully-qualified
// public URLs into the blob store; OtherImages preserves upload order and is
// stored as a JSON column so it works on every supported driver.
type Product struct {
	gorm.Model
	Name        string   `gorm:"size:255;not null;index"     json:"name"`
	Description string   `gorm:"type:text"                   json:"description"`
	Price       float64  `gorm:"not null;default:0"          json:"price"`
	Stock       int      `gorm:"not null;default:0"          json:"stock"`
	SKU         string   `gorm:"size:100;uniqueIndex;not null" json:"sku"`
	Image       *string  `gorm:"size:2048"                   json:"image"`
	OtherImages []string `gorm:"serializer:json;type:text"   json:"other_images"`
}
