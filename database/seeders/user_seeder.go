package seeders

import (
	"gorm.io/gorm"

	"github.com/dukaanlabs/dukaan/app/models"
	"github.com/dukaanlabs/dukaan/pkg/auth"
)

func init() {
	Register("users", SeedUsers)
}

// SeedUsers creates a default admin account when none exists.
func SeedUsers(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", "admin@dukaan.local").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword("password")
	if err != nil {
		return err
	}

	return db.Create(&models.User{
		Name:     "Admin",
		Email:    "admin@dukaan.local",
		Password: hash,
	}).Error
}
