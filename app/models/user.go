package models

import "gorm.io/gorm"

// User is an API account able to mutate the catalogue.
type User struct {
	gorm.Model
	Name     string `gorm:"size:255;not null"             json:"name"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"size:255;not null"             json:"-"` // bcrypt hash, never serialised
}
