package migrations

import (
	"gorm.io/gorm"

	"github.com/dukaanlabs/dukaan/app/models"
	"github.com/dukaanlabs/dukaan/pkg/migration"
)

func init() {
	migration.Register("20260815000002_create_products_table", &CreateProductsTable{})
}

type CreateProductsTable struct{}

func (CreateProductsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{})
}

func (CreateProductsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.Product{})
}
