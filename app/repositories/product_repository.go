package repositories

import (
	"gorm.io/gorm"

	"github.com/dukaanlabs/dukaan/app/models"
)

// ProductRepository handles database operations for Product.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// All returns every product, oldest first.
func (r *ProductRepository) All() ([]models.Product, error) {
	var products []models.Product
	err := r.db.Order("id").Find(&products).Error
	return products, err
}

// FindByID looks up a product by primary key.
// Returns gorm.ErrRecordNotFound when absent.
func (r *ProductRepository) FindByID(id uint) (models.Product, error) {
	var product models.Product
	err := r.db.First(&product, id).Error
	return product, err
}

// Create persists a new product record.
func (r *ProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Save persists all fields of an existing product.
func (r *ProductRepository) Save(product *models.Product) error {
	return r.db.Save(product).Error
}

// Delete permanently removes the product with the given id. The row is
// hard-deleted so its sku becomes reusable immediately.
func (r *ProductRepository) Delete(id uint) error {
	return r.db.Unscoped().Delete(&models.Product{}, id).Error
}

// SKUExists reports whether sku is taken by a product other than excludeID.
// Pass excludeID 0 for create-time checks.
func (r *ProductRepository) SKUExists(sku string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.Model(&models.Product{}).Where("sku = ?", sku)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}
