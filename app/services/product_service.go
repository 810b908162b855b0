// Package services holds the business logic between controllers and
// repositories.
package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/dukaanlabs/dukaan/app/models"
	"github.com/dukaanlabs/dukaan/app/repositories"
	"github.com/dukaanlabs/dukaan/app/requests"
	"github.com/dukaanlabs/dukaan/pkg/cache"
	"github.com/dukaanlabs/dukaan/pkg/logger"
	"github.com/dukaanlabs/dukaan/pkg/storage"
	"github.com/dukaanlabs/dukaan/pkg/upload"
)

// ErrProductNotFound is returned when the requested product does not exist.
var ErrProductNotFound = errors.New("product not found")

const (
	// productCacheTTL bounds how stale a cached read may be.
	productCacheTTL = 60 * time.Second

	// productListKey caches the full catalogue listing.
	productListKey = "products_all"

	// productImageDir is the blob store namespace for product images.
	productImageDir = "products"
)

func productKey(id uint) string {
	return fmt.Sprintf("product_%d", id)
}

// ProductService implements the catalogue operations. Reads go through the
// cache; mutations read the store directly, then invalidate. Mutations on the
// same product are serialised with a per-record lock so concurrent updates
// cannot interleave their read-modify-write cycles.
type ProductService struct {
	repo  *repositories.ProductRepository
	cache *cache.Cache
	disk  storage.Disk

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewProductService(repo *repositories.ProductRepository, c *cache.Cache, disk storage.Disk) *ProductService {
	return &ProductService{
		repo:  repo,
		cache: c,
		disk:  disk,
		locks: map[uint]*sync.Mutex{},
	}
}

// List returns every product, served from cache when fresh.
func (s *ProductService) List() ([]models.Product, error) {
	return cache.Remember(s.cache, productListKey, productCacheTTL, s.repo.All)
}

// Get returns one product by id, served from cache when fresh.
func (s *ProductService) Get(id uint) (models.Product, error) {
	product, err := cache.Remember(s.cache, productKey(id), productCacheTTL, func() (models.Product, error) {
		return s.repo.FindByID(id)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, ErrProductNotFound
	}
	return product, err
}

// Create stores the uploaded images, persists the product, and invalidates
// the listing cache. A taken sku is reported as a field error, not an error.
func (s *ProductService) Create(in *requests.ProductInput) (models.Product, map[string]string, error) {
	taken, err := s.repo.SKUExists(*in.SKU, 0)
	if err != nil {
		return models.Product{}, nil, fmt.Errorf("check sku: %w", err)
	}
	if taken {
		return models.Product{}, map[string]string{"sku": "The sku has already been taken."}, nil
	}

	product := models.Product{
		Name:  *in.Name,
		Price: *in.Price,
		Stock: *in.Stock,
		SKU:   *in.SKU,
	}
	if in.Description != nil {
		product.Description = *in.Description
	}

	if in.Image != nil {
		url, err := upload.Store(s.disk, productImageDir, in.Image)
		if err != nil {
			return models.Product{}, nil, err
		}
		product.Image = &url
	}

	for _, fh := range in.OtherImages {
		url, err := upload.Store(s.disk, productImageDir, fh)
		if err != nil {
			return models.Product{}, nil, err
		}
		product.OtherImages = append(product.OtherImages, url)
	}

	if err := s.repo.Create(&product); err != nil {
		return models.Product{}, nil, fmt.Errorf("create product: %w", err)
	}

	s.cache.Forget(productListKey)
	return product, nil, nil
}

// Update applies the present fields of in to the product with the given id.
// The current record is read from the store, never the cache. Replaced images
// have their old blobs deleted best-effort before the new ones are written.
func (s *ProductService) Update(id uint, in *requests.ProductInput) (models.Product, map[string]string, error) {
	lock := s.recordLock(id)
	lock.Lock()
	defer lock.Unlock()

	product, err := s.repo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, nil, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, nil, fmt.Errorf("find product: %w", err)
	}

	if in.SKU != nil {
		taken, err := s.repo.SKUExists(*in.SKU, id)
		if err != nil {
			return models.Product{}, nil, fmt.Errorf("check sku: %w", err)
		}
		if taken {
			return models.Product{}, map[string]string{"sku": "The sku has already been taken."}, nil
		}
	}

	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if in.SKU != nil {
		product.SKU = *in.SKU
	}

	if in.Image != nil {
		if product.Image != nil {
			s.deleteBlob(*product.Image)
		}
		url, err := upload.Store(s.disk, productImageDir, in.Image)
		if err != nil {
			return models.Product{}, nil, err
		}
		product.Image = &url
	}

	if in.OtherImages != nil {
		for _, old := range product.OtherImages {
			s.deleteBlob(old)
		}
		product.OtherImages = nil
		for _, fh := range in.OtherImages {
			url, err := upload.Store(s.disk, productImageDir, fh)
			if err != nil {
				return models.Product{}, nil, err
			}
			product.OtherImages = append(product.OtherImages, url)
		}
	}

	if err := s.repo.Save(&product); err != nil {
		return models.Product{}, nil, fmt.Errorf("save product: %w", err)
	}

	s.cache.Forget(productListKey, productKey(id))
	return product, nil, nil
}

// Delete removes the product record and invalidates both cache entries.
// Blobs are kept; orphans are cheap and deletion here would race readers
// still holding the old URLs.
func (s *ProductService) Delete(id uint) error {
	lock := s.recordLock(id)
	lock.Lock()
	defer lock.Unlock()

	_, err := s.repo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("find product: %w", err)
	}

	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.cache.Forget(productListKey, productKey(id))
	s.releaseLock(id)
	return nil
}

// deleteBlob removes a replaced image from the blob store. Failures are
// logged and swallowed; a stale blob must not fail the mutation.
func (s *ProductService) deleteBlob(url string) {
	path, ok := upload.PathFromURL(s.disk, url)
	if !ok {
		logger.Warn("skipping blob outside disk", "url", url)
		return
	}
	if s.disk.Missing(path) {
		return
	}
	if err := s.disk.Delete(path); err != nil {
		logger.Warn("failed to delete replaced blob", "path", path, "error", err)
	}
}

// recordLock returns the mutex serialising mutations for one product id.
func (s *ProductService) recordLock(id uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

// releaseLock drops the per-record mutex of a deleted product so the map
// does not grow without bound. A goroutine already blocked on the old
// mutex proceeds against a record that no longer exists, which is safe.
func (s *ProductService) releaseLock(id uint) {
	s.mu.Lock()
	delete(s.locks, id)
	s.mu.Unlock()
}
