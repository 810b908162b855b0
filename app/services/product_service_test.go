package services_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dukaanlabs/dukaan/app/models"
	"github.com/dukaanlabs/dukaan/app/repositories"
	"github.com/dukaanlabs/dukaan/app/requests"
	"github.com/dukaanlabs/dukaan/app/services"
	"github.com/dukaanlabs/dukaan/pkg/cache"
	"github.com/dukaanlabs/dukaan/pkg/database"
	"github.com/dukaanlabs/dukaan/pkg/storage"
	"github.com/dukaanlabs/dukaan/pkg/upload"
)

var dbSeq atomic.Int64

// fixture wires a ProductService onto an isolated in-memory database,
// cache, and blob store.
type fixture struct {
	svc  *services.ProductService
	repo *repositories.ProductRepository
	db   *gorm.DB
	c    *cache.Cache
	disk *storage.MemoryDisk
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:svc%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := database.Connect("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}))

	repo := repositories.NewProductRepository(db)
	c := cache.New(cache.NewMemoryStore())
	disk := storage.NewMemoryDisk("http://localhost:8080/storage")

	return &fixture{
		svc:  services.NewProductService(repo, c, disk),
		repo: repo,
		db:   db,
		c:    c,
		disk: disk,
	}
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func intPtr(n int) *int { return &n }

var pngBytes = append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, make([]byte, 32)...)

func pngHeader(t *testing.T, filename string) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["file"][0]
}

func createInput(sku string) *requests.ProductInput {
	return &requests.ProductInput{
		Name:        strPtr("Widget"),
		Description: strPtr("A fine widget"),
		Price:       floatPtr(19.99),
		Stock:       intPtr(10),
		SKU:         strPtr(sku),
	}
}

func TestCreateAndGet(t *testing.T) {
	f := newFixture(t)

	in := createInput("SKU-0001")
	in.Image = pngHeader(t, "main.png")
	in.OtherImages = []*multipart.FileHeader{pngHeader(t, "a.png"), pngHeader(t, "b.png")}

	created, errs, err := f.svc.Create(in)
	require.NoError(t, err)
	require.Empty(t, errs)
	require.NotZero(t, created.ID)
	require.NotNil(t, created.Image)
	assert.Len(t, created.OtherImages, 2)

	// Every attachment URL resolves to a stored blob.
	urls := append([]string{*created.Image}, created.OtherImages...)
	for _, u := range urls {
		path, ok := upload.PathFromURL(f.disk, u)
		require.True(t, ok, u)
		assert.True(t, f.disk.Exists(path), u)
	}

	got, err := f.svc.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "SKU-0001", got.SKU)
	assert.Equal(t, 19.99, got.Price)
	assert.Equal(t, created.OtherImages, got.OtherImages)
}

func TestCreateDuplicateSKU(t *testing.T) {
	f := newFixture(t)

	_, errs, err := f.svc.Create(createInput("SKU-0001"))
	require.NoError(t, err)
	require.Empty(t, errs)

	_, errs, err = f.svc.Create(createInput("SKU-0001"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"sku": "The sku has already been taken."}, errs)

	// The rejected create must not leave a second record behind.
	all, err := f.repo.All()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreateZeroPriceAndStock(t *testing.T) {
	f := newFixture(t)

	in := createInput("SKU-FREE")
	in.Price = floatPtr(0)
	in.Stock = intPtr(0)

	created, errs, err := f.svc.Create(in)
	require.NoError(t, err)
	require.Empty(t, errs)
	assert.Zero(t, created.Price)
	assert.Zero(t, created.Stock)
}

func TestListServedFromCacheUntilMutation(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.Create(createInput("SKU-0001"))
	require.NoError(t, err)

	first, err := f.svc.List()
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A write that sidesteps the service is invisible while the cache holds.
	require.NoError(t, f.repo.Create(&models.Product{Name: "Ghost", SKU: "SKU-GHOST"}))

	stale, err := f.svc.List()
	require.NoError(t, err)
	assert.Len(t, stale, 1)

	// A service mutation invalidates the listing.
	_, _, err = f.svc.Create(createInput("SKU-0002"))
	require.NoError(t, err)

	fresh, err := f.svc.List()
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}

func TestGetServedFromCacheUntilMutation(t *testing.T) {
	f := newFixture(t)

	created, _, err := f.svc.Create(createInput("SKU-0001"))
	require.NoError(t, err)

	_, err = f.svc.Get(created.ID)
	require.NoError(t, err)

	// Sidestep the service; the cached record is still served.
	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", created.ID).Update("name", "Renamed").Error)

	stale, err := f.svc.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", stale.Name)

	// An update through the service invalidates the record cache.
	_, errs, err := f.svc.Update(created.ID, &requests.ProductInput{Stock: intPtr(5)})
	require.NoError(t, err)
	require.Empty(t, errs)

	fresh, err := f.svc.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", fresh.Name)
	assert.Equal(t, 5, fresh.Stock)
}

func TestUpdateReadsStoreNotCache(t *testing.T) {
	f := newFixture(t)

	created, _, err := f.svc.Create(createInput("SKU-0001"))
	require.NoError(t, err)

	// Warm the record cache, then change the store behind it.
	_, err = f.svc.Get(created.ID)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", created.ID).Update("stock", 99).Error)

	// The update must start from the store's stock, not the cached 10.
	updated, errs, err := f.svc.Update(created.ID, &requests.ProductInput{Name: strPtr("Renamed")})
	require.NoError(t, err)
	require.Empty(t, errs)
	assert.Equal(t, 99, updated.Stock)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestUpdatePartialLeavesOtherFields(t *testing.T) {
	f := newFixture(t)

	in := createInput("SKU-0001")
	in.Image = pngHeader(t, "main.png")
	in.OtherImages = []*multipart.FileHeader{pngHeader(t, "a.png")}
	created, _, err := f.svc.Create(in)
	require.NoError(t, err)

	updated, errs, err := f.svc.Update(created.ID, &requests.ProductInput{Price: floatPtr(5.5)})
	require.NoError(t, err)
	require.Empty(t, errs)

	assert.Equal(t, 5.5, updated.Price)
	assert.Equal(t, created.Name, updated.Name)
	assert.Equal(t, created.SKU, updated.SKU)
	assert.Equal(t, created.Stock, updated.Stock)
	assert.Equal(t, created.Description, updated.Description)
	require.NotNil(t, updated.Image)
	assert.Equal(t, *created.Image, *updated.Image)
	assert.Equal(t, created.OtherImages, updated.OtherImages)
}

func TestUpdateDuplicateSKU(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.Create(createInput("SKU-0001"))
	require.NoError(t, err)
	second, _, err := f.svc.Create(createInput("SKU-0002"))
	require.NoError(t, err)

	_, errs, err := f.svc.Update(second.ID, &requests.ProductInput{SKU: strPtr("SKU-0001")})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"sku": "The sku has already been taken."}, errs)

	// Re-submitting a record's own sku is not a conflict.
	_, errs, err = f.svc.Update(second.ID, &requests.ProductInput{SKU: strPtr("SKU-0002")})
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestUpdateReplacesPrimaryImage(t *testing.T) {
	f := newFixture(t)

	in := createInput("SKU-0001")
	in.Image = pngHeader(t, "old.png")
	created, _, err := f.svc.Create(in)
	require.NoError(t, err)
	require.NotNil(t, created.Image)

	oldPath, ok := upload.PathFromURL(f.disk, *created.Image)
	require.True(t, ok)
	require.True(t, f.disk.Exists(oldPath))

	updated, errs, err := f.svc.Update(created.ID, &requests.ProductInput{Image: pngHeader(t, "new.png")})
	require.NoError(t, err)
	require.Empty(t, errs)
	require.NotNil(t, updated.Image)
	assert.NotEqual(t, *created.Image, *updated.Image)

	// Old blob is gone, new blob is reachable.
	assert.True(t, f.disk.Missing(oldPath))
	newPath, ok := upload.PathFromURL(f.disk, *updated.Image)
	require.True(t, ok)
	assert.True(t, f.disk.Exists(newPath))
}

func TestUpdateReplacesOtherImagesInOrder(t *testing.T) {
	f := newFixture(t)

	in := createInput("SKU-0001")
	in.OtherImages = []*multipart.FileHeader{pngHeader(t, "a.png"), pngHeader(t, "b.png")}
	created, _, err := f.svc.Create(in)
	require.NoError(t, err)
	require.Len(t, created.OtherImages, 2)

	updated, errs, err := f.svc.Update(created.ID, &requests.ProductInput{
		OtherImages: []*multipart.FileHeader{pngHeader(t, "c.png"), pngHeader(t, "d.png"), pngHeader(t, "e.png")},
	})
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Len(t, updated.OtherImages, 3)

	// Old set removed from the disk.
	for _, old := range created.OtherImages {
		path, ok := upload.PathFromURL(f.disk, old)
		require.True(t, ok)
		assert.True(t, f.disk.Missing(path))
	}

	// New set stored, upload order preserved as distinct blobs.
	seen := map[string]bool{}
	for _, u := range updated.OtherImages {
		path, ok := upload.PathFromURL(f.disk, u)
		require.True(t, ok)
		assert.True(t, f.disk.Exists(path))
		assert.False(t, seen[path])
		seen[path] = true
	}
}

func TestUpdateNotFound(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.Update(12345, &requests.ProductInput{Name: strPtr("x")})
	assert.ErrorIs(t, err, services.ErrProductNotFound)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)

	in := createInput("SKU-0001")
	in.Image = pngHeader(t, "keep.png")
	created, _, err := f.svc.Create(in)
	require.NoError(t, err)

	// Warm both cache entries so the delete has something to invalidate.
	_, err = f.svc.List()
	require.NoError(t, err)
	_, err = f.svc.Get(created.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(created.ID))

	_, err = f.svc.Get(created.ID)
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	list, err := f.svc.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	// Blobs are kept; readers may still hold the old URLs.
	path, ok := upload.PathFromURL(f.disk, *created.Image)
	require.True(t, ok)
	assert.True(t, f.disk.Exists(path))
}

func TestDeleteNotFound(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.svc.Delete(12345), services.ErrProductNotFound)
}

func TestSKUReusableAfterDelete(t *testing.T) {
	f := newFixture(t)

	created, errs, err := f.svc.Create(createInput("SKU-REUSE"))
	require.NoError(t, err)
	require.Empty(t, errs)

	require.NoError(t, f.svc.Delete(created.ID))

	// The deleted row must not keep occupying the sku.
	recreated, errs, err := f.svc.Create(createInput("SKU-REUSE"))
	require.NoError(t, err)
	require.Empty(t, errs)
	assert.Equal(t, "SKU-REUSE", recreated.SKU)
	assert.NotEqual(t, created.ID, recreated.ID)

	got, err := f.svc.Get(recreated.ID)
	require.NoError(t, err)
	assert.Equal(t, "SKU-REUSE", got.SKU)
}
