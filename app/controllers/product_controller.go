// Package controllers maps HTTP requests onto service calls and renders
// the JSON envelopes.
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dukaanlabs/dukaan/app/requests"
	"github.com/dukaanlabs/dukaan/app/services"
	"github.com/dukaanlabs/dukaan/pkg/logger"
	"github.com/dukaanlabs/dukaan/pkg/response"
	"github.com/dukaanlabs/dukaan/pkg/router"
	"github.com/dukaanlabs/dukaan/pkg/validate"
)

// ProductController handles the /products resource.
type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

// Index lists every product as a bare JSON array.
func (c *ProductController) Index(w http.ResponseWriter, r *http.Request) {
	products, err := c.products.List()
	if err != nil {
		logger.WithCtx(r.Context()).Error("list products", "error", err)
		response.ServerError(w)
		return
	}
	response.JSON(w, http.StatusOK, products)
}

// Show returns one product by id.
func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		response.NotFound(w, "Product not found")
		return
	}

	product, err := c.products.Get(id)
	if errors.Is(err, services.ErrProductNotFound) {
		response.NotFound(w, "Product not found")
		return
	}
	if err != nil {
		logger.WithCtx(r.Context()).Error("get product", "id", id, "error", err)
		response.ServerError(w)
		return
	}
	response.Data(w, product)
}

// Store creates a product from a multipart form.
func (c *ProductController) Store(w http.ResponseWriter, r *http.Request) {
	in, errs, err := requests.ParseProduct(r, false)
	if err != nil {
		response.ValidationErrors(w, map[string]string{"form": "The request must be valid multipart form data."})
		return
	}
	if validate.HasErrors(errs) {
		response.ValidationErrors(w, errs)
		return
	}

	product, errs, err := c.products.Create(in)
	if err != nil {
		logger.WithCtx(r.Context()).Error("create product", "error", err)
		response.ServerError(w)
		return
	}
	if validate.HasErrors(errs) {
		response.ValidationErrors(w, errs)
		return
	}

	response.Message(w, http.StatusCreated, "Product Successfully Created", product)
}

// Update applies a partial multipart form to an existing product.
func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		response.NotFound(w, "Product not found")
		return
	}

	in, errs, err := requests.ParseProduct(r, true)
	if err != nil {
		response.ValidationErrors(w, map[string]string{"form": "The request must be valid multipart form data."})
		return
	}
	if validate.HasErrors(errs) {
		response.ValidationErrors(w, errs)
		return
	}

	product, errs, err := c.products.Update(id, in)
	if errors.Is(err, services.ErrProductNotFound) {
		response.NotFound(w, "Product not found")
		return
	}
	if err != nil {
		logger.WithCtx(r.Context()).Error("update product", "id", id, "error", err)
		response.ServerError(w)
		return
	}
	if validate.HasErrors(errs) {
		response.ValidationErrors(w, errs)
		return
	}

	response.Message(w, http.StatusOK, "Product Successfully Updated", product)
}

// Destroy removes a product record.
func (c *ProductController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		response.NotFound(w, "Product not found")
		return
	}

	err := c.products.Delete(id)
	if errors.Is(err, services.ErrProductNotFound) {
		response.NotFound(w, "Product not found")
		return
	}
	if err != nil {
		logger.WithCtx(r.Context()).Error("delete product", "id", id, "error", err)
		response.ServerError(w)
		return
	}

	response.Deleted(w, "Product successfully deleted")
}

func productID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(router.Param(r, "id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
