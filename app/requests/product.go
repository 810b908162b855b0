// Package requests parses and validates incoming request payloads.
package requests

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/dukaanlabs/dukaan/pkg/upload"
	"github.com/dukaanlabs/dukaan/pkg/validate"
)

// maxProductForm caps the in-memory size of a parsed product form. Individual
// files are limited separately by upload.MaxImageBytes.
const maxProductForm = 32 << 20

// ProductInput carries the parsed product form. Nil pointers mean the field
// was absent from the request ("sometimes" semantics on update).
type ProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	Stock       *int
	SKU         *string

	// Image is the uploaded replacement primary image, or nil.
	Image *multipart.FileHeader

	// OtherImages is the uploaded replacement secondary set. nil means the
	// field was absent; an empty non-nil slice cannot occur from a form.
	OtherImages []*multipart.FileHeader
}

// productRules applies the scalar constraints to whichever fields are present.
type productRules struct {
	Name  *string  `json:"name"  validate:"nullable,max=255"`
	Price *float64 `json:"price" validate:"nullable,min=0"`
	Stock *int     `json:"stock" validate:"nullable,min=0"`
	SKU   *string  `json:"sku"   validate:"nullable,max=100"`
}

// ParseProduct reads the multipart product form. With partial=false (create)
// the name/price/stock/sku fields are required; with partial=true (update)
// absent fields stay nil and only present fields are validated.
// Returns the parsed input and a field→message map of validation errors.
func ParseProduct(r *http.Request, partial bool) (*ProductInput, map[string]string, error) {
	if err := r.ParseMultipartForm(maxProductForm); err != nil {
		return nil, nil, fmt.Errorf("parse multipart form: %w", err)
	}

	in := &ProductInput{}
	errs := map[string]string{}

	in.Name = formValue(r, "name")
	in.Description = formValue(r, "description")
	in.SKU = formValue(r, "sku")

	if raw := formValue(r, "price"); raw != nil {
		price, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
		if err != nil {
			errs["price"] = "The price field must be a number."
		} else {
			in.Price = &price
		}
	}

	if raw := formValue(r, "stock"); raw != nil {
		stock, err := strconv.Atoi(strings.TrimSpace(*raw))
		if err != nil {
			errs["stock"] = "The stock field must be an integer."
		} else {
			in.Stock = &stock
		}
	}

	if !partial {
		requirePresent(errs, "name", in.Name)
		requireRaw(errs, "price", formValue(r, "price"))
		requireRaw(errs, "stock", formValue(r, "stock"))
		requirePresent(errs, "sku", in.SKU)
	} else {
		// "sometimes|required": a field that is present must not be empty.
		if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
			errs["name"] = "The name field is required."
		}
		if in.SKU != nil && strings.TrimSpace(*in.SKU) == "" {
			errs["sku"] = "The sku field is required."
		}
	}

	for field, msg := range validate.Struct(&productRules{
		Name:  in.Name,
		Price: in.Price,
		Stock: in.Stock,
		SKU:   in.SKU,
	}) {
		if _, taken := errs[field]; !taken {
			errs[field] = msg
		}
	}

	in.Image = formFile(r, "image")
	if in.Image != nil {
		if msg := upload.Validate("image", in.Image); msg != "" {
			errs["image"] = msg
		}
	}

	in.OtherImages = formFiles(r, "other_images")
	for i, fh := range in.OtherImages {
		field := fmt.Sprintf("other_images.%d", i)
		if msg := upload.Validate(field, fh); msg != "" {
			errs[field] = msg
		}
	}

	return in, errs, nil
}

func formValue(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

func formFile(r *http.Request, key string) *multipart.FileHeader {
	files := formFiles(r, key)
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

func formFiles(r *http.Request, key string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	if files := r.MultipartForm.File[key]; len(files) > 0 {
		return files
	}
	// HTML forms commonly post arrays as key[].
	return r.MultipartForm.File[key+"[]"]
}

func requirePresent(errs map[string]string, field string, v *string) {
	if v == nil || strings.TrimSpace(*v) == "" {
		if _, taken := errs[field]; !taken {
			errs[field] = fmt.Sprintf("The %s field is required.", field)
		}
	}
}

func requireRaw(errs map[string]string, field string, raw *string) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		errs[field] = fmt.Sprintf("The %s field is required.", field)
	}
}
