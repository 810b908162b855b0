// Package upload validates and stores multipart image uploads.
package upload

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dukaanlabs/dukaan/pkg/storage"
)

// MaxImageBytes is the per-file upload cap (2048 KiB).
const MaxImageBytes = 2048 << 10

// allowedExts lists the accepted image encodings by file extension.
var allowedExts = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".svg":  true,
	".webp": true,
}

// sniffedTypes lists content types accepted from http.DetectContentType.
var sniffedTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// Validate checks one uploaded file against the image constraints and
// returns a per-field error message, or "" when the file is acceptable.
func Validate(field string, fh *multipart.FileHeader) string {
	if fh.Size > MaxImageBytes {
		return fmt.Sprintf("The %s must not be greater than 2048 kilobytes.", field)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExts[ext] {
		return fmt.Sprintf("The %s must be a file of type: jpeg, png, jpg, gif, svg, webp.", field)
	}

	head, err := readHead(fh)
	if err != nil {
		return fmt.Sprintf("The %s must be an image.", field)
	}

	if !isImage(head, ext) {
		return fmt.Sprintf("The %s must be an image.", field)
	}

	return ""
}

// Store writes the upload under dir with a random filename and returns the
// blob's public URL.
func Store(d storage.Disk, dir string, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("upload: open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	path := strings.TrimRight(dir, "/") + "/" + randomName() + ext

	if err := d.PutStream(path, f); err != nil {
		return "", fmt.Errorf("upload: store %s: %w", fh.Filename, err)
	}

	return d.URL(path), nil
}

// PathFromURL converts a public URL back into the disk-relative blob path.
// Returns false when the URL does not belong to this disk.
func PathFromURL(d storage.Disk, url string) (string, bool) {
	base := d.URL("")
	if !strings.HasPrefix(url, base) {
		return "", false
	}
	return strings.TrimLeft(strings.TrimPrefix(url, base), "/"), true
}

func readHead(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := f.Read(head)
	if n == 0 && err != nil {
		return nil, err
	}
	return head[:n], nil
}

func isImage(head []byte, ext string) bool {
	detected := http.DetectContentType(head)
	if sniffedTypes[strings.ToLower(strings.Split(detected, ";")[0])] {
		return true
	}

	// SVG is XML and sniffs as text/xml or text/plain; accept it when the
	// document actually opens an <svg> element.
	if ext == ".svg" {
		return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
	}

	return false
}

func randomName() string {
	b := make([]byte, 20)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
