package storage_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dukaanlabs/dukaan/pkg/storage"
)

// drivers returns each Disk implementation under test.
func drivers(t *testing.T) map[string]storage.Disk {
	t.Helper()
	return map[string]storage.Disk{
		"local":  storage.NewLocalDisk(t.TempDir(), "http://localhost:8080/storage"),
		"memory": storage.NewMemoryDisk("http://localhost:8080/storage"),
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	for name, d := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			content := []byte("hello blob")
			if err := d.Put("products/a.png", content); err != nil {
				t.Fatalf("put: %v", err)
			}

			got, err := d.Get("products/a.png")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if !bytes.Equal(got, content) {
				t.Error("content mismatch")
			}

			size, err := d.Size("products/a.png")
			if err != nil {
				t.Fatalf("size: %v", err)
			}
			if size != int64(len(content)) {
				t.Errorf("size: got %d, want %d", size, len(content))
			}
		})
	}
}

func TestPutStream(t *testing.T) {
	for name, d := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			if err := d.PutStream("products/s.png", strings.NewReader("streamed")); err != nil {
				t.Fatalf("put stream: %v", err)
			}
			got, err := d.Get("products/s.png")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(got) != "streamed" {
				t.Errorf("got %q", got)
			}
		})
	}
}

func TestExistsAndMissing(t *testing.T) {
	for name, d := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			if d.Exists("products/nope.png") {
				t.Error("absent blob reported as existing")
			}
			if !d.Missing("products/nope.png") {
				t.Error("absent blob not reported as missing")
			}

			if err := d.Put("products/yes.png", []byte("x")); err != nil {
				t.Fatalf("put: %v", err)
			}
			if !d.Exists("products/yes.png") {
				t.Error("stored blob reported as absent")
			}
		})
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	for name, d := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			if err := d.Put("products/gone.png", []byte("x")); err != nil {
				t.Fatalf("put: %v", err)
			}
			if err := d.Delete("products/gone.png"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if d.Exists("products/gone.png") {
				t.Error("blob still exists after delete")
			}
			// Deleting an absent path is not an error.
			if err := d.Delete("products/gone.png"); err != nil {
				t.Errorf("second delete: %v", err)
			}
		})
	}
}

func TestURL(t *testing.T) {
	for name, d := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			url := d.URL("products/a.png")
			if url != "http://localhost:8080/storage/products/a.png" {
				t.Errorf("got %q", url)
			}
		})
	}
}

func TestFilesListsDirectory(t *testing.T) {
	for name, d := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			for _, p := range []string{"products/b.png", "products/a.png", "other/c.png"} {
				if err := d.Put(p, []byte("x")); err != nil {
					t.Fatalf("put %s: %v", p, err)
				}
			}

			files, err := d.Files("products")
			if err != nil {
				t.Fatalf("files: %v", err)
			}
			if len(files) != 2 {
				t.Fatalf("got %d files, want 2: %v", len(files), files)
			}
			for _, f := range files {
				if !strings.HasPrefix(f, "products/") {
					t.Errorf("file outside directory: %q", f)
				}
			}
		})
	}
}
