package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalDisk stores blobs on the local filesystem under a public root.
type LocalDisk struct {
	root    string // absolute root directory
	baseURL string // public URL prefix for URL()
}

func NewLocalDisk(root, baseURL string) *LocalDisk {
	if !filepath.IsAbs(root) {
		cwd, _ := os.Getwd()
		root = filepath.Join(cwd, root)
	}
	return &LocalDisk{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (d *LocalDisk) abs(path string) string {
	return filepath.Join(d.root, filepath.FromSlash(path))
}

func (d *LocalDisk) Put(path string, content []byte) error {
	return d.PutStream(path, bytes.NewReader(content))
}

func (d *LocalDisk) PutStream(path string, r io.Reader) error {
	full := d.abs(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("storage/local: mkdir: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("storage/local: create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("storage/local: write %s: %w", path, err)
	}
	return nil
}

func (d *LocalDisk) Get(path string) ([]byte, error) {
	data, err := os.ReadFile(d.abs(path))
	if err != nil {
		return nil, fmt.Errorf("storage/local: get %s: %w", path, err)
	}
	return data, nil
}

func (d *LocalDisk) Exists(path string) bool {
	_, err := os.Stat(d.abs(path))
	return err == nil
}

func (d *LocalDisk) Missing(path string) bool { return !d.Exists(path) }

func (d *LocalDisk) Size(path string) (int64, error) {
	info, err := os.Stat(d.abs(path))
	if err != nil {
		return 0, fmt.Errorf("storage/local: size %s: %w", path, err)
	}
	return info.Size(), nil
}

func (d *LocalDisk) Delete(path string) error {
	err := os.Remove(d.abs(path))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage/local: delete %s: %w", path, err)
	}
	return nil
}

func (d *LocalDisk) URL(path string) string {
	return d.baseURL + "/" + strings.TrimLeft(filepath.ToSlash(path), "/")
}

func (d *LocalDisk) Files(directory string) ([]string, error) {
	entries, err := os.ReadDir(d.abs(directory))
	if err != nil {
		return nil, fmt.Errorf("storage/local: files %s: %w", directory, err)
	}

	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			out = append(out, filepath.ToSlash(filepath.Join(directory, e.Name())))
		}
	}
	return out, nil
}
