package storage

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// MemoryDisk is an in-process Disk used by tests.
type MemoryDisk struct {
	mu      sync.RWMutex
	blobs   map[string][]byte
	baseURL string
}

func NewMemoryDisk(baseURL string) *MemoryDisk {
	return &MemoryDisk{
		blobs:   make(map[string][]byte),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func clean(path string) string {
	return strings.TrimLeft(path, "/")
}

func (d *MemoryDisk) Put(path string, content []byte) error {
	d.mu.Lock()
	d.blobs[clean(path)] = append([]byte(nil), content...)
	d.mu.Unlock()
	return nil
}

func (d *MemoryDisk) PutStream(path string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("storage/memory: read: %w", err)
	}
	return d.Put(path, data)
}

func (d *MemoryDisk) Get(path string) ([]byte, error) {
	d.mu.RLock()
	data, ok := d.blobs[clean(path)]
	d.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("storage/memory: get %s: not found", path)
	}
	return append([]byte(nil), data...), nil
}

func (d *MemoryDisk) Exists(path string) bool {
	d.mu.RLock()
	_, ok := d.blobs[clean(path)]
	d.mu.RUnlock()
	return ok
}

func (d *MemoryDisk) Missing(path string) bool { return !d.Exists(path) }

func (d *MemoryDisk) Size(path string) (int64, error) {
	d.mu.RLock()
	data, ok := d.blobs[clean(path)]
	d.mu.RUnlock()

	if !ok {
		return 0, fmt.Errorf("storage/memory: size %s: not found", path)
	}
	return int64(len(data)), nil
}

func (d *MemoryDisk) Delete(path string) error {
	d.mu.Lock()
	delete(d.blobs, clean(path))
	d.mu.Unlock()
	return nil
}

func (d *MemoryDisk) URL(path string) string {
	return d.baseURL + "/" + clean(path)
}

func (d *MemoryDisk) Files(directory string) ([]string, error) {
	prefix := clean(directory)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []string
	for path := range d.blobs {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		if strings.Contains(path[len(prefix):], "/") {
			continue // nested under a sub-directory
		}
		out = append(out, path)
	}
	sort.Strings(out)
	return out, nil
}
