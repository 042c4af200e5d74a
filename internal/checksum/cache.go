// Package checksum caches content digests by filesystem path so repeated
// lookups do not re-read large files. The key is the exact path string: after
// a rename the new path misses and the digest is recomputed.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/filedrop/filedrop/internal/kvmap"
)

// Cache is a persisted path→digest map.
type Cache struct {
	store *kvmap.Store[string]
}

// Open loads (or creates) the cache document at path.
func Open(path string) (*Cache, error) {
	store, err := kvmap.Open[string](path)
	if err != nil {
		return nil, err
	}
	return &Cache{store: store}, nil
}

// Sum returns the hex-encoded sha256 digest of the file at path, serving it
// from the cache when present and computing + persisting it otherwise.
func (c *Cache) Sum(path string) (string, error) {
	if digest, ok := c.store.Get(path); ok {
		return digest, nil
	}

	digest, err := hashFile(path)
	if err != nil {
		return "", err
	}
	if err := c.store.Put(path, digest); err != nil {
		return "", err
	}
	return digest, nil
}

// Forget drops the cached digest for path.
func (c *Cache) Forget(path string) error {
	return c.store.Delete(path)
}

// ForgetDir drops every cached digest for files under dir.
func (c *Cache) ForgetDir(dir string) error {
	prefix := strings.TrimRight(dir, string(filepath.Separator)) + string(filepath.Separator)
	return c.store.DeleteFunc(func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
