// Package object owns the directory-per-object layout: every stored file
// lives in <root>/<code>/ next to an optional thumbnail.png, and the code
// doubles as the public identifier.
package object

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/google/uuid"
)

// ThumbnailName is the reserved filename for the derived video still. The
// content file is, by layout convention, the one regular file that is not
// the thumbnail.
const ThumbnailName = "thumbnail.png"

const (
	codeLength   = 4
	codeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	maxAttempts  = 64
)

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mkv":  {},
	".webm": {},
	".mov":  {},
	".avi":  {},
}

// IsVideo reports whether the filename's extension belongs to the set that
// gets a generated thumbnail.
func IsVideo(name string) bool {
	_, ok := videoExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Handle is a resolved object: the directory, its content file, and the
// thumbnail when one exists.
type Handle struct {
	Code          string
	Dir           string
	ContentName   string
	ContentPath   string
	ThumbnailPath string
	HasThumbnail  bool
}

// Store manages object directories under a single root.
type Store struct {
	root string
}

// NewStore ensures root exists and returns a store over it.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create files dir: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the directory holding all object directories.
func (s *Store) Root() string { return s.root }

// Allocate picks a random unused code carrying originalName's extension.
// Collisions are resolved by retrying; the caller must still treat a
// subsequent Create returning ErrCodeTaken as a lost race and re-allocate.
func (s *Store) Allocate(originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	for i := 0; i < maxAttempts; i++ {
		code := randomCode() + ext
		if _, err := os.Stat(filepath.Join(s.root, code)); os.IsNotExist(err) {
			return code, nil
		}
	}
	return "", fmt.Errorf("allocate code: %d attempts exhausted", maxAttempts)
}

// Create makes the object directory and writes the content file from r.
// A directory that appears between Allocate and Create surfaces as
// ErrCodeTaken, never as an overwrite.
func (s *Store) Create(code, originalName string, r io.Reader) (Handle, error) {
	name := sanitizeName(originalName)
	dir := filepath.Join(s.root, code)

	if err := os.Mkdir(dir, 0o755); err != nil {
		if os.IsExist(err) {
			return Handle{}, ErrCodeTaken
		}
		return Handle{}, fmt.Errorf("create object dir: %w", err)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		_ = os.RemoveAll(dir)
		return Handle{}, fmt.Errorf("create content file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.RemoveAll(dir)
		return Handle{}, fmt.Errorf("write content file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.RemoveAll(dir)
		return Handle{}, fmt.Errorf("close content file: %w", err)
	}

	return s.Get(code)
}

// Get resolves code to its handle, or ErrNotFound.
func (s *Store) Get(code string) (Handle, error) {
	dir := filepath.Join(s.root, code)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Handle{}, ErrNotFound
		}
		return Handle{}, fmt.Errorf("read object dir: %w", err)
	}

	h := Handle{Code: code, Dir: dir}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if entry.Name() == ThumbnailName {
			h.ThumbnailPath = filepath.Join(dir, ThumbnailName)
			h.HasThumbnail = true
			continue
		}
		if h.ContentName == "" {
			h.ContentName = entry.Name()
			h.ContentPath = filepath.Join(dir, entry.Name())
		}
	}
	if h.ContentName == "" {
		return Handle{}, ErrNoContent
	}
	return h, nil
}

// Delete removes the object directory recursively, or ErrNotFound.
func (s *Store) Delete(code string) error {
	dir := filepath.Join(s.root, code)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("stat object dir: %w", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove object dir: %w", err)
	}
	return nil
}

// Rename gives the content file a new name and moves the object to the code
// derived from the new extension. The two underlying renames are staged
// through a temporary directory so a failure at any step rolls the object
// back to its previous layout.
func (s *Store) Rename(code, newName string) (string, error) {
	newName = sanitizeName(newName)

	h, err := s.Get(code)
	if err != nil {
		return "", err
	}

	newExt := strings.ToLower(filepath.Ext(newName))
	base := strings.TrimSuffix(code, filepath.Ext(code))
	newCode := base + newExt

	if newCode == code {
		// Extension unchanged: a single in-place rename suffices.
		if newName == h.ContentName {
			return code, nil
		}
		if err := os.Rename(h.ContentPath, filepath.Join(h.Dir, newName)); err != nil {
			return "", fmt.Errorf("rename content file: %w", err)
		}
		return code, nil
	}

	newDir := filepath.Join(s.root, newCode)
	tmpDir := filepath.Join(s.root, ".rename-"+uuid.NewString())
	if err := os.Rename(h.Dir, tmpDir); err != nil {
		return "", fmt.Errorf("stage object dir: %w", err)
	}

	oldContent := filepath.Join(tmpDir, h.ContentName)
	newContent := filepath.Join(tmpDir, newName)
	if err := os.Rename(oldContent, newContent); err != nil {
		_ = os.Rename(tmpDir, h.Dir)
		return "", fmt.Errorf("rename content file: %w", err)
	}

	if err := os.Rename(tmpDir, newDir); err != nil {
		_ = os.Rename(newContent, oldContent)
		_ = os.Rename(tmpDir, h.Dir)
		// An occupied target surfaces here, not via a racy pre-check. An
		// abandoned empty directory at newDir is replaced by the rename.
		if errors.Is(err, syscall.ENOTEMPTY) || errors.Is(err, syscall.EEXIST) {
			return "", ErrCodeTaken
		}
		return "", fmt.Errorf("publish renamed object: %w", err)
	}

	return newCode, nil
}

// List returns handles for every object directory, sorted by code. Dotted
// entries (in-flight rename stages) and stray regular files are skipped.
func (s *Store) List() ([]Handle, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read files dir: %w", err)
	}

	handles := make([]Handle, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		h, err := s.Get(entry.Name())
		if err != nil {
			// An empty directory is not listable but must not poison
			// the listing of everything else.
			continue
		}
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i].Code < handles[j].Code })
	return handles, nil
}

func randomCode() string {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		panic("object: crypto/rand unavailable: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}

func sanitizeName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "upload"
	}
	if name == ThumbnailName {
		// The reserved name would make the content indistinguishable
		// from the derived asset.
		return "content-" + name
	}
	return name
}
