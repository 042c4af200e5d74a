// Package imagemeta probes pixel dimensions of stored images without decoding
// full frames.
package imagemeta

import (
	"image"
	"os"
	"path/filepath"
	"strings"

	// Register decoders so image.DecodeConfig can read headers of the
	// extensions the service recognizes.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".webp": {},
	".bmp":  {},
	".tif":  {},
	".tiff": {},
}

// IsImage reports whether the filename's extension belongs to the recognized
// image set.
func IsImage(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Dimensions returns the pixel width and height of the image at path. ok is
// false for non-image extensions and for files whose header cannot be parsed.
func Dimensions(path string) (width, height int, ok bool) {
	if !IsImage(path) {
		return 0, 0, false
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}
