package imagemeta

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))))
}

func TestDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pic.png")
	writePNG(t, path, 320, 180)

	w, h, ok := Dimensions(path)
	require.True(t, ok)
	assert.Equal(t, 320, w)
	assert.Equal(t, 180, h)
}

func TestDimensionsNonImageExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	_, _, ok := Dimensions(path)
	assert.False(t, ok)
}

func TestDimensionsCorruptImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a png"), 0o644))

	_, _, ok := Dimensions(path)
	assert.False(t, ok)
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("cat.PNG"))
	assert.True(t, IsImage("photo.jpeg"))
	assert.True(t, IsImage("scan.webp"))
	assert.False(t, IsImage("clip.mp4"))
	assert.False(t, IsImage("notes.txt"))
	assert.False(t, IsImage("noext"))
}
