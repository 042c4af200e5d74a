package thumbnail

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFFmpeg writes a shell script standing in for the real binary.
func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake ffmpeg scripts need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestGenerateSuccess(t *testing.T) {
	// The last argument is the output path; emulate ffmpeg writing it.
	bin := fakeFFmpeg(t, `for a in "$@"; do last=$a; done; printf 'PNG' > "$last"`)
	gen := New(bin, 5*time.Second)

	out := filepath.Join(t.TempDir(), "thumbnail.png")
	err := gen.Generate(context.Background(), "clip.mp4", out)
	require.NoError(t, err)

	_, err = os.Stat(out)
	assert.NoError(t, err)
}

func TestGenerateNonZeroExit(t *testing.T) {
	bin := fakeFFmpeg(t, `exit 1`)
	gen := New(bin, 5*time.Second)

	out := filepath.Join(t.TempDir(), "thumbnail.png")
	err := gen.Generate(context.Background(), "clip.mp4", out)
	assert.Error(t, err)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "partial output must be removed")
}

func TestGenerateSpawnFailure(t *testing.T) {
	gen := New(filepath.Join(t.TempDir(), "no-such-ffmpeg"), 5*time.Second)

	err := gen.Generate(context.Background(), "clip.mp4", filepath.Join(t.TempDir(), "out.png"))
	assert.Error(t, err)
}

func TestGenerateTimeoutKillsProcess(t *testing.T) {
	bin := fakeFFmpeg(t, `sleep 30`)
	gen := New(bin, 100*time.Millisecond)

	start := time.Now()
	err := gen.Generate(context.Background(), "clip.mp4", filepath.Join(t.TempDir(), "out.png"))
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
