// Package thumbnail extracts a still frame from uploaded videos via ffmpeg.
package thumbnail

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// frame is grabbed at a fixed offset near the start so the cost stays flat
// regardless of video length.
const frameOffset = "00:00:01.000"

// Generator shells out to ffmpeg with a bounded timeout.
type Generator struct {
	ffmpegPath string
	timeout    time.Duration
}

// New returns a Generator using the given ffmpeg binary and per-run timeout.
func New(ffmpegPath string, timeout time.Duration) *Generator {
	return &Generator{ffmpegPath: ffmpegPath, timeout: timeout}
}

// Generate writes a single PNG frame of videoPath to outPath. Any failure
// (spawn, non-zero exit, timeout) is returned as an error the caller is
// expected to absorb; a partial output file is removed.
func (g *Generator) Generate(ctx context.Context, videoPath, outPath string) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, g.ffmpegPath,
		"-ss", frameOffset,
		"-i", videoPath,
		"-frames:v", "1",
		"-y",
		outPath,
	)

	if err := cmd.Run(); err != nil {
		_ = os.Remove(outPath)
		if ctx.Err() != nil {
			return fmt.Errorf("thumbnail for %s: %w", videoPath, ctx.Err())
		}
		return fmt.Errorf("thumbnail for %s: %w", videoPath, err)
	}
	return nil
}
