package preview

import (
	"context"
	"os"
	"strconv"
)

// renderVideo extracts a frame one second in via FFmpeg and derives the
// previews from it. The one-second offset skips fade-in black frames.
func (e *Engine) renderVideo(ctx context.Context, source, dir, base string) (*Output, error) {
	if !e.tools.Has("ffmpeg") {
		return nil, nil
	}

	tmp, err := tempFile("mediavault-video-*.png")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp)

	err = e.tools.Run(ctx, "ffmpeg",
		"-y", "-i", source,
		"-ss", "00:00:01", "-frames:v", "1",
		"-vf", "scale="+strconv.Itoa(e.previewWidth)+":-1",
		tmp)
	if err != nil || !fileExists(tmp) {
		// A failed extraction reads as "no result", same as a missing tool.
		e.log.Debug("frame extraction produced no output", "source", source, "error", err)
		return nil, nil
	}

	return e.fromIntermediate(tmp, dir, base)
}
