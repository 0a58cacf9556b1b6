// internal/desktop/capture.go
package desktop

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// toolCapturer shells out to the platform screenshot tool and decodes the
// resulting PNG.
type toolCapturer struct {
	goos   string
	runner CommandRunner
	logger *zap.Logger
}

func (c *toolCapturer) Capture(ctx context.Context) (image.Image, error) {
	dir, err := os.MkdirTemp("", "deskpilot-shot-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create screenshot dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "screen.png")
	switch c.goos {
	case "darwin":
		// -x suppresses the shutter sound.
		_, err = c.runner.Run(ctx, "screencapture", "-x", path)
	default:
		// -o overwrites, -z disables compression delay.
		_, err = c.runner.Run(ctx, "scrot", "-o", path)
	}
	if err != nil {
		return nil, fmt.Errorf("screen capture failed: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open captured image: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode captured image: %w", err)
	}

	bounds := img.Bounds()
	c.logger.Debug("Screen captured",
		zap.Int("width", bounds.Dx()), zap.Int("height", bounds.Dy()))
	return img, nil
}
