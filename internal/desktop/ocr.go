// internal/desktop/ocr.go
package desktop

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// writeTempPNG encodes img into a fresh temp directory and returns the file
// path plus the cleanup for the whole directory.
func writeTempPNG(img image.Image) (string, func(), error) {
	dir, err := os.MkdirTemp("", "deskpilot-ocr-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create OCR dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	path := filepath.Join(dir, "frame.png")
	f, err := os.Create(path)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to create OCR input: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to encode OCR input: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

// tesseractOCR runs the tesseract CLI over a temporary PNG.
type tesseractOCR struct {
	runner CommandRunner
	logger *zap.Logger
}

func (o *tesseractOCR) Recognize(ctx context.Context, img image.Image) (string, error) {
	path, cleanup, err := writeTempPNG(img)
	if err != nil {
		return "", err
	}
	defer cleanup()

	out, err := o.runner.Run(ctx, "tesseract", path, "stdout")
	if err != nil {
		return "", fmt.Errorf("tesseract failed: %w", err)
	}

	text := strings.TrimSpace(string(out))
	o.logger.Debug("OCR pass complete", zap.Int("chars", len(text)))
	return text, nil
}

// commandOCR wraps any external tool invoked as `tool <image.png>` that
// prints recognized text on stdout. It lets additional engines join the
// merge without a dedicated backend.
type commandOCR struct {
	tool   string
	runner CommandRunner
	logger *zap.Logger
}

// NewCommandOCR builds an engine around the named tool.
func NewCommandOCR(tool string, logger *zap.Logger) OCREngine {
	return &commandOCR{tool: tool, runner: execRunner{}, logger: logger.Named("desktop")}
}

func (o *commandOCR) Recognize(ctx context.Context, img image.Image) (string, error) {
	path, cleanup, err := writeTempPNG(img)
	if err != nil {
		return "", err
	}
	defer cleanup()

	out, err := o.runner.Run(ctx, o.tool, path)
	if err != nil {
		return "", fmt.Errorf("%s failed: %w", o.tool, err)
	}

	text := strings.TrimSpace(string(out))
	o.logger.Debug("OCR pass complete", zap.String("tool", o.tool), zap.Int("chars", len(text)))
	return text, nil
}

// MultiOCR fans an image out to several engines and concatenates whatever
// they return. An engine that fails is skipped; the merge itself fails only
// when every engine does.
func MultiOCR(engines ...OCREngine) OCREngine {
	return multiOCR(engines)
}

type multiOCR []OCREngine

func (m multiOCR) Recognize(ctx context.Context, img image.Image) (string, error) {
	var parts []string
	var lastErr error
	for _, engine := range m {
		text, err := engine.Recognize(ctx, img)
		if err != nil {
			lastErr = err
			continue
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 && lastErr != nil {
		return "", fmt.Errorf("all OCR engines failed: %w", lastErr)
	}
	return strings.Join(parts, "\n"), nil
}
