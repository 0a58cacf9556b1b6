// internal/desktop/desktop.go
package desktop

import (
	"context"
	"fmt"
	"image"
	"os/exec"
	"runtime"
	"syscall"

	"go.uber.org/zap"

	"github.com/halcyondale/deskpilot-cli/api/schemas"
)

// Capturer grabs a full-screen screenshot.
type Capturer interface {
	Capture(ctx context.Context) (image.Image, error)
}

// OCREngine extracts text from an image.
type OCREngine interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// WindowQuerier reports the currently focused window.
type WindowQuerier interface {
	// ActiveWindowTitle returns the raw title of the focused window.
	ActiveWindowTitle(ctx context.Context) (string, error)
}

// Injector simulates mouse and keyboard input.
type Injector interface {
	MoveMouse(ctx context.Context, p schemas.Point) error
	Click(ctx context.Context, p schemas.Point) error
	TypeText(ctx context.Context, text string) error
	// PointerLocation reports the current pointer position.
	PointerLocation(ctx context.Context) (schemas.Point, error)
}

// Launcher starts desktop applications by friendly name.
type Launcher interface {
	Launch(ctx context.Context, app string) error
}

// URLOpener hands a URL to the OS default handler.
type URLOpener interface {
	OpenURL(ctx context.Context, url string) error
}

// ScreenGeometry reports the display size used for coordinate clamping and
// the corner sentinel.
type ScreenGeometry interface {
	Size(ctx context.Context) (width, height int, err error)
}

// Provider bundles all desktop backends for the current OS.
type Provider struct {
	Capturer  Capturer
	OCR       OCREngine
	Windows   WindowQuerier
	Input     Injector
	Launcher  Launcher
	URLOpener URLOpener
	Geometry  ScreenGeometry
}

// ErrUnsupported is returned on platforms without a backend.
var ErrUnsupported = fmt.Errorf("deskpilot has no desktop backend for %s/%s; supported: linux, darwin", runtime.GOOS, runtime.GOARCH)

// CommandRunner executes external tools. It exists so backends can be
// tested without the tools installed. Arguments are always passed as argv;
// nothing here goes through a shell.
type CommandRunner interface {
	// Run executes the tool to completion and returns its combined output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	// Start launches the tool in its own session, detached from the
	// assistant's lifetime, and does not wait for it to exit.
	Start(name string, args ...string) error
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s: %w (output: %s)", name, err, truncateOutput(out))
	}
	return out, nil
}

func (execRunner) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	// Reap the child so it never lingers as a zombie.
	go cmd.Wait()
	return nil
}

func truncateOutput(out []byte) string {
	const max = 200
	if len(out) > max {
		return string(out[:max]) + "..."
	}
	return string(out)
}

// NewProvider assembles the tool-backed provider for the current OS.
func NewProvider(logger *zap.Logger) (*Provider, error) {
	return newProviderFor(runtime.GOOS, execRunner{}, logger)
}

func newProviderFor(goos string, runner CommandRunner, logger *zap.Logger) (*Provider, error) {
	switch goos {
	case "linux", "darwin":
	default:
		return nil, ErrUnsupported
	}

	log := logger.Named("desktop")
	return &Provider{
		Capturer:  &toolCapturer{goos: goos, runner: runner, logger: log},
		OCR:       &tesseractOCR{runner: runner, logger: log},
		Windows:   &toolWindowQuerier{goos: goos, runner: runner},
		Input:     &toolInjector{goos: goos, runner: runner},
		Launcher:  &toolLauncher{goos: goos, runner: runner, logger: log},
		URLOpener: &toolURLOpener{goos: goos, runner: runner},
		Geometry:  &toolGeometry{goos: goos, runner: runner},
	}, nil
}
