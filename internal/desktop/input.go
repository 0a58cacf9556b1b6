// internal/desktop/input.go
package desktop

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/halcyondale/deskpilot-cli/api/schemas"
)

// toolInjector drives the pointer and keyboard through xdotool on Linux and
// cliclick on macOS.
type toolInjector struct {
	goos   string
	runner CommandRunner
}

var coordPairRegex = regexp.MustCompile(`(\d+)[,\s]+(\d+)`)

func (in *toolInjector) MoveMouse(ctx context.Context, p schemas.Point) error {
	var err error
	switch in.goos {
	case "darwin":
		_, err = in.runner.Run(ctx, "cliclick", fmt.Sprintf("m:%d,%d", p.X, p.Y))
	default:
		_, err = in.runner.Run(ctx, "xdotool", "mousemove", strconv.Itoa(p.X), strconv.Itoa(p.Y))
	}
	if err != nil {
		return fmt.Errorf("failed to move pointer to (%d,%d): %w", p.X, p.Y, err)
	}
	return nil
}

func (in *toolInjector) Click(ctx context.Context, p schemas.Point) error {
	var err error
	switch in.goos {
	case "darwin":
		_, err = in.runner.Run(ctx, "cliclick", fmt.Sprintf("c:%d,%d", p.X, p.Y))
	default:
		if err = in.MoveMouse(ctx, p); err != nil {
			return err
		}
		_, err = in.runner.Run(ctx, "xdotool", "click", "1")
	}
	if err != nil {
		return fmt.Errorf("failed to click at (%d,%d): %w", p.X, p.Y, err)
	}
	return nil
}

func (in *toolInjector) TypeText(ctx context.Context, text string) error {
	var err error
	switch in.goos {
	case "darwin":
		_, err = in.runner.Run(ctx, "cliclick", "t:"+text)
	default:
		_, err = in.runner.Run(ctx, "xdotool", "type", "--delay", "50", "--", text)
	}
	if err != nil {
		return fmt.Errorf("failed to type text: %w", err)
	}
	return nil
}

func (in *toolInjector) PointerLocation(ctx context.Context) (schemas.Point, error) {
	switch in.goos {
	case "darwin":
		out, err := in.runner.Run(ctx, "cliclick", "p")
		if err != nil {
			return schemas.Point{}, fmt.Errorf("failed to read pointer location: %w", err)
		}
		return parseCoordPair(string(out))
	default:
		out, err := in.runner.Run(ctx, "xdotool", "getmouselocation", "--shell")
		if err != nil {
			return schemas.Point{}, fmt.Errorf("failed to read pointer location: %w", err)
		}
		return parseShellLocation(string(out))
	}
}

// parseShellLocation parses xdotool --shell output (X=12\nY=34\n...).
func parseShellLocation(out string) (schemas.Point, error) {
	var p schemas.Point
	var haveX, haveY bool
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "X="); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return schemas.Point{}, fmt.Errorf("bad X in pointer location %q", line)
			}
			p.X, haveX = n, true
		}
		if v, ok := strings.CutPrefix(line, "Y="); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return schemas.Point{}, fmt.Errorf("bad Y in pointer location %q", line)
			}
			p.Y, haveY = n, true
		}
	}
	if !haveX || !haveY {
		return schemas.Point{}, fmt.Errorf("pointer location missing coordinates: %q", out)
	}
	return p, nil
}

// parseCoordPair extracts the first "x,y" pair from tool output.
func parseCoordPair(out string) (schemas.Point, error) {
	m := coordPairRegex.FindStringSubmatch(out)
	if m == nil {
		return schemas.Point{}, fmt.Errorf("no coordinates in output %q", strings.TrimSpace(out))
	}
	x, _ := strconv.Atoi(m[1])
	y, _ := strconv.Atoi(m[2])
	return schemas.Point{X: x, Y: y}, nil
}
