// internal/desktop/geometry.go
package desktop

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// toolGeometry reads the display size from the platform tools.
type toolGeometry struct {
	goos   string
	runner CommandRunner
}

func (g *toolGeometry) Size(ctx context.Context) (int, int, error) {
	switch g.goos {
	case "darwin":
		// Finder reports desktop bounds as "0, 0, W, H".
		out, err := g.runner.Run(ctx, "osascript", "-e",
			`tell application "Finder" to get bounds of window of desktop`)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to query display bounds: %w", err)
		}
		parts := strings.Split(strings.TrimSpace(string(out)), ",")
		if len(parts) != 4 {
			return 0, 0, fmt.Errorf("unexpected display bounds %q", strings.TrimSpace(string(out)))
		}
		w, errW := strconv.Atoi(strings.TrimSpace(parts[2]))
		h, errH := strconv.Atoi(strings.TrimSpace(parts[3]))
		if errW != nil || errH != nil || w <= 0 || h <= 0 {
			return 0, 0, fmt.Errorf("unparseable display bounds %q", strings.TrimSpace(string(out)))
		}
		return w, h, nil
	default:
		out, err := g.runner.Run(ctx, "xdotool", "getdisplaygeometry")
		if err != nil {
			return 0, 0, fmt.Errorf("failed to query display geometry: %w", err)
		}
		fields := strings.Fields(strings.TrimSpace(string(out)))
		if len(fields) != 2 {
			return 0, 0, fmt.Errorf("unexpected display geometry %q", strings.TrimSpace(string(out)))
		}
		w, errW := strconv.Atoi(fields[0])
		h, errH := strconv.Atoi(fields[1])
		if errW != nil || errH != nil || w <= 0 || h <= 0 {
			return 0, 0, fmt.Errorf("unparseable display geometry %q", strings.TrimSpace(string(out)))
		}
		return w, h, nil
	}
}
