// internal/desktop/window.go
package desktop

import (
	"context"
	"fmt"
	"strings"
)

// toolWindowQuerier resolves the focused window title through xdotool on
// Linux and System Events on macOS.
type toolWindowQuerier struct {
	goos   string
	runner CommandRunner
}

func (w *toolWindowQuerier) ActiveWindowTitle(ctx context.Context) (string, error) {
	switch w.goos {
	case "darwin":
		return w.darwinTitle(ctx)
	default:
		out, err := w.runner.Run(ctx, "xdotool", "getactivewindow", "getwindowname")
		if err != nil {
			return "", fmt.Errorf("failed to query active window: %w", err)
		}
		return strings.TrimSpace(string(out)), nil
	}
}

func (w *toolWindowQuerier) darwinTitle(ctx context.Context) (string, error) {
	// Front window titles require accessibility permission; fall back to the
	// frontmost process name when the title query is denied.
	out, err := w.runner.Run(ctx, "osascript", "-e",
		`tell application "System Events" to tell (first process whose frontmost is true) to get name of front window`)
	if err == nil {
		if title := strings.TrimSpace(string(out)); title != "" {
			return title, nil
		}
	}

	out, err = w.runner.Run(ctx, "osascript", "-e",
		`tell application "System Events" to get name of first application process whose frontmost is true`)
	if err != nil {
		return "", fmt.Errorf("failed to query frontmost application: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
