// internal/desktop/launch.go
package desktop

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// linuxCommands maps friendly application names to executables.
var linuxCommands = map[string]string{
	"spotify":  "spotify",
	"chrome":   "google-chrome",
	"firefox":  "firefox",
	"code":     "code",
	"vscode":   "code",
	"terminal": "x-terminal-emulator",
	"files":    "nautilus",
	"calc":     "gnome-calculator",
}

// darwinApps maps friendly application names to macOS bundle names for
// `open -a`.
var darwinApps = map[string]string{
	"spotify":  "Spotify",
	"chrome":   "Google Chrome",
	"firefox":  "Firefox",
	"code":     "Visual Studio Code",
	"vscode":   "Visual Studio Code",
	"terminal": "Terminal",
	"files":    "Finder",
	"calc":     "Calculator",
}

// toolLauncher starts applications with the OS launcher, falling back to
// treating the name as a raw command.
type toolLauncher struct {
	goos   string
	runner CommandRunner
	logger *zap.Logger
}

func (l *toolLauncher) Launch(ctx context.Context, app string) error {
	name := strings.ToLower(strings.TrimSpace(app))
	if name == "" {
		return fmt.Errorf("application name is empty")
	}

	var err error
	switch l.goos {
	case "darwin":
		target, ok := darwinApps[name]
		if !ok {
			target = app
		}
		_, err = l.runner.Run(ctx, "open", "-a", target)
	default:
		cmd, ok := linuxCommands[name]
		if !ok {
			cmd = name
		}
		// Detached argv launch; the name never touches a shell, so a model
		// that invents "spotify; rm -rf" just fails to exec.
		err = l.runner.Start(cmd)
	}
	if err != nil {
		return fmt.Errorf("failed to launch %q: %w", app, err)
	}

	l.logger.Info("Application launched", zap.String("app", name))
	return nil
}
