// internal/desktop/open.go
package desktop

import (
	"context"
	"fmt"
	"net/url"
)

// toolURLOpener hands URLs to the platform default handler.
type toolURLOpener struct {
	goos   string
	runner CommandRunner
}

func (o *toolURLOpener) OpenURL(ctx context.Context, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("refusing to open malformed URL %q: %w", raw, err)
	}
	switch parsed.Scheme {
	case "http", "https", "mailto":
	default:
		return fmt.Errorf("refusing to open URL with scheme %q", parsed.Scheme)
	}

	switch o.goos {
	case "darwin":
		_, err = o.runner.Run(ctx, "open", raw)
	default:
		_, err = o.runner.Run(ctx, "xdg-open", raw)
	}
	if err != nil {
		return fmt.Errorf("failed to open URL: %w", err)
	}
	return nil
}
