// internal/executor/browser.go
package executor

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/halcyondale/deskpilot-cli/internal/config"
)

// Navigator opens URLs in some browsing surface.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
	Close()
}

// BrowserSession is a managed Chrome instance driven over CDP. When the
// controlled browser is enabled, web actions land in this session instead of
// whatever the OS default handler decides to do.
type BrowserSession struct {
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	cfg         config.BrowserConfig
	logger      *zap.Logger
}

// NewBrowserSession launches the managed browser.
func NewBrowserSession(cfg config.BrowserConfig, logger *zap.Logger) (*BrowserSession, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// Starting the browser eagerly surfaces a missing Chrome binary now
	// instead of on the first command.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start controlled browser: %w", err)
	}

	return &BrowserSession{
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		cfg:         cfg,
		logger:      logger.Named("browser"),
	}, nil
}

// Navigate loads the URL in the session tab, bounded by the configured
// navigation timeout.
func (s *BrowserSession) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(s.tabCtx, s.cfg.NavTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- chromedp.Run(navCtx, chromedp.Navigate(url))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("navigation failed: %w", err)
		}
		s.logger.Info("Navigated controlled browser", zap.String("url", url))
		return nil
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	}
}

// Close tears the session down.
func (s *BrowserSession) Close() {
	s.tabCancel()
	s.allocCancel()
}
