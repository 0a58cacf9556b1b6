// internal/executor/failsafe.go
package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/halcyondale/deskpilot-cli/api/schemas"
	"github.com/halcyondale/deskpilot-cli/internal/desktop"
)

// ErrSafetyHalt is returned whenever the corner sentinel fires. It aborts the
// in-flight action and any queued multi-step remainder; callers surface it as
// a safety halt, never as an ordinary failure.
var ErrSafetyHalt = errors.New("safety halt: pointer parked in a screen corner")

// failsafe implements the corner sentinel: a pointer within margin pixels of
// any screen corner means the human wants control back. The check cannot be
// configured away below a one-pixel margin.
type failsafe struct {
	input    desktop.Injector
	geometry desktop.ScreenGeometry
	margin   int
}

func newFailsafe(input desktop.Injector, geometry desktop.ScreenGeometry, margin int) *failsafe {
	if margin < 1 {
		margin = 1
	}
	return &failsafe{input: input, geometry: geometry, margin: margin}
}

// Check reads the live pointer position and screen size and returns
// ErrSafetyHalt if the pointer sits in a corner. A failure to read either is
// reported as its own error; the caller decides whether to continue.
func (f *failsafe) Check(ctx context.Context) error {
	pos, err := f.input.PointerLocation(ctx)
	if err != nil {
		return fmt.Errorf("failsafe could not read pointer: %w", err)
	}
	w, h, err := f.geometry.Size(ctx)
	if err != nil {
		return fmt.Errorf("failsafe could not read screen size: %w", err)
	}
	return f.CheckPoint(pos, w, h)
}

// CheckPoint applies the corner test to a known position. The pointer engine
// uses this as its per-step guard with cached geometry.
func (f *failsafe) CheckPoint(p schemas.Point, w, h int) error {
	nearLeft := p.X <= f.margin
	nearRight := p.X >= w-1-f.margin
	nearTop := p.Y <= f.margin
	nearBottom := p.Y >= h-1-f.margin

	if (nearLeft || nearRight) && (nearTop || nearBottom) {
		return ErrSafetyHalt
	}
	return nil
}
