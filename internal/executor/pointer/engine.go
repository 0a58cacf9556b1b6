// internal/executor/pointer/engine.go
package pointer

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/halcyondale/deskpilot-cli/api/schemas"
)

// Surface dispatches pointer positions to the desktop.
type Surface interface {
	MoveMouse(ctx context.Context, p schemas.Point) error
}

// Guard inspects each intermediate pointer position. A non-nil error aborts
// the glide immediately and is returned to the caller unchanged.
type Guard func(p schemas.Point) error

// Engine moves the pointer along human-like curved trajectories instead of
// teleporting it. Durations follow Fitts's law; positions follow a cubic
// Bezier with a slight random bow.
type Engine struct {
	surface Surface
	guard   Guard
	speed   float64
	logger  *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithGuard installs a per-step position guard.
func WithGuard(g Guard) Option {
	return func(e *Engine) { e.guard = g }
}

// WithSpeed scales trajectory duration; values above 1.0 move faster.
func WithSpeed(speed float64) Option {
	return func(e *Engine) {
		if speed > 0 {
			e.speed = speed
		}
	}
}

// WithSeed fixes the randomness source, for deterministic tests.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.rng = rand.New(rand.NewSource(seed)) }
}

// NewEngine creates a trajectory engine over the given surface.
func NewEngine(surface Surface, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		surface: surface,
		speed:   1.0,
		logger:  logger.Named("pointer"),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// computeEaseInOutCubic provides a smooth acceleration and deceleration
// profile for movement.
func computeEaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// fittsDuration determines a realistic movement duration based on Fitts's
// Law, which models the time required to move to a target area.
func (e *Engine) fittsDuration(distance float64) time.Duration {
	const (
		W = 30.0  // assumed target width in pixels
		A = 120.0 // base reaction time, ms
		B = 110.0 // per-bit movement cost, ms
	)

	id := math.Log2(1.0 + distance/W)
	mt := A + B*id

	e.mu.Lock()
	jitter := e.rng.Float64()*0.3 - 0.15
	e.mu.Unlock()
	mt += mt * jitter
	mt /= e.speed

	return time.Duration(mt) * time.Millisecond
}

// bezierPath builds a cubic Bezier from start to end whose control points
// bow perpendicular to the travel direction.
func (e *Engine) bezierPath(start, end Vector2D, numSteps int) []Vector2D {
	dist := start.Dist(end)
	if dist < 1.0 || numSteps <= 1 {
		return []Vector2D{end}
	}

	dir := end.Sub(start).Normalize()
	perp := dir.Perp()

	e.mu.Lock()
	bow1 := (e.rng.Float64()*2 - 1) * dist * 0.08
	bow2 := (e.rng.Float64()*2 - 1) * dist * 0.08
	e.mu.Unlock()

	p0, p3 := start, end
	p1 := start.Add(dir.Mul(dist / 3.0)).Add(perp.Mul(bow1))
	p2 := start.Add(dir.Mul(dist * 2.0 / 3.0)).Add(perp.Mul(bow2))

	path := make([]Vector2D, numSteps)
	for i := 0; i < numSteps; i++ {
		t := float64(i) / float64(numSteps-1)
		omt := 1.0 - t
		omt2 := omt * omt
		omt3 := omt2 * omt
		t2 := t * t
		t3 := t2 * t

		path[i] = p0.Mul(omt3).Add(p1.Mul(3 * omt2 * t)).Add(p2.Mul(3 * omt * t2)).Add(p3.Mul(t3))
	}
	return path
}

// Glide moves the pointer from start to end along a curved, eased path.
// The guard runs before every dispatched step; its error aborts the glide.
func (e *Engine) Glide(ctx context.Context, start, end schemas.Point) error {
	from := Vector2D{X: float64(start.X), Y: float64(start.Y)}
	to := Vector2D{X: float64(end.X), Y: float64(end.Y)}

	duration := e.fittsDuration(from.Dist(to))
	numSteps := int(duration.Seconds() * 100)
	if numSteps < 2 {
		numSteps = 2
	}

	path := e.bezierPath(from, to, numSteps)
	startTime := time.Now()

	for i, pos := range path {
		if err := ctx.Err(); err != nil {
			return err
		}

		t := float64(i) / float64(len(path)-1)
		target := startTime.Add(time.Duration(computeEaseInOutCubic(t) * float64(duration)))
		if wait := time.Until(target); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		step := schemas.Point{X: int(math.Round(pos.X)), Y: int(math.Round(pos.Y))}
		if e.guard != nil {
			if err := e.guard(step); err != nil {
				e.logger.Warn("Pointer glide aborted by guard",
					zap.Int("x", step.X), zap.Int("y", step.Y), zap.Error(err))
				return err
			}
		}
		if err := e.surface.MoveMouse(ctx, step); err != nil {
			return err
		}
	}
	return nil
}
