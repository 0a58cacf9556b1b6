// internal/executor/pointer/engine_test.go
package pointer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/halcyondale/deskpilot-cli/api/schemas"
)

type recordingSurface struct {
	moves []schemas.Point
	err   error
}

func (r *recordingSurface) MoveMouse(_ context.Context, p schemas.Point) error {
	if r.err != nil {
		return r.err
	}
	r.moves = append(r.moves, p)
	return nil
}

func TestComputeEaseInOutCubic(t *testing.T) {
	assert.InDelta(t, 0.0, computeEaseInOutCubic(0), 1e-9)
	assert.InDelta(t, 0.5, computeEaseInOutCubic(0.5), 1e-9)
	assert.InDelta(t, 1.0, computeEaseInOutCubic(1), 1e-9)

	// Monotonically non-decreasing over [0,1].
	prev := -1.0
	for i := 0; i <= 100; i++ {
		v := computeEaseInOutCubic(float64(i) / 100)
		assert.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func TestFittsDuration(t *testing.T) {
	e := NewEngine(&recordingSurface{}, zap.NewNop(), WithSeed(1), WithSpeed(1.0))

	short := e.fittsDuration(10)
	long := e.fittsDuration(1500)
	assert.Greater(t, long, short, "farther targets take longer")

	fast := NewEngine(&recordingSurface{}, zap.NewNop(), WithSeed(1), WithSpeed(4.0))
	assert.Less(t, fast.fittsDuration(1500), long)
}

func TestBezierPath(t *testing.T) {
	e := NewEngine(&recordingSurface{}, zap.NewNop(), WithSeed(7))

	start := Vector2D{X: 0, Y: 0}
	end := Vector2D{X: 400, Y: 300}
	path := e.bezierPath(start, end, 50)

	require.Len(t, path, 50)
	assert.InDelta(t, start.X, path[0].X, 1e-6)
	assert.InDelta(t, start.Y, path[0].Y, 1e-6)
	assert.InDelta(t, end.X, path[len(path)-1].X, 1e-6)
	assert.InDelta(t, end.Y, path[len(path)-1].Y, 1e-6)

	t.Run("degenerate distance collapses to endpoint", func(t *testing.T) {
		p := e.bezierPath(Vector2D{X: 5, Y: 5}, Vector2D{X: 5.2, Y: 5}, 50)
		require.Len(t, p, 1)
	})
}

func TestGlide(t *testing.T) {
	t.Run("ends at the target", func(t *testing.T) {
		surface := &recordingSurface{}
		e := NewEngine(surface, zap.NewNop(), WithSeed(3), WithSpeed(50))

		err := e.Glide(context.Background(), schemas.Point{X: 0, Y: 0}, schemas.Point{X: 200, Y: 120})
		require.NoError(t, err)
		require.NotEmpty(t, surface.moves)
		assert.Equal(t, schemas.Point{X: 200, Y: 120}, surface.moves[len(surface.moves)-1])
	})

	t.Run("guard aborts mid flight", func(t *testing.T) {
		surface := &recordingSurface{}
		sentinel := errors.New("position vetoed")
		var checks int
		guard := func(p schemas.Point) error {
			checks++
			if checks > 1 {
				return sentinel
			}
			return nil
		}

		e := NewEngine(surface, zap.NewNop(), WithSeed(3), WithSpeed(50), WithGuard(guard))
		err := e.Glide(context.Background(), schemas.Point{X: 0, Y: 0}, schemas.Point{X: 500, Y: 500})
		require.ErrorIs(t, err, sentinel)
		assert.Len(t, surface.moves, 1, "no dispatch after the veto")
	})

	t.Run("cancellation stops the glide", func(t *testing.T) {
		surface := &recordingSurface{}
		e := NewEngine(surface, zap.NewNop(), WithSeed(3))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		err := e.Glide(ctx, schemas.Point{X: 0, Y: 0}, schemas.Point{X: 1900, Y: 1000})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("surface errors propagate", func(t *testing.T) {
		surface := &recordingSurface{err: errors.New("tool missing")}
		e := NewEngine(surface, zap.NewNop(), WithSeed(3), WithSpeed(50))

		err := e.Glide(context.Background(), schemas.Point{X: 0, Y: 0}, schemas.Point{X: 50, Y: 50})
		assert.ErrorContains(t, err, "tool missing")
	})
}
