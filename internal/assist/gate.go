// internal/assist/gate.go
package assist

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Gate is the single-slot activation latch. The assistant only acts while
// the gate is open, and an open gate closes itself after the configured hold
// so a forgotten activation cannot leave the machine listening forever.
type Gate struct {
	hold   time.Duration
	logger *zap.Logger

	mu     sync.Mutex
	active bool
	timer  *time.Timer
}

// NewGate builds a closed gate.
func NewGate(hold time.Duration, logger *zap.Logger) *Gate {
	return &Gate{hold: hold, logger: logger.Named("gate")}
}

// Activate opens the gate. It reports false if the gate was already open;
// re-activating restarts the hold timer either way.
func (g *Gate) Activate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	wasActive := g.active
	g.active = true

	if g.timer != nil {
		g.timer.Stop()
	}
	if g.hold > 0 {
		g.timer = time.AfterFunc(g.hold, g.expire)
	}

	if !wasActive {
		g.logger.Info("Assistant activated", zap.Duration("hold", g.hold))
	}
	return !wasActive
}

// Deactivate closes the gate.
func (g *Gate) Deactivate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closeLocked("deactivated")
}

// Active reports whether the gate is open.
func (g *Gate) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

func (g *Gate) expire() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closeLocked("activation hold expired")
}

func (g *Gate) closeLocked(reason string) {
	if !g.active {
		return
	}
	g.active = false
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.logger.Info("Assistant deactivated", zap.String("reason", reason))
}
