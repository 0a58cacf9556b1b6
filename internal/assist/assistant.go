// internal/assist/assistant.go
package assist

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/halcyondale/deskpilot-cli/api/schemas"
	"github.com/halcyondale/deskpilot-cli/internal/executor"
	"github.com/halcyondale/deskpilot-cli/internal/history"
	"github.com/halcyondale/deskpilot-cli/internal/interpreter"
	"github.com/halcyondale/deskpilot-cli/internal/resolver"
	"github.com/halcyondale/deskpilot-cli/internal/screen"
)

// Analyzer produces screen snapshots; satisfied by *screen.Analyzer.
type Analyzer interface {
	Analyze(ctx context.Context) *schemas.ScreenState
}

// Recorder receives each exchange after coordinate resolution, so the
// transcript carries the action as it was actually dispatched. The pipeline
// only appends; it never reads the transcript back.
type Recorder interface {
	RecordExchange(userText string, action schemas.Action, state *schemas.ScreenState)
}

// Assistant wires the pipeline together: background screen analysis feeds a
// snapshot slot, and each command runs interpret, resolve, execute against
// the freshest complete snapshot. Partial snapshots are never visible; the
// slot swaps whole pointers only.
type Assistant struct {
	analyzer Analyzer
	interp   *interpreter.Interpreter
	res      *resolver.Resolver
	exec     *executor.Executor
	gate     *Gate
	recorder Recorder
	logger   *zap.Logger

	limiter  *rate.Limiter
	snapshot atomic.Pointer[schemas.ScreenState]

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var (
	_ Analyzer = (*screen.Analyzer)(nil)
	_ Recorder = (*history.Log)(nil)
)

// New assembles the assistant. recorder may be nil.
func New(analyzer Analyzer, interp *interpreter.Interpreter, res *resolver.Resolver, exec *executor.Executor, gate *Gate, recorder Recorder, interval time.Duration, logger *zap.Logger) *Assistant {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Assistant{
		analyzer: analyzer,
		interp:   interp,
		res:      res,
		exec:     exec,
		gate:     gate,
		recorder: recorder,
		logger:   logger.Named("assist"),
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Start launches the background analysis worker. The worker paces itself
// with the configured interval and stops when Stop is called.
func (a *Assistant) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		for {
			if err := a.limiter.Wait(workerCtx); err != nil {
				return
			}
			state := a.analyzer.Analyze(workerCtx)
			a.snapshot.Store(state)
		}
	}()
}

// Stop halts the background worker and waits for it to exit.
func (a *Assistant) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
}

// Gate exposes the activation latch.
func (a *Assistant) Gate() *Gate { return a.gate }

// Snapshot returns the latest background snapshot, analyzing on the spot if
// none exists yet.
func (a *Assistant) Snapshot(ctx context.Context) *schemas.ScreenState {
	if state := a.snapshot.Load(); state != nil {
		return state
	}
	state := a.analyzer.Analyze(ctx)
	a.snapshot.Store(state)
	return state
}

// Handle runs one command through the full pipeline. It returns the chosen
// action alongside the outcome so callers can present both.
func (a *Assistant) Handle(ctx context.Context, userText string) (schemas.Action, schemas.Outcome) {
	if a.gate != nil && !a.gate.Active() {
		return schemas.Action{}, schemas.Outcome{
			Status:  schemas.OutcomeRejected,
			Message: "assistant is not active; activate it first",
		}
	}

	state := a.Snapshot(ctx)
	action := a.interp.Interpret(ctx, userText, state)
	action = a.res.Resolve(action, state)

	// Record after resolution so the transcript shows the bound action.
	if a.recorder != nil {
		a.recorder.RecordExchange(userText, action, state)
	}

	a.logger.Info("Command pipeline resolved",
		zap.String("action", action.Summary()),
		zap.Float64("confidence", action.Confidence))

	outcome := a.exec.Execute(ctx, action, state)
	return action, outcome
}
