// internal/executor/executor.go
package executor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/halcyondale/deskpilot-cli/api/schemas"
	"github.com/halcyondale/deskpilot-cli/internal/config"
	"github.com/halcyondale/deskpilot-cli/internal/desktop"
	"github.com/halcyondale/deskpilot-cli/internal/executor/pointer"
	"github.com/halcyondale/deskpilot-cli/internal/resolver"
)

// Executor owns all OS input and display mutation. Exactly one action is in
// flight at any time: a second Execute while one runs is rejected, not
// queued. Every call returns an Outcome; no failure mode is silent.
type Executor struct {
	input    desktop.Injector
	launcher desktop.Launcher
	opener   desktop.URLOpener
	geometry desktop.ScreenGeometry
	engine   *pointer.Engine
	resolver *resolver.Resolver
	browser  Navigator
	fs       *failsafe
	cfg      config.ExecutorConfig
	logger   *zap.Logger

	sem *semaphore.Weighted

	mu     sync.Mutex
	state  State
	guardW int
	guardH int
}

// New assembles an executor over the desktop provider. browser may be nil,
// in which case URLs go to the OS default handler.
func New(provider *desktop.Provider, res *resolver.Resolver, browser Navigator, cfg config.ExecutorConfig, logger *zap.Logger) *Executor {
	e := &Executor{
		input:    provider.Input,
		launcher: provider.Launcher,
		opener:   provider.URLOpener,
		geometry: provider.Geometry,
		resolver: res,
		browser:  browser,
		cfg:      cfg,
		logger:   logger.Named("executor"),
		sem:      semaphore.NewWeighted(1),
		state:    StateIdle,
	}
	e.fs = newFailsafe(e.input, e.geometry, cfg.FailsafeMargin)
	e.engine = pointer.NewEngine(e.input, logger,
		pointer.WithSpeed(cfg.PointerSpeed),
		pointer.WithGuard(e.glideGuard))
	return e
}

// State reports the current lifecycle state.
func (e *Executor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Executor) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// glideGuard applies the corner sentinel to every intermediate pointer
// position using the geometry cached at glide start.
func (e *Executor) glideGuard(p schemas.Point) error {
	e.mu.Lock()
	w, h := e.guardW, e.guardH
	e.mu.Unlock()
	if w == 0 || h == 0 {
		return nil
	}
	return e.fs.CheckPoint(p, w, h)
}

// Execute runs one resolved action to completion. Concurrent calls are
// rejected with EXECUTOR_BUSY while an action is in flight.
func (e *Executor) Execute(ctx context.Context, action schemas.Action, state *schemas.ScreenState) schemas.Outcome {
	if !e.sem.TryAcquire(1) {
		return schemas.Outcome{
			Status:  schemas.OutcomeRejected,
			Code:    schemas.ErrCodeBusy,
			Message: "an action is already in flight",
		}
	}
	defer e.sem.Release(1)

	e.setState(StateDispatching)
	defer e.setState(StateIdle)

	// Only a malformed variant reaching dispatch is a contract violation.
	// The call fails; the pipeline stays usable for the next command.
	if !schemas.KnownActionType(action.Type) {
		e.logger.Error("Unknown action type reached dispatch", zap.String("type", string(action.Type)))
		return schemas.Outcome{
			Status:  schemas.OutcomeFailed,
			Code:    schemas.ErrCodeUnknownAction,
			Message: fmt.Sprintf("unsupported action type %q", action.Type),
		}
	}

	e.setState(StateRunning)
	e.logger.Info("Executing action", zap.String("action", action.Summary()))

	outcome := e.dispatch(ctx, action, state)
	if outcome.Halted() {
		e.setState(StateSafetyHalt)
	} else {
		e.setState(StateDone)
	}
	return outcome
}

func (e *Executor) dispatch(ctx context.Context, action schemas.Action, state *schemas.ScreenState) schemas.Outcome {
	switch action.Type {
	case schemas.ActionOpenApplication:
		return e.openApplication(ctx, action)
	case schemas.ActionWebSearch:
		return e.webSearch(ctx, action)
	case schemas.ActionWebNavigate:
		return e.openURL(ctx, action.URL)
	case schemas.ActionCreateDocument:
		return e.createDocument(ctx, action)
	case schemas.ActionScreenClick:
		return e.screenClick(ctx, action)
	case schemas.ActionScreenType:
		return e.screenType(ctx, action)
	case schemas.ActionAnalyzeAndRecommend:
		return e.recommend(ctx, action, state)
	case schemas.ActionMultiStep:
		return e.multiStep(ctx, action, state)
	default:
		// Unreachable: Execute validates the variant first.
		return schemas.Outcome{Status: schemas.OutcomeFailed, Code: schemas.ErrCodeUnknownAction}
	}
}

func (e *Executor) openApplication(ctx context.Context, action schemas.Action) schemas.Outcome {
	if err := e.launcher.Launch(ctx, action.App); err != nil {
		return execFailure(fmt.Sprintf("could not launch %q: %v", action.App, err))
	}
	return okOutcome(fmt.Sprintf("launched %s", action.App))
}

func (e *Executor) webSearch(ctx context.Context, action schemas.Action) schemas.Outcome {
	return e.openURL(ctx, e.cfg.SearchURL+url.QueryEscape(action.Query))
}

// openURL routes through the controlled browser when one is attached;
// mailto and other non-web schemes always go to the OS handler.
func (e *Executor) openURL(ctx context.Context, raw string) schemas.Outcome {
	if raw == "" {
		return schemas.Outcome{
			Status:  schemas.OutcomeNoop,
			Code:    schemas.ErrCodeExecutionFailure,
			Message: "no URL to open",
		}
	}

	if e.browser != nil && strings.HasPrefix(raw, "http") {
		if err := e.browser.Navigate(ctx, raw); err != nil {
			return execFailure(fmt.Sprintf("browser navigation failed: %v", err))
		}
		return okOutcome("opened " + raw)
	}

	if err := e.opener.OpenURL(ctx, raw); err != nil {
		return execFailure(fmt.Sprintf("could not open URL: %v", err))
	}
	return okOutcome("opened " + raw)
}

func (e *Executor) createDocument(ctx context.Context, action schemas.Action) schemas.Outcome {
	switch strings.ToLower(action.DocType) {
	case "email":
		v := url.Values{}
		if action.Subject != "" {
			v.Set("subject", action.Subject)
		}
		if action.Content != "" {
			v.Set("body", action.Content)
		}
		mailto := "mailto:" + action.Recipient
		if enc := v.Encode(); enc != "" {
			mailto += "?" + enc
		}
		return e.openURL(ctx, mailto)
	default:
		// google_doc and anything unrecognized land on a fresh document.
		return e.openURL(ctx, "https://docs.google.com/document/create")
	}
}

// screenClick glides the pointer to the bound coordinates and clicks. The
// corner sentinel runs before the glide, at every glide step, and again
// before the click lands.
func (e *Executor) screenClick(ctx context.Context, action schemas.Action) schemas.Outcome {
	if action.Coordinates == nil {
		return schemas.Outcome{
			Status:  schemas.OutcomeNoop,
			Code:    schemas.ErrCodeResolutionMiss,
			Message: fmt.Sprintf("target %q not found on screen", action.Target),
		}
	}

	if out, ok := e.approach(ctx, *action.Coordinates); !ok {
		return out
	}
	if err := e.input.Click(ctx, *action.Coordinates); err != nil {
		return execFailure(fmt.Sprintf("click injection failed: %v", err))
	}
	return okOutcome(fmt.Sprintf("clicked %q at (%d,%d)", action.Target, action.Coordinates.X, action.Coordinates.Y))
}

func (e *Executor) screenType(ctx context.Context, action schemas.Action) schemas.Outcome {
	// No field bound: inject at whatever currently has focus. The sentinel
	// still runs; only the focus click is skipped.
	if action.Coordinates == nil {
		if err := e.checkFailsafe(ctx); err != nil {
			return e.failsafeOutcome(err)
		}
		if err := e.input.TypeText(ctx, action.Text); err != nil {
			return execFailure(fmt.Sprintf("keystroke injection failed: %v", err))
		}
		return okOutcome(fmt.Sprintf("typed %d characters at the current focus", len(action.Text)))
	}

	// Click to focus the field, then type.
	if out, ok := e.approach(ctx, *action.Coordinates); !ok {
		return out
	}
	if err := e.input.Click(ctx, *action.Coordinates); err != nil {
		return execFailure(fmt.Sprintf("focus click failed: %v", err))
	}
	if err := e.checkFailsafe(ctx); err != nil {
		return e.failsafeOutcome(err)
	}
	if err := e.input.TypeText(ctx, action.Text); err != nil {
		return execFailure(fmt.Sprintf("keystroke injection failed: %v", err))
	}
	return okOutcome(fmt.Sprintf("typed %d characters", len(action.Text)))
}

// approach validates the sentinel, caches geometry for the glide guard, and
// glides the pointer to the target. ok=false means the returned Outcome is
// terminal.
func (e *Executor) approach(ctx context.Context, target schemas.Point) (schemas.Outcome, bool) {
	if err := e.checkFailsafe(ctx); err != nil {
		return e.failsafeOutcome(err), false
	}

	start, err := e.input.PointerLocation(ctx)
	if err != nil {
		return execFailure(fmt.Sprintf("could not read pointer: %v", err)), false
	}

	if err := e.engine.Glide(ctx, start, target); err != nil {
		if errors.Is(err, ErrSafetyHalt) {
			return e.haltOutcome(), false
		}
		return execFailure(fmt.Sprintf("pointer glide failed: %v", err)), false
	}

	if err := e.checkFailsafe(ctx); err != nil {
		return e.failsafeOutcome(err), false
	}
	return schemas.Outcome{}, true
}

// checkFailsafe refreshes the cached geometry and applies the corner test to
// the live pointer position.
func (e *Executor) checkFailsafe(ctx context.Context) error {
	w, h, err := e.geometry.Size(ctx)
	if err != nil {
		return fmt.Errorf("failsafe could not read screen size: %w", err)
	}
	e.mu.Lock()
	e.guardW, e.guardH = w, h
	e.mu.Unlock()

	pos, err := e.input.PointerLocation(ctx)
	if err != nil {
		return fmt.Errorf("failsafe could not read pointer: %w", err)
	}
	return e.fs.CheckPoint(pos, w, h)
}

// failsafeOutcome maps a sentinel trip to a safety halt and anything else
// (an unreadable pointer or display) to an execution failure. The sentinel
// is never skipped on a read error.
func (e *Executor) failsafeOutcome(err error) schemas.Outcome {
	if errors.Is(err, ErrSafetyHalt) {
		return e.haltOutcome()
	}
	return execFailure(err.Error())
}

func (e *Executor) haltOutcome() schemas.Outcome {
	e.logger.Warn("Safety interlock fired; action aborted")
	return schemas.Outcome{
		Status:  schemas.OutcomeSafetyHalt,
		Code:    schemas.ErrCodeSafetyHalt,
		Message: "pointer parked in a screen corner; control returned to the user",
	}
}

func okOutcome(msg string) schemas.Outcome {
	return schemas.Outcome{Status: schemas.OutcomeOK, Message: msg}
}

func execFailure(msg string) schemas.Outcome {
	return schemas.Outcome{
		Status:  schemas.OutcomeFailed,
		Code:    schemas.ErrCodeExecutionFailure,
		Message: msg,
	}
}
