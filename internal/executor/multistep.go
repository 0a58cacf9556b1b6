// internal/executor/multistep.go
package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/halcyondale/deskpilot-cli/api/schemas"
)

// classifyStep maps one natural-language step onto a sub-action. Steps that
// mention clicking become clicks targeted by the whole step text; steps that
// mention typing become keystrokes with the trigger word stripped; anything
// else becomes a web search.
func classifyStep(step string) schemas.Action {
	lower := strings.ToLower(step)

	if strings.Contains(lower, "click") {
		return schemas.Action{
			Type:      schemas.ActionScreenClick,
			Target:    step,
			Reasoning: "multi-step: click step",
		}
	}
	if strings.Contains(lower, "type") {
		var terms []string
		for _, w := range strings.Fields(step) {
			if strings.ToLower(w) == "type" {
				continue
			}
			terms = append(terms, w)
		}
		return schemas.Action{
			Type:      schemas.ActionScreenType,
			Target:    step,
			Text:      strings.Join(terms, " "),
			Reasoning: "multi-step: type step",
		}
	}
	return schemas.Action{
		Type:      schemas.ActionWebSearch,
		Query:     step,
		Reasoning: "multi-step: search step",
	}
}

// multiStep executes each step in order with a fixed inter-step delay. A
// failed step is reported and the task continues; a safety halt aborts the
// remainder immediately.
func (e *Executor) multiStep(ctx context.Context, action schemas.Action, state *schemas.ScreenState) schemas.Outcome {
	if len(action.Steps) == 0 {
		return schemas.Outcome{
			Status:  schemas.OutcomeNoop,
			Message: "multi-step task carried no steps",
		}
	}

	var failures []string
	for i, step := range action.Steps {
		sub := e.resolver.Resolve(classifyStep(step), state)
		e.logger.Info("Multi-step task step",
			zap.Int("step", i+1), zap.Int("of", len(action.Steps)),
			zap.String("action", sub.Summary()))

		out := e.dispatch(ctx, sub, state)
		if out.Halted() {
			out.Message = fmt.Sprintf("halted at step %d/%d: %s", i+1, len(action.Steps), out.Message)
			return out
		}
		if out.Status == schemas.OutcomeFailed || out.Status == schemas.OutcomeNoop {
			failures = append(failures, fmt.Sprintf("step %d (%s): %s", i+1, step, out.Message))
		}

		if i < len(action.Steps)-1 && e.cfg.StepDelay > 0 {
			select {
			case <-time.After(e.cfg.StepDelay):
			case <-ctx.Done():
				return execFailure("multi-step task canceled: " + ctx.Err().Error())
			}
		}
	}

	if len(failures) > 0 {
		return schemas.Outcome{
			Status:  schemas.OutcomeOK,
			Message: fmt.Sprintf("completed with %d degraded step(s): %s", len(failures), strings.Join(failures, "; ")),
		}
	}
	return okOutcome(fmt.Sprintf("completed %d steps", len(action.Steps)))
}
