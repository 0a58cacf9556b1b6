// internal/interpreter/interpreter.go
package interpreter

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/halcyondale/deskpilot-cli/api/schemas"
	"github.com/halcyondale/deskpilot-cli/internal/config"
	"github.com/halcyondale/deskpilot-cli/internal/llmutil"
)

// Interpreter turns user text plus a screen snapshot into one Action. It
// never fails outward: a model error, timeout, or unparsable reply routes
// through Fallback, which is total.
type Interpreter struct {
	client  schemas.LLMClient
	cfg     config.InterpreterConfig
	timeout time.Duration
	logger  *zap.Logger
}

// New builds an interpreter. client may be nil, in which case every command
// takes the fallback path.
func New(client schemas.LLMClient, cfg config.InterpreterConfig, timeout time.Duration, logger *zap.Logger) *Interpreter {
	return &Interpreter{
		client:  client,
		cfg:     cfg,
		timeout: timeout,
		logger:  logger.Named("interpreter"),
	}
}

// Interpret produces an Action for the given command. Each call is
// independent of every other; there is no shared mutable state between calls.
func (in *Interpreter) Interpret(ctx context.Context, userText string, state *schemas.ScreenState) schemas.Action {
	action, ok := in.tryModel(ctx, userText, state)
	if !ok {
		action = Fallback(userText)
	}
	return action
}

// tryModel makes exactly one bounded model call. Any failure mode returns
// ok=false; the caller owns the fallback.
func (in *Interpreter) tryModel(ctx context.Context, userText string, state *schemas.ScreenState) (schemas.Action, bool) {
	if in.client == nil {
		return schemas.Action{}, false
	}

	callCtx, cancel := context.WithTimeout(ctx, in.timeout)
	defer cancel()

	raw, err := in.client.Generate(callCtx, schemas.GenerationRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   buildUserPrompt(userText, state, in.cfg.ScreenTextCap),
		Options: schemas.GenerationOptions{
			Temperature:     in.cfg.Temperature,
			ForceJSONFormat: true,
		},
	})
	if err != nil {
		in.logger.Warn("Model call failed; using deterministic fallback", zap.Error(err))
		return schemas.Action{}, false
	}

	action, err := llmutil.ParseJSONResponse[schemas.Action](raw)
	if err != nil {
		in.logger.Warn("Model reply unparsable; using deterministic fallback", zap.Error(err))
		return schemas.Action{}, false
	}

	if !schemas.KnownActionType(action.Type) {
		in.logger.Warn("Model proposed unknown action type; using deterministic fallback",
			zap.String("type", string(action.Type)))
		return schemas.Action{}, false
	}

	if action.Confidence < 0 {
		action.Confidence = 0
	} else if action.Confidence > 1 {
		action.Confidence = 1
	}

	in.logger.Info("Command interpreted",
		zap.String("type", string(action.Type)),
		zap.Float64("confidence", action.Confidence))
	return *action, true
}
