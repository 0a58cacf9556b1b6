// -- cmd/do.go --
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/halcyondale/deskpilot-cli/api/schemas"
	"github.com/halcyondale/deskpilot-cli/internal/config"
	"github.com/halcyondale/deskpilot-cli/internal/observability"
)

// newDoCmd creates the one-shot command: interpret and execute a single
// instruction, then exit.
func newDoCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "do <command...>",
		Short: "Runs a single natural-language command and exits",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			userText := strings.Join(args, " ")

			components, err := initializePipeline(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize pipeline: %w", err)
			}
			defer components.Shutdown()

			// One-shot invocations skip the interactive activation step.
			components.Gate.Activate()
			defer components.Gate.Deactivate()

			logger.Info("Running one-shot command", zap.String("command", userText))
			action, outcome := components.Assistant.Handle(ctx, userText)
			printExchange(action, outcome, cmd.OutOrStdout())

			switch outcome.Status {
			case schemas.OutcomeFailed, schemas.OutcomeRejected:
				return fmt.Errorf("command failed (%s): %s", outcome.Code, outcome.Message)
			case schemas.OutcomeSafetyHalt:
				return fmt.Errorf("command halted by the safety interlock: %s", outcome.Message)
			}
			return nil
		},
	}
}
