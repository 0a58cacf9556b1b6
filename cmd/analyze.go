// -- cmd/analyze.go --
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/halcyondale/deskpilot-cli/internal/config"
	"github.com/halcyondale/deskpilot-cli/internal/observability"
)

// newAnalyzeCmd creates the diagnostic command that prints one screen
// snapshot as JSON. It needs no model backend, no history, and no executor.
func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Captures and prints the current screen analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			_, analyzer, err := newAnalyzerStack(cfg, logger)
			if err != nil {
				return err
			}
			state := analyzer.Analyze(cmd.Context())

			encoded, err := json.MarshalIndent(state, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode snapshot: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return nil
		},
	}
}
