// -- cmd/run.go --
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/halcyondale/deskpilot-cli/api/schemas"
	"github.com/halcyondale/deskpilot-cli/internal/assist"
	"github.com/halcyondale/deskpilot-cli/internal/config"
	"github.com/halcyondale/deskpilot-cli/internal/desktop"
	"github.com/halcyondale/deskpilot-cli/internal/executor"
	"github.com/halcyondale/deskpilot-cli/internal/history"
	"github.com/halcyondale/deskpilot-cli/internal/interpreter"
	"github.com/halcyondale/deskpilot-cli/internal/llmclient"
	"github.com/halcyondale/deskpilot-cli/internal/observability"
	"github.com/halcyondale/deskpilot-cli/internal/resolver"
	"github.com/halcyondale/deskpilot-cli/internal/screen"
)

// newRunCmd creates the interactive assistant loop.
func newRunCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Starts the interactive assistant loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			components, err := initializePipeline(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize pipeline: %w", err)
			}
			defer components.Shutdown()

			components.Assistant.Start(ctx)
			defer components.Assistant.Stop()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "deskpilot ready. Type 'activate' to begin, 'help' for commands.")

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for ctx.Err() == nil {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if quit := handleLoopInput(ctx, components, line, out); quit {
					break
				}
			}

			if err := scanner.Err(); err != nil {
				return fmt.Errorf("input loop failed: %w", err)
			}
			logger.Info("Interactive loop finished")
			return nil
		},
	}
}

// handleLoopInput processes one line of the interactive loop. Control words
// are matched whole; anything else is a command for the assistant. Returns
// true when the loop should exit.
func handleLoopInput(ctx context.Context, components *pipelineComponents, line string, out io.Writer) bool {
	switch strings.ToLower(line) {
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(out, "Commands: activate, deactivate, history, quit. Anything else is sent to the assistant.")
		return false
	case "activate":
		if components.Gate.Activate() {
			fmt.Fprintln(out, "Assistant activated.")
		} else {
			fmt.Fprintln(out, "Assistant already active; hold timer restarted.")
		}
		return false
	case "deactivate":
		components.Gate.Deactivate()
		fmt.Fprintln(out, "Assistant deactivated.")
		return false
	case "history":
		printHistory(components.History, out)
		return false
	}

	action, outcome := components.Assistant.Handle(ctx, line)
	printExchange(action, outcome, out)
	return false
}

func printHistory(log *history.Log, out io.Writer) {
	entries := log.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No history yet.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s  %-22s %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.ActionType, e.UserText)
	}
}

func printExchange(action schemas.Action, outcome schemas.Outcome, out io.Writer) {
	if action.Type != "" {
		fmt.Fprintf(out, "-> %s (confidence %.2f)\n", action.Summary(), action.Confidence)
	}
	switch outcome.Status {
	case schemas.OutcomeOK:
		fmt.Fprintln(out, "done")
	case schemas.OutcomeNoop:
		fmt.Fprintf(out, "nothing to do: %s\n", outcome.Message)
	case schemas.OutcomeSafetyHalt:
		fmt.Fprintf(out, "SAFETY HALT: %s\n", outcome.Message)
	default:
		fmt.Fprintf(out, "%s: %s\n", outcome.Status, outcome.Message)
	}
}

// pipelineComponents holds the initialized services behind the assistant.
type pipelineComponents struct {
	Provider  *desktop.Provider
	Analyzer  *screen.Analyzer
	History   *history.Log
	Browser   executor.Navigator
	Executor  *executor.Executor
	Gate      *assist.Gate
	Assistant *assist.Assistant
}

// Shutdown releases everything the pipeline holds open.
func (pc *pipelineComponents) Shutdown() {
	if pc.Browser != nil {
		pc.Browser.Close()
	}
}

// initializePipeline handles dependency injection for the full command
// pipeline. A missing model backend degrades to the deterministic fallback
// instead of failing startup; a missing desktop backend is fatal.
func initializePipeline(cfg *config.Config, logger *zap.Logger) (*pipelineComponents, error) {
	components := &pipelineComponents{}

	// 1. Desktop provider and analyzer.
	provider, analyzer, err := newAnalyzerStack(cfg, logger)
	if err != nil {
		return nil, err
	}
	components.Provider = provider
	components.Analyzer = analyzer

	// 2. Interaction history.
	hist, err := history.Open(cfg.History, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open history log: %w", err)
	}
	components.History = hist

	// 3. Model client. The interpreter is total without one.
	client, err := llmclient.NewClient(cfg.LLM, logger)
	if err != nil {
		logger.Warn("Model backend unavailable; commands use the deterministic fallback", zap.Error(err))
		client = nil
	}
	interp := interpreter.New(client, cfg.Interpreter, cfg.LLM.Timeout, logger)
	res := resolver.New(logger)

	// 4. Optional controlled browser.
	if cfg.Browser.Controlled {
		session, err := executor.NewBrowserSession(cfg.Browser, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to start controlled browser: %w", err)
		}
		components.Browser = session
	}

	// 5. Executor and assistant.
	components.Executor = executor.New(provider, res, components.Browser, cfg.Executor, logger)
	components.Gate = assist.NewGate(cfg.Assist.ActivationHold, logger)
	components.Assistant = assist.New(components.Analyzer, interp, res, components.Executor, components.Gate, hist, cfg.Analyzer.Interval, logger)

	return components, nil
}

// newAnalyzerStack builds the desktop provider, applies the configured OCR
// merge, and wraps it in an analyzer.
func newAnalyzerStack(cfg *config.Config, logger *zap.Logger) (*desktop.Provider, *screen.Analyzer, error) {
	provider, err := desktop.NewProvider(logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize desktop backend: %w", err)
	}

	if tools := cfg.Analyzer.ExtraOCRTools; len(tools) > 0 {
		engines := []desktop.OCREngine{provider.OCR}
		for _, tool := range tools {
			engines = append(engines, desktop.NewCommandOCR(tool, logger))
		}
		provider.OCR = desktop.MultiOCR(engines...)
	}

	return provider, screen.NewAnalyzer(provider, cfg.Analyzer, logger), nil
}
