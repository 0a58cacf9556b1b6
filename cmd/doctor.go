// -- cmd/doctor.go --
package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/halcyondale/deskpilot-cli/internal/config"
)

// newDoctorCmd creates the environment check: it reports which external
// collaborators are reachable and installs nothing.
func newDoctorCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Checks availability of the external tools and the model backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			for _, tool := range requiredTools(runtime.GOOS) {
				reportCheck(out, "tool "+tool, lookPathCheck(tool))
			}

			switch cfg.LLM.Provider {
			case config.ProviderOllama:
				reportCheck(out, "ollama endpoint "+cfg.LLM.Endpoint, endpointCheck(cfg.LLM.Endpoint))
			case config.ProviderGemini:
				if cfg.LLM.APIKey == "" {
					reportCheck(out, "gemini api key", fmt.Errorf("DESKPILOT_LLM_API_KEY is not set"))
				} else {
					reportCheck(out, "gemini api key", nil)
				}
			}

			fmt.Fprintln(out, "\nMissing tools degrade the matching pipeline stage; nothing is installed automatically.")
			return nil
		},
	}
}

// requiredTools lists the external binaries each pipeline stage shells out
// to on the given OS.
func requiredTools(goos string) []string {
	switch goos {
	case "linux":
		return []string{"scrot", "tesseract", "xdotool", "xdg-open"}
	case "darwin":
		return []string{"screencapture", "tesseract", "cliclick", "osascript", "open"}
	default:
		return nil
	}
}

func lookPathCheck(tool string) error {
	_, err := exec.LookPath(tool)
	return err
}

func endpointCheck(endpoint string) error {
	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(endpoint)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func reportCheck(out io.Writer, name string, err error) {
	if err != nil {
		fmt.Fprintf(out, "[MISSING] %-40s %v\n", name, err)
		return
	}
	fmt.Fprintf(out, "[  ok   ] %s\n", name)
}
