// internal/interpreter/prompt.go
package interpreter

import (
	"fmt"
	"strings"

	"github.com/halcyondale/deskpilot-cli/api/schemas"
)

// systemPrompt fixes the model's output contract: the allowed variant names
// and the exact JSON field names. Keeping it a constant keeps temperature the
// only source of variation between calls.
const systemPrompt = `You are the command interpreter of a desktop automation assistant.
Reply with exactly one JSON object and nothing else. The object describes a single action:

{"type": "<variant>", ...fields..., "reasoning": "<why>", "confidence": <0.0-1.0>}

Allowed "type" values and their fields:
- "open_application": {"app": "<application name>"}
- "web_search": {"query": "<search terms>"}
- "web_navigate": {"url": "<https url>"}
- "create_document": {"doc_type": "google_doc"|"email", "recipient": "", "subject": "", "content": ""}
- "screen_click": {"target_element": "<description of what to click>"}
- "screen_type": {"target_element": "<where>", "text_to_type": "<text>"}
- "analyze_and_recommend": {"domain_hint": "media"|"commerce"|""}
- "multi_step_task": {"multi_steps": ["<step one>", "<step two>"]}

Use "screen_click" and "screen_type" ONLY when the command refers to something visible on screen.
Never invent URLs for "web_navigate"; prefer "web_search" when unsure.
Always include "reasoning" and "confidence".`

// buildUserPrompt renders the command plus a compact screen context. Only
// text travels here; screenshot bytes stay out of the model channel.
func buildUserPrompt(userText string, state *schemas.ScreenState, textCap int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Command: %s\n\n", userText)

	if state == nil {
		b.WriteString("Screen context: unavailable\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Foreground app: %s\n", state.App.Name)

	var buttons, fields int
	for _, r := range state.Regions {
		switch r.Kind {
		case schemas.RegionTextField:
			fields++
		default:
			buttons++
		}
	}
	fmt.Fprintf(&b, "Detected elements: %d buttons, %d text fields\n", buttons, fields)

	text := state.Text
	if textCap > 0 && len(text) > textCap {
		text = text[:textCap] + "..."
	}
	if text != "" {
		fmt.Fprintf(&b, "Visible text (truncated):\n%s\n", text)
	}
	return b.String()
}
