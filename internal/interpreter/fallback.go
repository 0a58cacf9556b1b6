// internal/interpreter/fallback.go
package interpreter

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/halcyondale/deskpilot-cli/api/schemas"
)

// launchKeywords are application names the fallback recognizes inline when
// the open/launch pattern does not capture one.
var launchKeywords = []string{"spotify", "chrome", "firefox", "vscode", "code", "terminal", "slack", "discord"}

var openAppRegex = regexp.MustCompile(`(?:open|launch)\s+(\w+)`)

// Fallback maps user text to an Action without a model. It is a pure,
// total function: rules run in a fixed order, earlier rules win, and the
// final rule accepts everything. Fallback results always carry confidence 0.
func Fallback(userText string) schemas.Action {
	lower := strings.ToLower(strings.TrimSpace(userText))

	// Rule 1: "play X on youtube" navigates straight to YouTube results.
	if strings.Contains(lower, "youtube") && strings.Contains(lower, "play") {
		var terms []string
		for _, w := range strings.Fields(lower) {
			switch w {
			case "play", "youtube", "on":
			default:
				terms = append(terms, w)
			}
		}
		query := strings.Join(terms, " ")
		return schemas.Action{
			Type:      schemas.ActionWebNavigate,
			URL:       "https://www.youtube.com/results?search_query=" + url.QueryEscape(query),
			Reasoning: "fallback rule: youtube playback request for " + strconv.Quote(query),
		}
	}

	// Rule 2: explicit editor mentions.
	if strings.Contains(lower, "vscode") || strings.Contains(lower, "vs code") {
		return schemas.Action{
			Type:      schemas.ActionOpenApplication,
			App:       "vscode",
			Reasoning: "fallback rule: editor keyword",
		}
	}

	// Rule 3: "search ..." strips only the trigger words, nothing else.
	if strings.Contains(lower, "search") {
		var terms []string
		for _, w := range strings.Fields(lower) {
			switch w {
			case "search", "online":
			default:
				terms = append(terms, w)
			}
		}
		return schemas.Action{
			Type:      schemas.ActionWebSearch,
			Query:     strings.Join(terms, " "),
			Reasoning: "fallback rule: search keyword",
		}
	}

	// Rule 4: open/launch with a captured or recognized app name.
	if strings.Contains(lower, "open") || strings.Contains(lower, "launch") {
		if m := openAppRegex.FindStringSubmatch(lower); m != nil {
			return schemas.Action{
				Type:      schemas.ActionOpenApplication,
				App:       m[1],
				Reasoning: "fallback rule: open pattern",
			}
		}
		for _, kw := range launchKeywords {
			if strings.Contains(lower, kw) {
				return schemas.Action{
					Type:      schemas.ActionOpenApplication,
					App:       kw,
					Reasoning: "fallback rule: launch keyword",
				}
			}
		}
	}

	// Rule 5: total catch-all. The pipeline never returns "no action".
	return schemas.Action{
		Type:      schemas.ActionWebSearch,
		Query:     strings.TrimSpace(userText),
		Reasoning: "fallback rule: catch-all web search",
	}
}
