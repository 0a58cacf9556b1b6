// internal/screen/text.go
package screen

import (
	"strings"
	"unicode"

	"github.com/halcyondale/deskpilot-cli/api/schemas"
)

// knownApps maps lowercase title substrings to canonical application names.
var knownApps = map[string]string{
	"spotify":            "Spotify",
	"google chrome":      "Google Chrome",
	"chrome":             "Google Chrome",
	"firefox":            "Firefox",
	"visual studio code": "Visual Studio Code",
	"vs code":            "Visual Studio Code",
	"vscode":             "Visual Studio Code",
	"terminal":           "Terminal",
	"slack":              "Slack",
	"discord":            "Discord",
	"youtube":            "YouTube",
}

// identifyApp derives an application identity from a raw window title.
// Unmatched titles fall back to the segment after the last " - ", which is
// where most applications put their own name.
func identifyApp(title string) schemas.AppIdentity {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return schemas.UnknownApp
	}

	lower := strings.ToLower(trimmed)
	for substr, name := range knownApps {
		if strings.Contains(lower, substr) {
			return schemas.AppIdentity{Title: trimmed, Name: name}
		}
	}

	if idx := strings.LastIndex(trimmed, " - "); idx != -1 {
		if name := strings.TrimSpace(trimmed[idx+3:]); name != "" {
			return schemas.AppIdentity{Title: trimmed, Name: name}
		}
	}

	return schemas.AppIdentity{Title: trimmed, Name: trimmed}
}

// normalizeText canonicalizes OCR output: whitespace runs collapse to single
// spaces, unprintable runes drop, and stray single-character tokens that are
// not letters or digits drop with them.
func normalizeText(raw string) string {
	var clean strings.Builder
	for _, r := range raw {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			clean.WriteRune(r)
		}
	}

	tokens := strings.Fields(clean.String())
	kept := tokens[:0]
	for _, tok := range tokens {
		if len(tok) == 1 {
			r := rune(tok[0])
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				continue
			}
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}
