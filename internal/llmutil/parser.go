// internal/llmutil/parser.go
package llmutil

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// Regex definitions use \x60 (hex representation) for backticks because Go raw strings cannot contain backticks.

	// fencedObjectRegex extracts a JSON object wrapped in a markdown code block.
	fencedObjectRegex = regexp.MustCompile("(?s)\x60\x60\x60(?:json)?\\s*({.*})\\s*\x60\x60\x60")

	// trailingCommaRegex matches a comma that directly precedes a closing brace or bracket.
	trailingCommaRegex = regexp.MustCompile(`,\s*([}\]])`)
)

// ErrNoJSONObject indicates the response contained no recognizable object.
var ErrNoJSONObject = errors.New("no JSON object found in model response")

// Sanitize reduces a raw model response to its best-effort JSON object.
// Models wrap output in markdown fences, lead with conversational text,
// emit single-quoted strings, or leave trailing commas; each repair is
// applied in a fixed order so the result is deterministic for a given input.
func Sanitize(response string) (string, error) {
	s := strings.TrimSpace(response)

	if strings.HasPrefix(s, "```") {
		if matches := fencedObjectRegex.FindStringSubmatch(s); len(matches) > 1 {
			s = matches[1]
		}
	}

	// Window to the outermost object boundaries.
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first == -1 || last == -1 || last < first {
		return "", ErrNoJSONObject
	}
	s = s[first : last+1]

	// Local models frequently emit Python-style single quotes. A blind swap
	// corrupts apostrophes inside values, but a parseable object beats a
	// perfectly faithful unparseable one.
	if !strings.Contains(s, `"`) && strings.Contains(s, "'") {
		s = strings.ReplaceAll(s, "'", `"`)
	}

	s = trailingCommaRegex.ReplaceAllString(s, "$1")

	return s, nil
}

// ParseJSONResponse sanitizes a model response and unmarshals it into T.
func ParseJSONResponse[T any](response string) (*T, error) {
	cleaned, err := Sanitize(response)
	if err != nil {
		return nil, err
	}

	var result T
	if err := json.UnmarshalFromString(cleaned, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model JSON response: %w. Extracted JSON (truncated): %s", err, truncateString(cleaned, 500))
	}
	return &result, nil
}

// truncateString truncates a string to a maximum length.
func truncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
