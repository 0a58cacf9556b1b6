// internal/executor/recommend.go
package executor

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/halcyondale/deskpilot-cli/api/schemas"
)

var priceRegex = regexp.MustCompile(`\$[\d,]+\.?\d*`)

// mediaCandidate is an "Artist - Title" pairing pulled from screen text.
type mediaCandidate struct {
	text  string
	score int
}

// recommend analyzes the snapshot and either acts on the best media
// candidate or reports the best commerce find. It never guesses when the
// screen carries no signal.
func (e *Executor) recommend(ctx context.Context, action schemas.Action, state *schemas.ScreenState) schemas.Outcome {
	if state == nil || state.Degraded() {
		return schemas.Outcome{
			Status:  schemas.OutcomeNoop,
			Code:    schemas.ErrCodeCaptureFailure,
			Message: "no screen signal to analyze",
		}
	}

	domain := strings.ToLower(action.DomainHint)
	if domain == "" {
		domain = inferDomain(state)
	}

	switch domain {
	case "media":
		return e.recommendMedia(ctx, state)
	case "commerce":
		return e.recommendCommerce(state)
	default:
		return schemas.Outcome{
			Status:  schemas.OutcomeNoop,
			Message: "nothing recognizable to recommend from the current screen",
		}
	}
}

// inferDomain guesses the analysis domain from the foreground app and the
// presence of prices.
func inferDomain(state *schemas.ScreenState) string {
	app := strings.ToLower(state.App.Name)
	if strings.Contains(app, "spotify") || strings.Contains(app, "youtube") {
		return "media"
	}
	if priceRegex.MatchString(state.Text) {
		return "commerce"
	}
	return ""
}

// recommendMedia picks the candidate with the most marker words and clicks
// it when a region binds to it; otherwise it reports the pick without acting.
func (e *Executor) recommendMedia(ctx context.Context, state *schemas.ScreenState) schemas.Outcome {
	candidates := extractMediaCandidates(state.Text, e.cfg.MediaMarkers)
	if len(candidates) == 0 {
		return schemas.Outcome{
			Status:  schemas.OutcomeNoop,
			Message: "no playable items recognized on screen",
		}
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.score > best.score {
			best = c
		}
	}
	e.logger.Info("Media recommendation selected",
		zap.String("candidate", best.text), zap.Int("score", best.score))

	click := e.resolver.Resolve(schemas.Action{
		Type:   schemas.ActionScreenClick,
		Target: best.text,
	}, state)
	if click.Coordinates == nil {
		return okOutcome(fmt.Sprintf("recommend playing %q (no clickable region found)", best.text))
	}

	out := e.screenClick(ctx, click)
	if out.Status == schemas.OutcomeOK {
		out.Message = fmt.Sprintf("playing %q", best.text)
	}
	return out
}

// extractMediaCandidates finds "X - Y" pairings in flattened screen text and
// scores each by marker-word hits. Windows are capped at four words per side
// so one long line cannot swallow the whole text.
func extractMediaCandidates(text string, markers []string) []mediaCandidate {
	words := strings.Fields(text)
	var candidates []mediaCandidate

	for i, w := range words {
		if w != "-" || i == 0 || i == len(words)-1 {
			continue
		}

		lo := i - 4
		if lo < 0 {
			lo = 0
		}
		hi := i + 5
		if hi > len(words) {
			hi = len(words)
		}
		candidate := strings.Join(words[lo:hi], " ")

		score := 0
		lower := strings.ToLower(candidate)
		for _, m := range markers {
			if strings.Contains(lower, m) {
				score++
			}
		}
		candidates = append(candidates, mediaCandidate{text: candidate, score: score})
	}
	return candidates
}

// recommendCommerce reports the lowest price whose surrounding text carries
// a trust signal, falling back to the overall lowest price.
func (e *Executor) recommendCommerce(state *schemas.ScreenState) schemas.Outcome {
	type find struct {
		raw     string
		value   float64
		context string
		trusted bool
	}

	matches := priceRegex.FindAllStringIndex(state.Text, -1)
	if len(matches) == 0 {
		return schemas.Outcome{
			Status:  schemas.OutcomeNoop,
			Message: "no prices recognized on screen",
		}
	}

	var finds []find
	for _, m := range matches {
		raw := state.Text[m[0]:m[1]]
		value, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimPrefix(raw, "$"), ",", ""), 64)
		if err != nil {
			continue
		}

		lo := m[0] - 50
		if lo < 0 {
			lo = 0
		}
		hi := m[1] + 50
		if hi > len(state.Text) {
			hi = len(state.Text)
		}
		contextText := state.Text[lo:hi]

		trusted := false
		lower := strings.ToLower(contextText)
		for _, signal := range e.cfg.CommerceSignals {
			if strings.Contains(lower, signal) {
				trusted = true
				break
			}
		}
		finds = append(finds, find{raw: raw, value: value, context: contextText, trusted: trusted})
	}
	if len(finds) == 0 {
		return schemas.Outcome{
			Status:  schemas.OutcomeNoop,
			Message: "no parseable prices on screen",
		}
	}

	best := finds[0]
	for _, f := range finds[1:] {
		if f.trusted != best.trusted {
			if f.trusted {
				best = f
			}
			continue
		}
		if f.value < best.value {
			best = f
		}
	}

	return okOutcome(fmt.Sprintf("best option looks like %s (near: %q)", best.raw, strings.TrimSpace(best.context)))
}
