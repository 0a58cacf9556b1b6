// internal/resolver/resolver.go
package resolver

import (
	"strings"

	"go.uber.org/zap"

	"github.com/halcyondale/deskpilot-cli/api/schemas"
)

// Resolver binds screen coordinates onto actions whose target is only a
// description. Resolve is idempotent and never changes the variant tag:
// an action that already carries coordinates, or that needs none, passes
// through unchanged.
type Resolver struct {
	logger *zap.Logger
}

// New builds a resolver.
func New(logger *zap.Logger) *Resolver {
	return &Resolver{logger: logger.Named("resolver")}
}

// Resolve binds coordinates where needed. A miss leaves Coordinates nil so
// the executor can no-op with a reason instead of guessing.
func (r *Resolver) Resolve(action schemas.Action, state *schemas.ScreenState) schemas.Action {
	if action.Resolved() || state == nil {
		return action
	}

	switch action.Type {
	case schemas.ActionScreenClick:
		return r.resolveClick(action, state)
	case schemas.ActionScreenType:
		return r.resolveType(action, state)
	default:
		return action
	}
}

// resolveClick scores every region by word overlap with the target
// description. The first region reaching the maximum score wins; a zero
// maximum is a miss.
func (r *Resolver) resolveClick(action schemas.Action, state *schemas.ScreenState) schemas.Action {
	words := strings.Fields(strings.ToLower(action.Target))
	if len(words) == 0 || len(state.Regions) == 0 {
		return action
	}

	globalText := strings.ToLower(state.Text)

	bestIdx := -1
	bestScore := 0
	for i, region := range state.Regions {
		score := r.scoreRegion(region, words, globalText)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestIdx == -1 {
		r.logger.Info("No region matched target description",
			zap.String("target", action.Target))
		return action
	}

	center := state.Regions[bestIdx].Center
	action.Coordinates = &center
	r.logger.Debug("Target bound to region",
		zap.String("target", action.Target),
		zap.Int("region", bestIdx),
		zap.Int("score", bestScore))
	return action
}

// scoreRegion counts how many description words appear in the region's own
// sampled text, or in the whole screen text for unsampled regions. The
// global count is a coarse relevance proxy, not spatial text-association.
func (r *Resolver) scoreRegion(region schemas.Region, words []string, globalText string) int {
	haystack := globalText
	if region.NearbyText != "" {
		haystack = strings.ToLower(region.NearbyText)
	}

	score := 0
	for _, w := range words {
		if strings.Contains(haystack, w) {
			score++
		}
	}
	return score
}

// resolveType binds to the first text-field region, if any.
func (r *Resolver) resolveType(action schemas.Action, state *schemas.ScreenState) schemas.Action {
	for _, region := range state.Regions {
		if region.Kind == schemas.RegionTextField {
			center := region.Center
			action.Coordinates = &center
			return action
		}
	}
	r.logger.Info("No text field available for typing target",
		zap.String("target", action.Target))
	return action
}
