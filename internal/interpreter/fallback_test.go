// internal/interpreter/fallback_test.go
package interpreter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/halcyondale/deskpilot-cli/api/schemas"
)

func TestFallback(t *testing.T) {
	t.Run("youtube play builds a results url", func(t *testing.T) {
		a := Fallback("play daft punk on youtube")
		assert.Equal(t, schemas.ActionWebNavigate, a.Type)
		assert.Equal(t, "https://www.youtube.com/results?search_query=daft+punk", a.URL)
		assert.Empty(t, a.Query, "web_navigate carries only its own fields")
		assert.Empty(t, a.DomainHint)
		assert.Contains(t, a.Reasoning, "daft punk")
	})

	t.Run("youtube rule precedes the open rule", func(t *testing.T) {
		a := Fallback("open youtube and play lofi beats")
		assert.Equal(t, schemas.ActionWebNavigate, a.Type)
	})

	t.Run("vscode keyword opens the editor", func(t *testing.T) {
		for _, text := range []string{"fire up vscode", "start vs code please"} {
			a := Fallback(text)
			assert.Equal(t, schemas.ActionOpenApplication, a.Type, text)
			assert.Equal(t, "vscode", a.App, text)
		}
	})

	t.Run("search strips only the trigger words", func(t *testing.T) {
		a := Fallback("search for rust borrow checker")
		assert.Equal(t, schemas.ActionWebSearch, a.Type)
		assert.Equal(t, "for rust borrow checker", a.Query)
	})

	t.Run("search online strips both trigger words", func(t *testing.T) {
		a := Fallback("search online best laptops")
		assert.Equal(t, schemas.ActionWebSearch, a.Type)
		assert.Equal(t, "best laptops", a.Query)
	})

	t.Run("open captures the following word", func(t *testing.T) {
		a := Fallback("please open spotify now")
		assert.Equal(t, schemas.ActionOpenApplication, a.Type)
		assert.Equal(t, "spotify", a.App)
	})

	t.Run("launch falls back to the keyword table", func(t *testing.T) {
		a := Fallback("firefox launch")
		assert.Equal(t, schemas.ActionOpenApplication, a.Type)
		assert.Equal(t, "firefox", a.App)
	})

	t.Run("anything else is a verbatim web search", func(t *testing.T) {
		a := Fallback("what is the capital of mongolia")
		assert.Equal(t, schemas.ActionWebSearch, a.Type)
		assert.Equal(t, "what is the capital of mongolia", a.Query)
	})

	t.Run("every result reports confidence zero and a reason", func(t *testing.T) {
		for _, text := range []string{
			"play jazz on youtube",
			"open chrome",
			"search cats",
			"gibberish input",
			"",
		} {
			a := Fallback(text)
			assert.Zero(t, a.Confidence, text)
			assert.NotEmpty(t, a.Reasoning, text)
			assert.True(t, schemas.KnownActionType(a.Type), text)
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		assert.Equal(t, Fallback("search for go slices"), Fallback("search for go slices"))
	})
}
