// api/schemas/actions.go
package schemas

import (
	"fmt"
	"strings"
)

// ActionType is the variant tag of the Action union. The string values double
// as the vocabulary the language model is instructed to reply with.
type ActionType string

const (
	ActionOpenApplication     ActionType = "open_application"
	ActionWebSearch           ActionType = "web_search"
	ActionWebNavigate         ActionType = "web_navigate"
	ActionCreateDocument      ActionType = "create_document"
	ActionScreenClick         ActionType = "screen_click"
	ActionScreenType          ActionType = "screen_type"
	ActionAnalyzeAndRecommend ActionType = "analyze_and_recommend"
	ActionMultiStep           ActionType = "multi_step_task"
)

// KnownActionType reports whether t is one of the dispatchable variants.
func KnownActionType(t ActionType) bool {
	switch t {
	case ActionOpenApplication, ActionWebSearch, ActionWebNavigate,
		ActionCreateDocument, ActionScreenClick, ActionScreenType,
		ActionAnalyzeAndRecommend, ActionMultiStep:
		return true
	}
	return false
}

// Action is a tagged union describing one automation step. Exactly one field
// set is meaningful per variant tag; the executor pattern-matches exhaustively
// on Type and treats anything else as a contract violation.
//
// An Action is fully formed the moment the interpreter returns it, even if
// Coordinates is still nil; the resolver binds coordinates but never changes
// the variant tag.
type Action struct {
	Type ActionType `json:"type"`

	// open_application
	App string `json:"app,omitempty"`

	// web_search
	Query string `json:"query,omitempty"`

	// web_navigate
	URL string `json:"url,omitempty"`

	// create_document
	DocType   string `json:"doc_type,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Content   string `json:"content,omitempty"`

	// screen_click / screen_type
	Target      string `json:"target_element,omitempty"`
	Text        string `json:"text_to_type,omitempty"`
	Coordinates *Point `json:"coordinates,omitempty"`

	// analyze_and_recommend
	DomainHint string `json:"domain_hint,omitempty"`

	// multi_step_task
	Steps []string `json:"multi_steps,omitempty"`

	// Carried by every variant.
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
}

// Resolved reports whether the action needs no further coordinate binding.
func (a Action) Resolved() bool {
	switch a.Type {
	case ActionScreenClick, ActionScreenType:
		return a.Coordinates != nil
	}
	return true
}

// Summary renders a one-line description for logs and the interaction history.
func (a Action) Summary() string {
	var b strings.Builder
	b.WriteString(string(a.Type))
	switch a.Type {
	case ActionOpenApplication:
		b.WriteString(" app=" + a.App)
	case ActionWebSearch:
		b.WriteString(" query=" + a.Query)
	case ActionWebNavigate:
		b.WriteString(" url=" + a.URL)
	case ActionCreateDocument:
		b.WriteString(" doc_type=" + a.DocType)
	case ActionScreenClick:
		b.WriteString(" target=" + a.Target)
		if a.Coordinates != nil {
			fmt.Fprintf(&b, " at (%d,%d)", a.Coordinates.X, a.Coordinates.Y)
		}
	case ActionScreenType:
		b.WriteString(" text=" + a.Text)
		if a.Coordinates != nil {
			fmt.Fprintf(&b, " at (%d,%d)", a.Coordinates.X, a.Coordinates.Y)
		}
	case ActionAnalyzeAndRecommend:
		b.WriteString(" domain=" + a.DomainHint)
	case ActionMultiStep:
		b.WriteString(" steps=" + strings.Join(a.Steps, "; "))
	}
	return b.String()
}
