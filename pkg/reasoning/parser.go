package reasoning

import (
	"errors"
	"regexp"
	"strings"

	"github.com/kadirpekel/dealfinder/pkg/prompt"
)

// ErrUnparseable is wrapped by every ParseError.
var ErrUnparseable = errors.New("unparseable model output")

// Corrective observations fed back to the model.
const (
	ReasonEmpty              = "Invalid Format: Empty response. Respond with 'Thought:' followed by either 'Action:' and 'Action Input:' or 'Final Answer:'."
	ReasonMissingAction      = "Invalid Format: Missing 'Action:' after 'Thought:'"
	ReasonMissingActionInput = "Invalid Format: Missing 'Action Input:' after 'Action:'"
	ReasonMissingTool        = "Invalid Format: Missing tool name after 'Action:'"
	ReasonBoth               = "Invalid Format: Output contains both a final answer and an action. Provide only one of them."
)

// ParseError describes model output that is neither an action nor a
// final answer.
type ParseError struct {
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	return e.Reason
}

func (e *ParseError) Unwrap() error {
	return ErrUnparseable
}

// Decision is the parsed form of one model turn: exactly one of
// *FinalAnswer, *Action or *Unparseable.
type Decision interface {
	decision()
}

// FinalAnswer ends the run.
type FinalAnswer struct {
	Thought string
	Text    string
	Log     string
}

// Action asks for a tool call.
type Action struct {
	Thought string
	Tool    string
	Input   string
	Log     string
}

// Unparseable carries the raw text and the corrective reason.
type Unparseable struct {
	Raw    string
	Reason string
}

func (*FinalAnswer) decision() {}
func (*Action) decision()      {}
func (*Unparseable) decision() {}

// Err returns the failure as a *ParseError.
func (u *Unparseable) Err() error {
	return &ParseError{Raw: u.Raw, Reason: u.Reason}
}

var (
	actionPattern      = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
	actionLabelPattern = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)`)
	actionInputPattern = regexp.MustCompile(`(?s)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
)

// Parse classifies raw model output. Anything from a hallucinated
// "Observation:" onwards is discarded first.
func Parse(output string) Decision {
	text := output
	if i := strings.Index(text, prompt.LabelObservation); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimSpace(text)

	if text == "" {
		return &Unparseable{Raw: output, Reason: ReasonEmpty}
	}

	hasAnswer := strings.Contains(text, prompt.LabelFinalAnswer)
	m := actionPattern.FindStringSubmatchIndex(text)

	switch {
	case m != nil && hasAnswer:
		return &Unparseable{Raw: output, Reason: ReasonBoth}

	case m != nil:
		tool := strings.TrimSpace(text[m[2]:m[3]])
		input := unquote(strings.TrimSpace(text[m[4]:m[5]]))
		if tool == "" {
			return &Unparseable{Raw: output, Reason: ReasonMissingTool}
		}
		return &Action{
			Thought: thought(text[:m[0]]),
			Tool:    tool,
			Input:   input,
			Log:     text,
		}

	case hasAnswer:
		i := strings.Index(text, prompt.LabelFinalAnswer)
		return &FinalAnswer{
			Thought: thought(text[:i]),
			Text:    strings.TrimSpace(text[i+len(prompt.LabelFinalAnswer):]),
			Log:     text,
		}

	case !actionLabelPattern.MatchString(text):
		return &Unparseable{Raw: output, Reason: ReasonMissingAction}

	case !actionInputPattern.MatchString(text):
		return &Unparseable{Raw: output, Reason: ReasonMissingActionInput}

	default:
		return &Unparseable{Raw: output, Reason: ReasonMissingAction}
	}
}

func thought(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, prompt.LabelThought)
	return strings.TrimSpace(s)
}

// unquote removes one pair of double quotes wrapping the whole input.
// Quotes belonging to a literal inside the input are left alone.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' && !strings.Contains(s[1:len(s)-1], "\"") {
		return s[1 : len(s)-1]
	}
	return s
}
