// Package prompt renders the text sent to the model on every turn of the
// reasoning loop.
//
// Build is a pure function of its inputs: rendering the same question,
// steps and catalog always yields the same string, so a trace can be
// replayed to reproduce the exact context of any past decision.
package prompt

import (
	"fmt"
	"strings"

	"github.com/kadirpekel/dealfinder/pkg/tool"
)

// Labels shared with the output parser.
const (
	LabelQuestion    = "Question:"
	LabelThought     = "Thought:"
	LabelAction      = "Action:"
	LabelActionInput = "Action Input:"
	LabelObservation = "Observation:"
	LabelFinalAnswer = "Final Answer:"
)

// StopSequence ends generation before the model invents an observation.
const StopSequence = "\n" + LabelObservation

// Step is one completed iteration as it appears in the context.
type Step struct {
	Thought     string `json:"thought,omitempty"`
	Action      string `json:"action,omitempty"`
	ActionInput string `json:"action_input,omitempty"`
	Observation string `json:"observation"`

	// Log is the raw model output for the step. When set it is rendered
	// verbatim instead of the parsed fields.
	Log string `json:"log,omitempty"`
}

// Persona describes who the agent is acting for.
type Persona struct {
	UserID          string
	MembershipLevel string

	// GraphLanguage is the query language of the graph tool, e.g. Cypher.
	GraphLanguage string

	// GraphTool and SearchTool name the tools the input rules refer to.
	GraphTool  string
	SearchTool string
}

// Instruction renders the system instruction for persona.
func Instruction(p Persona) string {
	lang := p.GraphLanguage
	if lang == "" {
		lang = "Cypher"
	}
	return fmt.Sprintf("You are the 'Personalized Deal Finder' Agent. Your goal is to combine information "+
		"from the Knowledge Graph (KG) and the Vector Search Index (Semantic Search) to answer "+
		"complex user queries about food dishes, deals, and user status. "+
		"The user is a %s Member (User ID: %s). "+
		"For %s, the Action Input MUST be a single, valid %s query. "+
		"For %s, the Action Input MUST clearly extract keywords from the query. "+
		"After gathering information, synthesize a concise final answer.",
		p.MembershipLevel, p.UserID, p.GraphTool, lang, p.SearchTool)
}

// Builder renders prompts with a fixed instruction.
type Builder struct {
	Instruction string
}

// Build renders the full context for the next model call.
func (b Builder) Build(question string, steps []Step, catalog []tool.Spec) string {
	var sb strings.Builder

	if b.Instruction != "" {
		sb.WriteString(b.Instruction)
		sb.WriteString("\n\n")
	}

	sb.WriteString("You have access to the following tools:\n")
	names := make([]string, 0, len(catalog))
	for _, spec := range catalog {
		fmt.Fprintf(&sb, "%s: %s\n", spec.Name, spec.Description)
		names = append(names, spec.Name)
	}

	sb.WriteString("\nUse the following format:\n\n")
	fmt.Fprintf(&sb, "%s the input question you must answer\n", LabelQuestion)
	fmt.Fprintf(&sb, "%s you should always think about what to do\n", LabelThought)
	fmt.Fprintf(&sb, "%s the action to take, should be one of [%s]\n", LabelAction, strings.Join(names, ", "))
	fmt.Fprintf(&sb, "%s the input to the action\n", LabelActionInput)
	fmt.Fprintf(&sb, "%s the result of the action\n", LabelObservation)
	sb.WriteString("... (this Thought/Action/Action Input/Observation can repeat N times)\n")
	fmt.Fprintf(&sb, "%s I now know the final answer\n", LabelThought)
	fmt.Fprintf(&sb, "%s the final answer to the original input question\n\n", LabelFinalAnswer)
	sb.WriteString("Begin!\n\n")

	fmt.Fprintf(&sb, "%s %s\n", LabelQuestion, question)
	for _, step := range steps {
		writeStep(&sb, step)
	}
	sb.WriteString(LabelThought)

	return sb.String()
}

func writeStep(sb *strings.Builder, step Step) {
	body := strings.TrimSpace(step.Log)
	if body == "" {
		body = renderFields(step)
	}
	body = strings.TrimSpace(strings.TrimPrefix(body, LabelThought))

	fmt.Fprintf(sb, "%s %s\n", LabelThought, body)
	fmt.Fprintf(sb, "%s %s\n", LabelObservation, step.Observation)
}

func renderFields(step Step) string {
	var sb strings.Builder
	sb.WriteString(step.Thought)
	if step.Action != "" {
		fmt.Fprintf(&sb, "\n%s %s\n%s %s", LabelAction, step.Action, LabelActionInput, step.ActionInput)
	}
	return sb.String()
}
