package reasoning

import (
	"slices"

	"github.com/kadirpekel/dealfinder/pkg/prompt"
)

// Trace is the question plus every completed step of one run. It is owned
// by a single Run call.
type Trace struct {
	Question string        `json:"question"`
	Steps    []prompt.Step `json:"steps"`
}

func NewTrace(question string) *Trace {
	return &Trace{Question: question, Steps: []prompt.Step{}}
}

func (t *Trace) Append(step prompt.Step) {
	t.Steps = append(t.Steps, step)
}

func (t *Trace) Len() int {
	return len(t.Steps)
}

// Clone returns a copy that shares no slice storage with t.
func (t *Trace) Clone() *Trace {
	return &Trace{Question: t.Question, Steps: slices.Clone(t.Steps)}
}
