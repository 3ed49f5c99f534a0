package metadata

import (
	"strings"
)

// Question is one permitted screening question: its code, display text,
// owning screening type and allowed answers.
type Question struct {
	QuestionCode    string   `json:"questionCode"`
	QuestionDisplay string   `json:"questionDisplay"`
	ScreeningType   string   `json:"screeningType,omitempty"`
	AllowedAnswers  []string `json:"allowedAnswers"`
	IsMultiValue    bool     `json:"isMultiValue,omitempty"`
}

// AllowsAnswer reports whether a single answer value is permitted.
func (q *Question) AllowsAnswer(answer string) bool {
	for _, a := range q.AllowedAnswers {
		if a == answer {
			return true
		}
	}
	return false
}

// Concept is one code/display pair of a code system.
type Concept struct {
	Code    string `json:"code"`
	Display string `json:"display,omitempty"`
}

// CodeSystem is a named concept table.
type CodeSystem struct {
	ID          string    `json:"id"`
	System      string    `json:"system"`
	Description string    `json:"description,omitempty"`
	Concepts    []Concept `json:"concepts"`

	codes map[string]bool
}

// HasCode reports whether the system defines the code.
func (cs *CodeSystem) HasCode(code string) bool {
	if cs.codes != nil {
		return cs.codes[code]
	}
	for _, c := range cs.Concepts {
		if c.Code == code {
			return true
		}
	}
	return false
}

// CodesMaster is the reference table of permitted question codes and
// code-system concept tables. Indexes are built once at load; the value
// is immutable afterwards and safe for shared reads.
type CodesMaster struct {
	Questions   []Question   `json:"questions"`
	CodeSystems []CodeSystem `json:"codeSystems"`

	questions map[string]*Question
	systems   map[string]*CodeSystem // keyed by both id and system URL
}

func (cm *CodesMaster) buildIndexes() {
	cm.questions = make(map[string]*Question, len(cm.Questions))
	for i := range cm.Questions {
		q := &cm.Questions[i]
		cm.questions[q.QuestionCode] = q
	}

	cm.systems = make(map[string]*CodeSystem, len(cm.CodeSystems)*2)
	for i := range cm.CodeSystems {
		cs := &cm.CodeSystems[i]
		cs.codes = make(map[string]bool, len(cs.Concepts))
		for _, c := range cs.Concepts {
			cs.codes[c.Code] = true
		}
		if cs.ID != "" {
			cm.systems[cs.ID] = cs
		}
		if cs.System != "" {
			cm.systems[cs.System] = cs
		}
	}
}

// Question looks up a question by its code.
func (cm *CodesMaster) Question(code string) (*Question, bool) {
	q, ok := cm.questions[code]
	return q, ok
}

// System looks up a code system by id or system URL.
func (cm *CodesMaster) System(ref string) (*CodeSystem, bool) {
	cs, ok := cm.systems[ref]
	return cs, ok
}

func (cm *CodesMaster) hasSystem(ref string) bool {
	_, ok := cm.systems[ref]
	return ok
}

// SplitAnswer splits a pipe-delimited multi-select answer into its parts,
// trimming whitespace and dropping empty segments. An answer without the
// delimiter yields a single-element list.
func SplitAnswer(answer string) []string {
	if !strings.Contains(answer, "|") {
		return []string{answer}
	}
	parts := strings.Split(answer, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
