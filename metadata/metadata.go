// Package metadata holds the in-memory representation of rule sets, rule
// definitions and the codes master, loaded from a versioned JSON document.
//
// Loading is strict: an unknown rule kind or a rule missing the fields its
// kind requires is rejected at load time, never discovered mid-evaluation.
package metadata

import (
	"encoding/json"
	"fmt"
	"regexp"

	sv "github.com/gofhir/screening-validator"
)

// ParseError is returned when the metadata document is malformed or a
// rule definition is structurally incomplete.
type ParseError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Err != nil {
		return "metadata: " + e.Reason + ": " + e.Err.Error()
	}
	return "metadata: " + e.Reason
}

// Unwrap returns the wrapped error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// MatchCondition is one path/expected pair of a rule set's resource
// matching definition.
type MatchCondition struct {
	Path     string `json:"path"`
	Expected string `json:"expected"`
}

// Rule is a single rule definition. Exactly the fields relevant to Type
// are meaningful; the rest are ignored.
type Rule struct {
	Type           sv.RuleKind `json:"ruleType"`
	Path           string      `json:"path"`
	ExpectedValue  string      `json:"expectedValue,omitempty"`
	ExpectedSystem string      `json:"expectedSystem,omitempty"`
	ExpectedCode   string      `json:"expectedCode,omitempty"`
	ExpectedType   string      `json:"expectedType,omitempty"`
	Pattern        string      `json:"pattern,omitempty"`
	TargetTypes    []string    `json:"targetTypes,omitempty"`
	AllowedValues  []string    `json:"allowedValues,omitempty"`
	System         string      `json:"system,omitempty"`
	ErrorCode      string      `json:"errorCode,omitempty"`
	Message        string      `json:"message,omitempty"`
}

// Echo returns the rule's kind-relevant fields for error display.
func (r *Rule) Echo() *sv.RuleEcho {
	return &sv.RuleEcho{
		Path:           r.Path,
		ExpectedValue:  r.ExpectedValue,
		ExpectedSystem: r.ExpectedSystem,
		ExpectedCode:   r.ExpectedCode,
		ExpectedType:   r.ExpectedType,
		Pattern:        r.Pattern,
		TargetTypes:    r.TargetTypes,
		AllowedValues:  r.AllowedValues,
		System:         r.System,
	}
}

// RuleSet is a named validation bucket: a scope, the resource type it
// targets, an optional matching definition for locating the in-scope
// resource(s), and the rules themselves.
type RuleSet struct {
	Scope        string           `json:"scope"`
	ResourceType string           `json:"resourceType"`
	Match        []MatchCondition `json:"match,omitempty"`
	Rules        []Rule           `json:"rules"`
}

// Metadata is a fully loaded and validated rule metadata document. It is
// immutable after Load and safe for shared, concurrent reads.
type Metadata struct {
	Version    string       `json:"version"`
	PathSyntax string       `json:"pathSyntax,omitempty"`
	RuleSets   []RuleSet    `json:"ruleSets"`
	Codes      *CodesMaster `json:"codesMaster,omitempty"`

	regexps map[string]*regexp.Regexp
}

// Expected type names for Type rules.
var typeNames = map[string]bool{
	"string":                      true,
	"integer":                     true,
	"decimal":                     true,
	"boolean":                     true,
	"guid":                        true,
	"guid-uri":                    true,
	"date":                        true,
	"dateTime":                    true,
	"pipe-delimited-string-array": true,
	"array":                       true,
	"object":                      true,
}

// Load parses and validates a metadata document. Every rule is checked
// against its kind's required fields; regex patterns are compiled here so
// evaluation never sees an invalid pattern.
func Load(data []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &ParseError{Reason: "malformed JSON", Err: err}
	}

	if len(m.RuleSets) == 0 {
		return nil, &ParseError{Reason: "no rule sets defined"}
	}

	if m.Codes != nil {
		m.Codes.buildIndexes()
	}

	m.regexps = make(map[string]*regexp.Regexp)
	for si := range m.RuleSets {
		rs := &m.RuleSets[si]
		if rs.Scope == "" {
			return nil, &ParseError{Reason: fmt.Sprintf("ruleSets[%d]: missing scope", si)}
		}
		if rs.ResourceType == "" {
			return nil, &ParseError{Reason: fmt.Sprintf("ruleSets[%d] (%s): missing resourceType", si, rs.Scope)}
		}
		for ri := range rs.Rules {
			if err := m.validateRule(rs, &rs.Rules[ri], si, ri); err != nil {
				return nil, err
			}
		}
	}

	return &m, nil
}

// validateRule enforces the closed rule-kind set and each kind's required
// fields.
func (m *Metadata) validateRule(rs *RuleSet, r *Rule, si, ri int) error {
	at := fmt.Sprintf("ruleSets[%d] (%s) rules[%d]", si, rs.Scope, ri)

	if !r.Type.Known() {
		return &ParseError{Reason: fmt.Sprintf("%s: unknown ruleType %q", at, r.Type)}
	}
	if r.Path == "" {
		return &ParseError{Reason: fmt.Sprintf("%s (%s): missing path", at, r.Type)}
	}

	switch r.Type {
	case sv.RuleFixedValue:
		if r.ExpectedValue == "" {
			return &ParseError{Reason: fmt.Sprintf("%s: FixedValue requires expectedValue", at)}
		}
	case sv.RuleFixedCoding:
		if r.ExpectedSystem == "" || r.ExpectedCode == "" {
			return &ParseError{Reason: fmt.Sprintf("%s: FixedCoding requires expectedSystem and expectedCode", at)}
		}
	case sv.RuleAllowedValues:
		if len(r.AllowedValues) == 0 {
			return &ParseError{Reason: fmt.Sprintf("%s: AllowedValues requires a non-empty allowedValues list", at)}
		}
	case sv.RuleCodesMaster:
		if m.Codes == nil {
			return &ParseError{Reason: fmt.Sprintf("%s: CodesMaster rule without a codesMaster section", at)}
		}
	case sv.RuleType:
		if !typeNames[r.ExpectedType] {
			return &ParseError{Reason: fmt.Sprintf("%s: Type rule with unsupported expectedType %q", at, r.ExpectedType)}
		}
	case sv.RuleRegex:
		if r.Pattern == "" {
			return &ParseError{Reason: fmt.Sprintf("%s: Regex requires pattern", at)}
		}
		if _, ok := m.regexps[r.Pattern]; !ok {
			// Full-match semantics: anchor the author's pattern.
			re, err := regexp.Compile("^(?:" + r.Pattern + ")$")
			if err != nil {
				return &ParseError{Reason: fmt.Sprintf("%s: invalid pattern", at), Err: err}
			}
			m.regexps[r.Pattern] = re
		}
	case sv.RuleReference:
		if len(r.TargetTypes) == 0 {
			return &ParseError{Reason: fmt.Sprintf("%s: Reference requires a non-empty targetTypes list", at)}
		}
	case sv.RuleCodeSystem:
		if r.System == "" {
			return &ParseError{Reason: fmt.Sprintf("%s: CodeSystem requires system", at)}
		}
		if m.Codes == nil || !m.Codes.hasSystem(r.System) {
			return &ParseError{Reason: fmt.Sprintf("%s: CodeSystem references unknown system %q", at, r.System)}
		}
	}

	return nil
}

// Regexp returns the compiled, anchored regex for a pattern validated at
// load time.
func (m *Metadata) Regexp(pattern string) *regexp.Regexp {
	return m.regexps[pattern]
}
