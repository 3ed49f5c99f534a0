package engine

import (
	"github.com/gofhir/screening-validator/cpspath"
	"github.com/gofhir/screening-validator/document"
	"github.com/gofhir/screening-validator/metadata"
)

// matcherKind is the closed set of scope-to-resource lookup strategies.
type matcherKind int

const (
	// matchSingleton targets the single entry of a fixed top-level
	// resource type (encounter, participant, location).
	matchSingleton matcherKind = iota
	// matchConditioned targets every entry of the resource type whose
	// fields satisfy the rule set's match conditions (screening
	// observations selected by discriminator coding).
	matchConditioned
)

// ScopeMatcher locates the resource(s) a rule set applies to. It is a
// closed tagged variant rather than a reflective lookup: every scope is
// either a fixed singleton or discriminator-coded.
type ScopeMatcher struct {
	kind         matcherKind
	resourceType string
	conditions   []metadata.MatchCondition
}

// MatcherFor builds the matcher for a rule set. A rule set without match
// conditions targets the fixed singleton of its resource type.
func MatcherFor(rs *metadata.RuleSet) ScopeMatcher {
	if len(rs.Match) == 0 {
		return ScopeMatcher{kind: matchSingleton, resourceType: rs.ResourceType}
	}
	return ScopeMatcher{
		kind:         matchConditioned,
		resourceType: rs.ResourceType,
		conditions:   rs.Match,
	}
}

// Find returns the in-scope entries in bundle order. An empty result
// means the scope's resource is absent from the document.
func (m ScopeMatcher) Find(doc *document.Document) []*document.Entry {
	switch m.kind {
	case matchSingleton:
		if e := doc.FirstOfType(m.resourceType); e != nil {
			return []*document.Entry{e}
		}
		return nil
	case matchConditioned:
		var out []*document.Entry
		for _, e := range doc.ByType(m.resourceType) {
			if m.matches(e) {
				out = append(out, e)
			}
		}
		return out
	default:
		return nil
	}
}

func (m ScopeMatcher) matches(e *document.Entry) bool {
	for _, cond := range m.conditions {
		if cpspath.FirstString(e.Resource, cond.Path) != cond.Expected {
			return false
		}
	}
	return true
}
