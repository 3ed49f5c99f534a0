package engine

import (
	sv "github.com/gofhir/screening-validator"
	"github.com/gofhir/screening-validator/cpspath"
	"github.com/gofhir/screening-validator/document"
	"github.com/gofhir/screening-validator/metadata"
)

// ruleCode returns the rule's author-supplied error code, or the kind's
// engine default when the metadata omits one.
func ruleCode(r *metadata.Rule, def sv.ErrorCode) sv.ErrorCode {
	if r.ErrorCode != "" {
		return sv.ErrorCode(r.ErrorCode)
	}
	return def
}

// ruleMessage returns the rule's message or a fallback.
func ruleMessage(r *metadata.Rule, fallback string) string {
	if r.Message != "" {
		return r.Message
	}
	return fallback
}

// evalRequired checks that the rule path resolves to at least one
// non-empty node.
func (e *Engine) evalRequired(rs *metadata.RuleSet, r *metadata.Rule, entry *document.Entry) []sv.ValidationError {
	if cpspath.Exists(entry.Resource, r.Path) {
		return nil
	}

	return []sv.ValidationError{
		sv.NewError(ruleCode(r, sv.CodeMandatoryMissing), sv.RuleRequired).
			At(fieldPath(entry, r.Path)).
			Scope(rs.Scope).
			Message(ruleMessage(r, "required element is missing at "+r.Path)).
			Rule(r.Echo()).
			Context(&sv.ErrorContext{ResourceType: entry.ResourceType}).
			Pointer(pointer(entry)).
			Analysis(pathAnalysis(entry, r.Path)).
			Build(),
	}
}
