package engine

import (
	"fmt"
	"slices"

	sv "github.com/gofhir/screening-validator"
	"github.com/gofhir/screening-validator/cpspath"
	"github.com/gofhir/screening-validator/document"
	"github.com/gofhir/screening-validator/metadata"
)

// evalAllowedValues checks that every resolved value is a member of the
// rule's allowed value list, emitting one error per offending value.
func (e *Engine) evalAllowedValues(rs *metadata.RuleSet, r *metadata.Rule, entry *document.Entry) []sv.ValidationError {
	var errs []sv.ValidationError
	for _, v := range cpspath.Strings(entry.Resource, r.Path) {
		if slices.Contains(r.AllowedValues, v) {
			continue
		}
		errs = append(errs, sv.NewError(ruleCode(r, sv.CodeInvalidCode), sv.RuleAllowedValues).
			At(fieldPath(entry, r.Path)).
			Scope(rs.Scope).
			Message(ruleMessage(r, fmt.Sprintf("value %q is not permitted at %s", v, r.Path))).
			Rule(r.Echo()).
			Context(&sv.ErrorContext{
				ResourceType:   entry.ResourceType,
				AllowedAnswers: r.AllowedValues,
			}).
			Pointer(pointer(entry)).
			Build())
	}
	return errs
}

// evalCodeSystem checks that every resolved code appears among the named
// code system's concepts. Failures carry the system's concept table so a
// reviewer can see what would have been accepted.
func (e *Engine) evalCodeSystem(meta *metadata.Metadata, rs *metadata.RuleSet, r *metadata.Rule, entry *document.Entry) []sv.ValidationError {
	cs, ok := meta.Codes.System(r.System)
	if !ok {
		// Unreachable: system presence is validated at metadata load.
		return nil
	}

	var errs []sv.ValidationError
	for _, code := range cpspath.Strings(entry.Resource, r.Path) {
		if cs.HasCode(code) {
			continue
		}
		errs = append(errs, sv.NewError(ruleCode(r, sv.CodeInvalidCode), sv.RuleCodeSystem).
			At(fieldPath(entry, r.Path)).
			Scope(rs.Scope).
			Message(ruleMessage(r, fmt.Sprintf("code %q is not defined by %s", code, cs.System))).
			Rule(r.Echo()).
			Context(&sv.ErrorContext{
				ResourceType:       entry.ResourceType,
				CodeSystemConcepts: conceptHints(cs),
			}).
			Pointer(pointer(entry)).
			Build())
	}
	return errs
}

func conceptHints(cs *metadata.CodeSystem) []sv.CodeConcept {
	out := make([]sv.CodeConcept, 0, len(cs.Concepts))
	for _, c := range cs.Concepts {
		out = append(out, sv.CodeConcept{Code: c.Code, Display: c.Display})
	}
	return out
}
