package engine

import (
	"fmt"

	sv "github.com/gofhir/screening-validator"
	"github.com/gofhir/screening-validator/cpspath"
	"github.com/gofhir/screening-validator/document"
	"github.com/gofhir/screening-validator/metadata"
)

// evalFixedValue checks that every resolved value string-equals the
// expected value.
func (e *Engine) evalFixedValue(rs *metadata.RuleSet, r *metadata.Rule, entry *document.Entry) []sv.ValidationError {
	vals := cpspath.Strings(entry.Resource, r.Path)
	if len(vals) == 0 {
		return []sv.ValidationError{
			sv.NewError(ruleCode(r, sv.CodeFixedValueMismatch), sv.RuleFixedValue).
				At(fieldPath(entry, r.Path)).
				Scope(rs.Scope).
				Message(ruleMessage(r, fmt.Sprintf("no value at %s; expected %q", r.Path, r.ExpectedValue))).
				Rule(r.Echo()).
				Pointer(pointer(entry)).
				Analysis(pathAnalysis(entry, r.Path)).
				Build(),
		}
	}

	var errs []sv.ValidationError
	for _, v := range vals {
		if v == r.ExpectedValue {
			continue
		}
		errs = append(errs, sv.NewError(ruleCode(r, sv.CodeFixedValueMismatch), sv.RuleFixedValue).
			At(fieldPath(entry, r.Path)).
			Scope(rs.Scope).
			Message(ruleMessage(r, fmt.Sprintf("value %q does not match expected %q", v, r.ExpectedValue))).
			Rule(r.Echo()).
			Pointer(pointer(entry)).
			Build())
	}
	return errs
}

// evalFixedCoding checks that the resolved coding list contains at least
// one entry whose system and code match the expectation.
func (e *Engine) evalFixedCoding(rs *metadata.RuleSet, r *metadata.Rule, entry *document.Entry) []sv.ValidationError {
	for _, node := range cpspath.Resolve(entry.Resource, r.Path) {
		for _, coding := range codingCandidates(node) {
			system, _ := coding["system"].(string)
			code, _ := coding["code"].(string)
			if system == r.ExpectedSystem && code == r.ExpectedCode {
				return nil
			}
		}
	}

	return []sv.ValidationError{
		sv.NewError(ruleCode(r, sv.CodeFixedCodingMismatch), sv.RuleFixedCoding).
			At(fieldPath(entry, r.Path)).
			Scope(rs.Scope).
			Message(ruleMessage(r, fmt.Sprintf("no coding at %s with system %q and code %q", r.Path, r.ExpectedSystem, r.ExpectedCode))).
			Rule(r.Echo()).
			Pointer(pointer(entry)).
			Analysis(pathAnalysis(entry, r.Path)).
			Build(),
	}
}

// codingCandidates flattens a resolved node into coding objects: a single
// coding, or a coding list.
func codingCandidates(node any) []map[string]any {
	switch n := node.(type) {
	case map[string]any:
		return []map[string]any{n}
	case []any:
		var out []map[string]any
		for _, item := range n {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}
