package engine

import (
	"fmt"
	"slices"
	"strings"

	sv "github.com/gofhir/screening-validator"
	"github.com/gofhir/screening-validator/cpspath"
	"github.com/gofhir/screening-validator/document"
	"github.com/gofhir/screening-validator/metadata"
)

// evalReference checks that every resolved reference targets one of the
// rule's allowed resource types. urn references are resolved through the
// bundle's fullUrl index; literal references through their type segment.
func (e *Engine) evalReference(doc *document.Document, rs *metadata.RuleSet, r *metadata.Rule, entry *document.Entry) []sv.ValidationError {
	var errs []sv.ValidationError
	for _, ref := range cpspath.Strings(entry.Resource, r.Path) {
		target := referenceTargetType(doc, ref)
		if slices.Contains(r.TargetTypes, target) {
			continue
		}
		errs = append(errs, sv.NewError(ruleCode(r, sv.CodeInvalidReferenceType), sv.RuleReference).
			At(fieldPath(entry, r.Path)).
			Scope(rs.Scope).
			Message(ruleMessage(r, fmt.Sprintf("reference %q targets %q; want one of %s", ref, target, strings.Join(r.TargetTypes, ", ")))).
			Rule(r.Echo()).
			Pointer(pointer(entry)).
			Build())
	}
	return errs
}

// referenceTargetType derives the resource type a reference points at.
func referenceTargetType(doc *document.Document, ref string) string {
	if strings.HasPrefix(ref, "urn:") {
		if e := doc.EntryByFullURL(ref); e != nil {
			return e.ResourceType
		}
		return ""
	}
	// Relative ("Patient/123") and absolute ("…/Patient/123") literal
	// references carry the type as the second-to-last segment.
	parts := strings.Split(ref, "/")
	if len(parts) >= 2 {
		return parts[len(parts)-2]
	}
	return ref
}
