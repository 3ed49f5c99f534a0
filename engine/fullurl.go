package engine

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	sv "github.com/gofhir/screening-validator"
	"github.com/gofhir/screening-validator/cpspath"
	"github.com/gofhir/screening-validator/document"
	"github.com/gofhir/screening-validator/metadata"
)

// evalFullURLIDMatch checks that the resource identifier at the rule path
// equals the GUID segment of the enclosing entry's fullUrl.
func (e *Engine) evalFullURLIDMatch(rs *metadata.RuleSet, r *metadata.Rule, entry *document.Entry) []sv.ValidationError {
	id := cpspath.FirstString(entry.Resource, r.Path)
	guid := guidFromURL(entry.FullURL)

	if guid != "" && id == guid {
		return nil
	}

	msg := ruleMessage(r, fmt.Sprintf("resource id %q does not match fullUrl GUID %q", id, guid))
	if guid == "" {
		msg = ruleMessage(r, fmt.Sprintf("entry fullUrl %q carries no GUID segment", entry.FullURL))
	}

	return []sv.ValidationError{
		sv.NewError(ruleCode(r, sv.CodeIDFullURLMismatch), sv.RuleFullURLIDMatch).
			At(fieldPath(entry, r.Path)).
			Scope(rs.Scope).
			Message(msg).
			Rule(r.Echo()).
			Pointer(pointer(entry)).
			Build(),
	}
}

// guidFromURL extracts the GUID segment of an entry fullUrl: the payload
// of a urn:uuid form, or the last path segment of a literal URL. Returns
// "" when the segment is not a valid GUID.
func guidFromURL(u string) string {
	if u == "" {
		return ""
	}
	s := u
	if rest, ok := strings.CutPrefix(u, "urn:uuid:"); ok {
		s = rest
	} else if i := strings.LastIndexByte(u, '/'); i >= 0 {
		s = u[i+1:]
	}
	if _, err := uuid.Parse(s); err != nil {
		return ""
	}
	return s
}
