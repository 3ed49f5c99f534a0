package engine

import (
	"fmt"

	sv "github.com/gofhir/screening-validator"
	"github.com/gofhir/screening-validator/cpspath"
	"github.com/gofhir/screening-validator/document"
	"github.com/gofhir/screening-validator/metadata"
)

// evalRegex checks that every resolved string fully matches the rule's
// pattern. The error code is author-supplied; when the metadata omits it
// the configured default applies.
func (e *Engine) evalRegex(meta *metadata.Metadata, rs *metadata.RuleSet, r *metadata.Rule, entry *document.Entry) []sv.ValidationError {
	re := meta.Regexp(r.Pattern)
	if re == nil {
		// Unreachable: patterns are compiled at metadata load.
		return nil
	}

	code := sv.ErrorCode(r.ErrorCode)
	if code == "" {
		code = e.options.RegexDefaultCode
	}

	var errs []sv.ValidationError
	for _, v := range cpspath.Strings(entry.Resource, r.Path) {
		if re.MatchString(v) {
			continue
		}
		errs = append(errs, sv.NewError(code, sv.RuleRegex).
			At(fieldPath(entry, r.Path)).
			Scope(rs.Scope).
			Message(ruleMessage(r, fmt.Sprintf("value %q does not match pattern %s", v, r.Pattern))).
			Rule(r.Echo()).
			Pointer(pointer(entry)).
			Build())
	}
	return errs
}
