package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	sv "github.com/gofhir/screening-validator"
	"github.com/gofhir/screening-validator/cpspath"
	"github.com/gofhir/screening-validator/document"
	"github.com/gofhir/screening-validator/metadata"
)

// evalType checks that every resolved value parses as the expected type.
// An unresolved path yields nothing to check; presence is the Required
// kind's concern.
func (e *Engine) evalType(rs *metadata.RuleSet, r *metadata.Rule, entry *document.Entry) []sv.ValidationError {
	var errs []sv.ValidationError
	for _, v := range cpspath.Resolve(entry.Resource, r.Path) {
		if checkType(v, r.ExpectedType) {
			continue
		}
		errs = append(errs, sv.NewError(ruleCode(r, sv.CodeTypeMismatch), sv.RuleType).
			At(fieldPath(entry, r.Path)).
			Scope(rs.Scope).
			Message(ruleMessage(r, fmt.Sprintf("value %q does not parse as %s", cpspath.ValueString(v), r.ExpectedType))).
			Rule(r.Echo()).
			Pointer(pointer(entry)).
			Build())
	}
	return errs
}

// dateTimeLayouts accepted for the dateTime type, most specific first.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func checkType(v any, name string) bool {
	switch name {
	case "string":
		_, ok := v.(string)
		return ok
	case "integer":
		switch t := v.(type) {
		case float64:
			return t == math.Trunc(t)
		case string:
			_, err := strconv.ParseInt(t, 10, 64)
			return err == nil
		}
		return false
	case "decimal":
		switch t := v.(type) {
		case float64:
			return true
		case string:
			_, err := decimal.NewFromString(t)
			return err == nil
		}
		return false
	case "boolean":
		switch t := v.(type) {
		case bool:
			return true
		case string:
			return t == "true" || t == "false"
		}
		return false
	case "guid":
		s, ok := v.(string)
		if !ok || len(s) != 36 {
			return false
		}
		_, err := uuid.Parse(s)
		return err == nil
	case "guid-uri":
		s, ok := v.(string)
		if !ok || !strings.HasPrefix(s, "urn:uuid:") {
			return false
		}
		_, err := uuid.Parse(s)
		return err == nil
	case "date":
		s, ok := v.(string)
		if !ok {
			return false
		}
		_, err := time.Parse("2006-01-02", s)
		return err == nil
	case "dateTime":
		s, ok := v.(string)
		if !ok {
			return false
		}
		for _, layout := range dateTimeLayouts {
			if _, err := time.Parse(layout, s); err == nil {
				return true
			}
		}
		return false
	case "pipe-delimited-string-array":
		s, ok := v.(string)
		if !ok {
			return false
		}
		parts := metadata.SplitAnswer(s)
		return len(parts) > 0 && parts[0] != ""
	case "array":
		_, ok := v.([]any)
		return ok
	case "object":
		_, ok := v.(map[string]any)
		return ok
	default:
		// Unreachable: type names are validated at metadata load.
		return false
	}
}
