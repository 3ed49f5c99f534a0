package engine

import (
	"fmt"

	sv "github.com/gofhir/screening-validator"
	"github.com/gofhir/screening-validator/cpspath"
	"github.com/gofhir/screening-validator/document"
	"github.com/gofhir/screening-validator/metadata"
)

// Component sub-paths within a screening observation.
const (
	componentCodePath    = "code.coding[0].code"
	componentDisplayPath = "code.coding[0].display"
	componentAnswerPath  = "valueString"
)

// evalCodesMaster validates each resolved component against the codes
// master: its question code must be known, its display must match (in
// strict mode), and its answer must be among the question's allowed
// answers. Multi-value questions split the answer on "|" and check each
// part independently.
func (e *Engine) evalCodesMaster(meta *metadata.Metadata, rs *metadata.RuleSet, r *metadata.Rule, entry *document.Entry) []sv.ValidationError {
	var errs []sv.ValidationError
	base := fieldPath(entry, r.Path)

	for _, node := range cpspath.Resolve(entry.Resource, r.Path) {
		comp, ok := node.(map[string]any)
		if !ok {
			continue
		}

		qcode := cpspath.FirstString(comp, componentCodePath)
		qdisplay := cpspath.FirstString(comp, componentDisplayPath)
		answer := cpspath.FirstString(comp, componentAnswerPath)

		question, known := meta.Codes.Question(qcode)
		if !known {
			errs = append(errs, sv.NewError(sv.CodeUnknownQuestionCode, sv.RuleCodesMaster).
				At(base).
				Scope(rs.Scope).
				Message(fmt.Sprintf("question code %q is not in the codes master", qcode)).
				Rule(r.Echo()).
				Context(&sv.ErrorContext{
					ResourceType:    entry.ResourceType,
					QuestionCode:    qcode,
					QuestionDisplay: qdisplay,
				}).
				Pointer(pointer(entry)).
				Build())
			continue
		}

		hints := &sv.ErrorContext{
			ResourceType:    entry.ResourceType,
			ScreeningType:   question.ScreeningType,
			QuestionCode:    question.QuestionCode,
			QuestionDisplay: question.QuestionDisplay,
			AllowedAnswers:  question.AllowedAnswers,
		}

		if qdisplay != question.QuestionDisplay {
			if e.options.StrictDisplayMatch {
				errs = append(errs, sv.NewError(sv.CodeInvalidQuestionDisplay, sv.RuleCodesMaster).
					At(base).
					Scope(rs.Scope).
					Message(fmt.Sprintf("display %q does not match %q for question %s", qdisplay, question.QuestionDisplay, question.QuestionCode)).
					Rule(r.Echo()).
					Context(hints).
					Pointer(pointer(entry)).
					Build())
			} else {
				e.log.Debug().
					Str("questionCode", question.QuestionCode).
					Str("display", qdisplay).
					Msg("question display mismatch (lenient mode)")
			}
		}

		values := []string{answer}
		if question.IsMultiValue {
			values = metadata.SplitAnswer(answer)
		}
		for _, v := range values {
			if question.AllowsAnswer(v) {
				continue
			}
			errs = append(errs, sv.NewError(sv.CodeInvalidAnswerValue, sv.RuleCodesMaster).
				At(base).
				Scope(rs.Scope).
				Message(fmt.Sprintf("answer %q is not allowed for question %s", v, question.QuestionCode)).
				Rule(r.Echo()).
				Context(hints).
				Pointer(pointer(entry)).
				Build())
		}
	}

	return errs
}
