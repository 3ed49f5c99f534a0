package screeningvalidator

// RuleKind identifies one of the closed set of rule kinds the engine can
// evaluate. Unknown kinds are rejected when metadata is loaded, never at
// evaluation time.
type RuleKind string

const (
	// RuleRequired requires the rule path to resolve to at least one
	// non-empty node.
	RuleRequired RuleKind = "Required"
	// RuleFixedValue requires every resolved value to string-equal the
	// rule's expected value.
	RuleFixedValue RuleKind = "FixedValue"
	// RuleFixedCoding requires the resolved coding list to contain an
	// entry matching the expected system and code.
	RuleFixedCoding RuleKind = "FixedCoding"
	// RuleAllowedValues requires every resolved value to be a member of
	// the rule's allowed value list.
	RuleAllowedValues RuleKind = "AllowedValues"
	// RuleCodesMaster validates screening components against the codes
	// master (question codes, displays and allowed answers).
	RuleCodesMaster RuleKind = "CodesMaster"
	// RuleType requires resolved values to parse as the expected type.
	RuleType RuleKind = "Type"
	// RuleRegex requires resolved strings to fully match a pattern.
	RuleRegex RuleKind = "Regex"
	// RuleReference requires a reference value to target one of the
	// rule's allowed resource types.
	RuleReference RuleKind = "Reference"
	// RuleCodeSystem requires resolved codes to appear among the named
	// code system's concepts.
	RuleCodeSystem RuleKind = "CodeSystem"
	// RuleFullURLIDMatch requires a resource id to equal the GUID
	// segment of its enclosing entry's fullUrl.
	RuleFullURLIDMatch RuleKind = "FullUrlIdMatch"
)

// Known returns true if k is one of the supported rule kinds.
func (k RuleKind) Known() bool {
	switch k {
	case RuleRequired, RuleFixedValue, RuleFixedCoding, RuleAllowedValues,
		RuleCodesMaster, RuleType, RuleRegex, RuleReference,
		RuleCodeSystem, RuleFullURLIDMatch:
		return true
	}
	return false
}

// ErrorCode identifies the category of a validation error.
type ErrorCode string

// Engine-assigned error codes.
const (
	CodeInvalidJSON            ErrorCode = "INVALID_JSON"
	CodeMandatoryMissing       ErrorCode = "MANDATORY_MISSING"
	CodeFixedValueMismatch     ErrorCode = "FIXED_VALUE_MISMATCH"
	CodeFixedCodingMismatch    ErrorCode = "FIXED_CODING_MISMATCH"
	CodeInvalidCode            ErrorCode = "INVALID_CODE"
	CodeUnknownQuestionCode    ErrorCode = "UNKNOWN_QUESTION_CODE"
	CodeInvalidQuestionDisplay ErrorCode = "INVALID_QUESTION_DISPLAY"
	CodeInvalidAnswerValue     ErrorCode = "INVALID_ANSWER_VALUE"
	CodeTypeMismatch           ErrorCode = "TYPE_MISMATCH"
	CodeRegexMismatch          ErrorCode = "REGEX_MISMATCH"
	CodeInvalidReferenceType   ErrorCode = "INVALID_REFERENCE_TYPE"
	CodeIDFullURLMismatch      ErrorCode = "ID_FULLURL_MISMATCH"
)

// RuleEcho carries the fields of the offending rule definition that are
// relevant to its kind, for display alongside the error.
type RuleEcho struct {
	Path           string   `json:"path,omitempty"`
	ExpectedValue  string   `json:"expectedValue,omitempty"`
	ExpectedSystem string   `json:"expectedSystem,omitempty"`
	ExpectedCode   string   `json:"expectedCode,omitempty"`
	ExpectedType   string   `json:"expectedType,omitempty"`
	Pattern        string   `json:"pattern,omitempty"`
	TargetTypes    []string `json:"targetTypes,omitempty"`
	AllowedValues  []string `json:"allowedValues,omitempty"`
	System         string   `json:"system,omitempty"`
}

// CodeConcept is a code/display pair from a code system concept table.
type CodeConcept struct {
	Code    string `json:"code"`
	Display string `json:"display,omitempty"`
}

// ErrorContext carries domain hints attached to a validation error.
type ErrorContext struct {
	ResourceType       string        `json:"resourceType,omitempty"`
	ScreeningType      string        `json:"screeningType,omitempty"`
	QuestionCode       string        `json:"questionCode,omitempty"`
	QuestionDisplay    string        `json:"questionDisplay,omitempty"`
	AllowedAnswers     []string      `json:"allowedAnswers,omitempty"`
	CodeSystemConcepts []CodeConcept `json:"codeSystemConcepts,omitempty"`
}

// ResourcePointer identifies which bundle entry an error belongs to.
type ResourcePointer struct {
	EntryIndex   int    `json:"entryIndex"`
	FullURL      string `json:"fullUrl,omitempty"`
	ResourceType string `json:"resourceType,omitempty"`
	ResourceID   string `json:"resourceId,omitempty"`
}

// PathAnalysis records how far a rule path resolved before failing. It
// distinguishes a missing leaf from a missing ancestor.
type PathAnalysis struct {
	// ParentPathExists is true iff all but the last segment resolved.
	ParentPathExists bool `json:"parentPathExists"`

	// PathMismatchSegment is the name of the first failing segment.
	PathMismatchSegment string `json:"pathMismatchSegment,omitempty"`

	// MismatchDepth is the index of the first failing segment.
	MismatchDepth int `json:"mismatchDepth"`
}

// ValidationError is a single rule violation. Violations are accumulated
// and returned as data; they are never raised as Go errors.
type ValidationError struct {
	Code            ErrorCode        `json:"code"`
	FieldPath       string           `json:"fieldPath,omitempty"`
	Message         string           `json:"message,omitempty"`
	Scope           string           `json:"scope,omitempty"`
	RuleType        RuleKind         `json:"ruleType,omitempty"`
	Rule            *RuleEcho        `json:"rule,omitempty"`
	Context         *ErrorContext    `json:"context,omitempty"`
	ResourcePointer *ResourcePointer `json:"resourcePointer,omitempty"`
	PathAnalysis    *PathAnalysis    `json:"pathAnalysis,omitempty"`
}

// String returns a human-readable representation of the error.
func (e ValidationError) String() string {
	s := string(e.Code) + ": " + e.Message
	if e.FieldPath != "" {
		s += " at " + e.FieldPath
	}
	if e.Scope != "" {
		s += " [" + e.Scope + "]"
	}
	return s
}

// ErrorBuilder provides a fluent API for constructing validation errors.
type ErrorBuilder struct {
	err ValidationError
}

// NewError creates a builder for an error with the given code and kind.
func NewError(code ErrorCode, kind RuleKind) *ErrorBuilder {
	return &ErrorBuilder{err: ValidationError{Code: code, RuleType: kind}}
}

// At sets the field path.
func (b *ErrorBuilder) At(path string) *ErrorBuilder {
	b.err.FieldPath = path
	return b
}

// Message sets the human-readable message.
func (b *ErrorBuilder) Message(msg string) *ErrorBuilder {
	b.err.Message = msg
	return b
}

// Scope sets the validation scope the error belongs to.
func (b *ErrorBuilder) Scope(scope string) *ErrorBuilder {
	b.err.Scope = scope
	return b
}

// Rule attaches the offending rule's relevant fields.
func (b *ErrorBuilder) Rule(echo *RuleEcho) *ErrorBuilder {
	b.err.Rule = echo
	return b
}

// Context attaches domain hints.
func (b *ErrorBuilder) Context(ctx *ErrorContext) *ErrorBuilder {
	b.err.Context = ctx
	return b
}

// Pointer attaches the resource pointer.
func (b *ErrorBuilder) Pointer(p *ResourcePointer) *ErrorBuilder {
	b.err.ResourcePointer = p
	return b
}

// Analysis attaches the path resolution analysis.
func (b *ErrorBuilder) Analysis(a *PathAnalysis) *ErrorBuilder {
	b.err.PathAnalysis = a
	return b
}

// Build returns the constructed error.
func (b *ErrorBuilder) Build() ValidationError {
	return b.err
}
