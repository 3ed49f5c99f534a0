// Package engine provides the metadata-driven validation engine for
// screening bundles.
package engine

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	sv "github.com/gofhir/screening-validator"
	"github.com/gofhir/screening-validator/cpspath"
	"github.com/gofhir/screening-validator/document"
	"github.com/gofhir/screening-validator/extract"
	"github.com/gofhir/screening-validator/metadata"
)

// State tracks the engine's lifecycle across calls.
type State int32

// Engine states.
const (
	StateIdle State = iota
	StateMetadataLoaded
	StateRunning
	StateCompleted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMetadataLoaded:
		return "metadata-loaded"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// ErrMetadataNotLoaded is returned by Validate when no metadata document
// has been loaded.
var ErrMetadataNotLoaded = errors.New("engine: metadata not loaded")

// Engine validates and flattens screening bundles. The loaded metadata is
// immutable and may be shared by concurrent calls; each call parses its
// own document tree. Callers are responsible for serializing metadata
// reloads: a reload replaces the metadata reference and in-flight calls
// complete under the old rules.
type Engine struct {
	options *sv.Options
	loader  *metadata.Loader
	buf     *logBuffer
	log     zerolog.Logger

	mu    sync.Mutex
	state State
	meta  *metadata.Metadata

	// Bounded parallelism for batch validation.
	workerPool     chan struct{}
	workerPoolOnce sync.Once
}

// New creates an Engine with the given options.
func New(opts ...sv.Option) *Engine {
	options := sv.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	buf := newLogBuffer()
	log := zerolog.New(buf).
		Level(zerologLevel(options.LogLevel)).
		With().Timestamp().Str("component", "engine").
		Logger()

	return &Engine{
		options: options,
		loader:  metadata.NewLoader(options.MetadataCacheSize),
		buf:     buf,
		log:     log,
		state:   StateIdle,
	}
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// LoadMetadata parses, validates and installs a rule metadata document.
// Parsed documents are cached by content hash, so reloading identical
// metadata is cheap. A malformed document is the caller's only hard
// failure: the engine keeps its previous metadata.
func (e *Engine) LoadMetadata(data []byte) error {
	m, err := e.loader.Load(data)
	if err != nil {
		e.log.Error().Err(err).Msg("metadata rejected")
		return err
	}

	e.mu.Lock()
	e.meta = m
	e.state = StateMetadataLoaded
	e.mu.Unlock()

	e.log.Info().
		Str("version", m.Version).
		Int("ruleSets", len(m.RuleSets)).
		Msg("metadata loaded")
	return nil
}

// Validate runs every configured rule set against the document and
// returns the accumulated rule violations. Malformed document JSON is
// reported as a single INVALID_JSON error on the result, not as a Go
// error. Validate fails only when no metadata has been loaded.
func (e *Engine) Validate(documentJSON []byte) (*sv.ValidationResult, error) {
	e.mu.Lock()
	meta := e.meta
	if meta == nil {
		e.mu.Unlock()
		return nil, ErrMetadataNotLoaded
	}
	e.state = StateRunning
	e.mu.Unlock()

	result := e.validateBytes(meta, documentJSON)

	e.mu.Lock()
	e.state = StateCompleted
	e.mu.Unlock()
	return result, nil
}

// validateBytes evaluates one document against one metadata snapshot. It
// touches no engine state, so batch validation can run it concurrently.
func (e *Engine) validateBytes(meta *metadata.Metadata, documentJSON []byte) *sv.ValidationResult {
	result := sv.AcquireResult()

	doc, err := document.Parse(documentJSON)
	if err != nil {
		e.log.Error().Err(err).Msg("document rejected")
		result.AddError(sv.NewError(sv.CodeInvalidJSON, "").
			Message("document is not valid JSON: " + err.Error()).
			Build())
		return result
	}

	e.runScopes(meta, doc, result)

	e.log.Info().
		Bool("valid", result.Valid).
		Int("errors", result.ErrorCount()).
		Msg("validation completed")
	return result
}

// runScopes locates each rule set's target resources and evaluates its
// rules. Errors accumulate; one rule never halts the next.
func (e *Engine) runScopes(meta *metadata.Metadata, doc *document.Document, result *sv.ValidationResult) {
	for si := range meta.RuleSets {
		rs := &meta.RuleSets[si]
		targets := MatcherFor(rs).Find(doc)

		e.log.Debug().
			Str("scope", rs.Scope).
			Int("targets", len(targets)).
			Msg("evaluating scope")

		if len(targets) == 0 {
			e.missingScope(rs, result)
			continue
		}

		for _, entry := range targets {
			for ri := range rs.Rules {
				if e.maxErrorsReached(result) {
					return
				}
				errs := e.evalRule(meta, doc, rs, &rs.Rules[ri], entry)
				for _, verr := range errs {
					e.log.Trace().
						Str("scope", rs.Scope).
						Str("rule", string(verr.RuleType)).
						Str("path", verr.FieldPath).
						Str("code", string(verr.Code)).
						Msg("rule violation")
					result.AddError(verr)
				}
			}
		}
	}
}

// missingScope handles a rule set whose target resource is absent: the
// Required kind still fires, attributed to the first Required rule's
// path; other kinds have nothing to validate and are skipped.
func (e *Engine) missingScope(rs *metadata.RuleSet, result *sv.ValidationResult) {
	for ri := range rs.Rules {
		r := &rs.Rules[ri]
		if r.Type != sv.RuleRequired {
			continue
		}
		msg := r.Message
		if msg == "" {
			msg = "no " + rs.ResourceType + " resource found for scope " + rs.Scope
		}
		result.AddError(sv.NewError(sv.CodeMandatoryMissing, sv.RuleRequired).
			At(r.Path).
			Scope(rs.Scope).
			Message(msg).
			Rule(r.Echo()).
			Context(&sv.ErrorContext{ResourceType: rs.ResourceType}).
			Build())
		return
	}
	e.log.Debug().Str("scope", rs.Scope).Msg("scope resource absent, no Required rules to fire")
}

func (e *Engine) maxErrorsReached(result *sv.ValidationResult) bool {
	return e.options.MaxErrors > 0 && result.ErrorCount() >= e.options.MaxErrors
}

// evalRule dispatches a rule to its kind's evaluator.
func (e *Engine) evalRule(meta *metadata.Metadata, doc *document.Document, rs *metadata.RuleSet, r *metadata.Rule, entry *document.Entry) []sv.ValidationError {
	switch r.Type {
	case sv.RuleRequired:
		return e.evalRequired(rs, r, entry)
	case sv.RuleFixedValue:
		return e.evalFixedValue(rs, r, entry)
	case sv.RuleFixedCoding:
		return e.evalFixedCoding(rs, r, entry)
	case sv.RuleAllowedValues:
		return e.evalAllowedValues(rs, r, entry)
	case sv.RuleCodesMaster:
		return e.evalCodesMaster(meta, rs, r, entry)
	case sv.RuleType:
		return e.evalType(rs, r, entry)
	case sv.RuleRegex:
		return e.evalRegex(meta, rs, r, entry)
	case sv.RuleReference:
		return e.evalReference(doc, rs, r, entry)
	case sv.RuleCodeSystem:
		return e.evalCodeSystem(meta, rs, r, entry)
	case sv.RuleFullURLIDMatch:
		return e.evalFullURLIDMatch(rs, r, entry)
	default:
		// Unreachable: unknown kinds are rejected at metadata load.
		return nil
	}
}

// Extract projects the document into flat records. It shares nothing
// with validation and does not require it to have passed. The only
// failure mode is malformed JSON; internal extraction faults degrade to
// partial results plus a log line.
func (e *Engine) Extract(documentJSON []byte) (*sv.FlattenResult, error) {
	doc, err := document.Parse(documentJSON)
	if err != nil {
		e.log.Error().Err(err).Msg("document rejected")
		return nil, err
	}
	return extract.New(e.log).Extract(doc), nil
}

// Process is the combined entry point: it loads metadata, validates and
// flattens one document, and returns both results plus the structured
// log trail captured during the call.
func (e *Engine) Process(documentJSON, metadataJSON []byte) (*sv.ProcessResult, error) {
	e.buf.Reset()

	if err := e.LoadMetadata(metadataJSON); err != nil {
		return nil, err
	}

	result, err := e.Validate(documentJSON)
	if err != nil {
		return nil, err
	}

	out := &sv.ProcessResult{Validation: result}
	if doc, err := document.Parse(documentJSON); err == nil {
		out.Flatten = extract.New(e.log).Extract(doc)
	}
	out.Logs = e.buf.Lines()
	return out, nil
}

// ValidateBatch validates independent documents in parallel, sharing the
// loaded metadata read-only. Results are returned in input order.
func (e *Engine) ValidateBatch(documents [][]byte) ([]*sv.ValidationResult, error) {
	e.mu.Lock()
	meta := e.meta
	e.mu.Unlock()
	if meta == nil {
		return nil, ErrMetadataNotLoaded
	}

	e.workerPoolOnce.Do(func() {
		n := e.options.WorkerCount
		if n <= 0 {
			n = 1
		}
		e.workerPool = make(chan struct{}, n)
	})

	results := make([]*sv.ValidationResult, len(documents))
	var wg sync.WaitGroup
	for i, data := range documents {
		wg.Add(1)
		e.workerPool <- struct{}{}
		go func(i int, data []byte) {
			defer wg.Done()
			defer func() { <-e.workerPool }()
			results[i] = e.validateBytes(meta, data)
		}(i, data)
	}
	wg.Wait()
	return results, nil
}

// Logs returns and clears the captured log trail.
func (e *Engine) Logs() []string {
	return e.buf.Lines()
}

// zerologLevel maps the configured verbosity to a zerolog level.
func zerologLevel(level sv.LogLevel) zerolog.Level {
	switch level {
	case sv.LogLevelDebug:
		return zerolog.DebugLevel
	case sv.LogLevelVerbose:
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

// fieldPath reports a concrete, navigable location for a rule path by
// rewriting its filters to resolved indices against the target resource.
func fieldPath(entry *document.Entry, path string) string {
	return cpspath.ResolveIndexes(entry.Resource, path)
}

// pathAnalysis converts the resolver's analysis of a failing path, or nil
// when the path fully resolves.
func pathAnalysis(entry *document.Entry, path string) *sv.PathAnalysis {
	a := cpspath.Analyze(entry.Resource, path)
	if a == nil {
		return nil
	}
	return &sv.PathAnalysis{
		ParentPathExists:    a.ParentPathExists,
		PathMismatchSegment: a.MismatchSegment,
		MismatchDepth:       a.MismatchDepth,
	}
}

// pointer identifies the entry an error belongs to.
func pointer(entry *document.Entry) *sv.ResourcePointer {
	idx, fullURL, resourceType, resourceID := entry.Pointer()
	return &sv.ResourcePointer{
		EntryIndex:   idx,
		FullURL:      fullURL,
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}
