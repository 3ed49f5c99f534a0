package screeningvalidator

import (
	"sync"
)

// ValidationResult contains the outcome of validating a screening bundle.
// Use Release() to return it to the pool when done for better performance.
type ValidationResult struct {
	// Valid is true if no errors were found
	Valid bool `json:"isValid"`

	// Errors contains all rule violations found
	Errors []ValidationError `json:"errors"`

	// mu protects concurrent access to Errors
	mu sync.Mutex
}

// resultPool holds reusable ValidationResult instances.
var resultPool = sync.Pool{
	New: func() any {
		return &ValidationResult{
			Errors: make([]ValidationError, 0, 16),
		}
	},
}

// AcquireResult gets a ValidationResult from the pool.
// The result starts as valid with no errors.
func AcquireResult() *ValidationResult {
	r := resultPool.Get().(*ValidationResult)
	r.Reset()
	return r
}

// Release returns the ValidationResult to the pool.
// After calling Release, the result should not be used.
func (r *ValidationResult) Release() {
	if r == nil {
		return
	}
	if cap(r.Errors) <= 1024 {
		resultPool.Put(r)
	}
}

// Reset clears the result for reuse.
func (r *ValidationResult) Reset() {
	r.Valid = true
	r.Errors = r.Errors[:0]
}

// AddError appends a rule violation and marks the result invalid.
// This method is thread-safe.
func (r *ValidationResult) AddError(err ValidationError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Errors = append(r.Errors, err)
	r.Valid = false
}

// AddErrors appends multiple rule violations.
// This method is thread-safe.
func (r *ValidationResult) AddErrors(errs []ValidationError) {
	if len(errs) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.Errors = append(r.Errors, errs...)
	r.Valid = false
}

// ErrorCount returns the number of accumulated errors.
func (r *ValidationResult) ErrorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Errors)
}

// ByCode returns the errors carrying the given code.
func (r *ValidationResult) ByCode(code ErrorCode) []ValidationError {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []ValidationError
	for _, e := range r.Errors {
		if e.Code == code {
			out = append(out, e)
		}
	}
	return out
}

// ProcessResult bundles the validation outcome, the flattened projection
// and the structured log trail of a single combined call.
type ProcessResult struct {
	Validation *ValidationResult `json:"validation"`
	Flatten    *FlattenResult    `json:"flatten"`
	Logs       []string          `json:"logs,omitempty"`
}
