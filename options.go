package screeningvalidator

import (
	"runtime"
)

// LogLevel controls the verbosity of the structured log trail. It affects
// observability only, never correctness.
type LogLevel string

// Supported log levels.
const (
	LogLevelInfo    LogLevel = "info"
	LogLevelDebug   LogLevel = "debug"
	LogLevelVerbose LogLevel = "verbose"
)

// Option configures the engine.
type Option func(*Options)

// Options holds all configuration for the engine.
type Options struct {
	// StrictDisplayMatch reports codes-master display mismatches as
	// errors instead of only logging them.
	StrictDisplayMatch bool

	// LogLevel controls log trail verbosity.
	LogLevel LogLevel

	// RegexDefaultCode is assigned to Regex rule violations when the
	// metadata omits an error code.
	RegexDefaultCode ErrorCode

	// MaxErrors stops rule evaluation after this many errors.
	// 0 means unlimited (full-error-set semantics).
	MaxErrors int

	// MetadataCacheSize bounds the content-hash cache of parsed
	// metadata documents.
	MetadataCacheSize int

	// WorkerCount bounds batch validation parallelism.
	WorkerCount int
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		StrictDisplayMatch: false,
		LogLevel:           LogLevelInfo,
		RegexDefaultCode:   CodeRegexMismatch,
		MaxErrors:          0, // unlimited
		MetadataCacheSize:  16,
		WorkerCount:        runtime.NumCPU(),
	}
}

// WithStrictDisplayMatch reports question display mismatches as errors.
func WithStrictDisplayMatch(enable bool) Option {
	return func(o *Options) {
		o.StrictDisplayMatch = enable
	}
}

// WithLogLevel sets the log trail verbosity.
func WithLogLevel(level LogLevel) Option {
	return func(o *Options) {
		o.LogLevel = level
	}
}

// WithRegexDefaultCode sets the error code assigned to Regex violations
// when the rule definition omits one.
func WithRegexDefaultCode(code ErrorCode) Option {
	return func(o *Options) {
		o.RegexDefaultCode = code
	}
}

// WithMaxErrors limits the number of accumulated errors. 0 is unlimited.
func WithMaxErrors(n int) Option {
	return func(o *Options) {
		o.MaxErrors = n
	}
}

// WithMetadataCacheSize bounds the parsed-metadata cache.
func WithMetadataCacheSize(n int) Option {
	return func(o *Options) {
		o.MetadataCacheSize = n
	}
}

// WithWorkerCount bounds batch validation parallelism.
func WithWorkerCount(n int) Option {
	return func(o *Options) {
		o.WorkerCount = n
	}
}
