// Package main implements the screening-validator CLI tool.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	sv "github.com/gofhir/screening-validator"
	"github.com/gofhir/screening-validator/engine"
)

const usage = `screening-validator - Clinical Screening Bundle Validator

Usage:
  screening-validator -metadata rules.json [options] <file>...
  screening-validator -metadata rules.json [options] -   (read from stdin)
  cat bundle.json | screening-validator -metadata rules.json -

Examples:
  screening-validator -metadata rules.json bundle.json
  screening-validator -metadata rules.json -output json bundle.json
  screening-validator -metadata rules.json -flatten bundle.json
  screening-validator -metadata rules.json *.json

Options:
`

// OutputFormat specifies the output format.
type OutputFormat string

// Output format constants.
const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// Config holds CLI configuration
type Config struct {
	MetadataPath  string
	Output        OutputFormat
	StrictDisplay bool
	LogLevel      string
	Flatten       bool
	Quiet         bool
	ShowVersion   bool
	Help          bool
	Files         []string
}

// BundleOutput represents the JSON output structure for one bundle.
type BundleOutput struct {
	Bundle   string               `json:"bundle"`
	Valid    bool                 `json:"valid"`
	Errors   []sv.ValidationError `json:"errors,omitempty"`
	Flatten  *sv.FlattenResult    `json:"flatten,omitempty"`
	Duration string               `json:"duration"`
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("screening-validator v%s\n", sv.Version)
		os.Exit(0)
	}

	if config.Help || len(config.Files) == 0 || config.MetadataPath == "" {
		flag.Usage()
		os.Exit(0)
	}

	os.Exit(run(config))
}

func parseFlags() *Config {
	config := &Config{Output: OutputText}

	var output string
	flag.StringVar(&config.MetadataPath, "metadata", "", "Rule metadata JSON file (required)")
	flag.StringVar(&output, "output", "text", "Output format: text, json")
	flag.BoolVar(&config.StrictDisplay, "strict-display", false, "Report question display mismatches as errors")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log verbosity: info, debug, verbose")
	flag.BoolVar(&config.Flatten, "flatten", false, "Include the flattened projection in the output")
	flag.BoolVar(&config.Quiet, "quiet", false, "Suppress progress messages")
	flag.BoolVar(&config.ShowVersion, "v", false, "Show version")
	flag.BoolVar(&config.Help, "help", false, "Show help")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}

	flag.Parse()

	if strings.ToLower(output) == "json" {
		config.Output = OutputJSON
	}

	config.Files = flag.Args()
	return config
}

func run(config *Config) int {
	metadataJSON, err := os.ReadFile(config.MetadataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading metadata: %v\n", err)
		return 1
	}

	e := engine.New(
		sv.WithStrictDisplayMatch(config.StrictDisplay),
		sv.WithLogLevel(sv.LogLevel(config.LogLevel)),
	)
	if err := e.LoadMetadata(metadataJSON); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid metadata: %v\n", err)
		return 1
	}

	if !config.Quiet {
		fmt.Fprintf(os.Stderr, "Metadata loaded. Processing %d input(s)...\n\n", len(config.Files))
	}

	hasErrors := false
	outputs := make([]BundleOutput, 0, len(config.Files))

	for _, file := range config.Files {
		if file == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
				hasErrors = true
				continue
			}
			output, bad := validateData(e, data, "stdin", config)
			outputs = append(outputs, output)
			hasErrors = hasErrors || bad
			continue
		}

		matches, globErr := filepath.Glob(file)
		if globErr != nil {
			fmt.Fprintf(os.Stderr, "Error with pattern '%s': %v\n", file, globErr)
			hasErrors = true
			continue
		}
		if len(matches) == 0 {
			fmt.Fprintf(os.Stderr, "No files match pattern: %s\n", file)
			hasErrors = true
			continue
		}

		for _, match := range matches {
			output, bad := validateFile(e, match, config)
			outputs = append(outputs, output)
			hasErrors = hasErrors || bad
		}
	}

	if config.Output == OutputJSON {
		jsonOutput, _ := json.MarshalIndent(outputs, "", "  ")
		fmt.Println(string(jsonOutput))
	}

	if hasErrors {
		return 1
	}
	return 0
}

func validateFile(e *engine.Engine, path string, config *Config) (BundleOutput, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if config.Output == OutputText {
			fmt.Printf("Error reading %s: %v\n", path, err)
		}
		return BundleOutput{Bundle: path, Valid: false}, true
	}
	return validateData(e, data, path, config)
}

func validateData(e *engine.Engine, data []byte, name string, config *Config) (BundleOutput, bool) {
	startTime := time.Now()

	result, err := e.Validate(data)
	duration := time.Since(startTime)

	if err != nil {
		if config.Output == OutputText {
			fmt.Printf("Error validating %s: %v\n", name, err)
		}
		return BundleOutput{Bundle: name, Valid: false, Duration: duration.String()}, true
	}

	output := BundleOutput{
		Bundle:   name,
		Valid:    result.Valid,
		Errors:   result.Errors,
		Duration: duration.Round(time.Microsecond).String(),
	}

	if config.Flatten {
		if flat, err := e.Extract(data); err == nil {
			output.Flatten = flat
		}
	}

	if config.Output == OutputText {
		printTextResult(name, result, duration)
	}

	return output, !result.Valid
}

func printTextResult(name string, result *sv.ValidationResult, duration time.Duration) {
	status := "VALID"
	if !result.Valid {
		status = "INVALID"
	}

	fmt.Printf("== %s ==\n", name)
	fmt.Printf("Status: %s\n", status)
	fmt.Printf("Errors: %d\n", result.ErrorCount())
	fmt.Printf("Duration: %s\n", duration.Round(time.Microsecond))

	if len(result.Errors) > 0 {
		fmt.Println("\nErrors:")
		for _, verr := range result.Errors {
			location := ""
			if verr.FieldPath != "" {
				location = fmt.Sprintf(" @ %s", verr.FieldPath)
			}
			scope := ""
			if verr.Scope != "" {
				scope = fmt.Sprintf(" (%s)", verr.Scope)
			}
			fmt.Printf("  [%s] %s%s%s\n", verr.Code, verr.Message, location, scope)
		}
	}

	fmt.Println()
}
