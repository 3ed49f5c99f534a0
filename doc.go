// Package screeningvalidator validates and flattens clinical screening
// bundles against externally supplied, versioned rule metadata.
//
// A screening bundle is a collection of typed entries describing a care
// encounter, a participant, a venue and three screening observations
// (hearing, oral and vision). The engine evaluates metadata-driven rules
// against the bundle and projects it into flat, typed records for
// downstream consumption.
//
// # Quick Start
//
//	import (
//	    sv "github.com/gofhir/screening-validator"
//	    "github.com/gofhir/screening-validator/engine"
//	)
//
//	eng := engine.New(sv.WithStrictDisplayMatch(true))
//	if err := eng.LoadMetadata(metadataJSON); err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := eng.Validate(bundleJSON)
//	if err == nil && !result.Valid {
//	    for _, e := range result.Errors {
//	        fmt.Println(e.Code, e.FieldPath, e.Message)
//	    }
//	}
//
//	flat, _ := eng.Extract(bundleJSON)
//
// # Components
//
// Validation is driven by three cooperating pieces:
//
//   - cpspath: a small path expression language over untyped JSON trees,
//     with index, wildcard and key/value filters
//   - metadata: the rule model and codes master, validated exhaustively
//     at load time so malformed rules never reach evaluation
//   - engine/extract: the rule interpreter and the flattening pass
//
// Rule violations are returned as data, never as Go errors; the only hard
// failures a caller sees are malformed metadata and a missing metadata
// load. Malformed document JSON is reported as a single structured
// INVALID_JSON error on the result.
package screeningvalidator
