package cpspath

import (
	"strconv"
	"strings"
)

// ResolveIndexes rewrites key/value filters in a path to the numeric
// indices they resolve to against the given document, producing a
// concrete, navigable location for reporting. Segments whose filter finds
// no match keep their original filter notation, and the walk's context is
// nulled so later segments cannot spuriously resolve.
func ResolveIndexes(root any, path string) string {
	segs := Parse(path)
	if len(segs) == 0 {
		return path
	}

	out := make([]string, 0, len(segs))
	ctx := root
	for _, seg := range segs {
		if ctx == nil {
			out = append(out, seg.Raw)
			continue
		}

		obj, ok := ctx.(map[string]any)
		if !ok {
			out = append(out, seg.Raw)
			ctx = nil
			continue
		}
		v, ok := obj[seg.Name]
		if !ok {
			out = append(out, seg.Raw)
			ctx = nil
			continue
		}

		switch seg.Filter.Kind {
		case FilterNone:
			out = append(out, seg.Name)
			ctx = v
		case FilterIndex:
			arr, ok := v.([]any)
			if !ok || seg.Filter.Index >= len(arr) {
				out = append(out, seg.Raw)
				ctx = nil
				continue
			}
			out = append(out, seg.Raw)
			ctx = arr[seg.Filter.Index]
		case FilterKeyValue:
			arr, ok := v.([]any)
			if !ok {
				out = append(out, seg.Raw)
				ctx = nil
				continue
			}
			idx := -1
			for i, elem := range arr {
				if matchKeyValue(elem, seg.Filter.Key, seg.Filter.Value) {
					idx = i
					break
				}
			}
			if idx < 0 {
				out = append(out, seg.Raw)
				ctx = nil
				continue
			}
			out = append(out, seg.Name+"["+strconv.Itoa(idx)+"]")
			ctx = arr[idx]
		default: // wildcard selects no single element to descend into
			out = append(out, seg.Raw)
			ctx = nil
		}
	}

	return strings.Join(out, ".")
}

// Analysis records where a path stopped resolving.
type Analysis struct {
	// ParentPathExists is true iff all but the last segment resolved.
	ParentPathExists bool

	// MismatchSegment is the name of the first failing segment.
	MismatchSegment string

	// MismatchDepth is the index of the first failing segment.
	MismatchDepth int
}

// Analyze resolves a path segment by segment and reports the first
// failure. It returns nil when the path fully resolves.
func Analyze(root any, path string) *Analysis {
	segs := Parse(path)
	current := []any{root}
	for i, seg := range segs {
		current = step(current, seg)
		if len(current) == 0 {
			return &Analysis{
				ParentPathExists: i == len(segs)-1,
				MismatchSegment:  seg.Name,
				MismatchDepth:    i,
			}
		}
	}
	return nil
}
