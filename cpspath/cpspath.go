package cpspath

import (
	"strconv"
	"strings"
)

// FilterKind identifies the filter variant of a path segment.
type FilterKind int

// Filter variants.
const (
	// FilterNone means the segment selects the property value itself.
	FilterNone FilterKind = iota
	// FilterIndex selects an array element by position.
	FilterIndex
	// FilterWildcard selects all array elements.
	FilterWildcard
	// FilterKeyValue selects array elements whose resolved sub-path key
	// equals a string value.
	FilterKeyValue
)

// Filter selects elements of the array a segment resolves to.
type Filter struct {
	Kind  FilterKind
	Index int
	Key   string
	Value string
}

// Segment is one step of a path: a property name plus an optional filter.
// Raw preserves the original segment text for reporting.
type Segment struct {
	Name   string
	Filter Filter
	Raw    string
}

// String returns the segment in path notation. Key/value filters are
// rendered with their rewritten (post-alias) key.
func (s Segment) String() string {
	switch s.Filter.Kind {
	case FilterIndex:
		return s.Name + "[" + strconv.Itoa(s.Filter.Index) + "]"
	case FilterWildcard:
		return s.Name + "[*]"
	case FilterKeyValue:
		return s.Name + "[" + s.Filter.Key + ":" + s.Filter.Value + "]"
	default:
		return s.Name
	}
}

// questionCodeAlias is a domain shorthand baked into the grammar: metadata
// authors write QuestionCode instead of the nested coding path.
const (
	questionCodeAlias = "QuestionCode"
	questionCodePath  = "code.coding[0].code"
)

// Parse splits a path into segments. Dots inside brackets do not split
// segments. A segment whose bracket content cannot be parsed (unbalanced
// brackets, trailing content after the filter) degrades to a literal
// segment name rather than failing.
func Parse(path string) []Segment {
	if path == "" {
		return nil
	}

	raws := splitSegments(path)
	segs := make([]Segment, 0, len(raws))
	for _, raw := range raws {
		segs = append(segs, parseSegment(raw))
	}
	return segs
}

// splitSegments splits on '.' outside bracket scope.
func splitSegments(path string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(path); i++ {
		switch path[i] {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '.':
			if depth == 0 {
				out = append(out, path[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, path[start:])
	return out
}

func parseSegment(raw string) Segment {
	open := strings.IndexByte(raw, '[')
	if open < 0 {
		return Segment{Name: raw, Raw: raw}
	}

	// The matching close bracket must be the final character.
	depth := 0
	end := -1
	for i := open; i < len(raw); i++ {
		switch raw[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				end = i
			}
		}
	}
	if depth != 0 || end != len(raw)-1 {
		return Segment{Name: raw, Raw: raw}
	}

	name := raw[:open]
	body := raw[open+1 : end]

	if body == "*" {
		return Segment{Name: name, Filter: Filter{Kind: FilterWildcard}, Raw: raw}
	}
	if idx, err := strconv.Atoi(body); err == nil && idx >= 0 {
		return Segment{Name: name, Filter: Filter{Kind: FilterIndex, Index: idx}, Raw: raw}
	}
	if key, value, ok := splitKeyValue(body); ok {
		if key == questionCodeAlias {
			key = questionCodePath
		}
		return Segment{Name: name, Filter: Filter{Kind: FilterKeyValue, Key: key, Value: value}, Raw: raw}
	}

	return Segment{Name: raw, Raw: raw}
}

// splitKeyValue splits a filter body at the first ':' outside bracket
// scope. The key may be a nested path carrying its own index filters.
func splitKeyValue(body string) (key, value string, ok bool) {
	depth := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 {
				return body[:i], body[i+1:], true
			}
		}
	}
	return "", "", false
}

// Resolve evaluates a path against a tree of untyped nodes and returns
// every matching node. It never fails: missing paths yield an empty
// result. Resolution is pure and read-only.
func Resolve(root any, path string) []any {
	segs := Parse(path)
	current := []any{root}
	for _, seg := range segs {
		current = step(current, seg)
		if len(current) == 0 {
			return nil
		}
	}
	return current
}

// step maps every node of the current result set through one segment.
func step(current []any, seg Segment) []any {
	var next []any
	for _, node := range current {
		next = append(next, applySegment(node, seg)...)
	}
	return next
}

func applySegment(node any, seg Segment) []any {
	switch n := node.(type) {
	case map[string]any:
		v, ok := n[seg.Name]
		if !ok {
			return nil
		}
		if seg.Filter.Kind == FilterNone {
			return []any{v}
		}
		arr, ok := v.([]any)
		if !ok {
			return nil
		}
		return applyFilter(arr, seg.Filter)
	case []any:
		// Forgiving navigation: an intermediate array the author did not
		// index fans the segment out across its elements.
		var out []any
		for _, item := range n {
			out = append(out, applySegment(item, seg)...)
		}
		return out
	default:
		return nil
	}
}

func applyFilter(arr []any, f Filter) []any {
	switch f.Kind {
	case FilterIndex:
		if f.Index < 0 || f.Index >= len(arr) {
			return nil
		}
		return []any{arr[f.Index]}
	case FilterWildcard:
		return arr
	case FilterKeyValue:
		var out []any
		for _, elem := range arr {
			if matchKeyValue(elem, f.Key, f.Value) {
				out = append(out, elem)
			}
		}
		return out
	default:
		return nil
	}
}

// matchKeyValue resolves the filter key relative to the candidate element
// and compares every resolved node against the filter value.
func matchKeyValue(elem any, key, value string) bool {
	for _, v := range Resolve(elem, key) {
		if matchValue(v, value) {
			return true
		}
	}
	return false
}

// matchValue compares a resolved node against a filter value: scalars
// directly, objects through their code/system properties, and arrays by
// recursing into their elements.
func matchValue(v any, want string) bool {
	switch t := v.(type) {
	case string:
		return t == want
	case float64, bool:
		return ValueString(t) == want
	case map[string]any:
		if code, ok := t["code"].(string); ok && code == want {
			return true
		}
		if system, ok := t["system"].(string); ok && system == want {
			return true
		}
		return false
	case []any:
		for _, item := range t {
			if matchValue(item, want) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Exists returns true if the path resolves to at least one non-empty node.
func Exists(root any, path string) bool {
	for _, v := range Resolve(root, path) {
		if !IsEmpty(v) {
			return true
		}
	}
	return false
}

// First returns the first resolved node.
func First(root any, path string) (any, bool) {
	vals := Resolve(root, path)
	if len(vals) == 0 {
		return nil, false
	}
	return vals[0], true
}

// FirstString returns the first resolved node rendered as a string, or ""
// when the path does not resolve to a scalar.
func FirstString(root any, path string) string {
	v, ok := First(root, path)
	if !ok {
		return ""
	}
	return ValueString(v)
}

// Strings returns every resolved scalar rendered as a string. Objects and
// arrays are skipped.
func Strings(root any, path string) []string {
	var out []string
	for _, v := range Resolve(root, path) {
		switch v.(type) {
		case map[string]any, []any, nil:
			continue
		default:
			out = append(out, ValueString(v))
		}
	}
	return out
}

// ValueString renders a scalar node as a string. Numbers keep their JSON
// form (no trailing zeros), objects and arrays render as "".
func ValueString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// IsEmpty reports whether a node carries no value: nil, the empty string,
// or an object/array with no members.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	default:
		return false
	}
}
