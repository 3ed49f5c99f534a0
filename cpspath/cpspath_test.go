package cpspath

import (
	"encoding/json"
	"reflect"
	"testing"
)

func mustParseJSON(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return m
}

func TestParse_Segments(t *testing.T) {
	tests := []struct {
		name string
		path string
		want []Segment
	}{
		{
			name: "plain names",
			path: "a.b.c",
			want: []Segment{
				{Name: "a", Raw: "a"},
				{Name: "b", Raw: "b"},
				{Name: "c", Raw: "c"},
			},
		},
		{
			name: "index filter",
			path: "coding[0].code",
			want: []Segment{
				{Name: "coding", Filter: Filter{Kind: FilterIndex, Index: 0}, Raw: "coding[0]"},
				{Name: "code", Raw: "code"},
			},
		},
		{
			name: "wildcard filter",
			path: "entry[*]",
			want: []Segment{
				{Name: "entry", Filter: Filter{Kind: FilterWildcard}, Raw: "entry[*]"},
			},
		},
		{
			name: "key value filter",
			path: "extension[url:B]",
			want: []Segment{
				{Name: "extension", Filter: Filter{Kind: FilterKeyValue, Key: "url", Value: "B"}, Raw: "extension[url:B]"},
			},
		},
		{
			name: "dots inside brackets do not split",
			path: "entry[resource.resourceType:Patient].resource",
			want: []Segment{
				{Name: "entry", Filter: Filter{Kind: FilterKeyValue, Key: "resource.resourceType", Value: "Patient"}, Raw: "entry[resource.resourceType:Patient]"},
				{Name: "resource", Raw: "resource"},
			},
		},
		{
			name: "nested key with its own index filter",
			path: "entry[code.coding[0].code:HS]",
			want: []Segment{
				{Name: "entry", Filter: Filter{Kind: FilterKeyValue, Key: "code.coding[0].code", Value: "HS"}, Raw: "entry[code.coding[0].code:HS]"},
			},
		},
		{
			name: "QuestionCode alias rewrites to nested coding path",
			path: "component[QuestionCode:SQ-L2H9-00000001]",
			want: []Segment{
				{Name: "component", Filter: Filter{Kind: FilterKeyValue, Key: "code.coding[0].code", Value: "SQ-L2H9-00000001"}, Raw: "component[QuestionCode:SQ-L2H9-00000001]"},
			},
		},
		{
			name: "unbalanced bracket degrades to literal",
			path: "a[0.b",
			want: []Segment{
				{Name: "a[0.b", Raw: "a[0.b"},
			},
		},
		{
			name: "trailing content after filter degrades to literal",
			path: "a[0]b",
			want: []Segment{
				{Name: "a[0]b", Raw: "a[0]b"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.path)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v; want %+v", tt.path, got, tt.want)
			}
		})
	}
}

func TestResolve_KeyValueFilter(t *testing.T) {
	doc := mustParseJSON(t, `{"extension":[{"url":"A","v":1},{"url":"B","v":2}]}`)

	got := Resolve(doc, "extension[url:B].v")
	if len(got) != 1 {
		t.Fatalf("Resolve() returned %d nodes; want 1", len(got))
	}
	if got[0] != float64(2) {
		t.Errorf("Resolve() = %v; want 2", got[0])
	}
}

func TestResolve_OutOfRangeIndex(t *testing.T) {
	doc := mustParseJSON(t, `{"a":{"b":[1,2,3]}}`)

	if got := Resolve(doc, "a.b[5]"); len(got) != 0 {
		t.Errorf("Resolve() = %v; want empty", got)
	}
}

func TestResolve_Wildcard(t *testing.T) {
	doc := mustParseJSON(t, `{"entry":[{"id":"x"},{"id":"y"}]}`)

	got := Strings(doc, "entry[*].id")
	want := []string{"x", "y"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Strings() = %v; want %v", got, want)
	}
}

func TestResolve_ForgivingArrayFanOut(t *testing.T) {
	// name is an array the path does not index; the segment applies to
	// each element and results concatenate.
	doc := mustParseJSON(t, `{"name":[{"family":"Tan"},{"family":"Lee"}]}`)

	got := Strings(doc, "name.family")
	want := []string{"Tan", "Lee"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Strings() = %v; want %v", got, want)
	}
}

func TestResolve_NoFilterAtMostOneNode(t *testing.T) {
	doc := mustParseJSON(t, `{"a":{"b":{"c":"v"}}}`)

	first := Resolve(doc, "a.b.c")
	second := Resolve(doc, "a.b.c")
	if len(first) > 1 {
		t.Errorf("filter-free path resolved %d nodes; want at most 1", len(first))
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Resolve() not idempotent: %v vs %v", first, second)
	}
}

func TestResolve_MissingPath(t *testing.T) {
	doc := mustParseJSON(t, `{"a":{"b":1}}`)

	tests := []string{"a.x", "x", "a.b.c", "a[0]", "a.b[key:v]"}
	for _, path := range tests {
		if got := Resolve(doc, path); len(got) != 0 {
			t.Errorf("Resolve(%q) = %v; want empty", path, got)
		}
	}
}

func TestResolve_ObjectValueMatching(t *testing.T) {
	doc := mustParseJSON(t, `{
		"entry": [
			{"code": {"code": "HS", "system": "urn:s1"}, "v": "hearing"},
			{"code": {"code": "VS", "system": "urn:s2"}, "v": "vision"}
		]
	}`)

	if got := FirstString(doc, "entry[code:VS].v"); got != "vision" {
		t.Errorf("code property match = %q; want %q", got, "vision")
	}
	if got := FirstString(doc, "entry[code:urn:s1].v"); got != "hearing" {
		t.Errorf("system property match = %q; want %q", got, "hearing")
	}
}

func TestResolve_NestedArrayValueMatching(t *testing.T) {
	doc := mustParseJSON(t, `{
		"entry": [
			{"code": {"coding": [{"code": "OS"}]}, "v": "oral"}
		]
	}`)

	if got := FirstString(doc, "entry[code.coding.code:OS].v"); got != "oral" {
		t.Errorf("nested array match = %q; want %q", got, "oral")
	}
}

func TestExists(t *testing.T) {
	doc := mustParseJSON(t, `{"a":"x","b":"","c":[],"d":{},"e":null,"f":0,"g":false}`)

	tests := []struct {
		path string
		want bool
	}{
		{"a", true},
		{"b", false},
		{"c", false},
		{"d", false},
		{"e", false},
		{"f", true},
		{"g", true},
		{"missing", false},
	}
	for _, tt := range tests {
		if got := Exists(doc, tt.path); got != tt.want {
			t.Errorf("Exists(%q) = %v; want %v", tt.path, got, tt.want)
		}
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"s", "s"},
		{float64(2), "2"},
		{float64(2.5), "2.5"},
		{true, "true"},
		{nil, ""},
		{map[string]any{}, ""},
	}
	for _, tt := range tests {
		if got := ValueString(tt.in); got != tt.want {
			t.Errorf("ValueString(%v) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
