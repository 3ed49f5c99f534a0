package cpspath

import (
	"testing"
)

func TestResolveIndexes_RewritesFilters(t *testing.T) {
	doc := mustParseJSON(t, `{
		"extension": [
			{"url": "A", "valueString": "1"},
			{"url": "B", "valueString": "2"}
		]
	}`)

	got := ResolveIndexes(doc, "extension[url:B].valueString")
	want := "extension[1].valueString"
	if got != want {
		t.Errorf("ResolveIndexes() = %q; want %q", got, want)
	}
}

func TestResolveIndexes_UnmatchedFilterKeepsNotation(t *testing.T) {
	doc := mustParseJSON(t, `{
		"extension": [{"url": "A", "valueString": "1"}],
		"valueString": "decoy"
	}`)

	// No element matches; the filter notation stays and the context is
	// nulled so the trailing segment cannot resolve against the root.
	got := ResolveIndexes(doc, "extension[url:Z].valueString")
	want := "extension[url:Z].valueString"
	if got != want {
		t.Errorf("ResolveIndexes() = %q; want %q", got, want)
	}
}

func TestResolveIndexes_MissingProperty(t *testing.T) {
	doc := mustParseJSON(t, `{"a":{"b":"v"}}`)

	got := ResolveIndexes(doc, "a.x[url:B].y")
	want := "a.x[url:B].y"
	if got != want {
		t.Errorf("ResolveIndexes() = %q; want %q", got, want)
	}
}

func TestResolveIndexes_ChainedFilters(t *testing.T) {
	doc := mustParseJSON(t, `{
		"entry": [
			{"resource": {"resourceType": "Encounter"}},
			{"resource": {"resourceType": "Patient", "identifier": [
				{"system": "x"}, {"system": "nric", "value": "S1234567D"}
			]}}
		]
	}`)

	got := ResolveIndexes(doc, "entry[resource.resourceType:Patient].resource.identifier[system:nric].value")
	want := "entry[1].resource.identifier[1].value"
	if got != want {
		t.Errorf("ResolveIndexes() = %q; want %q", got, want)
	}
}

func TestAnalyze_FullResolution(t *testing.T) {
	doc := mustParseJSON(t, `{"a":{"b":"v"}}`)

	if got := Analyze(doc, "a.b"); got != nil {
		t.Errorf("Analyze() = %+v; want nil", got)
	}
}

func TestAnalyze_Mismatch(t *testing.T) {
	doc := mustParseJSON(t, `{"a":{"b":{"c":"v"}}}`)

	tests := []struct {
		name       string
		path       string
		wantParent bool
		wantSeg    string
		wantDepth  int
	}{
		{"leaf missing", "a.b.x", true, "x", 2},
		{"ancestor missing", "a.x.c", false, "x", 1},
		{"root missing", "z.b.c", false, "z", 0},
		{"single missing segment", "z", true, "z", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(doc, tt.path)
			if got == nil {
				t.Fatalf("Analyze(%q) = nil; want mismatch", tt.path)
			}
			if got.ParentPathExists != tt.wantParent {
				t.Errorf("ParentPathExists = %v; want %v", got.ParentPathExists, tt.wantParent)
			}
			if got.MismatchSegment != tt.wantSeg {
				t.Errorf("MismatchSegment = %q; want %q", got.MismatchSegment, tt.wantSeg)
			}
			if got.MismatchDepth != tt.wantDepth {
				t.Errorf("MismatchDepth = %d; want %d", got.MismatchDepth, tt.wantDepth)
			}
		})
	}
}
