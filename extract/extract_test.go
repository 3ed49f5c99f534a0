package extract

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	sv "github.com/gofhir/screening-validator"
	"github.com/gofhir/screening-validator/document"
)

const fullBundle = `{
	"resourceType": "Bundle",
	"type": "transaction",
	"entry": [
		{
			"fullUrl": "urn:uuid:5a1f6c2e-0b7d-4c3a-9e8f-1d2c3b4a5e6f",
			"resource": {
				"resourceType": "Encounter",
				"id": "5a1f6c2e-0b7d-4c3a-9e8f-1d2c3b4a5e6f",
				"period": {"start": "2026-03-14T09:00:00Z", "end": "2026-03-14T12:00:00Z"}
			}
		},
		{
			"resource": {
				"resourceType": "Location",
				"name": "Bukit Merah CC Hall",
				"address": {"line": ["10 Jalan Bukit Merah"], "postalCode": "159462"},
				"extension": [
					{"url": "https://example.org/fhir/StructureDefinition/location-grc", "valueString": "Tanjong Pagar GRC"},
					{"url": "https://example.org/fhir/StructureDefinition/location-constituency",
						"valueCodeableConcept": {"coding": [{"code": "TP-01"}]}}
				]
			}
		},
		{
			"resource": {
				"resourceType": "Organization",
				"name": "Acme Screening Services",
				"type": [{"coding": [{"code": "prov"}]}]
			}
		},
		{
			"resource": {
				"resourceType": "Organization",
				"name": "Central Health Cluster",
				"type": [{"coding": [{"code": "cluster"}]}]
			}
		},
		{
			"resource": {
				"resourceType": "Patient",
				"identifier": [
					{"system": "https://example.org/mrn", "value": "MRN-100"},
					{"system": "https://example.org/identifier/NRIC", "value": "S1234567D"}
				],
				"name": [{"given": ["Mei", "Ling"], "family": "Tan"}],
				"gender": "female",
				"birthDate": "1954-07-21",
				"address": [{"line": ["Blk 51 Telok Blangah", "#04-123"], "postalCode": "100051"}]
			}
		},
		{
			"resource": {
				"resourceType": "Observation",
				"code": {"coding": [{"code": "HS"}]},
				"component": [
					{"code": {"coding": [{"code": "SQ-L2H9-00000001", "display": "Hearing difficulty"}]},
						"valueString": "Yes"}
				]
			}
		},
		{
			"resource": {
				"resourceType": "Observation",
				"code": {"coding": [{"code": "OS"}]},
				"component": [
					{"code": {"coding": [{"code": "SQ-L2O4-00000002", "display": "Denture issues"}]},
						"valueString": "Loose denture | Gum pain"}
				]
			}
		},
		{
			"resource": {
				"resourceType": "Observation",
				"code": {"coding": [{"code": "VS"}]},
				"component": [
					{"code": {"coding": [{"code": "SQ-L2V1-00000003", "display": "Wears glasses"}]},
						"valueString": "No"}
				]
			}
		}
	]
}`

func parseBundle(t *testing.T, data string) *document.Document {
	t.Helper()
	doc, err := document.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func newExtractor() *Extractor {
	return New(zerolog.Nop())
}

func TestExtractFullBundle(t *testing.T) {
	doc := parseBundle(t, fullBundle)
	res := newExtractor().Extract(doc)

	if res.Event == nil {
		t.Fatal("Event = nil, want populated")
	}
	if res.Participant == nil {
		t.Fatal("Participant = nil, want populated")
	}
	for _, tt := range []struct {
		name string
		set  *sv.ScreeningSet
		code string
	}{
		{"hearing", res.HearingRaw, sv.ScreeningHearing},
		{"oral", res.OralRaw, sv.ScreeningOral},
		{"vision", res.VisionRaw, sv.ScreeningVision},
	} {
		if tt.set == nil {
			t.Errorf("%s set = nil, want populated", tt.name)
			continue
		}
		if tt.set.ScreeningType != tt.code {
			t.Errorf("%s ScreeningType = %q, want %q", tt.name, tt.set.ScreeningType, tt.code)
		}
		if len(tt.set.Items) != 1 {
			t.Errorf("%s items = %d, want 1", tt.name, len(tt.set.Items))
		}
	}
}

func TestExtractEvent(t *testing.T) {
	doc := parseBundle(t, fullBundle)
	ev := newExtractor().Extract(doc).Event

	want := &sv.EventData{
		Start:        "2026-03-14T09:00:00Z",
		End:          "2026-03-14T12:00:00Z",
		Venue:        "Bukit Merah CC Hall",
		PostalCode:   "159462",
		GRC:          "Tanjong Pagar GRC",
		Constituency: "TP-01",
		ProviderName: "Acme Screening Services",
		ClusterName:  "Central Health Cluster",
	}
	if !reflect.DeepEqual(ev, want) {
		t.Errorf("Event = %+v, want %+v", ev, want)
	}
}

func TestExtractParticipant(t *testing.T) {
	doc := parseBundle(t, fullBundle)
	p := newExtractor().Extract(doc).Participant

	want := &sv.ParticipantData{
		NRIC:      "S1234567D",
		Name:      "Mei Ling Tan",
		Gender:    "female",
		BirthDate: "1954-07-21",
		Address:   "Blk 51 Telok Blangah, #04-123, 100051",
	}
	if !reflect.DeepEqual(p, want) {
		t.Errorf("Participant = %+v, want %+v", p, want)
	}
}

func TestExtractPipeDelimitedValues(t *testing.T) {
	doc := parseBundle(t, fullBundle)
	set := newExtractor().Extract(doc).OralRaw

	if set == nil || len(set.Items) != 1 {
		t.Fatalf("oral set = %+v, want one item", set)
	}
	got := set.Items[0].Values
	want := []string{"Loose denture", "Gum pain"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Values = %v, want %v", got, want)
	}
}

func TestExtractNameTextPreferred(t *testing.T) {
	doc := parseBundle(t, `{
		"resourceType": "Bundle",
		"entry": [{"resource": {
			"resourceType": "Patient",
			"name": [{"text": "Tan Mei Ling", "given": ["Mei"], "family": "Tan"}]
		}}]
	}`)
	p := newExtractor().Extract(doc).Participant
	if p == nil || p.Name != "Tan Mei Ling" {
		t.Errorf("Name = %+v, want text form preferred", p)
	}
}

func TestExtractVenueFallsBackToAddressLine(t *testing.T) {
	doc := parseBundle(t, `{
		"resourceType": "Bundle",
		"entry": [{"resource": {
			"resourceType": "Location",
			"address": {"line": ["10 Jalan Bukit Merah"], "postalCode": "159462"}
		}}]
	}`)
	ev := newExtractor().Extract(doc).Event
	if ev == nil || ev.Venue != "10 Jalan Bukit Merah" {
		t.Errorf("Event = %+v, want venue from address line", ev)
	}
}

func TestExtractUntypedOrganizationsPositional(t *testing.T) {
	doc := parseBundle(t, `{
		"resourceType": "Bundle",
		"entry": [
			{"resource": {"resourceType": "Organization", "name": "First Org"}},
			{"resource": {"resourceType": "Organization", "name": "Second Org"}}
		]
	}`)
	ev := newExtractor().Extract(doc).Event
	if ev == nil {
		t.Fatal("Event = nil")
	}
	if ev.ProviderName != "First Org" {
		t.Errorf("ProviderName = %q, want %q", ev.ProviderName, "First Org")
	}
	if ev.ClusterName != "Second Org" {
		t.Errorf("ClusterName = %q, want %q", ev.ClusterName, "Second Org")
	}
}

func TestExtractEmptyBundle(t *testing.T) {
	doc := parseBundle(t, `{"resourceType": "Bundle", "entry": []}`)
	res := newExtractor().Extract(doc)

	if res.Event != nil || res.Participant != nil {
		t.Errorf("Extract() = %+v, want all nil sections", res)
	}
	if res.HearingRaw != nil || res.OralRaw != nil || res.VisionRaw != nil {
		t.Errorf("Extract() = %+v, want nil screening sets", res)
	}
}

func TestExtractDoesNotMutateDocument(t *testing.T) {
	doc := parseBundle(t, fullBundle)

	before, err := json.Marshal(doc.Root())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	newExtractor().Extract(doc)
	after, err := json.Marshal(doc.Root())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	if string(before) != string(after) {
		t.Error("Extract() mutated the document tree")
	}
}

func TestSplitValues(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   []string
	}{
		{"empty", "", nil},
		{"single", "Yes", []string{"Yes"}},
		{"multi", "A | B|C", []string{"A", "B", "C"}},
		{"trailing delimiter", "A|", []string{"A"}},
		{"whitespace only segment", "A| |B", []string{"A", "B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitValues(tt.answer); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitValues(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}
