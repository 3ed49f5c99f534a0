// Package extract projects a screening bundle into flat, typed records.
//
// Extraction is independent of validation and best-effort by contract:
// any internal fault is recovered, logged, and surfaced as a partial
// result rather than an error. The source document is never mutated.
package extract

import (
	"strings"

	"github.com/rs/zerolog"

	sv "github.com/gofhir/screening-validator"
	"github.com/gofhir/screening-validator/cpspath"
	"github.com/gofhir/screening-validator/document"
)

// Extension URL substrings identifying the two location extensions.
const (
	grcURLHint          = "grc"
	constituencyURLHint = "constituency"
)

// Extractor flattens parsed bundles.
type Extractor struct {
	log zerolog.Logger
}

// New creates an Extractor logging through the given logger.
func New(log zerolog.Logger) *Extractor {
	return &Extractor{log: log}
}

// Extract builds the flat projection of a bundle. Each section is
// recovered independently, so a fault in one leaves the others intact.
func (x *Extractor) Extract(doc *document.Document) *sv.FlattenResult {
	res := &sv.FlattenResult{}

	x.section("event", func() { res.Event = x.event(doc) })
	x.section("participant", func() { res.Participant = x.participant(doc) })
	x.section("hearing", func() { res.HearingRaw = x.screening(doc, sv.ScreeningHearing) })
	x.section("oral", func() { res.OralRaw = x.screening(doc, sv.ScreeningOral) })
	x.section("vision", func() { res.VisionRaw = x.screening(doc, sv.ScreeningVision) })

	return res
}

// section runs one extraction step, recovering any panic into a log line.
func (x *Extractor) section(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			x.log.Error().
				Str("section", name).
				Interface("panic", r).
				Msg("extraction fault recovered; section left partial")
		}
	}()
	fn()
}

// event builds the encounter/location/organization composite.
func (x *Extractor) event(doc *document.Document) *sv.EventData {
	enc := doc.FirstOfType("Encounter")
	loc := doc.FirstOfType("Location")
	orgs := doc.ByType("Organization")
	if enc == nil && loc == nil && len(orgs) == 0 {
		return nil
	}

	ev := &sv.EventData{}
	if enc != nil {
		ev.Start = cpspath.FirstString(enc.Resource, "period.start")
		ev.End = cpspath.FirstString(enc.Resource, "period.end")
	}
	if loc != nil {
		ev.Venue = cpspath.FirstString(loc.Resource, "name")
		if ev.Venue == "" {
			ev.Venue = cpspath.FirstString(loc.Resource, "address.line[0]")
		}
		ev.PostalCode = cpspath.FirstString(loc.Resource, "address.postalCode")
		ev.GRC = extensionValue(loc.Resource, grcURLHint)
		ev.Constituency = extensionValue(loc.Resource, constituencyURLHint)
	}
	ev.ProviderName, ev.ClusterName = organizationNames(orgs)
	return ev
}

// extensionValue finds the first extension whose url contains hint,
// preferring its plain string value and falling back to a coded
// concept's code.
func extensionValue(resource map[string]any, hint string) string {
	for _, node := range cpspath.Resolve(resource, "extension[*]") {
		ext, ok := node.(map[string]any)
		if !ok {
			continue
		}
		url, _ := ext["url"].(string)
		if !strings.Contains(strings.ToLower(url), hint) {
			continue
		}
		if v := cpspath.FirstString(ext, "valueString"); v != "" {
			return v
		}
		return cpspath.FirstString(ext, "valueCodeableConcept.coding[0].code")
	}
	return ""
}

// organizationNames picks the provider and cluster organization names.
// Typed matches win; when type information is absent the first and
// second untyped organizations fill the slots positionally, in document
// order. The positional fallback is a documented contract of the feed,
// kept as-is despite its fragility.
func organizationNames(orgs []*document.Entry) (provider, cluster string) {
	var untyped []string
	for _, org := range orgs {
		name := cpspath.FirstString(org.Resource, "name")
		switch strings.ToLower(org.Code) {
		case "prov", "provider":
			if provider == "" {
				provider = name
			}
		case "cluster":
			if cluster == "" {
				cluster = name
			}
		case "":
			untyped = append(untyped, name)
		}
	}
	if provider == "" && len(untyped) > 0 {
		provider = untyped[0]
	}
	if cluster == "" && len(untyped) > 1 {
		cluster = untyped[1]
	}
	return provider, cluster
}

// participant builds the demographic record from the singular patient
// resource.
func (x *Extractor) participant(doc *document.Document) *sv.ParticipantData {
	pat := doc.FirstOfType("Patient")
	if pat == nil {
		return nil
	}

	p := &sv.ParticipantData{
		Gender:    cpspath.FirstString(pat.Resource, "gender"),
		BirthDate: cpspath.FirstString(pat.Resource, "birthDate"),
	}

	for _, node := range cpspath.Resolve(pat.Resource, "identifier[*]") {
		ident, ok := node.(map[string]any)
		if !ok {
			continue
		}
		system, _ := ident["system"].(string)
		if strings.Contains(strings.ToLower(system), "nric") {
			p.NRIC, _ = ident["value"].(string)
			break
		}
	}

	p.Name = cpspath.FirstString(pat.Resource, "name[0].text")
	if p.Name == "" {
		parts := cpspath.Strings(pat.Resource, "name[0].given[*]")
		if family := cpspath.FirstString(pat.Resource, "name[0].family"); family != "" {
			parts = append(parts, family)
		}
		p.Name = strings.Join(parts, " ")
	}

	p.Address = composedAddress(pat.Resource)
	return p
}

// composedAddress joins the first address's lines and appends the postal
// code when present.
func composedAddress(resource map[string]any) string {
	parts := cpspath.Strings(resource, "address[0].line[*]")
	if postal := cpspath.FirstString(resource, "address[0].postalCode"); postal != "" {
		parts = append(parts, postal)
	}
	return strings.Join(parts, ", ")
}

// screening flattens the observation matching the given screening code
// into one item per component.
func (x *Extractor) screening(doc *document.Document, code string) *sv.ScreeningSet {
	entries := doc.ByTypeAndCode("Observation", code)
	if len(entries) == 0 {
		return nil
	}

	set := &sv.ScreeningSet{ScreeningType: code}
	for _, node := range cpspath.Resolve(entries[0].Resource, "component[*]") {
		comp, ok := node.(map[string]any)
		if !ok {
			continue
		}
		item := sv.ObservationItem{
			Question: sv.QuestionRef{
				Code:    cpspath.FirstString(comp, "code.coding[0].code"),
				Display: cpspath.FirstString(comp, "code.coding[0].display"),
			},
			Values: splitValues(cpspath.FirstString(comp, "valueString")),
		}
		set.Items = append(set.Items, item)
	}
	return set
}

// splitValues splits a pipe-delimited answer into trimmed values,
// dropping empty segments; an undelimited answer yields a single value.
func splitValues(answer string) []string {
	if answer == "" {
		return nil
	}
	if !strings.Contains(answer, "|") {
		return []string{answer}
	}
	parts := strings.Split(answer, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
