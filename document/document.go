// Package document parses a screening bundle into an untyped node tree
// and indexes its entries for scope lookup and extraction.
package document

import (
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"

	"github.com/gofhir/screening-validator/cpspath"
)

// Discriminator paths per resource type. Observations share a resource
// type and are told apart by screening code; Organizations by their type
// coding.
const (
	observationCodePath  = "code.coding[0].code"
	organizationCodePath = "type[0].coding[0].code"
)

// Entry is one indexed bundle entry.
type Entry struct {
	// Index is the entry's position in the bundle.
	Index int

	// FullURL is the entry's fullUrl, if present.
	FullURL string

	// ResourceType is the contained resource's type.
	ResourceType string

	// ResourceID is the contained resource's id, if present.
	ResourceID string

	// Resource is the contained resource node.
	Resource map[string]any

	// Code is the resource's discriminator code, if its type has one.
	Code string
}

// Pointer identifies the entry for error reporting.
func (e *Entry) Pointer() (entryIndex int, fullURL, resourceType, resourceID string) {
	return e.Index, e.FullURL, e.ResourceType, e.ResourceID
}

// Document is a parsed, indexed screening bundle. The node tree is
// immutable during a validation/extraction pass; Document performs no
// writes after Parse.
type Document struct {
	// Type is the bundle's top-level resourceType.
	Type string

	root    map[string]any
	entries []Entry
	byType  map[string][]*Entry
	byCode  map[string][]*Entry // resourceType "|" discriminator code
	byURL   map[string]*Entry
}

// Parse decodes bundle JSON and builds the entry indexes. It is the only
// operation in the package that can fail, and only on malformed JSON.
func Parse(data []byte) (*Document, error) {
	// Cheap shape guard before the full decode: the payload must be a
	// JSON object. jsonparser checks this without allocating the tree.
	if _, dt, _, err := jsonparser.Get(data); err != nil || dt != jsonparser.Object {
		if err == nil {
			err = fmt.Errorf("top-level value is %s, want object", dt)
		}
		return nil, fmt.Errorf("parse document: %w", err)
	}
	docType, _ := jsonparser.GetString(data, "resourceType")

	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	d := &Document{
		Type:   docType,
		root:   root,
		byType: make(map[string][]*Entry),
		byCode: make(map[string][]*Entry),
		byURL:  make(map[string]*Entry),
	}
	d.index()
	return d, nil
}

// index walks the entry list once, recording order and building the
// type and type+code lookups.
func (d *Document) index() {
	entries, _ := d.root["entry"].([]any)
	d.entries = make([]Entry, 0, len(entries))

	for i, raw := range entries {
		obj, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		e := Entry{Index: i}
		e.FullURL, _ = obj["fullUrl"].(string)
		e.Resource, _ = obj["resource"].(map[string]any)
		if e.Resource != nil {
			e.ResourceType, _ = e.Resource["resourceType"].(string)
			e.ResourceID, _ = e.Resource["id"].(string)
			e.Code = discriminatorCode(e.ResourceType, e.Resource)
		}
		d.entries = append(d.entries, e)
	}

	for i := range d.entries {
		e := &d.entries[i]
		if e.FullURL != "" {
			d.byURL[e.FullURL] = e
		}
		if e.ResourceType == "" {
			continue
		}
		d.byType[e.ResourceType] = append(d.byType[e.ResourceType], e)
		if e.Code != "" {
			key := e.ResourceType + "|" + e.Code
			d.byCode[key] = append(d.byCode[key], e)
		}
	}
}

// discriminatorCode reads the secondary code that distinguishes same-typed
// entries. Only Observation and Organization carry one.
func discriminatorCode(resourceType string, resource map[string]any) string {
	switch resourceType {
	case "Observation":
		return cpspath.FirstString(resource, observationCodePath)
	case "Organization":
		return cpspath.FirstString(resource, organizationCodePath)
	default:
		return ""
	}
}

// Root returns the bundle's node tree.
func (d *Document) Root() map[string]any {
	return d.root
}

// Entries returns all indexed entries in bundle order.
func (d *Document) Entries() []Entry {
	return d.entries
}

// ByType returns the entries holding resources of the given type, in
// bundle order.
func (d *Document) ByType(resourceType string) []*Entry {
	return d.byType[resourceType]
}

// FirstOfType returns the first entry of the given resource type.
func (d *Document) FirstOfType(resourceType string) *Entry {
	if es := d.byType[resourceType]; len(es) > 0 {
		return es[0]
	}
	return nil
}

// ByTypeAndCode returns the entries matching both resource type and
// discriminator code.
func (d *Document) ByTypeAndCode(resourceType, code string) []*Entry {
	return d.byCode[resourceType+"|"+code]
}

// EntryByFullURL returns the entry with the given fullUrl, or nil.
func (d *Document) EntryByFullURL(fullURL string) *Entry {
	return d.byURL[fullURL]
}

// HasResource reports whether the bundle holds a resource of the given
// type. When code is non-empty the resource's discriminator must match it
// too; the first match wins.
func (d *Document) HasResource(resourceType, code string) bool {
	for _, e := range d.byType[resourceType] {
		if code == "" || e.Code == code {
			return true
		}
	}
	return false
}
