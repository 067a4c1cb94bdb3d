package section

import (
	"encoding/json"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Two producers write section documents: the inline editor always stores the
// item collection under "items", the generation pipeline stores it under a
// type-specific key. Renderers and editors only ever see the canonical shape
// produced here.

const itemsKey = "items"

// legacyItemKeys lists, per section type, the generator-written keys that may
// hold the item collection, in resolution priority order. The editor key
// "items" always takes precedence over all of them.
var legacyItemKeys = map[string][]string{
	TypeCaseStudies:  {"case_studies"},
	TypeSkillsMatrix: {"skills_with_proof"},
	TypeTimeline:     {"timeline"},
	TypeImpactCharts: {"metrics", "visualizations"},
	TypeLanguages:    {"languages"},
	TypeTestimonials: {"testimonials"},
}

// itemFieldFallbacks maps canonical item field names to their legacy
// spellings, per section type. Resolution follows the same priority rule as
// the collection keys, applied per item.
var itemFieldFallbacks = map[string]map[string][]string{
	TypeTimeline: {
		"start_date": {"start_year"},
		"end_date":   {"end_year"},
	},
}

// Content is the canonical in-memory shape of a section document: one
// ordered item list plus whatever type-specific scalar fields the document
// carries (e.g. hero's name, title and metrics).
type Content struct {
	Items   []json.RawMessage
	Scalars map[string]json.RawMessage
}

func emptyContent() Content {
	return Content{Items: []json.RawMessage{}, Scalars: map[string]json.RawMessage{}}
}

// Normalize coalesces a raw section document into its canonical shape,
// regardless of which producer wrote it. Malformed or unknown data never
// fails; it normalizes to the empty content.
func Normalize(sectionType string, data []byte) Content {
	content := emptyContent()
	if len(data) == 0 || !gjson.ValidBytes(data) {
		return content
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return content
	}

	if key, ok := resolveCollectionKey(sectionType, doc); ok {
		for _, item := range doc.Get(key).Array() {
			content.Items = append(content.Items, json.RawMessage(item.Raw))
		}
	}

	collection := collectionKeys(sectionType)
	doc.ForEach(func(key, value gjson.Result) bool {
		if !collection[key.String()] {
			content.Scalars[key.String()] = json.RawMessage(value.Raw)
		}
		return true
	})
	return content
}

// resolveCollectionKey picks the key holding the item collection: "items"
// when present and non-empty, otherwise the first legacy key holding a
// non-empty array. A key holding anything other than an array is treated as
// absent.
func resolveCollectionKey(sectionType string, doc gjson.Result) (string, bool) {
	if items := doc.Get(itemsKey); items.IsArray() && len(items.Array()) > 0 {
		return itemsKey, true
	}
	for _, key := range legacyItemKeys[sectionType] {
		if arr := doc.Get(key); arr.IsArray() && len(arr.Array()) > 0 {
			return key, true
		}
	}
	return "", false
}

func collectionKeys(sectionType string) map[string]bool {
	keys := map[string]bool{itemsKey: true}
	for _, k := range legacyItemKeys[sectionType] {
		keys[k] = true
	}
	return keys
}

// CanonicalizeForSave rewrites an editor-submitted replacement document into
// the stored canonical form: the resolved item collection moves under
// "items" and every legacy key is removed. This is a one-way migration; once
// saved through the editor a section stays in editor shape.
func CanonicalizeForSave(sectionType string, data []byte) ([]byte, error) {
	if len(data) == 0 || !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return []byte(`{}`), nil
	}

	content := Normalize(sectionType, data)
	itemsJSON, err := json.Marshal(content.Items)
	if err != nil {
		return nil, err
	}

	out := data
	if out, err = sjson.SetRawBytes(out, itemsKey, itemsJSON); err != nil {
		return nil, err
	}
	for _, key := range legacyItemKeys[sectionType] {
		if out, err = sjson.DeleteBytes(out, key); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ItemField resolves a field on a single item, falling back to the legacy
// spelling when the canonical one is absent (e.g. a timeline item's
// start_date stored as start_year).
func ItemField(sectionType string, item json.RawMessage, field string) gjson.Result {
	if res := gjson.GetBytes(item, field); res.Exists() {
		return res
	}
	for _, alt := range itemFieldFallbacks[sectionType][field] {
		if res := gjson.GetBytes(item, alt); res.Exists() {
			return res
		}
	}
	return gjson.Result{}
}

// Document rebuilds a canonical JSON document from normalized content. Used
// when handing sections to renderers and to the public profile cache.
func (c Content) Document() json.RawMessage {
	out := []byte(`{}`)
	for key, value := range c.Scalars {
		out, _ = sjson.SetRawBytes(out, key, value)
	}
	itemsJSON, err := json.Marshal(c.Items)
	if err != nil {
		itemsJSON = []byte(`[]`)
	}
	out, _ = sjson.SetRawBytes(out, itemsKey, itemsJSON)
	return out
}
