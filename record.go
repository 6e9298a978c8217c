package harvest

import "strings"

// Canonical field names used by the extractor and the constraint filter.
const (
	FieldName        = "name"
	FieldPrice       = "price"
	FieldURL         = "url"
	FieldImage       = "image"
	FieldDescription = "description"
	FieldWeight      = "weight"
	FieldVolume      = "volume"
)

// Field is one named value extracted from a record node, with the
// confidence of the fallback strategy that produced it.
type Field struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Record is one structured record extracted from a single member node of
// the chosen container. Fields preserve extraction order.
type Record struct {
	Fields []Field `json:"fields"`

	// Numeric holds normalized numeric values keyed by field name:
	// price in currency units, weight in grams, volume in milliliters.
	Numeric map[string]float64 `json:"numeric,omitempty"`

	// Currency is the ISO-ish code of the price, when one was detected.
	Currency string `json:"currency,omitempty"`

	// SourceID is the member node this record came from.
	SourceID int `json:"sourceId"`
}

// Get returns the named field's value.
func (r *Record) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

func (r *Record) set(name, value string, confidence float64) {
	if value == "" {
		return
	}
	if _, ok := r.Get(name); ok {
		return
	}
	r.Fields = append(r.Fields, Field{Name: name, Value: value, Confidence: confidence})
}

func (r *Record) setNumeric(name string, value float64) {
	if r.Numeric == nil {
		r.Numeric = make(map[string]float64)
	}
	r.Numeric[name] = value
}

// Identified reports whether the record carries at least one identifying
// field. Records without one are dropped, not returned partial.
func (r *Record) Identified() bool {
	if _, ok := r.Get(FieldName); ok {
		return true
	}
	_, ok := r.Get(FieldURL)
	return ok
}

// SearchText returns the text keyword constraints match against.
func (r *Record) SearchText() string {
	name, _ := r.Get(FieldName)
	desc, _ := r.Get(FieldDescription)
	if desc == "" {
		return name
	}
	return name + " " + desc
}

// keywordHaystack returns the text a keyword constraint searches. An
// empty or "any" target matches the combined name+description text;
// anything else targets that one field.
func keywordHaystack(r *Record, target string) string {
	if target == "" || target == "any" {
		return r.SearchText()
	}
	value, _ := r.Get(target)
	return value
}

// cleanText collapses whitespace runs into single spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
