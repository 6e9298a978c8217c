package harvest

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Hint maps a class-name (or attribute-name) substring to a field. Hints
// are ordered configuration data, not control flow: the first match wins,
// and new hints can be added without touching the extractor.
type Hint struct {
	Pattern string `yaml:"pattern"`
	Field   string `yaml:"field"`
}

// HintSet is the swappable field-detection configuration consumed by the
// extractor.
type HintSet struct {
	// Class hints match lowercased class tokens and element ids.
	Class []Hint `yaml:"class"`

	// Attr hints match attribute names carrying URL-shaped values.
	Attr []Hint `yaml:"attr"`
}

// DefaultHints returns the built-in hint tables. Order matters: earlier
// hints win when several patterns match the same node.
func DefaultHints() *HintSet {
	return &HintSet{
		Class: []Hint{
			{Pattern: "price", Field: FieldPrice},
			{Pattern: "cost", Field: FieldPrice},
			{Pattern: "amount", Field: FieldPrice},
			{Pattern: "cena", Field: FieldPrice},
			{Pattern: "title", Field: FieldName},
			{Pattern: "name", Field: FieldName},
			{Pattern: "product", Field: FieldName},
			{Pattern: "heading", Field: FieldName},
			{Pattern: "desc", Field: FieldDescription},
			{Pattern: "summary", Field: FieldDescription},
			{Pattern: "excerpt", Field: FieldDescription},
			{Pattern: "subtitle", Field: FieldDescription},
			{Pattern: "image", Field: FieldImage},
			{Pattern: "img", Field: FieldImage},
			{Pattern: "thumb", Field: FieldImage},
			{Pattern: "photo", Field: FieldImage},
		},
		Attr: []Hint{
			{Pattern: "data-url", Field: FieldURL},
			{Pattern: "data-href", Field: FieldURL},
			{Pattern: "data-link", Field: FieldURL},
			{Pattern: "data-src", Field: FieldImage},
			{Pattern: "data-image", Field: FieldImage},
		},
	}
}

// ParseHints loads a hint set from YAML. Sections left empty fall back to
// the defaults, so a file can override just one table.
func ParseHints(data []byte) (*HintSet, error) {
	var h HintSet
	if err := yaml.Unmarshal(data, &h); err != nil {
		return nil, Errorf(EINVALID, "invalid hints: %v", err)
	}
	defaults := DefaultHints()
	if len(h.Class) == 0 {
		h.Class = defaults.Class
	}
	if len(h.Attr) == 0 {
		h.Attr = defaults.Attr
	}
	for _, hint := range append(append([]Hint{}, h.Class...), h.Attr...) {
		if hint.Pattern == "" || hint.Field == "" {
			return nil, Errorf(EINVALID, "hint entries require both pattern and field")
		}
	}
	return &h, nil
}

// ClassField returns the field hinted at by a node's class tokens and id,
// walking the table in order.
func (h *HintSet) ClassField(n *DomNode) (string, bool) {
	for _, hint := range h.Class {
		for _, class := range n.Classes {
			if strings.Contains(strings.ToLower(class), hint.Pattern) {
				return hint.Field, true
			}
		}
		if id, ok := n.Attrs["id"]; ok && strings.Contains(strings.ToLower(id), hint.Pattern) {
			return hint.Field, true
		}
	}
	return "", false
}

// AttrField returns the field hinted at by an attribute name.
func (h *HintSet) AttrField(attr string) (string, bool) {
	attr = strings.ToLower(attr)
	for _, hint := range h.Attr {
		if strings.Contains(attr, hint.Pattern) {
			return hint.Field, true
		}
	}
	return "", false
}
