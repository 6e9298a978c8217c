package harvest

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ConstraintKind distinguishes numeric from keyword constraints.
type ConstraintKind int

// Constraint kinds.
const (
	ConstraintNumeric ConstraintKind = iota
	ConstraintKeyword
)

// Comparator is a numeric comparison operator. "Under X" is strictly less
// than X and "over X" strictly greater; the inclusive forms are reserved
// for explicit "at most"/"at least" phrasing.
type Comparator int

// Comparators.
const (
	CmpLt Comparator = iota
	CmpLte
	CmpGt
	CmpGte
	CmpEq
)

// String returns the comparator's symbol.
func (c Comparator) String() string {
	switch c {
	case CmpLt:
		return "<"
	case CmpLte:
		return "<="
	case CmpGt:
		return ">"
	case CmpGte:
		return ">="
	default:
		return "=="
	}
}

// Constraint is a typed condition parsed from free text. Numeric
// constraints compare a normalized record field; keyword constraints
// require (or forbid) terms in the record's text. All constraints combine
// conjunctively.
type Constraint struct {
	Kind ConstraintKind `json:"kind"`

	// Field is the inferred record field: price, weight, or volume for
	// numeric constraints; a field name or "any" for keyword constraints.
	Field string `json:"field"`

	Cmp   Comparator `json:"cmp,omitempty"`
	Value float64    `json:"value,omitempty"`

	// Unit is a currency code for price, "g" for weight, "ml" for volume.
	Unit string `json:"unit,omitempty"`

	Terms   []string `json:"terms,omitempty"`
	Exclude bool     `json:"exclude,omitempty"`

	// Raw is the instruction fragment this constraint came from.
	Raw string `json:"raw,omitempty"`
}

// Describe renders the constraint for diagnostics and rejection reasons.
func (c Constraint) Describe() string {
	if c.Kind == ConstraintNumeric {
		return fmt.Sprintf("%s %s %g%s", c.Field, c.Cmp, c.Value, c.Unit)
	}
	polarity := "include"
	if c.Exclude {
		polarity = "exclude"
	}
	return fmt.Sprintf("%s keyword %s %q", polarity, c.Field, strings.Join(c.Terms, " "))
}

// ParseWarning surfaces a quantity mention the parser could not classify.
// Warnings are never silently dropped constraints.
type ParseWarning struct {
	Mention string `json:"mention"`
	Reason  string `json:"reason"`
}

// Comparator cue words, checked in the text preceding a quantity mention.
// Multi-word cues come first so "no more than" is not read as "no".
var comparatorCues = []struct {
	cue string
	cmp Comparator
}{
	{"no more than", CmpLte},
	{"at most", CmpLte},
	{"up to", CmpLte},
	{"maximum", CmpLte},
	{"at least", CmpGte},
	{"minimum", CmpGte},
	{"less than", CmpLt},
	{"cheaper than", CmpLt},
	{"lower than", CmpLt},
	{"under", CmpLt},
	{"below", CmpLt},
	{"more than", CmpGt},
	{"higher than", CmpGt},
	{"above", CmpGt},
	{"over", CmpGt},
	{"exactly", CmpEq},
	{"equal to", CmpEq},
}

// negationCues flip the polarity of the keyword that follows them.
var negationCues = map[string]bool{
	"without": true,
	"except":  true,
	"no":      true,
	"not":     true,
}

var stopwords = map[string]bool{
	"find": true, "show": true, "get": true, "list": true, "me": true,
	"all": true, "any": true, "the": true, "a": true, "an": true,
	"and": true, "or": true, "for": true, "of": true, "in": true,
	"to": true, "with": true, "that": true, "are": true, "is": true,
	"than": true, "at": true, "up": true, "under": true, "below": true,
	"over": true, "above": true, "less": true, "more": true,
	"least": true, "most": true, "exactly": true, "equal": true,
	"maximum": true, "minimum": true, "cheaper": true, "lower": true,
	"higher": true, "products": true, "product": true, "items": true,
	"item": true, "listings": true, "listing": true, "results": true,
	"price": true, "priced": true, "cost": true, "costing": true,
	"weighing": true, "weight": true, "volume": true,
}

// descriptorWords are common adjective-like terms that lack a telltale
// suffix (colors, materials, grades).
var descriptorWords = map[string]bool{
	"red": true, "blue": true, "green": true, "black": true,
	"white": true, "yellow": true, "pink": true, "grey": true,
	"gray": true, "brown": true, "gold": true, "silver": true,
	"leather": true, "cotton": true, "wool": true, "wood": true,
	"metal": true, "glass": true, "ceramic": true, "vegan": true,
	"fresh": true, "new": true, "small": true, "large": true, "big": true,
	"cheap": true, "premium": true, "mini": true,
}

var adjectiveSuffixes = []string{
	"y", "ous", "ful", "ive", "able", "ible", "ed", "al", "ic", "ish",
	"less", "en", "ern",
}

var (
	wordRe   = regexp.MustCompile(`[\p{L}\p{N}]+`)
	numberRe = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
)

// ParseConstraints turns a free-text instruction into typed constraints.
// It recognizes currency-tagged comparisons, mass/volume comparisons
// through the fixed unit table, and keyword constraints from
// adjective-like terms with negation-flipped polarity. Quantity mentions
// it cannot classify are returned as warnings.
func ParseConstraints(text string) ([]Constraint, []ParseWarning) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	work := strings.ToLower(text)

	var constraints []Constraint
	var warnings []ParseWarning

	work, numeric, numWarnings := parseNumericConstraints(work)
	constraints = append(constraints, numeric...)
	warnings = append(warnings, numWarnings...)

	// Any digits left over are quantity mentions nothing claimed.
	for _, mention := range numberRe.FindAllString(work, -1) {
		warnings = append(warnings, ParseWarning{
			Mention: mention,
			Reason:  "quantity without a recognized unit or currency",
		})
	}
	work = numberRe.ReplaceAllString(work, " ")

	constraints = append(constraints, parseKeywordConstraints(work)...)
	return constraints, warnings
}

// numericMention is one located currency or unit-tagged quantity.
type numericMention struct {
	start, end int
	field      string
	value      float64
	unit       string
}

func parseNumericConstraints(work string) (string, []Constraint, []ParseWarning) {
	var mentions []numericMention

	for _, loc := range priceMarkerFirstRe.FindAllStringIndex(work, -1) {
		frag := work[loc[0]:loc[1]]
		if value, code, _, ok := parsePrice(frag); ok {
			mentions = append(mentions, numericMention{loc[0], loc[1], FieldPrice, value, code})
		}
	}
	for _, loc := range priceAmountFirstRe.FindAllStringIndex(work, -1) {
		if overlaps(mentions, loc[0], loc[1]) {
			continue
		}
		frag := work[loc[0]:loc[1]]
		if value, code, _, ok := parsePrice(frag); ok {
			mentions = append(mentions, numericMention{loc[0], loc[1], FieldPrice, value, code})
		}
	}
	for _, loc := range quantityRe.FindAllStringIndex(work, -1) {
		if overlaps(mentions, loc[0], loc[1]) {
			continue
		}
		frag := work[loc[0]:loc[1]]
		if field, value, _, ok := parseQuantity(frag); ok {
			unit := "g"
			if field == FieldVolume {
				unit = "ml"
			}
			mentions = append(mentions, numericMention{loc[0], loc[1], field, value, unit})
		}
	}

	sort.Slice(mentions, func(i, j int) bool { return mentions[i].start < mentions[j].start })

	var constraints []Constraint
	var warnings []ParseWarning
	cut := make([]byte, len(work))
	copy(cut, work)

	for _, m := range mentions {
		raw := work[m.start:m.end]
		cmp, ok := comparatorBefore(work, m.start)
		if !ok {
			warnings = append(warnings, ParseWarning{
				Mention: strings.TrimSpace(raw),
				Reason:  "quantity without a comparator cue",
			})
		} else {
			constraints = append(constraints, Constraint{
				Kind:  ConstraintNumeric,
				Field: m.field,
				Cmp:   cmp,
				Value: m.value,
				Unit:  m.unit,
				Raw:   strings.TrimSpace(raw),
			})
		}
		for i := m.start; i < m.end; i++ {
			cut[i] = ' '
		}
	}
	return string(cut), constraints, warnings
}

func overlaps(mentions []numericMention, start, end int) bool {
	for _, m := range mentions {
		if start < m.end && end > m.start {
			return true
		}
	}
	return false
}

// comparatorBefore scans the text window preceding a quantity mention for
// the nearest comparator cue.
func comparatorBefore(text string, pos int) (Comparator, bool) {
	const window = 32
	start := pos - window
	if start < 0 {
		start = 0
	}
	preceding := text[start:pos]

	// Pick the cue whose match ends last; on ties the longer cue wins,
	// so "no more than" beats the "more than" inside it.
	bestEnd, bestLen := -1, 0
	var cmp Comparator
	for _, c := range comparatorCues {
		i := strings.LastIndex(preceding, c.cue)
		if i < 0 {
			continue
		}
		if end := i + len(c.cue); end > bestEnd || (end == bestEnd && len(c.cue) > bestLen) {
			bestEnd, bestLen, cmp = end, len(c.cue), c.cmp
		}
	}
	return cmp, bestEnd >= 0
}

func parseKeywordConstraints(work string) []Constraint {
	words := wordRe.FindAllString(work, -1)

	var constraints []Constraint
	negated := false
	for _, w := range words {
		if negationCues[w] {
			negated = true
			continue
		}
		if stopwords[w] || len(w) < 3 {
			continue
		}
		// A negation cue claims the next content word outright; positive
		// keywords must look adjective-like to keep subject nouns out.
		if negated {
			constraints = append(constraints, Constraint{
				Kind:    ConstraintKeyword,
				Field:   "any",
				Terms:   []string{w},
				Exclude: true,
				Raw:     w,
			})
			negated = false
			continue
		}
		if isAdjectiveLike(w) {
			constraints = append(constraints, Constraint{
				Kind:  ConstraintKeyword,
				Field: "any",
				Terms: []string{w},
				Raw:   w,
			})
		}
	}
	return constraints
}

func isAdjectiveLike(w string) bool {
	if descriptorWords[w] {
		return true
	}
	for _, suffix := range adjectiveSuffixes {
		if len(w) > len(suffix)+2 && strings.HasSuffix(w, suffix) {
			return true
		}
	}
	return false
}
