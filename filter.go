package harvest

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Rejection reasons recorded in filter outcomes.
const (
	FailConstraint   = "constraint"
	FailMissingField = "missing-field"
)

// RecordOutcome is the per-record filter verdict. Every input record
// appears in exactly one of pass/fail.
type RecordOutcome struct {
	Record Record `json:"record"`
	Passed bool   `json:"passed"`

	// Failed is the first rejecting constraint, when Passed is false.
	Failed *Constraint `json:"failed,omitempty"`

	// Reason distinguishes a value comparison failure from a record that
	// lacks the constrained field entirely.
	Reason string `json:"reason,omitempty"`
}

// FilterResult holds the outcome of applying constraints to records, with
// full pass/fail diagnostics.
type FilterResult struct {
	Input  int `json:"input"`
	Output int `json:"output"`

	Outcomes []RecordOutcome `json:"outcomes"`

	// Passed preserves extraction order.
	Passed []Record `json:"passed"`

	// Unsatisfiable lists constraints no extracted record could ever
	// satisfy because the field is absent from the whole result set.
	Unsatisfiable []Constraint `json:"unsatisfiable,omitempty"`
}

// ApplyConstraints filters records conjunctively: a record passes only if
// it satisfies every constraint. Zero constraints is a no-op that returns
// the input unchanged. A record lacking a numerically constrained field
// fails that constraint with a missing-field reason rather than passing
// silently.
func ApplyConstraints(records []Record, constraints []Constraint) FilterResult {
	result := FilterResult{Input: len(records)}

	for _, r := range records {
		outcome := RecordOutcome{Record: r, Passed: true}
		for i := range constraints {
			ok, reason := satisfies(&r, constraints[i])
			if ok {
				continue
			}
			outcome.Passed = false
			outcome.Failed = &constraints[i]
			outcome.Reason = reason
			break
		}
		result.Outcomes = append(result.Outcomes, outcome)
		if outcome.Passed {
			result.Passed = append(result.Passed, r)
		}
	}

	result.Output = len(result.Passed)
	result.Unsatisfiable = unsatisfiable(records, constraints)
	return result
}

func satisfies(r *Record, c Constraint) (bool, string) {
	switch c.Kind {
	case ConstraintNumeric:
		value, ok := r.Numeric[c.Field]
		if !ok {
			return false, FailMissingField
		}
		if compareNumeric(value, c.Cmp, c.Value) {
			return true, ""
		}
		return false, FailConstraint

	default:
		haystack := foldText(keywordHaystack(r, c.Field))
		for _, term := range c.Terms {
			found := strings.Contains(haystack, stemTerm(foldText(term)))
			if found == c.Exclude {
				return false, FailConstraint
			}
		}
		return true, ""
	}
}

// compareNumeric applies the strict-boundary comparator policy; equality
// uses a relative epsilon to absorb float normalization artifacts.
func compareNumeric(value float64, cmp Comparator, target float64) bool {
	switch cmp {
	case CmpLt:
		return value < target
	case CmpLte:
		return value <= target
	case CmpGt:
		return value > target
	case CmpGte:
		return value >= target
	default:
		scale := math.Max(1, math.Abs(target))
		return math.Abs(value-target) <= 1e-9*scale
	}
}

// unsatisfiable returns constraints whose field is present in no record:
// numeric fields missing from the extracted schema, and keyword targets
// naming a field nothing carries.
func unsatisfiable(records []Record, constraints []Constraint) []Constraint {
	var out []Constraint
	for _, c := range constraints {
		if satisfiableBySchema(records, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func satisfiableBySchema(records []Record, c Constraint) bool {
	if len(records) == 0 {
		return true
	}
	switch {
	case c.Kind == ConstraintNumeric:
		for _, r := range records {
			if _, ok := r.Numeric[c.Field]; ok {
				return true
			}
		}
	case c.Field == "" || c.Field == "any":
		for _, r := range records {
			if r.SearchText() != "" {
				return true
			}
		}
	default:
		for _, r := range records {
			if _, ok := r.Get(c.Field); ok {
				return true
			}
		}
	}
	return false
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldText lowercases and strips diacritics so "zólty" matches "żółty".
func foldText(s string) string {
	folded, _, err := transform.String(foldTransformer, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}

// stemTerm strips a plural suffix so "shoes" matches "shoe". Terms ending
// in a double s ("wireless") are left alone.
func stemTerm(term string) string {
	if len(term) > 4 && strings.HasSuffix(term, "es") && !strings.HasSuffix(term, "ses") {
		return term[:len(term)-2]
	}
	if len(term) > 3 && strings.HasSuffix(term, "s") && !strings.HasSuffix(term, "ss") {
		return term[:len(term)-1]
	}
	return term
}
