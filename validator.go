package harvest

import "context"

// Verdict is a semantic judgment on one candidate. Verdicts are produced
// once per candidate per call and never mutated afterward.
type Verdict struct {
	// Candidate is the index of the judged candidate in the generated list.
	Candidate int `json:"candidate"`

	Accepted   bool    `json:"accepted"`
	Confidence float64 `json:"confidence"`

	// Reason optionally explains a rejection.
	Reason string `json:"reason,omitempty"`
}

// Validator judges whether candidates' members truly match the requested
// subject. It is an optional, injectable capability; the engine degrades
// to statistics-only selection without it. The engine calls it exactly
// once per DetectAndExtract and never retries; retry policy belongs to
// the caller.
type Validator interface {
	Validate(ctx context.Context, candidates []CandidateSummary, subject string) ([]Verdict, error)
}

// ValidationStatus is the three-valued outcome of semantic validation.
// Unavailable and rejected-all must never be conflated: a timed-out
// validator triggers the statistics-only path, while an explicit rejection
// is final.
type ValidationStatus int

// Validation outcomes.
const (
	// ValidationUnavailable means no usable verdicts were produced: the
	// port was absent, errored, was canceled, or returned nothing.
	ValidationUnavailable ValidationStatus = iota

	// ValidationAccepted means at least one candidate was accepted.
	ValidationAccepted

	// ValidationRejectedAll means the validator ran and rejected every
	// candidate it was shown.
	ValidationRejectedAll
)

// String returns the status name for logs and diagnostics.
func (s ValidationStatus) String() string {
	switch s {
	case ValidationAccepted:
		return "accepted"
	case ValidationRejectedAll:
		return "rejected_all"
	default:
		return "unavailable"
	}
}

// Validation pairs a status with the verdicts that produced it.
type Validation struct {
	Status   ValidationStatus `json:"status"`
	Verdicts []Verdict        `json:"verdicts,omitempty"`
}

// ClassifyVerdicts derives the three-valued validation outcome from a raw
// verdict list. Verdicts referencing unknown candidate indices are
// discarded first, so malformed responses cannot force a rejection on
// their own; an empty usable list means unavailable, not rejection.
func ClassifyVerdicts(candidateCount int, verdicts []Verdict) Validation {
	usable := make([]Verdict, 0, len(verdicts))
	for _, v := range verdicts {
		if v.Candidate < 0 || v.Candidate >= candidateCount {
			continue
		}
		usable = append(usable, v)
	}
	if len(usable) == 0 {
		return Validation{Status: ValidationUnavailable}
	}
	for _, v := range usable {
		if v.Accepted {
			return Validation{Status: ValidationAccepted, Verdicts: usable}
		}
	}
	return Validation{Status: ValidationRejectedAll, Verdicts: usable}
}
