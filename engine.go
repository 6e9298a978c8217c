package harvest

import (
	"context"
	"strings"
)

// DetectOutcome classifies why the engine did or did not choose a
// container. Callers' retry/fallback policies depend on the distinction
// between structural absence and semantic rejection.
type DetectOutcome int

// Detection outcomes.
const (
	// OutcomeContainerFound means a container was chosen and extracted.
	OutcomeContainerFound DetectOutcome = iota

	// OutcomeStructuralNotFound means the generator produced zero
	// candidates.
	OutcomeStructuralNotFound

	// OutcomeSemanticRejectedAll means the validator ran and rejected
	// every candidate; statistics never override it.
	OutcomeSemanticRejectedAll
)

// String returns the outcome name for logs and diagnostics.
func (o DetectOutcome) String() string {
	switch o {
	case OutcomeContainerFound:
		return "container_found"
	case OutcomeStructuralNotFound:
		return "structural_not_found"
	default:
		return "semantic_rejected_all"
	}
}

// Diagnostics reports how a DetectAndExtract call went. None of the
// conditions here are errors; they surface in the result so the caller
// can decide what to do next.
type Diagnostics struct {
	Outcome        DetectOutcome    `json:"outcome"`
	CandidateCount int              `json:"candidateCount"`
	Validation     ValidationStatus `json:"validation"`

	// ValidatorError carries the message of a failed or canceled
	// validator call; such a call counts as unavailable, never as a
	// rejection.
	ValidatorError string `json:"validatorError,omitempty"`

	// Container is the chosen candidate, nil when Outcome is not
	// OutcomeContainerFound.
	Container *CandidateContainer `json:"container,omitempty"`

	RecordsExtracted int `json:"recordsExtracted"`

	// RecordsDropped counts member nodes lacking every identifying field.
	RecordsDropped int `json:"recordsDropped"`

	// Warnings lists quantity mentions the constraint parser could not
	// classify.
	Warnings []ParseWarning `json:"warnings,omitempty"`
}

// Result is the full outcome of one DetectAndExtract call.
type Result struct {
	// Records are the final records after filtering.
	Records []Record `json:"records"`

	Filter      FilterResult `json:"filter"`
	Diagnostics Diagnostics  `json:"diagnostics"`
}

// Engine runs the detect-and-extract pipeline. It is stateless per call:
// one snapshot in, one result out, nothing shared between invocations, so
// a single Engine value may serve concurrent calls.
type Engine struct {
	// Validator is the optional semantic validation port. Nil degrades to
	// statistics-only selection.
	Validator Validator

	// Hints configures field detection; nil uses DefaultHints.
	Hints *HintSet

	// MaxCandidates caps the generated candidate list; zero means
	// DefaultMaxCandidates.
	MaxCandidates int
}

// DetectOption tweaks a single DetectAndExtract call.
type DetectOption func(*detectConfig)

type detectConfig struct {
	preferredSignature string
}

// WithPreferredSignature boosts candidates matching a remembered container
// signature, by key or hash. The caller owns any cross-run memory; the
// generator itself stays pure.
func WithPreferredSignature(signature string) DetectOption {
	return func(c *detectConfig) {
		c.preferredSignature = signature
	}
}

// preferredBonus is added to the structural score of candidates matching a
// remembered signature.
const preferredBonus = 0.15

// DetectAndExtract runs the full pipeline: candidate generation, optional
// semantic validation, hybrid selection, field extraction, constraint
// parsing, and filtering. The validator is awaited exactly once and never
// retried here; a canceled or failed call degrades to statistics-only
// selection. The only returned error is a malformed snapshot.
func (e *Engine) DetectAndExtract(ctx context.Context, snap *Snapshot, instruction string, opts ...DetectOption) (*Result, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	var cfg detectConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	candidates := Generate(snap)
	if max := e.maxCandidates(); len(candidates) > max {
		candidates = candidates[:max]
	}
	if cfg.preferredSignature != "" {
		applyPreferred(candidates, cfg.preferredSignature)
	}

	result := &Result{}
	result.Diagnostics.CandidateCount = len(candidates)

	validation := e.validate(ctx, snap, candidates, instruction, &result.Diagnostics)
	result.Diagnostics.Validation = validation.Status

	container, ok := SelectContainer(candidates, validation)
	if !ok {
		if len(candidates) == 0 {
			result.Diagnostics.Outcome = OutcomeStructuralNotFound
		} else {
			result.Diagnostics.Outcome = OutcomeSemanticRejectedAll
		}
		constraints, warnings := ParseConstraints(instruction)
		result.Diagnostics.Warnings = warnings
		result.Filter = ApplyConstraints(nil, constraints)
		return result, nil
	}

	result.Diagnostics.Outcome = OutcomeContainerFound
	result.Diagnostics.Container = &container

	extraction := ExtractRecords(snap, container, e.Hints)
	result.Diagnostics.RecordsExtracted = len(extraction.Records)
	result.Diagnostics.RecordsDropped = extraction.Dropped

	constraints, warnings := ParseConstraints(instruction)
	result.Diagnostics.Warnings = warnings
	result.Filter = ApplyConstraints(extraction.Records, constraints)
	result.Records = result.Filter.Passed

	return result, nil
}

func (e *Engine) maxCandidates() int {
	if e.MaxCandidates > 0 {
		return e.MaxCandidates
	}
	return DefaultMaxCandidates
}

// validate awaits the validator port once and maps every failure mode to
// the unavailable status. Conflating cancellation with rejection would
// silently turn a timeout into a false negative.
func (e *Engine) validate(ctx context.Context, snap *Snapshot, candidates []CandidateContainer, instruction string, diag *Diagnostics) Validation {
	if e.Validator == nil || len(candidates) == 0 {
		return Validation{Status: ValidationUnavailable}
	}

	subject := strings.TrimSpace(instruction)
	if subject == "" {
		subject = "product listing"
	}

	verdicts, err := e.Validator.Validate(ctx, SummarizeCandidates(snap, candidates), subject)
	if err != nil {
		diag.ValidatorError = err.Error()
		return Validation{Status: ValidationUnavailable}
	}
	if ctx.Err() != nil {
		diag.ValidatorError = ctx.Err().Error()
		return Validation{Status: ValidationUnavailable}
	}
	return ClassifyVerdicts(len(candidates), verdicts)
}

// applyPreferred bumps matching candidates and restores score order.
func applyPreferred(candidates []CandidateContainer, signature string) {
	bumped := false
	for i := range candidates {
		if candidates[i].Signature == signature || signatureHash(candidates[i].Signature) == signature {
			candidates[i].StructuralScore += preferredBonus
			if candidates[i].StructuralScore > 1 {
				candidates[i].StructuralScore = 1
			}
			bumped = true
		}
	}
	if bumped {
		sortCandidates(candidates)
	}
}
