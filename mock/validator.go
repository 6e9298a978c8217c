package mock

import (
	"context"

	"github.com/fwojciec/harvest"
)

var _ harvest.Validator = (*Validator)(nil)

// Validator is a mock implementation of harvest.Validator.
type Validator struct {
	ValidateFn func(ctx context.Context, candidates []harvest.CandidateSummary, subject string) ([]harvest.Verdict, error)
}

func (v *Validator) Validate(ctx context.Context, candidates []harvest.CandidateSummary, subject string) ([]harvest.Verdict, error) {
	return v.ValidateFn(ctx, candidates, subject)
}
