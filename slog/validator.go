package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/harvest"
)

// Ensure LoggingValidator implements harvest.Validator.
var _ harvest.Validator = (*LoggingValidator)(nil)

// LoggingValidator wraps a Validator with debug logging.
type LoggingValidator struct {
	next   harvest.Validator
	logger *slog.Logger
}

// NewLoggingValidator creates a new LoggingValidator.
func NewLoggingValidator(next harvest.Validator, logger *slog.Logger) *LoggingValidator {
	return &LoggingValidator{next: next, logger: logger}
}

// Validate delegates to the wrapped validator and logs the operation.
func (v *LoggingValidator) Validate(ctx context.Context, candidates []harvest.CandidateSummary, subject string) (verdicts []harvest.Verdict, err error) {
	defer func(begin time.Time) {
		v.logger.Info("semantic validation",
			"subject", subject,
			"candidates", len(candidates),
			"verdicts", len(verdicts),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return v.next.Validate(ctx, candidates, subject)
}
