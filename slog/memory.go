package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/harvest"
)

// Ensure LoggingMemory implements harvest.SelectorMemory.
var _ harvest.SelectorMemory = (*LoggingMemory)(nil)

// LoggingMemory wraps a SelectorMemory with debug logging.
type LoggingMemory struct {
	next   harvest.SelectorMemory
	logger *slog.Logger
}

// NewLoggingMemory creates a new LoggingMemory.
func NewLoggingMemory(next harvest.SelectorMemory, logger *slog.Logger) *LoggingMemory {
	return &LoggingMemory{next: next, logger: logger}
}

// Remember delegates to the wrapped memory and logs the operation.
func (m *LoggingMemory) Remember(ctx context.Context, d *harvest.ContainerDescriptor) (err error) {
	defer func(begin time.Time) {
		m.logger.Info("selector remember",
			"site", d.SiteKey,
			"signature", d.Signature,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return m.next.Remember(ctx, d)
}

// Recall delegates to the wrapped memory. Misses are logged at debug
// level since they are routine on first contact with a site.
func (m *LoggingMemory) Recall(ctx context.Context, siteKey string) (d *harvest.ContainerDescriptor, err error) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		if harvest.ErrorCode(err) == harvest.ENOTFOUND {
			level = slog.LevelDebug
		}
		m.logger.Log(ctx, level, "selector recall",
			"site", siteKey,
			"hit", err == nil,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return m.next.Recall(ctx, siteKey)
}

// Forget delegates to the wrapped memory and logs the operation.
func (m *LoggingMemory) Forget(ctx context.Context, siteKey string) (err error) {
	defer func(begin time.Time) {
		m.logger.Info("selector forget",
			"site", siteKey,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return m.next.Forget(ctx, siteKey)
}

// List delegates to the wrapped memory.
func (m *LoggingMemory) List(ctx context.Context) ([]*harvest.ContainerDescriptor, error) {
	return m.next.List(ctx)
}
