package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/mock"
	hslog "github.com/fwojciec/harvest/slog"
)

func newLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestLoggingFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("logs fetch with bytes and duration", func(t *testing.T) {
		t.Parallel()

		logger, buf := newLogger()
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				return "<html>content</html>", nil
			},
		}

		fetcher := hslog.NewLoggingFetcher(inner, logger)
		html, err := fetcher.Fetch(context.Background(), "https://shop.test/page/1")

		require.NoError(t, err)
		assert.Equal(t, "<html>content</html>", html)
		output := buf.String()
		assert.Contains(t, output, "fetch")
		assert.Contains(t, output, "url=https://shop.test/page/1")
		assert.Contains(t, output, "bytes=20")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		logger, buf := newLogger()
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				return "", errors.New("network error")
			},
		}

		fetcher := hslog.NewLoggingFetcher(inner, logger)
		_, err := fetcher.Fetch(context.Background(), "https://shop.test/page/1")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"network error\"")
	})
}

func TestLoggingFetcher_Close(t *testing.T) {
	t.Parallel()

	t.Run("delegates to inner fetcher", func(t *testing.T) {
		t.Parallel()

		logger, _ := newLogger()
		closeCalled := false
		inner := &mock.Fetcher{
			CloseFn: func() error {
				closeCalled = true
				return nil
			},
		}

		fetcher := hslog.NewLoggingFetcher(inner, logger)
		require.NoError(t, fetcher.Close())
		assert.True(t, closeCalled)
	})
}

func TestLoggingValidator_Validate(t *testing.T) {
	t.Parallel()

	t.Run("logs subject and verdict count", func(t *testing.T) {
		t.Parallel()

		logger, buf := newLogger()
		inner := &mock.Validator{
			ValidateFn: func(ctx context.Context, candidates []harvest.CandidateSummary, subject string) ([]harvest.Verdict, error) {
				return []harvest.Verdict{{Candidate: 0, Accepted: true}}, nil
			},
		}

		validator := hslog.NewLoggingValidator(inner, logger)
		verdicts, err := validator.Validate(context.Background(), []harvest.CandidateSummary{{Index: 0}}, "wooden furniture")

		require.NoError(t, err)
		assert.Len(t, verdicts, 1)
		output := buf.String()
		assert.Contains(t, output, "semantic validation")
		assert.Contains(t, output, "subject=\"wooden furniture\"")
		assert.Contains(t, output, "candidates=1")
		assert.Contains(t, output, "verdicts=1")
	})

	t.Run("logs validator errors", func(t *testing.T) {
		t.Parallel()

		logger, buf := newLogger()
		inner := &mock.Validator{
			ValidateFn: func(ctx context.Context, candidates []harvest.CandidateSummary, subject string) ([]harvest.Verdict, error) {
				return nil, errors.New("model overloaded")
			},
		}

		validator := hslog.NewLoggingValidator(inner, logger)
		_, err := validator.Validate(context.Background(), nil, "anything")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"model overloaded\"")
	})
}

func TestLoggingMemory(t *testing.T) {
	t.Parallel()

	t.Run("logs remember with site and signature", func(t *testing.T) {
		t.Parallel()

		logger, buf := newLogger()
		inner := &mock.SelectorMemory{
			RememberFn: func(ctx context.Context, d *harvest.ContainerDescriptor) error {
				return nil
			},
		}

		memory := hslog.NewLoggingMemory(inner, logger)
		err := memory.Remember(context.Background(), &harvest.ContainerDescriptor{
			SiteKey:   "shop.test",
			Signature: "div.product-card>a+img",
		})

		require.NoError(t, err)
		output := buf.String()
		assert.Contains(t, output, "selector remember")
		assert.Contains(t, output, "site=shop.test")
		assert.Contains(t, output, "div.product-card")
	})

	t.Run("recall miss logs at debug level", func(t *testing.T) {
		t.Parallel()

		logger, buf := newLogger()
		inner := &mock.SelectorMemory{
			RecallFn: func(ctx context.Context, siteKey string) (*harvest.ContainerDescriptor, error) {
				return nil, harvest.Errorf(harvest.ENOTFOUND, "no descriptor for %q", siteKey)
			},
		}

		memory := hslog.NewLoggingMemory(inner, logger)
		_, err := memory.Recall(context.Background(), "shop.test")

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "level=DEBUG")
		assert.Contains(t, output, "hit=false")
	})

	t.Run("recall hit logs at info level", func(t *testing.T) {
		t.Parallel()

		logger, buf := newLogger()
		inner := &mock.SelectorMemory{
			RecallFn: func(ctx context.Context, siteKey string) (*harvest.ContainerDescriptor, error) {
				return &harvest.ContainerDescriptor{SiteKey: siteKey}, nil
			},
		}

		memory := hslog.NewLoggingMemory(inner, logger)
		_, err := memory.Recall(context.Background(), "shop.test")

		require.NoError(t, err)
		output := buf.String()
		assert.Contains(t, output, "level=INFO")
		assert.Contains(t, output, "hit=true")
	})

	t.Run("forget logs the site key", func(t *testing.T) {
		t.Parallel()

		logger, buf := newLogger()
		inner := &mock.SelectorMemory{
			ForgetFn: func(ctx context.Context, siteKey string) error {
				return nil
			},
		}

		memory := hslog.NewLoggingMemory(inner, logger)
		require.NoError(t, memory.Forget(context.Background(), "shop.test"))
		assert.Contains(t, buf.String(), "selector forget")
	})
}
