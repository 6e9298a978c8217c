// Package batch orchestrates harvesting across many pages: fetching with
// retries and per-domain rate limits, container detection, fallback
// recovery, selector memory, and cross-page record dedupe.
package batch

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/bloom"
)

// DefaultConcurrency is the worker limit when none is configured.
const DefaultConcurrency = 4

// expectedRecords sizes the dedupe filter for one run.
const expectedRecords = 100_000

// Harvester coordinates a multi-page harvest run.
type Harvester struct {
	Fetcher harvest.Fetcher
	Builder harvest.SnapshotBuilder
	Engine  *harvest.Engine

	// Fallback recovers single records from pages where no container was
	// found. Optional.
	Fallback harvest.FallbackExtractor

	// Memory remembers winning container signatures per site. Optional.
	Memory harvest.SelectorMemory

	// Limiter spaces out requests per domain. Optional.
	Limiter harvest.DomainLimiter

	Metrics *Metrics
	Logger  *slog.Logger

	Concurrency int
	RetryDelays []time.Duration
}

// Job is one harvest request: an instruction applied across pages.
type Job struct {
	Instruction string
	URLs        []string
}

// PageResult holds the outcome of processing a single page.
type PageResult struct {
	Position int
	URL      string
	Outcome  harvest.DetectOutcome
	Records  []harvest.Record

	// FromFallback marks records recovered by the fallback extractor
	// rather than container extraction.
	FromFallback bool

	Err error
}

// Result aggregates a whole run.
type Result struct {
	Pages  int
	Failed int

	// Records are deduped across pages, in page order.
	Records []harvest.Record

	// Deduped counts records dropped as cross-page duplicates.
	Deduped int

	PageResults []PageResult
}

// ProgressEvent reports progress during a run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting run progress.
type ProgressFunc func(event ProgressEvent)

// Run processes every URL in the job and returns the aggregated,
// deduplicated records. Individual page failures are recorded, not
// fatal; Run itself fails only on misconfiguration or context
// cancellation.
func (h *Harvester) Run(ctx context.Context, job Job, progress ProgressFunc) (*Result, error) {
	if h.Fetcher == nil || h.Builder == nil || h.Engine == nil {
		return nil, harvest.Errorf(harvest.EINVALID, "harvester requires a fetcher, builder, and engine")
	}
	if len(job.URLs) == 0 {
		return &Result{}, nil
	}

	concurrency := h.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	delays := h.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}

	total := len(job.URLs)
	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	resultCh := make(chan PageResult, total)
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, pageURL := range job.URLs {
			i, pageURL := i, pageURL
			g.Go(func() error {
				resultCh <- h.processPage(gctx, i, pageURL, job.Instruction, delays)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	pages := make([]PageResult, total)
	var failed int
	for page := range resultCh {
		completed.Add(1)
		pages[page.Position] = page

		if page.Err != nil {
			failed++
			if progress != nil {
				progress(ProgressEvent{
					Type:      ProgressFailed,
					Completed: int(completed.Load()),
					Total:     total,
					URL:       page.URL,
					Error:     page.Err,
				})
			}
			continue
		}
		if progress != nil {
			progress(ProgressEvent{
				Type:      ProgressCompleted,
				Completed: int(completed.Load()),
				Total:     total,
				URL:       page.URL,
			})
		}
	}

	// Dedupe across pages in deterministic page order.
	seen := bloom.NewSeenFilter(expectedRecords, 0.001)
	result := &Result{Pages: total, Failed: failed, PageResults: pages}
	for _, page := range pages {
		for _, record := range page.Records {
			if seen.Seen(&record) {
				result.Deduped++
				continue
			}
			result.Records = append(result.Records, record)
		}
	}
	h.Metrics.AddRecords(len(result.Records))

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	}
	return result, nil
}

// processPage runs the full per-page pipeline.
func (h *Harvester) processPage(ctx context.Context, position int, pageURL, instruction string, delays []time.Duration) PageResult {
	page := PageResult{Position: position, URL: pageURL}
	domain := siteKey(pageURL)

	if h.Limiter != nil {
		if err := h.Limiter.Wait(ctx, domain); err != nil {
			page.Err = err
			return page
		}
	}

	start := time.Now()
	html, err := fetchWithRetry(ctx, pageURL, h.Fetcher.Fetch, func(u string, attempt int, err error) {
		h.Metrics.IncRetry()
		h.log().Warn("retrying fetch", "url", u, "attempt", attempt, "error", err)
	}, delays)
	h.Metrics.ObserveFetch(time.Since(start))
	if err != nil {
		page.Err = err
		return page
	}

	snap, err := h.Builder.Build(html)
	if err != nil {
		page.Err = err
		return page
	}

	var opts []harvest.DetectOption
	if h.Memory != nil {
		if d, err := h.Memory.Recall(ctx, domain); err == nil {
			opts = append(opts, harvest.WithPreferredSignature(d.Signature))
		} else if harvest.ErrorCode(err) != harvest.ENOTFOUND {
			h.log().Warn("selector memory recall failed", "site", domain, "error", err)
		}
	}

	detected, err := h.Engine.DetectAndExtract(ctx, snap, instruction, opts...)
	if err != nil {
		page.Err = err
		return page
	}

	page.Outcome = detected.Diagnostics.Outcome
	h.Metrics.IncPage(page.Outcome.String())

	switch page.Outcome {
	case harvest.OutcomeContainerFound:
		page.Records = detected.Records
		h.remember(ctx, domain, detected.Diagnostics.Container)

	case harvest.OutcomeStructuralNotFound:
		if h.Fallback == nil {
			return page
		}
		fallback, err := h.Fallback.ExtractOne(html, pageURL)
		if err != nil {
			if harvest.ErrorCode(err) != harvest.ENOTFOUND {
				h.log().Warn("fallback extraction failed", "url", pageURL, "error", err)
			}
			return page
		}
		h.Metrics.IncFallback()
		page.FromFallback = true
		page.Records = applyInstruction(fallback.Record, instruction)
	}
	return page
}

// applyInstruction runs the job's constraints over a fallback record, so
// fallback pages obey the same filtering as container extraction.
func applyInstruction(record harvest.Record, instruction string) []harvest.Record {
	constraints, _ := harvest.ParseConstraints(instruction)
	filtered := harvest.ApplyConstraints([]harvest.Record{record}, constraints)
	return filtered.Passed
}

// remember persists the winning container for the site. Memory failures
// are logged, never fatal.
func (h *Harvester) remember(ctx context.Context, domain string, container *harvest.CandidateContainer) {
	if h.Memory == nil || container == nil {
		return
	}
	err := h.Memory.Remember(ctx, &harvest.ContainerDescriptor{
		SiteKey:   domain,
		Signature: container.Signature,
		Depth:     container.Depth,
		Score:     container.StructuralScore,
		Support:   container.SupportCount,
	})
	if err != nil {
		h.log().Warn("selector memory update failed", "site", domain, "error", err)
	}
}

func (h *Harvester) log() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// siteKey derives the memory and rate-limit key for a URL: its lowercase
// host, or the raw string when parsing fails.
func siteKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(raw)
	}
	return strings.ToLower(u.Host)
}
