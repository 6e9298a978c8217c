package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/harvest"
)

// Run executes the detect command.
func (c *DetectCmd) Run(deps *Dependencies) error {
	if c.Hints != "" {
		hints, err := loadHints(c.Hints)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
			return err
		}
		deps.Engine.Hints = hints
	}

	html, err := deps.Fetcher.Fetch(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	snap, err := deps.Builder.Build(html)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	var opts []harvest.DetectOption
	if d, err := deps.Memory.Recall(deps.Ctx, siteKey(c.URL)); err == nil {
		opts = append(opts, harvest.WithPreferredSignature(d.Signature))
	}

	result, err := deps.Engine.DetectAndExtract(deps.Ctx, snap, c.Instruction, opts...)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	diag := result.Diagnostics
	fmt.Fprintf(deps.Stdout, "Outcome:    %s\n", diag.Outcome)
	fmt.Fprintf(deps.Stdout, "Candidates: %d\n", diag.CandidateCount)
	fmt.Fprintf(deps.Stdout, "Validation: %s\n", diag.Validation)
	if diag.ValidatorError != "" {
		fmt.Fprintf(deps.Stdout, "Validator error: %s\n", diag.ValidatorError)
	}
	if diag.Container != nil {
		fmt.Fprintf(deps.Stdout, "Container:  %s (support %d, score %.2f)\n",
			diag.Container.Signature, diag.Container.SupportCount, diag.Container.StructuralScore)
	}
	fmt.Fprintf(deps.Stdout, "Records:    %d extracted, %d dropped, %d passed filtering\n",
		diag.RecordsExtracted, diag.RecordsDropped, len(result.Records))
	for _, w := range diag.Warnings {
		fmt.Fprintf(deps.Stderr, "warning: %q %s\n", w.Mention, w.Reason)
	}
	for _, r := range result.Records {
		printRecordLine(deps, &r)
	}
	return nil
}
