package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/batch"
	"github.com/fwojciec/harvest/fs"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	if c.Hints != "" {
		hints, err := loadHints(c.Hints)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
			return err
		}
		deps.Engine.Hints = hints
	}

	progress := func(event batch.ProgressEvent) {
		switch event.Type {
		case batch.ProgressStarted:
			fmt.Fprintf(deps.Stderr, "Harvesting %d pages\n", event.Total)
		case batch.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", event.URL, event.Error)
		}
	}

	result, err := deps.Harvester.Run(deps.Ctx, batch.Job{
		Instruction: c.Instruction,
		URLs:        c.URLs,
	}, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	if c.Out != "" {
		if err := exportRecords(c.Out, result.Records); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stderr, "Wrote %d files to %s\n", len(result.Records), c.Out)
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Records); err != nil {
			return err
		}
	} else {
		for _, r := range result.Records {
			printRecordLine(deps, &r)
		}
	}

	fmt.Fprintf(deps.Stderr, "Extracted %d records from %d pages (%d failed, %d duplicates removed)\n",
		len(result.Records), result.Pages, result.Failed, result.Deduped)
	return nil
}

// printRecordLine writes one record as a name / price / url line.
func printRecordLine(deps *Dependencies, r *harvest.Record) {
	name, _ := r.Get(harvest.FieldName)
	price, _ := r.Get(harvest.FieldPrice)
	url, _ := r.Get(harvest.FieldURL)
	fmt.Fprintf(deps.Stdout, "%s\t%s\t%s\n", name, price, url)
}

// exportRecords writes the records as markdown files, atomically
// replacing any previous export at the same path.
func exportRecords(out string, records []harvest.Record) error {
	exporter := fs.NewExporter(filepath.Dir(out), filepath.Base(out))
	for i := range records {
		if err := exporter.Save(&records[i]); err != nil {
			_ = exporter.Abort()
			return err
		}
	}
	return exporter.Commit()
}

// loadHints reads a YAML hint override file.
func loadHints(path string) (*harvest.HintSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, harvest.Errorf(harvest.EINVALID, "failed to read hints file %q: %v", path, err)
	}
	return harvest.ParseHints(data)
}
