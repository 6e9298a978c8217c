package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/batch"
	"github.com/fwojciec/harvest/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	DB        *sqlite.DB
	Memory    harvest.SelectorMemory
	Engine    *harvest.Engine
	Fetcher   harvest.Fetcher
	Builder   harvest.SnapshotBuilder
	Harvester *batch.Harvester
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging"`

	Run       RunCmd       `cmd:"" help:"Harvest records from one or more listing pages"`
	Detect    DetectCmd    `cmd:"" help:"Detect the record container on a single page and show diagnostics"`
	Selectors SelectorsCmd `cmd:"" help:"Manage remembered container selectors"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	Instruction string   `arg:"" help:"What to harvest, e.g. 'wooden toys under 950zł'"`
	URLs        []string `arg:"" name:"url" help:"Listing page URLs"`
	Concurrency int      `short:"c" default:"4" help:"Concurrent page limit"`
	RPS         float64  `name:"rps" default:"1" help:"Requests per second per domain"`
	JSON        bool     `help:"Emit records as JSON"`
	Out         string   `short:"o" help:"Export records as markdown files under this directory"`
	Hints       string   `type:"existingfile" help:"YAML file overriding field detection hints"`
}

// DetectCmd is the "detect" subcommand.
type DetectCmd struct {
	URL         string `arg:"" help:"Page URL"`
	Instruction string `short:"i" help:"Subject for semantic validation and filtering"`
	JSON        bool   `help:"Emit the full result as JSON"`
	Hints       string `type:"existingfile" help:"YAML file overriding field detection hints"`
}

// SelectorsCmd groups the selector memory subcommands.
type SelectorsCmd struct {
	List   SelectorsListCmd   `cmd:"" help:"List remembered selectors"`
	Forget SelectorsForgetCmd `cmd:"" help:"Forget the selector for a site"`
}

// SelectorsListCmd is the "selectors list" subcommand.
type SelectorsListCmd struct{}

// SelectorsForgetCmd is the "selectors forget" subcommand.
type SelectorsForgetCmd struct {
	Site string `arg:"" help:"Site key (lowercase host), e.g. shop.example.com"`
}
