package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/fwojciec/harvest"
)

// Run executes the selectors list command.
func (c *SelectorsListCmd) Run(deps *Dependencies) error {
	descriptors, err := deps.Memory.List(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	if len(descriptors) == 0 {
		fmt.Fprintln(deps.Stdout, "No selectors remembered yet. Run 'harvest run' to populate the memory.")
		return nil
	}

	for _, d := range descriptors {
		fmt.Fprintf(deps.Stdout, "%s  %s  support=%d  score=%.2f  %s\n",
			d.SiteKey, d.Signature, d.Support, d.Score, d.UpdatedAt.Format("2006-01-02"))
	}
	return nil
}

// Run executes the selectors forget command.
func (c *SelectorsForgetCmd) Run(deps *Dependencies) error {
	site := strings.ToLower(c.Site)
	if err := deps.Memory.Forget(deps.Ctx, site); err != nil {
		if harvest.ErrorCode(err) == harvest.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: no selector remembered for %q. Use 'harvest selectors list' to see stored sites.\n", site)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "Forgot selector for %q\n", site)
	return nil
}

// siteKey derives the memory key for a URL: its lowercase host.
func siteKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(raw)
	}
	return strings.ToLower(u.Host)
}
