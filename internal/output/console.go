// Package output renders ranked search results for humans, on the console
// and optionally as a PDF report.
package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/hyperifyio/cinefind/internal/site"
)

// Console writes colored, human-readable search output. Coloring is explicit
// per-instance state rather than ambient process state, so pipes and tests
// can turn it off.
type Console struct {
	Out     io.Writer
	NoColor bool
}

// Searching announces that a site is being queried.
func (c *Console) Searching(name string) {
	c.colored(color.FgCyan, "Searching on %s", name)
}

// Listing prints the ranked results preceded by a count summary.
func (c *Console) Listing(results []site.Result, sitesSearched int) {
	fmt.Fprintln(c.Out)
	c.colored(color.FgGreen, "Found %d results across %d websites:", len(results), sitesSearched)
	for _, r := range results {
		fmt.Fprintf(c.Out, "%s -> %s\n", r.Title, r.URL)
	}
}

// Sites prints the configured sites with the indexes accepted by -site.
func (c *Console) Sites(configs []site.Config) {
	for i, s := range configs {
		fmt.Fprintf(c.Out, "%d: %s (%s)\n", i, s.Name, s.URL)
	}
}

func (c *Console) colored(attr color.Attribute, format string, args ...any) {
	col := color.New(attr)
	if c.NoColor {
		col.DisableColor()
	} else {
		col.EnableColor()
	}
	_, _ = col.Fprintf(c.Out, format+"\n", args...)
}
