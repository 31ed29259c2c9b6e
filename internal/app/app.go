// Package app wires config loading, scraping, ranking, and rendering into
// one search invocation.
package app

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/cinefind/internal/fetch"
	"github.com/hyperifyio/cinefind/internal/output"
	"github.com/hyperifyio/cinefind/internal/rank"
	"github.com/hyperifyio/cinefind/internal/scrape"
	"github.com/hyperifyio/cinefind/internal/site"
)

// ErrSiteIndex is returned when -site names an index outside the configured
// range. The CLI reports it and exits without searching anything.
var ErrSiteIndex = fmt.Errorf("site index out of range")

const defaultUserAgent = "cinefind/1.0 (+https://github.com/hyperifyio/cinefind)"

// App is a configured search pipeline over a fixed set of sites.
type App struct {
	cfg     Config
	sites   []site.Config
	scraper *scrape.Scraper
	console *output.Console
}

// New loads and validates the site configuration and builds the pipeline.
// Config problems are fatal here, before any network traffic.
func New(cfg Config) (*App, error) {
	sites, err := site.Load(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load site config: %w", err)
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &App{
		cfg:   cfg,
		sites: sites,
		scraper: &scrape.Scraper{Client: &fetch.Client{
			UserAgent:         ua,
			PerRequestTimeout: timeout,
			RedirectMaxHops:   5,
			MaxConcurrent:     cfg.Concurrency,
		}},
		console: &output.Console{Out: os.Stdout, NoColor: cfg.NoColor},
	}, nil
}

// ListSites prints the configured sites with their -site indexes.
func (a *App) ListSites() {
	a.console.Sites(a.sites)
}

// Run searches the selected sites, ranks the aggregate by similarity to the
// query, and renders the listing.
func (a *App) Run(ctx context.Context) error {
	sites := a.sites
	if a.cfg.SiteIndex >= 0 {
		if a.cfg.SiteIndex >= len(a.sites) {
			return fmt.Errorf("%w: %d (%d sites configured)", ErrSiteIndex, a.cfg.SiteIndex, len(a.sites))
		}
		sites = a.sites[a.cfg.SiteIndex : a.cfg.SiteIndex+1]
	}

	for _, s := range sites {
		a.console.Searching(s.Name)
	}
	results := a.searchAll(ctx, sites)
	ranked := rank.Results(a.cfg.Query, results)

	a.console.Listing(ranked, len(sites))
	if a.cfg.PDFPath != "" {
		if err := output.WritePDF(a.cfg.Query, ranked, len(sites), a.cfg.PDFPath); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		log.Info().Str("out", a.cfg.PDFPath).Msg("wrote pdf report")
	}
	return nil
}

// searchAll scrapes every site through a bounded worker pool. Each site
// writes into its own slot, so the aggregate keeps config order no matter
// which fetch finishes first, and a failed or cancelled site contributes an
// empty slice without disturbing the others.
func (a *App) searchAll(ctx context.Context, sites []site.Config) []site.Result {
	if a.cfg.ShowSpinner {
		spin := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		spin.Suffix = " searching..."
		spin.Start()
		defer spin.Stop()
	}

	workers := a.cfg.Concurrency
	if workers <= 0 {
		workers = 4
	}
	sem := make(chan struct{}, workers)
	groups := make([][]site.Result, len(sites))
	var wg sync.WaitGroup
	for i, cfg := range sites {
		wg.Add(1)
		go func(i int, cfg site.Config) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			groups[i] = a.scraper.Search(ctx, a.cfg.Query, cfg)
		}(i, cfg)
	}
	wg.Wait()

	total := 0
	for _, g := range groups {
		total += len(g)
	}
	out := make([]site.Result, 0, total)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
