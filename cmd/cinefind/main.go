package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/cinefind/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		configPath  string
		listSites   bool
		siteIndex   int
		timeout     time.Duration
		concurrency int
		pdfPath     string
		noColor     bool
		verbose     bool
	)

	flag.StringVar(&configPath, "config", "config.json", "Path to the site configuration file (JSON or YAML)")
	flag.BoolVar(&listSites, "list", false, "List the configured sites by index and exit")
	flag.IntVar(&siteIndex, "site", -1, "Restrict the search to a single site by index (see -list)")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "Per-site request timeout")
	flag.IntVar(&concurrency, "concurrency", 4, "Maximum number of sites fetched at once")
	flag.StringVar(&pdfPath, "pdf", "", "Also write the ranked listing as a PDF report to this path")
	flag.BoolVar(&noColor, "no-color", false, "Disable colored output")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Usage = usage
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Site cookies may reference ${VARS} kept in a local .env.
	_ = godotenv.Load()

	query := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if query == "" && !listSites {
		usage()
		os.Exit(2)
	}

	cfg := app.Config{
		ConfigPath:  configPath,
		Query:       query,
		SiteIndex:   siteIndex,
		Timeout:     timeout,
		Concurrency: concurrency,
		PDFPath:     pdfPath,
		NoColor:     noColor,
		ShowSpinner: !verbose && !noColor,
		Verbose:     verbose,
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Error().Err(err).Msg("startup failed")
		os.Exit(1)
	}
	if listSites {
		a.ListSites()
		return
	}
	if err := a.Run(context.Background()); err != nil {
		if errors.Is(err, app.ErrSiteIndex) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		log.Error().Err(err).Msg("search failed")
		os.Exit(1)
	}
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: cinefind [flags] <query>\n\n")
	fmt.Fprintf(out, "Searches the configured movie sites for <query> and prints the results\nranked by title similarity, closest match first.\n\nFlags:\n")
	flag.PrintDefaults()
}
