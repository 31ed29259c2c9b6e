package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperifyio/cinefind/internal/fetch"
	"github.com/hyperifyio/cinefind/internal/output"
	"github.com/hyperifyio/cinefind/internal/scrape"
	"github.com/hyperifyio/cinefind/internal/site"
)

func listingServer(t *testing.T, titles ...string) *httptest.Server {
	t.Helper()
	var b strings.Builder
	b.WriteString("<html><body>")
	for i, title := range titles {
		fmt.Fprintf(&b, `<div class="result"><a href="/watch/%d">play</a><h2 class="title">%s</h2></div>`, i+1, title)
	}
	b.WriteString("</body></html>")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(b.String()))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func siteFor(name, base string) site.Config {
	return site.Config{
		Name:             name,
		URL:              base,
		SearchURLPattern: base + "/search?q={story}",
		ItemSelector:     "div.result",
		LinkSelector:     "a",
		TitleSelector:    "h2.title",
	}
}

func newTestApp(cfg Config, sites []site.Config, out *bytes.Buffer) *App {
	return &App{
		cfg:   cfg,
		sites: sites,
		scraper: &scrape.Scraper{Client: &fetch.Client{
			PerRequestTimeout: 2 * time.Second,
		}},
		console: &output.Console{Out: out, NoColor: true},
	}
}

func TestRun_AggregatesAndRanks(t *testing.T) {
	first := listingServer(t, "The Matrix Reloaded", "Matrix")
	second := listingServer(t, "Matriix")

	var out bytes.Buffer
	a := newTestApp(Config{Query: "matrix", SiteIndex: -1, Concurrency: 2},
		[]site.Config{siteFor("one", first.URL), siteFor("two", second.URL)}, &out)

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Found 3 results across 2 websites:") {
		t.Fatalf("missing summary in output:\n%s", got)
	}
	// Closest match first: Matrix (0), Matriix (1), The Matrix Reloaded (11).
	iMatrix := strings.Index(got, "Matrix -> ")
	iMatriix := strings.Index(got, "Matriix -> ")
	iReloaded := strings.Index(got, "The Matrix Reloaded -> ")
	if iMatrix < 0 || iMatriix < 0 || iReloaded < 0 {
		t.Fatalf("missing results in output:\n%s", got)
	}
	if !(iMatrix < iMatriix && iMatriix < iReloaded) {
		t.Fatalf("results out of order:\n%s", got)
	}
}

func TestRun_FailedSiteDegrades(t *testing.T) {
	healthy := listingServer(t, "Matrix")
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	t.Cleanup(broken.Close)

	var out bytes.Buffer
	a := newTestApp(Config{Query: "matrix", SiteIndex: -1},
		[]site.Config{siteFor("broken", broken.URL), siteFor("healthy", healthy.URL)}, &out)

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Found 1 results across 2 websites:") {
		t.Fatalf("missing summary in output:\n%s", got)
	}
	if !strings.Contains(got, "Matrix -> ") {
		t.Fatalf("healthy site's result missing:\n%s", got)
	}
}

func TestRun_SiteIndexRestriction(t *testing.T) {
	first := listingServer(t, "Matrix")
	second := listingServer(t, "Matrix Reloaded")

	var out bytes.Buffer
	a := newTestApp(Config{Query: "matrix", SiteIndex: 1},
		[]site.Config{siteFor("one", first.URL), siteFor("two", second.URL)}, &out)

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Found 1 results across 1 websites:") {
		t.Fatalf("missing summary in output:\n%s", got)
	}
	if strings.Contains(got, "Searching on one") {
		t.Fatalf("restricted run searched the wrong site:\n%s", got)
	}
}

func TestRun_SiteIndexOutOfRange(t *testing.T) {
	var out bytes.Buffer
	a := newTestApp(Config{Query: "matrix", SiteIndex: 5},
		[]site.Config{siteFor("one", "https://movies.example.com")}, &out)

	err := a.Run(context.Background())
	if !errors.Is(err, ErrSiteIndex) {
		t.Fatalf("expected ErrSiteIndex, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output before the index check, got:\n%s", out.String())
	}
}

func TestRun_ConfigOrderPreservedOnTies(t *testing.T) {
	// Equal-distance titles: the slower site is configured first and must
	// still come first in the aggregate despite finishing last.
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><div class="result"><a href="/watch/slow">p</a><h2 class="title">abd</h2></div></body></html>`))
	}))
	t.Cleanup(slow.Close)
	fast := listingServer(t, "abe")

	var out bytes.Buffer
	a := newTestApp(Config{Query: "abc", SiteIndex: -1, Concurrency: 2},
		[]site.Config{siteFor("slow", slow.URL), siteFor("fast", fast.URL)}, &out)

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.String()
	iSlow := strings.Index(got, "abd -> ")
	iFast := strings.Index(got, "abe -> ")
	if iSlow < 0 || iFast < 0 {
		t.Fatalf("missing results:\n%s", got)
	}
	if iSlow > iFast {
		t.Fatalf("config order not preserved on tie:\n%s", got)
	}
}

func TestNew_ValidatesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`[{"url": "not a url"}]`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := New(Config{ConfigPath: path, Query: "matrix", SiteIndex: -1}); err == nil {
		t.Fatalf("expected error for invalid config file")
	}
}
