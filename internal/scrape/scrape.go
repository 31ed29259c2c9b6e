// Package scrape turns one configured site's search page into structured
// results.
package scrape

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/hyperifyio/cinefind/internal/fetch"
	"github.com/hyperifyio/cinefind/internal/selector"
	"github.com/hyperifyio/cinefind/internal/site"
)

// Scraper fetches search pages and extracts their result listings.
type Scraper struct {
	Client *fetch.Client
}

// Search queries one site for the given story and extracts its results.
// Failures here are recoverable by design: timeouts, transport errors, and
// selectors that match nothing degrade to an empty slice so one bad site
// never aborts the aggregation. Errors are logged and swallowed.
func (s *Scraper) Search(ctx context.Context, query string, cfg site.Config) []site.Result {
	searchURL := strings.ReplaceAll(cfg.SearchURLPattern, site.Placeholder, url.QueryEscape(query))
	log.Debug().Str("site", cfg.Name).Str("url", searchURL).Msg("fetching search page")

	body, _, err := s.Client.Get(ctx, searchURL, cfg.Cookie)
	if err != nil {
		log.Warn().Err(err).Str("site", cfg.Name).Msg("fetch failed; skipping site")
		return nil
	}
	results, err := Extract(body, cfg)
	if err != nil {
		log.Warn().Err(err).Str("site", cfg.Name).Msg("extract failed; skipping site")
		return nil
	}
	log.Debug().Str("site", cfg.Name).Int("results", len(results)).Msg("extracted results")
	return results
}

// Extract applies the site's selectors to a fetched document: one item per
// ItemSelector match, with the title text and link href looked up inside each
// item. Relative hrefs are resolved against the site base URL so callers
// always see absolute URLs. Items missing a link or title are skipped.
func Extract(body []byte, cfg site.Config) ([]site.Result, error) {
	itemSel, err := selector.Parse(cfg.ItemSelector)
	if err != nil {
		return nil, fmt.Errorf("item selector: %w", err)
	}
	linkSel, err := selector.Parse(cfg.LinkSelector)
	if err != nil {
		return nil, fmt.Errorf("link selector: %w", err)
	}
	titleSel, err := selector.Parse(cfg.TitleSelector)
	if err != nil {
		return nil, fmt.Errorf("title selector: %w", err)
	}
	base, err := cfg.Base()
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var results []site.Result
	for _, item := range itemSel.Select(doc) {
		link := linkSel.SelectOne(item)
		title := titleSel.SelectOne(item)
		if link == nil || title == nil {
			continue
		}
		href := strings.TrimSpace(selector.Attr(link, "href"))
		if href == "" {
			continue
		}
		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		text := nodeText(title)
		if text == "" {
			continue
		}
		results = append(results, site.Result{
			Title: text,
			URL:   base.ResolveReference(ref).String(),
		})
	}
	return results, nil
}

// nodeText collects the text content of a node with whitespace runs collapsed
// to single spaces.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return collapseSpaces(strings.TrimSpace(b.String()))
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}
