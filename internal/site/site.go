// Package site defines the per-website search configuration and the raw
// results scraped from one.
package site

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/cinefind/internal/selector"
)

// Placeholder is substituted with the URL-escaped query inside a site's
// search URL pattern.
const Placeholder = "{story}"

// Result is a single scraped hit: a movie title and where to watch it.
type Result struct {
	Title string
	URL   string
}

// Config describes how to query one website and read its result listing.
// Configs are validated once at load time and read-only afterwards.
type Config struct {
	// Name is the display name shown while searching. Defaults to the host
	// of URL when omitted.
	Name string `yaml:"name" json:"name"`
	// URL is the site base URL; relative result links resolve against it.
	URL string `yaml:"url" json:"url"`
	// SearchURLPattern is the full search URL with a {story} placeholder.
	SearchURLPattern string `yaml:"searchURLPattern" json:"searchURLPattern"`
	// ItemSelector matches one container element per result.
	ItemSelector string `yaml:"itemSelector" json:"itemSelector"`
	// LinkSelector matches the link element within an item.
	LinkSelector string `yaml:"linkSelector" json:"linkSelector"`
	// TitleSelector matches the title element within an item.
	TitleSelector string `yaml:"titleSelector" json:"titleSelector"`
	// Cookie, when set, is sent as the Cookie request header. ${VAR}
	// references are expanded from the environment at load time so
	// credentials can live in a .env file instead of the config.
	Cookie string `yaml:"cookie" json:"cookie"`
}

// Base returns the parsed base URL. Always succeeds for a validated Config.
func (c Config) Base() (*url.URL, error) {
	return url.Parse(c.URL)
}

func (c Config) validate() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", c.URL, err)
	}
	if !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("url %q must be absolute http(s)", c.URL)
	}
	if strings.TrimSpace(c.SearchURLPattern) == "" {
		return errors.New("searchURLPattern is required")
	}
	if !strings.Contains(c.SearchURLPattern, Placeholder) {
		return fmt.Errorf("searchURLPattern %q is missing the %s placeholder", c.SearchURLPattern, Placeholder)
	}
	for _, sel := range []struct{ name, value string }{
		{"itemSelector", c.ItemSelector},
		{"linkSelector", c.LinkSelector},
		{"titleSelector", c.TitleSelector},
	} {
		if strings.TrimSpace(sel.value) == "" {
			return fmt.Errorf("%s is required", sel.name)
		}
		if _, err := selector.Parse(sel.value); err != nil {
			return fmt.Errorf("%s: %w", sel.name, err)
		}
	}
	return nil
}

// Load reads site configurations from a JSON or YAML file and validates every
// record, so malformed configs fail loudly at startup rather than at first
// use. The format is picked by extension, with a YAML-then-JSON fallback for
// unknown extensions.
func Load(path string) ([]Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var configs []Config
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &configs); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &configs); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &configs); err != nil {
			if jerr := json.Unmarshal(b, &configs); jerr != nil {
				return nil, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	if len(configs) == 0 {
		return nil, fmt.Errorf("config %s defines no sites", path)
	}
	for i := range configs {
		configs[i].URL = strings.TrimSpace(configs[i].URL)
		if err := configs[i].validate(); err != nil {
			return nil, fmt.Errorf("site %d: %w", i, err)
		}
		configs[i].Cookie = os.ExpandEnv(configs[i].Cookie)
		if strings.TrimSpace(configs[i].Name) == "" {
			u, _ := configs[i].Base()
			configs[i].Name = u.Host
		}
	}
	return configs, nil
}
