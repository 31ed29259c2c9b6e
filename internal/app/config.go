package app

import "time"

// Config holds runtime configuration for one invocation.
type Config struct {
	// ConfigPath locates the JSON or YAML site configuration file.
	ConfigPath string
	// Query is the free-text story to search for.
	Query string
	// SiteIndex restricts the search to one configured site. Negative
	// searches every site.
	SiteIndex int

	// Behavior
	Timeout     time.Duration
	Concurrency int
	UserAgent   string

	// Output
	PDFPath     string
	NoColor     bool
	ShowSpinner bool
	Verbose     bool
}
