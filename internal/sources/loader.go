// Package sources loads the scraper source catalog from YAML.
package sources

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultInterval = Duration(6 * time.Hour)

// Loader handles loading and validating sources.yaml.
type Loader struct {
	filePath string
}

// NewLoader creates a catalog loader for the given file.
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load reads, parses and validates the catalog. Disabled sources are kept
// in the result; callers filter on Enabled.
func (l *Loader) Load() (*Catalog, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse sources yaml: %w", err)
	}

	seen := make(map[string]bool, len(catalog.Sources))
	for i := range catalog.Sources {
		src := &catalog.Sources[i]
		if err := validate(src); err != nil {
			return nil, fmt.Errorf("source %q: %w", src.Name, err)
		}
		if seen[src.Name] {
			return nil, fmt.Errorf("duplicate source name %q", src.Name)
		}
		seen[src.Name] = true
		if src.Interval <= 0 {
			src.Interval = defaultInterval
		}
		if src.Mode == "" {
			src.Mode = "incremental"
		}
	}

	return &catalog, nil
}

func validate(src *SourceConfig) error {
	if src.Name == "" {
		return fmt.Errorf("name is required")
	}
	if src.NATOBody == "" {
		return fmt.Errorf("nato_body is required")
	}
	if src.Category == "" {
		return fmt.Errorf("category is required")
	}

	parsed, err := url.Parse(src.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("base_url %q is not an absolute URL", src.BaseURL)
	}

	if src.URLPattern == "" {
		return fmt.Errorf("url_pattern is required")
	}
	if _, err := regexp.Compile(src.URLPattern); err != nil {
		return fmt.Errorf("url_pattern does not compile: %w", err)
	}

	if src.Mode != "" && src.Mode != "incremental" && src.Mode != "full" {
		return fmt.Errorf("mode %q must be incremental or full", src.Mode)
	}

	return nil
}
