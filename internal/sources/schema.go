package sources

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "6h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts back to a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Catalog is the top-level structure of sources.yaml.
type Catalog struct {
	Sources []SourceConfig `yaml:"sources"`
}

// SourceConfig describes one scraped listing page. The (NATOBody, Category)
// pair is the reconciliation scope: runs for the same pair are mutually
// exclusive, runs for different pairs are independent.
type SourceConfig struct {
	Name     string `yaml:"name"`      // ex: "act-ifib"
	NATOBody string `yaml:"nato_body"` // ex: "ACT"
	Category string `yaml:"category"`  // opportunity type, ex: "IFIB"

	BaseURL    string `yaml:"base_url"`    // listing page to discover links on
	URLPattern string `yaml:"url_pattern"` // regexp an opportunity link must match

	Enabled  bool     `yaml:"enabled"`
	Mode     string   `yaml:"mode"`     // "incremental" (default) or "full"
	Interval Duration `yaml:"interval"` // scrape interval, ex: 6h
}
