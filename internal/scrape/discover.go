package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/natowatch/natowatch/internal/logger"
	"github.com/natowatch/natowatch/internal/sources"
	"github.com/natowatch/natowatch/internal/utils"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// maxListingBytes bounds how much of a listing page we read.
	maxListingBytes = 8 << 20
)

// anchorTag pulls href and anchor text out of listing HTML. The source
// listings are flat link lists; a full DOM parse buys nothing here.
var anchorTag = regexp.MustCompile(`(?is)<a\s+[^>]*href\s*=\s*"([^"]+)"[^>]*>(.*?)</a>`)

var htmlTag = regexp.MustCompile(`(?s)<[^>]*>`)

// SiteDiscoverer fetches a source listing page and returns the opportunity
// links that match the source's URL pattern, in document order.
type SiteDiscoverer struct {
	client  *http.Client
	baseURL *url.URL
	pattern *regexp.Regexp
	log     logger.Logger
}

// NewSiteDiscoverer builds a discoverer for one source config. The config
// is assumed validated by the sources loader.
func NewSiteDiscoverer(src sources.SourceConfig, timeout time.Duration, log logger.Logger) (*SiteDiscoverer, error) {
	base, err := url.Parse(src.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	pattern, err := regexp.Compile(src.URLPattern)
	if err != nil {
		return nil, fmt.Errorf("compile url pattern: %w", err)
	}
	return &SiteDiscoverer{
		client:  &http.Client{Timeout: timeout},
		baseURL: base,
		pattern: pattern,
		log:     log,
	}, nil
}

// Discover implements Discoverer. Any fetch or parse failure is fatal for
// the run: a partial listing must never be reconciled, or every missing
// link would read as vanished.
func (d *SiteDiscoverer) Discover(ctx context.Context) ([]Link, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build listing request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing %s: %w", d.baseURL, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch listing %s: status %d", d.baseURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxListingBytes))
	if err != nil {
		return nil, fmt.Errorf("read listing body: %w", err)
	}

	var links []Link
	for _, match := range anchorTag.FindAllStringSubmatch(string(body), -1) {
		href := strings.TrimSpace(match[1])
		if href == "" {
			continue
		}
		resolved := d.resolve(href)
		if resolved == "" || !d.pattern.MatchString(resolved) {
			continue
		}
		text := strings.TrimSpace(htmlTag.ReplaceAllString(match[2], ""))
		links = append(links, Link{URL: resolved, Text: text})
	}

	d.log.Debug("listing scanned",
		logger.String("url", d.baseURL.String()),
		logger.Int("links", len(links)))

	return links, nil
}

// resolve turns relative hrefs into absolute URLs against the listing page.
func (d *SiteDiscoverer) resolve(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return d.baseURL.ResolveReference(ref).String()
}
