package scrape

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/natowatch/natowatch/internal/dates"
	"github.com/natowatch/natowatch/internal/domain"
	"github.com/natowatch/natowatch/internal/sources"
	"github.com/natowatch/natowatch/internal/utils"
)

const maxDetailBytes = 8 << 20

var (
	titleTag = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	h1Tag    = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	pdfHref  = regexp.MustCompile(`(?i)href\s*=\s*"([^"]+\.pdf)"`)
	mailHref = regexp.MustCompile(`(?i)mailto:([^"?\s<>]+)`)
)

// labeled fields scraped from the detail page text. This is the shallow
// stand-in for the document extraction pipeline, which is outside this
// service: whatever produces the field set, the engine only diffs it.
var labelPatterns = []struct {
	field   string
	pattern *regexp.Regexp
}{
	{"bid_closing_date", regexp.MustCompile(`(?i)(?:bid\s+closing\s+date|closing\s+date|deadline\s+for\s+bids?)\s*:?\s*([^<\n]+)`)},
	{"clarification_deadline", regexp.MustCompile(`(?i)clarification\s+(?:deadline|request[s]?\s+due)\s*:?\s*([^<\n]+)`)},
	{"expected_award", regexp.MustCompile(`(?i)(?:expected\s+)?contract\s+award\s+date\s*:?\s*([^<\n]+)`)},
	{"contract_type", regexp.MustCompile(`(?i)contract\s+type\s*:?\s*([^<\n]+)`)},
	{"contract_duration", regexp.MustCompile(`(?i)contract\s+duration\s*:?\s*([^<\n]+)`)},
}

// PageExtractor produces a field set from an opportunity detail page.
type PageExtractor struct {
	client *http.Client
	src    sources.SourceConfig
}

// NewPageExtractor builds an extractor bound to one source config, which
// supplies the NATO body, category and source URL constants.
func NewPageExtractor(src sources.SourceConfig, timeout time.Duration) *PageExtractor {
	return &PageExtractor{
		client: &http.Client{Timeout: timeout},
		src:    src,
	}
}

// Extract implements Extractor. Failures are per-item: the orchestrator
// records them and moves on.
func (e *PageExtractor) Extract(ctx context.Context, pageURL string) (domain.FieldSet, error) {
	var fields domain.FieldSet

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return fields, fmt.Errorf("build detail request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return fields, fmt.Errorf("fetch detail page %s: %w", pageURL, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fields, fmt.Errorf("fetch detail page %s: status %d", pageURL, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxDetailBytes))
	if err != nil {
		return fields, fmt.Errorf("read detail body: %w", err)
	}
	body := string(raw)

	fields.URL = pageURL
	fields.SourceURL = e.src.BaseURL
	fields.NATOBody = e.src.NATOBody
	fields.OpportunityType = e.src.Category
	fields.OpportunityName = extractName(body, pageURL)
	fields.PDFURL = e.resolveAgainst(pageURL, firstGroup(pdfHref, body))
	fields.ContactEmail = firstGroup(mailHref, body)

	for _, lp := range labelPatterns {
		value := cleanText(firstGroup(lp.pattern, body))
		switch lp.field {
		case "bid_closing_date":
			fields.BidClosingDate = value
			fields.BidClosingDateParsed = dates.Parse(value)
		case "clarification_deadline":
			fields.ClarificationDeadline = value
			fields.ClarificationDeadlineParsed = dates.Parse(value)
		case "expected_award":
			fields.ExpectedContractAward = value
		case "contract_type":
			fields.ContractType = value
		case "contract_duration":
			fields.ContractDuration = value
		}
	}

	return fields, nil
}

func extractName(body, pageURL string) string {
	if name := cleanText(firstGroup(h1Tag, body)); name != "" {
		return name
	}
	if name := cleanText(firstGroup(titleTag, body)); name != "" {
		return name
	}
	// Last resort: the URL slug is at least stable and human readable.
	return ExtractURLEnding(pageURL)
}

func (e *PageExtractor) resolveAgainst(pageURL, href string) string {
	if href == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func firstGroup(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

func cleanText(s string) string {
	s = htmlTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}
