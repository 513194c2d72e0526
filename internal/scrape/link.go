package scrape

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrNoCode is returned when no opportunity code can be derived from a link.
var ErrNoCode = errors.New("no opportunity code in url")

// amendmentSuffix matches the trailing "-amendment-N" marker NATO appends to
// a posting's URL slug when it publishes an amendment.
var amendmentSuffix = regexp.MustCompile(`(?i)-amendment-\d+$`)

// ExtractURLEnding returns the last path segment of rawURL with trailing
// separators stripped. The ending is a cheap change signal, never an
// identity key. Empty string when the URL has no path.
func ExtractURLEnding(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return ""
	}

	segments := strings.Split(path, "/")
	return segments[len(segments)-1]
}

// ExtractOpportunityCode derives the stable business identifier embedded in
// a posting URL. The code is the URL's last path segment, lowercased, with
// any amendment suffix removed, so every amendment of one posting maps back
// to the same code:
//
//	.../ifib-act-sact-26-07/             -> ifib-act-sact-26-07
//	.../ifib-act-sact-26-07-amendment-1/ -> ifib-act-sact-26-07
func ExtractOpportunityCode(rawURL string) (string, error) {
	ending := ExtractURLEnding(rawURL)
	if ending == "" {
		return "", fmt.Errorf("%w: %q", ErrNoCode, rawURL)
	}

	code := strings.ToLower(ending)
	code = amendmentSuffix.ReplaceAllString(code, "")
	if code == "" {
		return "", fmt.Errorf("%w: %q", ErrNoCode, rawURL)
	}
	return code, nil
}

// URLsDifferByEnding reports whether two URLs have different endings after
// separator stripping. The comparison is case-sensitive. Differing endings
// are the amendment trigger: any change to the final path segment is treated
// as a content-changing event, even when the deeper content turns out
// identical. When either ending cannot be extracted, the comparison falls
// back to the whole URL.
func URLsDifferByEnding(url1, url2 string) bool {
	if url1 == "" || url2 == "" {
		return url1 != url2
	}

	ending1 := ExtractURLEnding(url1)
	ending2 := ExtractURLEnding(url2)
	if ending1 == "" || ending2 == "" {
		return url1 != url2
	}

	return ending1 != ending2
}
