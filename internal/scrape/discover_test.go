package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/natowatch/natowatch/internal/logger"
	"github.com/natowatch/natowatch/internal/sources"
)

const listingHTML = `<html><body>
<h2>Active opportunities</h2>
<ul>
<li><a href="/business/opportunities/ifib-act-sact-26-07/">IFIB-ACT-SACT-26-07 <b>Training Support</b></a></li>
<li><a href="/business/opportunities/rfi-act-sact-25-113/">RFI 25-113</a></li>
<li><a href="https://www.act.nato.int/business/opportunities/noi-act-sact-26-02/">NOI 26-02</a></li>
<li><a href="/about/">About us</a></li>
<li><a href="">empty</a></li>
</ul>
</body></html>`

func testSource(baseURL string) sources.SourceConfig {
	return sources.SourceConfig{
		Name:       "act",
		NATOBody:   "ACT",
		Category:   "IFIB",
		BaseURL:    baseURL,
		URLPattern: `/business/opportunities/[^/]+/?$`,
	}
}

func TestDiscoverFiltersAndResolvesLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("listing request must carry a user agent")
		}
		_, _ = w.Write([]byte(listingHTML))
	}))
	defer srv.Close()

	d, err := NewSiteDiscoverer(testSource(srv.URL+"/business/opportunities/"), 5*time.Second, logger.Nop())
	if err != nil {
		t.Fatalf("NewSiteDiscoverer() error: %v", err)
	}

	links, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}

	if len(links) != 3 {
		t.Fatalf("got %d links, want 3: %+v", len(links), links)
	}
	if links[0].URL != srv.URL+"/business/opportunities/ifib-act-sact-26-07/" {
		t.Errorf("first link = %q, want resolved relative href", links[0].URL)
	}
	if links[0].Text != "IFIB-ACT-SACT-26-07 Training Support" {
		t.Errorf("anchor text = %q, want tags stripped", links[0].Text)
	}
	if links[2].URL != "https://www.act.nato.int/business/opportunities/noi-act-sact-26-02/" {
		t.Errorf("absolute href must pass through unchanged, got %q", links[2].URL)
	}
}

func TestDiscoverNonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	d, err := NewSiteDiscoverer(testSource(srv.URL), 5*time.Second, logger.Nop())
	if err != nil {
		t.Fatalf("NewSiteDiscoverer() error: %v", err)
	}

	if _, err := d.Discover(context.Background()); err == nil {
		t.Fatal("Discover() should fail on a non-200 listing")
	}
}

func TestDiscoverBadPatternRejectedAtConstruction(t *testing.T) {
	src := testSource("https://www.act.nato.int/")
	src.URLPattern = `([`
	if _, err := NewSiteDiscoverer(src, time.Second, logger.Nop()); err == nil {
		t.Fatal("NewSiteDiscoverer() should reject an invalid pattern")
	}
}
