package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const detailHTML = `<html><head><title>ACT | Opportunities</title></head><body>
<h1>Provision of <em>Training Support</em> Services</h1>
<p>Bid Closing Date: 15 November 2026 at 14:00 CET</p>
<p>Clarification deadline: 1 October 2026</p>
<p>Contract type: Firm Fixed Price</p>
<p>Contract duration: 12 months</p>
<p><a href="/documents/ifib-act-sact-26-07.pdf">Download IFIB</a></p>
<p>Contact: <a href="mailto:procurement@act.nato.int?subject=IFIB">procurement</a></p>
</body></html>`

func TestExtractFieldsFromDetailPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(detailHTML))
	}))
	defer srv.Close()

	src := testSource("https://www.act.nato.int/business/opportunities/")
	e := NewPageExtractor(src, 5*time.Second)

	pageURL := srv.URL + "/business/opportunities/ifib-act-sact-26-07/"
	fields, err := e.Extract(context.Background(), pageURL)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if fields.URL != pageURL {
		t.Errorf("url = %q, want page url", fields.URL)
	}
	if fields.SourceURL != src.BaseURL || fields.NATOBody != "ACT" || fields.OpportunityType != "IFIB" {
		t.Errorf("source constants not carried: %+v", fields)
	}
	if fields.OpportunityName != "Provision of Training Support Services" {
		t.Errorf("name = %q, want h1 with tags stripped", fields.OpportunityName)
	}
	if fields.BidClosingDate != "15 November 2026 at 14:00 CET" {
		t.Errorf("bid_closing_date = %q", fields.BidClosingDate)
	}
	if fields.BidClosingDateParsed == nil {
		t.Fatal("bid closing date should parse")
	}
	if got := *fields.BidClosingDateParsed; got.Year() != 2026 || got.Month() != time.November || got.Day() != 15 || got.Hour() != 14 {
		t.Errorf("parsed closing = %v", got)
	}
	if fields.ClarificationDeadlineParsed == nil {
		t.Error("clarification deadline should parse")
	}
	if fields.ContractType != "Firm Fixed Price" || fields.ContractDuration != "12 months" {
		t.Errorf("labeled fields = %q / %q", fields.ContractType, fields.ContractDuration)
	}
	if fields.PDFURL != srv.URL+"/documents/ifib-act-sact-26-07.pdf" {
		t.Errorf("pdf url = %q, want resolved against page", fields.PDFURL)
	}
	if fields.ContactEmail != "procurement@act.nato.int" {
		t.Errorf("contact = %q", fields.ContactEmail)
	}
}

func TestExtractNameFallsBackToSlug(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>no headings here</p></body></html>`))
	}))
	defer srv.Close()

	e := NewPageExtractor(testSource("https://www.act.nato.int/"), 5*time.Second)
	fields, err := e.Extract(context.Background(), srv.URL+"/business/opportunities/rfi-act-sact-25-113/")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if fields.OpportunityName != "rfi-act-sact-25-113" {
		t.Errorf("name = %q, want url slug fallback", fields.OpportunityName)
	}
}

func TestExtractNonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	e := NewPageExtractor(testSource("https://www.act.nato.int/"), 5*time.Second)
	if _, err := e.Extract(context.Background(), srv.URL+"/gone/"); err == nil {
		t.Fatal("Extract() should fail on a 404 detail page")
	}
}
