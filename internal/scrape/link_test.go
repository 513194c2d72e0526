package scrape

import (
	"errors"
	"testing"
)

func TestExtractURLEnding(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "trailing slash stripped",
			url:  "https://www.act.nato.int/opportunities/contracting/ifib-act-sact-26-07/",
			want: "ifib-act-sact-26-07",
		},
		{
			name: "no trailing slash",
			url:  "https://www.act.nato.int/opportunities/contracting/ifib-act-sact-26-07",
			want: "ifib-act-sact-26-07",
		},
		{
			name: "amendment slug kept verbatim",
			url:  "https://www.act.nato.int/opportunities/contracting/ifib-act-sact-26-07-amendment-1/",
			want: "ifib-act-sact-26-07-amendment-1",
		},
		{
			name: "empty url",
			url:  "",
			want: "",
		},
		{
			name: "root path only",
			url:  "https://www.act.nato.int/",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractURLEnding(tt.url); got != tt.want {
				t.Errorf("ExtractURLEnding(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestExtractOpportunityCode(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "plain slug",
			url:  "https://www.act.nato.int/opportunities/contracting/ifib-act-sact-26-07/",
			want: "ifib-act-sact-26-07",
		},
		{
			name: "amendment suffix stripped",
			url:  "https://www.act.nato.int/opportunities/contracting/ifib-act-sact-26-07-amendment-1/",
			want: "ifib-act-sact-26-07",
		},
		{
			name: "higher amendment number",
			url:  "https://www.act.nato.int/opportunities/contracting/rfi-act-sact-25-113-amendment-12/",
			want: "rfi-act-sact-25-113",
		},
		{
			name: "uppercase slug lowered",
			url:  "https://www.act.nato.int/opportunities/contracting/IFIB-ACT-SACT-26-07/",
			want: "ifib-act-sact-26-07",
		},
		{
			name:    "no path",
			url:     "https://www.act.nato.int/",
			wantErr: true,
		},
		{
			name:    "empty",
			url:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractOpportunityCode(tt.url)
			if tt.wantErr {
				if !errors.Is(err, ErrNoCode) {
					t.Fatalf("ExtractOpportunityCode(%q) error = %v, want ErrNoCode", tt.url, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractOpportunityCode(%q) unexpected error: %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("ExtractOpportunityCode(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestURLsDifferByEnding(t *testing.T) {
	tests := []struct {
		name string
		url1 string
		url2 string
		want bool
	}{
		{
			name: "identical",
			url1: "https://x.int/a/ifib-act-sact-26-07/",
			url2: "https://x.int/a/ifib-act-sact-26-07/",
			want: false,
		},
		{
			name: "trailing slash ignored",
			url1: "https://x.int/a/ifib-act-sact-26-07",
			url2: "https://x.int/a/ifib-act-sact-26-07/",
			want: false,
		},
		{
			name: "amendment detected",
			url1: "https://x.int/a/ifib-act-sact-26-07/",
			url2: "https://x.int/a/ifib-act-sact-26-07-amendment-1/",
			want: true,
		},
		{
			name: "case change is a change",
			url1: "https://x.int/a/ifib-act-sact-26-07/",
			url2: "https://x.int/a/IFIB-ACT-SACT-26-07/",
			want: true,
		},
		{
			name: "same ending under different parents",
			url1: "https://x.int/old/ifib-act-sact-26-07/",
			url2: "https://x.int/new/ifib-act-sact-26-07/",
			want: false,
		},
		{
			name: "one empty",
			url1: "",
			url2: "https://x.int/a/ifib-act-sact-26-07/",
			want: true,
		},
		{
			name: "both empty",
			url1: "",
			url2: "",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := URLsDifferByEnding(tt.url1, tt.url2); got != tt.want {
				t.Errorf("URLsDifferByEnding(%q, %q) = %v, want %v", tt.url1, tt.url2, got, tt.want)
			}
		})
	}
}
