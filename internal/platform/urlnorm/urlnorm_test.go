package urlnorm

import (
	"testing"
)

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "lowercases scheme and host",
			raw:  "HTTPS://Example.COM/News",
			want: "https://example.com/News",
		},
		{
			name: "strips default https port",
			raw:  "https://example.com:443/a",
			want: "https://example.com/a",
		},
		{
			name: "strips default http port",
			raw:  "http://example.com:80/a",
			want: "http://example.com/a",
		},
		{
			name: "keeps non-default port",
			raw:  "https://example.com:8443/a",
			want: "https://example.com:8443/a",
		},
		{
			name: "removes fragment",
			raw:  "https://example.com/story#comments",
			want: "https://example.com/story",
		},
		{
			name: "strips tracking params and sorts the rest",
			raw:  "https://example.com/a?utm_source=x&z=2&fbclid=y&a=1",
			want: "https://example.com/a?a=1&z=2",
		},
		{
			name: "trims trailing slash",
			raw:  "https://example.com/section/",
			want: "https://example.com/section",
		},
		{
			name: "root path survives",
			raw:  "https://example.com/",
			want: "https://example.com/",
		},
		{
			name: "unparseable input returned trimmed",
			raw:  "  not a url  ",
			want: "not a url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalURL(tt.raw); got != tt.want {
				t.Errorf("CanonicalURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{
			name:  "lowercases and strips punctuation",
			title: "Breaking: AI Startup Raises $500M!",
			want:  "breaking ai startup raises 500m",
		},
		{
			name:  "collapses whitespace",
			title: "  two   words  ",
			want:  "two words",
		},
		{
			name:  "keeps non-ascii runes",
			title: "Economía española crece",
			want:  "economía española crece",
		},
		{
			name:  "empty input",
			title: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTitle(tt.title); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestTitleTokens(t *testing.T) {
	got := TitleTokens("A Big Test: of tokens, 1 by 1")
	want := []string{"big", "test", "of", "tokens", "1", "by", "1"}
	if len(got) != len(want) {
		t.Fatalf("TitleTokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTitleTokensKeepDigits(t *testing.T) {
	a := TitleTokens("iPhone 7 review")
	b := TitleTokens("iPhone 8 review")
	if len(a) != 3 || len(b) != 3 {
		t.Fatalf("tokens = %v / %v, want 3 each", a, b)
	}
	if a[1] != "7" || b[1] != "8" {
		t.Errorf("digit tokens = %q / %q, want kept", a[1], b[1])
	}
}

func TestTitleSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{
			name: "identical titles",
			a:    "OpenAI releases new model",
			b:    "OpenAI releases new model",
			min:  1.0, max: 1.0,
		},
		{
			name: "near duplicates score high",
			a:    "OpenAI releases new flagship model today",
			b:    "OpenAI releases new flagship model",
			min:  0.8, max: 0.99,
		},
		{
			name: "same phrasing different number stays distinct",
			a:    "iPhone 7 review",
			b:    "iPhone 8 review",
			min:  0.0, max: 0.79,
		},
		{
			name: "sequential headlines from one source stay distinct",
			a:    "Story 1 from reuters",
			b:    "Story 2 from reuters",
			min:  0.0, max: 0.79,
		},
		{
			name: "unrelated titles score low",
			a:    "Stock markets tumble worldwide",
			b:    "New recipe for chocolate cake",
			min:  0.0, max: 0.2,
		},
		{
			name: "empty title scores zero",
			a:    "",
			b:    "anything here",
			min:  0.0, max: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TitleSimilarity(tt.a, tt.b)
			if got < tt.min || got > tt.max {
				t.Errorf("TitleSimilarity = %f, want in [%f, %f]", got, tt.min, tt.max)
			}
		})
	}
}

func TestHost(t *testing.T) {
	if got := Host("https://News.Example.com:8080/a"); got != "news.example.com" {
		t.Errorf("Host = %q, want news.example.com", got)
	}
	if got := Host("garbage"); got != "" {
		t.Errorf("Host(garbage) = %q, want empty", got)
	}
}

func TestRegistrableDomain(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"news.example.com", "example.com"},
		{"a.b.example.co.uk", "example.co.uk"},
		{"example.com", "example.com"},
		{"localhost", "localhost"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := RegistrableDomain(tt.host); got != tt.want {
			t.Errorf("RegistrableDomain(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}

func TestHostMatches(t *testing.T) {
	tests := []struct {
		name     string
		itemHost string
		siteHost string
		want     bool
	}{
		{"exact match", "example.com", "example.com", true},
		{"subdomain of site", "news.example.com", "example.com", true},
		{"same registrable domain", "www.example.com", "news.example.com", true},
		{"different domain", "example.com", "other.com", false},
		{"suffix but different domain", "notexample.com", "example.com", false},
		{"empty item host", "", "example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HostMatches(tt.itemHost, tt.siteHost); got != tt.want {
				t.Errorf("HostMatches(%q, %q) = %v, want %v", tt.itemHost, tt.siteHost, got, tt.want)
			}
		})
	}
}
