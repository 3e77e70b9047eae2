// Package urlnorm normalizes URLs and titles to canonical forms for
// content fingerprinting and source matching.
package urlnorm

import (
	"net/url"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/net/publicsuffix"
)

// trackingParams are query parameters stripped during canonicalization.
// They identify campaigns and sessions, not content.
var trackingParams = map[string]bool{
	// Google Analytics
	"utm_source": true, "utm_medium": true, "utm_campaign": true,
	"utm_term": true, "utm_content": true, "gclid": true,
	"gclsrc": true, "_ga": true, "_gid": true,

	// Facebook
	"fbclid": true, "fb_action_ids": true, "fb_source": true, "fb_ref": true,

	// Session/tracking
	"sessionid": true, "session_id": true, "sid": true,
	"phpsessid": true, "jsessionid": true,

	// Cache busters
	"_": true, "timestamp": true, "ts": true, "nocache": true,

	// Misc tracking
	"ref": true, "referer": true, "referrer": true, "src": true,
}

// CanonicalURL normalizes a raw URL into a canonical form suitable for
// deduplication: lowercased scheme/host, default ports and fragments
// removed, tracking parameters stripped, remaining query sorted,
// trailing slash trimmed. Unparseable input is returned trimmed
// unchanged so it still fingerprints deterministically.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	switch {
	case u.Scheme == "http" && strings.HasSuffix(u.Host, ":80"):
		u.Host = strings.TrimSuffix(u.Host, ":80")
	case u.Scheme == "https" && strings.HasSuffix(u.Host, ":443"):
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	q := u.Query()
	kept := url.Values{}
	keys := make([]string, 0, len(q))
	for k := range q {
		if trackingParams[strings.ToLower(k)] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range q[k] {
			kept.Add(k, v)
		}
	}
	u.RawQuery = kept.Encode()

	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String()
}

// NormalizeTitle lowercases a title, collapses whitespace and strips
// punctuation so near-identical headlines normalize to the same string.
func NormalizeTitle(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))

	var b strings.Builder
	b.Grow(len(title))
	lastSpace := false
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r >= 0x80:
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// TitleTokens tokenizes a normalized title for similarity comparison.
// Single-letter tokens are dropped as noise; digits are kept because a
// number is often the only thing separating two headlines ("iPhone 7
// review" vs "iPhone 8 review").
func TitleTokens(title string) []string {
	fields := strings.Fields(NormalizeTitle(title))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		runes := []rune(f)
		if len(runes) > 1 || unicode.IsDigit(runes[0]) {
			out = append(out, f)
		}
	}
	return out
}

// TitleSimilarity computes Jaccard similarity between the token sets of
// two titles. Returns a value in [0.0, 1.0].
func TitleSimilarity(a, b string) float64 {
	return TokenSimilarity(TitleTokens(a), TitleTokens(b))
}

// TokenSimilarity is the token-set form of TitleSimilarity, for callers
// that tokenize once and compare many times.
func TokenSimilarity(ta, tb []string) float64 {
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}

	setA := make(map[string]bool, len(ta))
	for _, t := range ta {
		setA[t] = true
	}

	setB := make(map[string]bool, len(tb))
	intersection := 0
	for _, t := range tb {
		if setB[t] {
			continue
		}
		setB[t] = true
		if setA[t] {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// Host extracts the lowercased host (without port) of a raw URL.
func Host(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// RegistrableDomain returns the eTLD+1 of a host ("news.example.co.uk"
// -> "example.co.uk"). Falls back to the input host when the public
// suffix list cannot resolve it.
func RegistrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(host), "."))
	if host == "" {
		return ""
	}
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return d
}

// HostMatches reports whether itemHost belongs to siteHost: exact match
// or same registrable domain. Used by the noise filter to check items
// against site-restricted source descriptors.
func HostMatches(itemHost, siteHost string) bool {
	itemHost = strings.ToLower(strings.TrimSpace(itemHost))
	siteHost = strings.ToLower(strings.TrimSpace(siteHost))
	if itemHost == "" || siteHost == "" {
		return false
	}
	if itemHost == siteHost || strings.HasSuffix(itemHost, "."+siteHost) {
		return true
	}
	return RegistrableDomain(itemHost) == RegistrableDomain(siteHost)
}
