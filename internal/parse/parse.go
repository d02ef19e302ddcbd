// Package parse extracts canonical shortcodes from raw content references.
package parse

import (
	"net/url"
	"regexp"
	"strings"
)

// Ordered structural patterns for known path shapes; first match wins.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`/p/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`/reels?/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`/tv/([A-Za-z0-9_-]+)`),
}

// Tracking parameters appended by share sheets and link shorteners. They are
// stripped before the second matching pass.
var trackingParams = []string{"igsh", "igshid", "utm_source", "utm_medium", "utm_campaign"}

// Shortcode extracts the canonical shortcode from a raw reference string.
// It first tries the pattern list against the string as given, then once more
// with known tracking query parameters removed. The second return value is
// false when the reference has no recognizable shape.
func Shortcode(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if code, ok := match(raw); ok {
		return code, true
	}
	if stripped, ok := stripTracking(raw); ok {
		return match(stripped)
	}
	return "", false
}

func match(s string) (string, bool) {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(s); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// stripTracking removes known tracking parameters from the query string.
// Returns false when the input is not a parsable URL or nothing was removed.
func stripTracking(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	q := u.Query()
	removed := false
	for _, name := range trackingParams {
		if q.Has(name) {
			q.Del(name)
			removed = true
		}
	}
	if !removed {
		return "", false
	}
	u.RawQuery = q.Encode()
	return u.String(), true
}
