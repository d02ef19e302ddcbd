package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortcodeKnownShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"post", "https://www.instagram.com/p/ABC123/", "ABC123"},
		{"post no trailing slash", "https://www.instagram.com/p/ABC123", "ABC123"},
		{"reel", "https://www.instagram.com/reel/Xy-9_z/", "Xy-9_z"},
		{"reels plural", "https://www.instagram.com/reels/Xy9z/", "Xy9z"},
		{"archived tv", "https://www.instagram.com/tv/QQ77a/", "QQ77a"},
		{"tracking suffix", "https://example.com/p/ABC123/?igsh=xyz", "ABC123"},
		{"igshid suffix", "https://www.instagram.com/reel/DEF456/?igshid=MzRlODBiNWFlZA==", "DEF456"},
		{"utm suffix", "https://www.instagram.com/p/GHI789?utm_source=share&utm_medium=web", "GHI789"},
		{"surrounding whitespace", "  https://www.instagram.com/p/ABC123/  ", "ABC123"},
		{"bare path", "/p/ShortC0de_-", "ShortC0de_-"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Shortcode(tc.raw)
			assert.True(t, ok, "expected a match for %q", tc.raw)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestShortcodeMalformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"profile url", "https://www.instagram.com/someuser/"},
		{"stories url", "https://www.instagram.com/stories/someuser/123/"},
		{"unrelated url", "https://example.com/about"},
		{"plain text", "not a url at all"},
		{"empty shortcode", "https://www.instagram.com/p//"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Shortcode(tc.raw)
			assert.False(t, ok, "expected no match for %q, got %q", tc.raw, got)
		})
	}
}

func TestShortcodeFirstPatternWins(t *testing.T) {
	got, ok := Shortcode("https://www.instagram.com/p/FIRST/reel/SECOND/")
	assert.True(t, ok)
	assert.Equal(t, "FIRST", got)
}
