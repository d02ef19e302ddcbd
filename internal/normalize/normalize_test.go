package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oluwaseun-ajayi/postsync/constants"
	"github.com/oluwaseun-ajayi/postsync/internal/entity"
)

func fixedNormalizer(captionMax int) *Normalizer {
	n := New(captionMax)
	n.Now = func() time.Time {
		return time.Date(2025, 8, 15, 9, 30, 0, 0, time.UTC)
	}
	return n
}

func TestNormalizePhoto(t *testing.T) {
	n := fixedNormalizer(150)
	got := n.Normalize(&entity.RawAttributes{
		Account:  "someuser",
		Likes:    1234,
		Comments: 56,
		IsVideo:  false,
		Caption:  "hello   world #a #b",
		Location: "Lagos",
		PostedAt: time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC),
	})

	assert.Equal(t, "someuser", got.Account)
	assert.Equal(t, int64(1234), got.Likes)
	assert.Equal(t, int64(56), got.Comments)
	assert.Equal(t, int64(0), got.Views)
	assert.Equal(t, constants.ContentTypePhoto, got.ContentType)
	assert.Equal(t, "hello world #a #b", got.Caption)
	assert.Equal(t, 2, got.TagCount)
	assert.Equal(t, "Lagos", got.Location)
	// 12:00 UTC is 17:30 in Asia/Kolkata.
	assert.Equal(t, "01/08/2025 17:30 IST", got.PostedAt)
	assert.Equal(t, "15/08/2025 15:00 IST", got.FetchedAt)
}

func TestNormalizeVideoKeepsViews(t *testing.T) {
	n := fixedNormalizer(150)
	got := n.Normalize(&entity.RawAttributes{IsVideo: true, Views: 9000})
	assert.Equal(t, constants.ContentTypeVideo, got.ContentType)
	assert.Equal(t, int64(9000), got.Views)
}

func TestNormalizeViewsDroppedForPhotos(t *testing.T) {
	n := fixedNormalizer(150)
	got := n.Normalize(&entity.RawAttributes{IsVideo: false, Views: 9000})
	assert.Equal(t, int64(0), got.Views)
}

func TestNormalizeSentinels(t *testing.T) {
	n := fixedNormalizer(150)
	got := n.Normalize(&entity.RawAttributes{Likes: -5})

	assert.Equal(t, int64(0), got.Likes)
	assert.Equal(t, NoCaption, got.Caption)
	assert.Equal(t, UnknownTimestamp, got.PostedAt)
	assert.Equal(t, NoLocation, got.Location)
	assert.Equal(t, 0, got.TagCount)
}

func TestNormalizeCaptionTruncation(t *testing.T) {
	n := fixedNormalizer(10)
	got := n.Normalize(&entity.RawAttributes{Caption: "abcdefghijklmnop"})
	assert.Equal(t, "abcdefghij...", got.Caption)

	got = n.Normalize(&entity.RawAttributes{Caption: "abcdefghij"})
	assert.Equal(t, "abcdefghij", got.Caption)
}

func TestNormalizeWhitespaceCollapse(t *testing.T) {
	n := fixedNormalizer(150)
	got := n.Normalize(&entity.RawAttributes{Caption: "  line one\n\nline\ttwo  "})
	assert.Equal(t, "line one line two", got.Caption)
}

func TestNormalizeTagCountIncludesTagsText(t *testing.T) {
	n := fixedNormalizer(150)
	got := n.Normalize(&entity.RawAttributes{Caption: "hello   world", TagsText: "#a #b"})
	assert.Equal(t, "hello world", got.Caption)
	assert.Equal(t, 2, got.TagCount)
}

func TestNormalizeTagCountUsesRawText(t *testing.T) {
	// Tags beyond the caption cap still count.
	n := fixedNormalizer(5)
	got := n.Normalize(&entity.RawAttributes{Caption: "hello #one #two #three"})
	assert.Equal(t, 3, got.TagCount)
}
