// Package normalize turns raw fetched attributes into bounded, display-safe
// values. Counts stay integers; grouping separators are a store concern.
package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/oluwaseun-ajayi/postsync/constants"
	"github.com/oluwaseun-ajayi/postsync/internal/entity"
)

const (
	// NoCaption is written when the source reports no caption text.
	NoCaption = "No caption"
	// UnknownTimestamp is written when the source timestamp is absent.
	UnknownTimestamp = "Unknown"
	// NoLocation is written when the source reports no location.
	NoLocation = "Not specified"

	timestampLayout = "02/01/2006 15:04 IST"
)

var (
	tagPattern = regexp.MustCompile(`#\w+`)
	istZone    = mustLoadIST()
)

func mustLoadIST() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// IST has no DST transitions, so the fixed offset is equivalent.
		return time.FixedZone("IST", 5*3600+1800)
	}
	return loc
}

// Normalizer formats raw attributes into an entity.AttributeSet.
type Normalizer struct {
	CaptionMax int // cap in runes; text beyond it is truncated with a marker
	Now        func() time.Time
}

func New(captionMax int) *Normalizer {
	if captionMax <= 0 {
		captionMax = 150
	}
	return &Normalizer{CaptionMax: captionMax, Now: time.Now}
}

// Normalize converts raw fetched attributes to their normalized form. It
// never fails: absent or unparsable fields degrade to sentinels instead of
// failing the whole job.
func (n *Normalizer) Normalize(raw *entity.RawAttributes) *entity.AttributeSet {
	contentType := constants.ContentTypePhoto
	views := int64(0)
	if raw.IsVideo {
		contentType = constants.ContentTypeVideo
		views = nonNegative(raw.Views)
	}

	return &entity.AttributeSet{
		Account:     strings.TrimSpace(raw.Account),
		Likes:       nonNegative(raw.Likes),
		Comments:    nonNegative(raw.Comments),
		Views:       views,
		ContentType: contentType,
		PostedAt:    n.formatTimestamp(raw.PostedAt),
		Caption:     n.cleanCaption(raw.Caption),
		TagCount:    tagCount(raw),
		Location:    defaultIfEmpty(strings.TrimSpace(raw.Location), NoLocation),
		FetchedAt:   Timestamp(n.Now()),
	}
}

// Timestamp formats a time in the target timezone the sheet uses.
func Timestamp(t time.Time) string {
	return t.In(istZone).Format(timestampLayout)
}

func (n *Normalizer) formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return UnknownTimestamp
	}
	return Timestamp(t)
}

// cleanCaption collapses runs of whitespace and caps the length, appending a
// truncation marker when text is dropped.
func (n *Normalizer) cleanCaption(caption string) string {
	cleaned := strings.Join(strings.Fields(caption), " ")
	if cleaned == "" {
		return NoCaption
	}
	runes := []rune(cleaned)
	if len(runes) > n.CaptionMax {
		return string(runes[:n.CaptionMax]) + "..."
	}
	return cleaned
}

// tagCount counts tag markers across the caption and any separately
// reported tag text.
func tagCount(raw *entity.RawAttributes) int {
	n := len(tagPattern.FindAllString(raw.Caption, -1))
	n += len(tagPattern.FindAllString(raw.TagsText, -1))
	return n
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

func defaultIfEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
