package entity

import (
	"time"

	"github.com/oluwaseun-ajayi/postsync/constants"
)

// RawAttributes is what a fetcher returns for one content item, before any
// normalization. Zero values mean "not reported by the source".
type RawAttributes struct {
	Account  string    `json:"account"`
	Likes    int64     `json:"likes"`
	Comments int64     `json:"comments"`
	Views    int64     `json:"views"`
	IsVideo  bool      `json:"is_video"`
	PostedAt time.Time `json:"posted_at,omitempty"`
	Caption  string    `json:"caption"`
	TagsText string    `json:"tags_text"`
	Location string    `json:"location"`
}

// AttributeSet holds the normalized, display-safe attributes written back to
// a SUCCESS row. Counts stay integers here; grouping separators are applied
// at the store boundary only.
type AttributeSet struct {
	Account     string                `json:"account"`
	Likes       int64                 `json:"likes"`
	Comments    int64                 `json:"comments"`
	Views       int64                 `json:"views"`
	ContentType constants.ContentType `json:"content_type"`
	PostedAt    string                `json:"posted_at"`
	Caption     string                `json:"caption"`
	TagCount    int                   `json:"tag_count"`
	Location    string                `json:"location"`
	FetchedAt   string                `json:"fetched_at"`
}
