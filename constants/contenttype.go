package constants

// ContentType is the closed set of content classifications written to the
// Content Type column.
type ContentType string

const (
	ContentTypePhoto ContentType = "Photo"
	ContentTypeVideo ContentType = "Video/Reel"
)
