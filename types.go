package brandsite

import "time"

// ContentType classifies how a content block's text is rendered.
type ContentType string

const (
	ContentText     ContentType = "text"
	ContentMarkdown ContentType = "markdown"
	ContentRich     ContentType = "rich"
)

// ContentBlock is a single named piece of editable site copy. The slug is
// the only stable identifier pages use to fetch it (dotted-path convention,
// e.g. "home.hero.title").
type ContentBlock struct {
	Slug        string      `json:"slug"`
	Content     string      `json:"content"`
	ContentType ContentType `json:"contentType"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Image is the metadata row for a stored binary. The binary itself lives in
// object storage under (Bucket, Path); URL is derived per request and never
// persisted. MimeType, ByteSize, Width and Height are zero when unknown.
type Image struct {
	ID        string     `json:"id"`
	Bucket    string     `json:"bucket"`
	Path      string     `json:"path"`
	AltText   string     `json:"altText"`
	MimeType  string     `json:"mimeType,omitempty"`
	ByteSize  int64      `json:"byteSize,omitempty"`
	Width     int        `json:"width,omitempty"`
	Height    int        `json:"height,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	URL       string     `json:"url,omitempty"`
}

// Carousel is a named, ordered collection of images shown on a public page.
// Carousels are provisioned by seeding, not through the admin UI.
type Carousel struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Label string `json:"label"`
}

// CarouselItem records membership and position of an image within a
// carousel. After every successful save, SortOrder values for a carousel
// form a dense zero-based sequence matching on-screen order.
type CarouselItem struct {
	ID         int64  `json:"id"`
	CarouselID string `json:"carouselId"`
	ImageID    string `json:"imageId"`
	SortOrder  int    `json:"sortOrder"`
	Image      *Image `json:"image,omitempty"`
}

// PageMeta carries per-page metadata into the page template.
type PageMeta struct {
	Title       string
	Description string
	URL         string
}
