package domain

import "time"

// Brochure is the persisted record owning a canonical document. The
// headline/description/amenities columns are denormalized from the
// document's projection and kept in sync after every successful merge.
type Brochure struct {
	ID          int64
	Prompt      string
	HotelName   string
	Location    string
	Headline    string
	Description string
	Amenities   []string
	SchemaJSON  []byte // canonical document, serialized
	PNGPath     string // relative to the output root
	PDFPath     string
	Version     int // optimistic concurrency token
	CreatedAt   time.Time
}

// ExportPaths are the artifacts produced by a render/export pass.
type ExportPaths struct {
	PNGPath string
	PDFPath string
}
