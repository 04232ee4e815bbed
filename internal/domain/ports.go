package domain

import (
	"context"

	"luxe_brochure/internal/schema"
)

type BrochureRepository interface {
	Insert(ctx context.Context, b *Brochure) (int64, error)
	Get(ctx context.Context, id int64) (*Brochure, error)
	List(ctx context.Context, limit int) ([]Brochure, error)

	// Update persists an edited brochure guarded by its version at read
	// time; a stale version returns ErrConflict. The version is bumped
	// on success.
	Update(ctx context.Context, b *Brochure) error
}

// CopyProvider generates brochure copy. Any error means "use the
// deterministic template fallback"; it is never surfaced to the end user.
type CopyProvider interface {
	GenerateCopy(ctx context.Context, prompt, hotelName, location string) (schema.Copy, error)
}

// ImageProvider resolves a hero image into a local file reference
// (file:// URL). Errors trigger the no-image layout, not a hard failure.
type ImageProvider interface {
	GenerateHeroImage(ctx context.Context, prompt, hotelName, location, outDir string) (string, error)
}

// ImageFetcher downloads a user-supplied hero image to a local path.
type ImageFetcher interface {
	FetchImage(ctx context.Context, url, destPath string) error
}

// PatchProvider turns a free-text instruction into an untrusted JSON
// value that the schema normalizer will canonicalize.
type PatchProvider interface {
	GeneratePatch(ctx context.Context, doc *schema.Document, instruction string) (any, error)
}

type Renderer interface {
	Render(data schema.RenderData) (string, error)
}

type Exporter interface {
	Export(ctx context.Context, html, outDir, baseName string) (ExportPaths, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
