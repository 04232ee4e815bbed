// Package schema holds the canonical brochure document and the patch
// engine that edits it: normalization of loosely-shaped patches,
// allow-list validation, deep merge with clamping, and no-op detection.
package schema

import "fmt"

const (
	// Current document version. Bump when the layout of Document changes.
	Version = 2

	Preset = "editorial_luxury"

	// Hero image sources.
	SourceAI   = "ai"
	SourceUser = "user"
)

// Field limits applied by the merge clamps.
const (
	MaxHeadline    = 80
	MaxTagline     = 90
	MaxDescription = 320
	MaxAboutBody   = 500

	MaxAmenityWords = 6
	MaxAmenities    = 6
	MinAmenities    = 4
)

type Document struct {
	BrochureID string   `json:"brochure_id"`
	Version    int      `json:"version"`
	Preset     string   `json:"preset"`
	Meta       Meta     `json:"meta"`
	Assets     Assets   `json:"assets"`
	Sections   Sections `json:"sections"`
}

type Meta struct {
	HotelName string `json:"hotel_name"`
	Location  string `json:"location"`
	Tone      string `json:"tone"`
	Language  string `json:"language"`
}

type Assets struct {
	HeroImage HeroImage      `json:"hero_image"`
	Gallery   []GalleryImage `json:"gallery"`
}

// HeroImage.URL is only ever set by the system (on generation or
// regeneration); the validator refuses any patch that names it.
type HeroImage struct {
	Source         string `json:"source"`
	URL            string `json:"url"`
	Alt            string `json:"alt"`
	PromptModifier string `json:"prompt_modifier"`
	Mood           string `json:"mood"`
	TimeOfDay      string `json:"time_of_day"`
}

type GalleryImage struct {
	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
}

type Sections struct {
	Hero      Hero           `json:"hero"`
	About     About          `json:"about"`
	Amenities Amenities      `json:"amenities"`
	Gallery   GallerySection `json:"gallery"`
	Contact   Contact        `json:"contact"`
}

type Hero struct {
	Headline    string `json:"headline"`
	Tagline     string `json:"tagline"`
	Description string `json:"description"`
	Visibility  bool   `json:"visibility"`
}

type About struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	Visibility bool   `json:"visibility"`
}

type Amenities struct {
	Title      string   `json:"title"`
	Items      []string `json:"items"`
	Visibility bool     `json:"visibility"`
}

type GallerySection struct {
	Enabled    bool   `json:"enabled"`
	Caption    string `json:"caption"`
	Visibility bool   `json:"visibility"`
}

// Contact is read-only with respect to patches: no patch may touch any
// path under sections.contact, and the merge must leave it byte-identical.
type Contact struct {
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Website   *string `json:"website"`
	Address   *string `json:"address"`
	QRCodeURL *string `json:"qr_code_url"`
}

// Copy is the generated (or fallback) marketing text a document is built from.
type Copy struct {
	Headline    string   `json:"headline"`
	Description string   `json:"description"`
	Amenities   []string `json:"amenities"`
}

type BuildInput struct {
	Prompt     string
	HotelName  string
	Location   string
	HeroURL    string
	Copy       Copy
	HeroSource string // SourceAI or SourceUser
}

// Build constructs a fresh canonical document. Pure, no error paths:
// inputs are validated by the caller.
func Build(in BuildInput) *Document {
	return &Document{
		Version: Version,
		Preset:  Preset,
		Meta: Meta{
			HotelName: in.HotelName,
			Location:  in.Location,
			Tone:      "editorial luxury",
			Language:  "en",
		},
		Assets: Assets{
			HeroImage: HeroImage{
				Source: in.HeroSource,
				URL:    in.HeroURL,
				Alt:    fmt.Sprintf("%s in %s", in.HotelName, in.Location),
			},
			Gallery: []GalleryImage{},
		},
		Sections: Sections{
			Hero: Hero{
				Headline:    in.Copy.Headline,
				Description: in.Copy.Description,
				Visibility:  true,
			},
			About: About{
				Title:      "About",
				Visibility: true,
			},
			Amenities: Amenities{
				Title:      "Amenities",
				Items:      in.Copy.Amenities,
				Visibility: true,
			},
			Gallery: GallerySection{
				Enabled:    false,
				Visibility: true,
			},
			Contact: Contact{},
		},
	}
}
