// Package render turns projected brochure data into a standalone HTML
// page and exports it to PNG and PDF through headless Chromium.
package render

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"luxe_brochure/internal/schema"
)

//go:embed brochure.html
var brochureHTML string

type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("brochure").Parse(brochureHTML)
	if err != nil {
		return nil, fmt.Errorf("render: parse template: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

type page struct {
	HeroURL     template.URL
	Location    string
	NameLines   []string
	Headline    string
	Description string
	AmenityLine string
}

// Render produces a self-contained HTML document. Local hero files are
// inlined as data URLs so the page survives being moved or screenshot
// from a different working directory.
func (r *HTMLRenderer) Render(data schema.RenderData) (string, error) {
	hero := data.HeroURL
	if strings.HasPrefix(hero, "file://") {
		inline, err := embedHeroDataURL(strings.TrimPrefix(hero, "file://"))
		if err != nil {
			log.Warn().Err(err).Msg("hero inline failed; rendering without image")
			hero = ""
		} else {
			hero = inline
		}
	}

	p := page{
		HeroURL:     template.URL(hero),
		Location:    data.Location,
		NameLines:   splitHotelLines(data.HotelName),
		Headline:    data.Headline,
		Description: data.Description,
		AmenityLine: strings.Join(data.Amenities, "  -  "),
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("render: execute template: %w", err)
	}
	return buf.String(), nil
}

// splitHotelLines breaks a hotel name into up to three display lines so
// long names wrap deliberately instead of at arbitrary widths.
func splitHotelLines(name string) []string {
	words := strings.Fields(name)
	switch {
	case len(words) == 0:
		return []string{""}
	case len(words) <= 2:
		return []string{strings.Join(words, " ")}
	case len(words) <= 4:
		mid := (len(words) + 1) / 2
		return []string{
			strings.Join(words[:mid], " "),
			strings.Join(words[mid:], " "),
		}
	default:
		third := (len(words) + 2) / 3
		return []string{
			strings.Join(words[:third], " "),
			strings.Join(words[third:2*third], " "),
			strings.Join(words[2*third:], " "),
		}
	}
}

func embedHeroDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	mime := "image/png"
	if strings.HasSuffix(strings.ToLower(path), ".jpg") || strings.HasSuffix(strings.ToLower(path), ".jpeg") {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
