package schema

// RenderData is the flat view the rendering collaborator consumes.
type RenderData struct {
	HeroURL     string   `json:"hero_url"`
	Location    string   `json:"location"`
	HotelName   string   `json:"hotel_name"`
	Headline    string   `json:"headline"`
	Description string   `json:"description"`
	Amenities   []string `json:"amenities"`
}

// Project flattens a document into RenderData, honoring section
// visibility. Hiding a section only suppresses it here; the document
// keeps the content.
func Project(d *Document) RenderData {
	out := RenderData{
		HeroURL:   d.Assets.HeroImage.URL,
		Location:  d.Meta.Location,
		HotelName: d.Meta.HotelName,
		Amenities: []string{},
	}
	if d.Sections.Hero.Visibility {
		out.Headline = d.Sections.Hero.Headline
		out.Description = d.Sections.Hero.Description
	}
	if d.Sections.Amenities.Visibility && len(d.Sections.Amenities.Items) > 0 {
		out.Amenities = append([]string(nil), d.Sections.Amenities.Items...)
	}
	return out
}
