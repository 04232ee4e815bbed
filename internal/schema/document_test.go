package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luxe_brochure/internal/schema"
)

func TestBuild(t *testing.T) {
	doc := schema.Build(schema.BuildInput{
		Prompt:    "design a brochure for Coral Cove Resort in Belize",
		HotelName: "Coral Cove Resort",
		Location:  "Belize",
		HeroURL:   "file:///runs/y/hero.png",
		Copy: schema.Copy{
			Headline:    "Coral Cove Resort - Modern Coastal Retreat",
			Description: "A minimalist sanctuary with expansive views.",
			Amenities:   []string{"Infinity pool", "Spa", "Private beach", "Gourmet dining"},
		},
		HeroSource: schema.SourceUser,
	})

	assert.Equal(t, schema.Version, doc.Version)
	assert.Equal(t, "Coral Cove Resort", doc.Meta.HotelName)
	assert.Equal(t, "Belize", doc.Meta.Location)
	assert.Equal(t, "en", doc.Meta.Language)
	assert.Equal(t, schema.SourceUser, doc.Assets.HeroImage.Source)
	assert.Equal(t, "file:///runs/y/hero.png", doc.Assets.HeroImage.URL)
	assert.Equal(t, "Coral Cove Resort in Belize", doc.Assets.HeroImage.Alt)
	assert.True(t, doc.Sections.Hero.Visibility)
	assert.True(t, doc.Sections.Amenities.Visibility)
	assert.Len(t, doc.Sections.Amenities.Items, 4)

	// contact starts all-null
	assert.Nil(t, doc.Sections.Contact.Email)
	assert.Nil(t, doc.Sections.Contact.Phone)
	assert.Nil(t, doc.Sections.Contact.Website)
	assert.Nil(t, doc.Sections.Contact.Address)
	assert.Nil(t, doc.Sections.Contact.QRCodeURL)
}

func TestProject_Visible(t *testing.T) {
	doc := testDocument()
	rd := schema.Project(doc)
	assert.Equal(t, doc.Assets.HeroImage.URL, rd.HeroURL)
	assert.Equal(t, doc.Meta.HotelName, rd.HotelName)
	assert.Equal(t, doc.Meta.Location, rd.Location)
	assert.Equal(t, doc.Sections.Hero.Headline, rd.Headline)
	assert.Equal(t, doc.Sections.Amenities.Items, rd.Amenities)
}

func TestProject_HiddenHero(t *testing.T) {
	doc := testDocument()
	doc.Sections.Hero.Visibility = false
	rd := schema.Project(doc)
	assert.Empty(t, rd.Headline)
	assert.Empty(t, rd.Description)
	// content survives in the document
	assert.NotEmpty(t, doc.Sections.Hero.Headline)
}

func TestProject_HiddenAmenities(t *testing.T) {
	doc := testDocument()
	out, err := schema.Merge(doc, schema.Patch{
		"sections": map[string]any{"amenities": map[string]any{"visibility": false}},
	})
	require.NoError(t, err)

	rd := schema.Project(out)
	assert.Empty(t, rd.Amenities)
	assert.Len(t, out.Sections.Amenities.Items, 5)
}
