package app

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractHotelInfo(t *testing.T) {
	cases := []struct {
		prompt   string
		name     string
		location string
	}{
		{
			"Brochure for Azure Sands Resort in Zanzibar",
			"Azure Sands Resort", "Zanzibar",
		},
		{
			"Design a brochure for The Palm Lodge near Marrakech, Morocco",
			"The Palm Lodge", "Marrakech, Morocco",
		},
		{
			`Create a leaflet for "Casa del Mar" in Ibiza`,
			"Casa del Mar", "Ibiza",
		},
		{
			"A stay at Kyoto with gardens, featuring the Sakura Palace",
			"Sakura Palace", "Kyoto",
		},
		{
			"something vague about a nice holiday",
			"Luxury Resort", "Amalfi Coast, Italy",
		},
	}
	for _, tc := range cases {
		name, loc := ExtractHotelInfo(tc.prompt)
		require.Equal(t, tc.name, name, tc.prompt)
		require.Equal(t, tc.location, loc, tc.prompt)
	}
}

func TestExtractHotelInfo_VerbNeverBecomesName(t *testing.T) {
	name, _ := ExtractHotelInfo("Generate a brochure in Bali")
	require.Equal(t, "Luxury Resort", name)
}

func TestExtractHotelInfo_LocationStopsAtClause(t *testing.T) {
	_, loc := ExtractHotelInfo("Brochure for Azure Sands in Zanzibar with an infinity pool")
	require.Equal(t, "Zanzibar", loc)
}
