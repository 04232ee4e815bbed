package app

import (
	"math/rand"
	"strings"
	"sync"

	"luxe_brochure/internal/schema"
)

// Deterministic copy fallback used whenever the AI copy provider fails
// or is not configured. The template choice and amenity sample come from
// an injected seedable source so tests stay reproducible.

var defaultAmenities = []string{
	"Infinity pool",
	"Spa and wellness",
	"Ocean-view suites",
	"Gourmet dining",
	"Private beach",
	"Rooftop lounge",
	"Concierge service",
	"Signature cocktails",
}

type copyTemplate struct {
	headline    string
	description string
}

var copyTemplates = []copyTemplate{
	{
		headline:    "{name} - A Quiet Luxury in {location}",
		description: "Sunlit suites, calm waters, and tailored service set a new pace for escape. {name} blends modern design with the natural beauty of {location} for a stay that feels effortless.",
	},
	{
		headline:    "Wake Up to {location} at {name}",
		description: "A refined resort where soft light, open air, and curated experiences come together. Discover a serene stay with thoughtful details and elevated comfort.",
	},
	{
		headline:    "{name} - Modern Coastal Retreat",
		description: "A minimalist sanctuary with expansive views, warm textures, and calm spaces. Indulge in slow mornings and golden evenings in {location}.",
	},
}

// CopyFallback picks one of the hardcoded templates pseudo-randomly.
// One instance is shared across concurrent generations; rand.Rand is not
// safe for that, so draws are serialized under the mutex.
type CopyFallback struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCopyFallback(seed int64) *CopyFallback {
	return &CopyFallback{rnd: rand.New(rand.NewSource(seed))}
}

func (f *CopyFallback) Copy(hotelName, location string) schema.Copy {
	f.mu.Lock()
	tpl := copyTemplates[f.rnd.Intn(len(copyTemplates))]
	idx := f.rnd.Perm(len(defaultAmenities))[:6]
	f.mu.Unlock()

	fill := strings.NewReplacer("{name}", hotelName, "{location}", location)
	amenities := make([]string, 0, len(idx))
	for _, i := range idx {
		amenities = append(amenities, defaultAmenities[i])
	}

	return schema.Copy{
		Headline:    fill.Replace(tpl.headline),
		Description: fill.Replace(tpl.description),
		Amenities:   amenities,
	}
}
