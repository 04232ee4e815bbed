package schema

var allowedSections = map[string]bool{
	"hero":      true,
	"about":     true,
	"amenities": true,
	"gallery":   true,
}

var allowedSectionFields = map[string]map[string]bool{
	"hero":      {"headline": true, "tagline": true, "description": true, "visibility": true},
	"about":     {"body": true, "visibility": true},
	"amenities": {"items": true, "visibility": true},
	"gallery":   {"enabled": true, "caption": true, "visibility": true},
}

var allowedHeroImageFields = map[string]bool{
	"prompt_modifier": true,
	"mood":            true,
	"time_of_day":     true,
}

// Validate enforces the mutable-field policy on a normalized patch.
// Checks run in order and short-circuit on the first failure:
//
//  1. the patch is non-empty (empty means "no changes", not a failure);
//  2. sections.contact is rejected outright, before any deep inspection;
//  3. section keys and their fields come from the per-section allow-lists;
//  4. assets may only carry hero_image modifier fields, never url.
//
// meta is deliberately unrestricted; keeping identity edits to explicit
// instructions is the patch provider's prompt policy, not enforced here.
func Validate(p Patch) error {
	if len(p) == 0 {
		return noChanges()
	}

	if sections, ok := p["sections"].(map[string]any); ok {
		if _, has := sections["contact"]; has {
			return needsClarification("Contact fields are read-only.")
		}
		for key, raw := range sections {
			if !allowedSections[key] {
				return needsClarification("Invalid section key.")
			}
			section, ok := raw.(map[string]any)
			if !ok {
				return needsClarification("Invalid section patch.")
			}
			for field := range section {
				if !allowedSectionFields[key][field] {
					return needsClarification("Invalid section field.")
				}
			}
		}
	}

	if assets, ok := p["assets"].(map[string]any); ok {
		for key := range assets {
			if key != "hero_image" {
				return needsClarification("Invalid assets field.")
			}
		}
		if raw, has := assets["hero_image"]; has {
			hero, ok := raw.(map[string]any)
			if !ok {
				return needsClarification("Invalid hero_image patch.")
			}
			for field := range hero {
				if !allowedHeroImageFields[field] {
					return needsClarification("Invalid hero_image field.")
				}
			}
		}
	}

	return nil
}
