package aitext

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"luxe_brochure/internal/schema"
)

// patchSystemPrompt constrains the model to the same policy the
// validator enforces; the validator remains the actual gate.
const patchSystemPrompt = `You are a schema patch generator. Convert a user's instruction into a JSON Patch for a brochure schema.

STRICT RULES:
- Output ONLY valid JSON. No markdown, no commentary.
- Only include keys that must change. Do not return the full schema.
- Allowed top-level keys: "meta", "assets", "sections".
- Allowed section keys: hero, about, amenities, gallery.
- Each section supports: "visibility": true | false.
- Contact fields are READ-ONLY. Never add or modify: sections.contact.*
- Do NOT add new sections or keys.
- Do NOT change "hotel_name" or "location" unless explicitly requested.
- Image edits are restricted to:
  assets.hero_image.prompt_modifier
  assets.hero_image.mood
  assets.hero_image.time_of_day
- Do NOT change assets.hero_image.url unless user explicitly uploaded an image.
- Enforce constraints:
  - hero.headline <= 80 chars
  - hero.tagline <= 90 chars
  - hero.description <= 320 chars
  - about.body <= 500 chars
  - amenities.items length 4-6
  - each amenities item <= 6 words
- If instruction is ambiguous or disallowed, return:
  {"error":"needs_clarification","message":"<short reason>"}
- If instruction maps to no valid changes, return:
  {"error":"no_changes","message":"No valid edits detected."}
- Unmentioned sections must remain untouched.

Return JSON only.`

// GeneratePatch returns the model's raw JSON value. The output is
// untrusted; the schema normalizer and validator decide what it means.
func (c *Client) GeneratePatch(ctx context.Context, doc *schema.Document, instruction string) (any, error) {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	user := fmt.Sprintf("Current schema:\n%s\n\nUser instruction:\n%s\n\nReturn ONLY the JSON patch.", docJSON, instruction)

	out, err := c.complete(ctx, patchSystemPrompt, user, 0.2, 400)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("raw", truncate(out, 500)).Msg("patch raw content")

	var raw any
	if err := extractJSON(out, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
