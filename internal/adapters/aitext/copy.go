package aitext

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"luxe_brochure/internal/schema"
)

const copySystemPrompt = "You are a luxury hotel copywriter. Return ONLY valid JSON with keys: " +
	"headline, description, amenities."

// Copy constraints are tighter than the document clamps: short
// descriptions and five-word amenities keep the layout airy.
const (
	copyMaxDescription  = 220
	copyMaxAmenityWords = 5
	copyMaxAmenities    = 5
	copyMinAmenities    = 4
)

// GenerateCopy asks the model for brochure copy and normalizes its
// payload. Any failure is returned as an error so the caller can fall
// back to the deterministic templates.
func (c *Client) GenerateCopy(ctx context.Context, prompt, hotelName, location string) (schema.Copy, error) {
	user := fmt.Sprintf(
		"Rules:\n"+
			"- headline: short, premium, 6-12 words\n"+
			"- description: 2 short sentences, calm editorial tone\n"+
			"- amenities: array of 4-6 items, each 2-5 words\n"+
			"- include user-requested features if mentioned\n"+
			"Hotel name: %s\nLocation: %s\nUser prompt: %s\nReturn JSON only.",
		hotelName, location, prompt,
	)

	out, err := c.complete(ctx, copySystemPrompt, user, 0.8, 240)
	if err != nil {
		return schema.Copy{}, err
	}

	var parsed struct {
		Headline    string `json:"headline"`
		Description string `json:"description"`
		Amenities   any    `json:"amenities"`
	}
	if err := extractJSON(out, &parsed); err != nil {
		log.Warn().Str("raw", truncate(out, 200)).Msg("copy output not JSON")
		return schema.Copy{}, err
	}

	copyText := schema.Copy{
		Headline:    strings.TrimSpace(parsed.Headline),
		Description: shortenDescription(strings.TrimSpace(parsed.Description)),
		Amenities:   normalizeAmenities(parsed.Amenities),
	}
	if copyText.Headline == "" || copyText.Description == "" || len(copyText.Amenities) < copyMinAmenities {
		return schema.Copy{}, errors.New("aitext: incomplete copy payload")
	}
	if len(copyText.Amenities) > copyMaxAmenities {
		copyText.Amenities = copyText.Amenities[:copyMaxAmenities]
	}
	log.Info().Int("headline_len", len(copyText.Headline)).Int("amenities", len(copyText.Amenities)).Msg("copy generated")
	return copyText, nil
}

var reSentenceEnd = regexp.MustCompile(`(?:[.!?])\s+`)

// shortenDescription keeps the first two sentences and caps the result,
// cutting at a word boundary and closing with a period.
func shortenDescription(text string) string {
	sentences := splitSentences(text)
	if len(sentences) > 2 {
		sentences = sentences[:2]
	}
	trimmed := strings.Join(sentences, " ")
	if len([]rune(trimmed)) <= copyMaxDescription {
		return trimmed
	}
	cut := string([]rune(trimmed)[:copyMaxDescription])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "."
}

func splitSentences(text string) []string {
	var out []string
	rest := text
	for {
		loc := reSentenceEnd.FindStringIndex(rest)
		if loc == nil {
			break
		}
		if s := strings.TrimSpace(rest[:loc[0]+1]); s != "" {
			out = append(out, s)
		}
		rest = rest[loc[1]:]
	}
	if s := strings.TrimSpace(rest); s != "" {
		out = append(out, s)
	}
	return out
}

var reAmenitySplit = regexp.MustCompile(`\s*[,|\n]\s*`)

func normalizeAmenities(value any) []string {
	var items []string
	switch v := value.(type) {
	case []any:
		for _, it := range v {
			if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
				items = append(items, strings.TrimSpace(s))
			}
		}
	case string:
		for _, p := range reAmenitySplit.Split(v, -1) {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
	}

	var cleaned []string
	for _, item := range items {
		words := strings.Fields(item)
		if len(words) > copyMaxAmenityWords {
			words = words[:copyMaxAmenityWords]
		}
		if t := strings.Join(words, " "); t != "" {
			cleaned = append(cleaned, t)
		}
		if len(cleaned) == copyMaxAmenities {
			break
		}
	}
	return cleaned
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
