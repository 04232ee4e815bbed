package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Merge deep-merges a validated patch into the document, applies the
// post-merge clamps, and reports a no-op when the clamped result is
// byte-identical to the input under canonical serialization. The no-op
// comparison runs after clamping on purpose: clamping can turn an
// apparent change back into the original value.
//
// The returned document is a fresh value; the input is never mutated.
func Merge(doc *Document, p Patch) (*Document, error) {
	if len(p) == 0 {
		return nil, noChanges()
	}

	base, err := docTree(doc)
	if err != nil {
		return nil, needsClarification("Invalid document state.")
	}
	merged, err := docTree(doc)
	if err != nil {
		return nil, needsClarification("Invalid document state.")
	}

	deepMerge(merged, map[string]any(p))
	if err := clampTree(merged); err != nil {
		return nil, err
	}

	// encoding/json sorts map keys, so marshaling the tree is canonical.
	baseJSON, _ := json.Marshal(base)
	mergedJSON, _ := json.Marshal(merged)
	if bytes.Equal(baseJSON, mergedJSON) {
		return nil, noChanges()
	}

	var out Document
	if err := json.Unmarshal(mergedJSON, &out); err != nil {
		return nil, needsClarification("Invalid patch value type.")
	}
	return &out, nil
}

// docTree round-trips the typed document into a generic JSON tree so the
// generic patch can be merged over it.
func docTree(d *Document) (map[string]any, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// deepMerge merges inc into base in place: nested mappings merge
// recursively, anything else overwrites.
func deepMerge(base, inc map[string]any) {
	for k, v := range inc {
		if vm, ok := v.(map[string]any); ok {
			if bm, ok := base[k].(map[string]any); ok {
				deepMerge(bm, vm)
				continue
			}
		}
		base[k] = v
	}
}

func clampTree(merged map[string]any) error {
	sections, _ := merged["sections"].(map[string]any)
	if sections == nil {
		return nil
	}

	if hero, ok := sections["hero"].(map[string]any); ok {
		clampField(hero, "headline", MaxHeadline)
		clampField(hero, "tagline", MaxTagline)
		clampField(hero, "description", MaxDescription)
	}
	if about, ok := sections["about"].(map[string]any); ok {
		clampField(about, "body", MaxAboutBody)
	}

	if amenities, ok := sections["amenities"].(map[string]any); ok {
		visible := true
		if v, ok := amenities["visibility"].(bool); ok {
			visible = v
		}
		if raw, has := amenities["items"]; has {
			items := normalizeAmenityItems(raw)
			if visible && len(items) < MinAmenities {
				return needsClarification("Amenities require 4–6 items.")
			}
			if len(items) > MaxAmenities {
				items = items[:MaxAmenities]
			}
			amenities["items"] = items
		}
	}
	return nil
}

func clampField(section map[string]any, field string, max int) {
	if s, ok := section[field].(string); ok {
		section[field] = clampText(s, max)
	}
}

// clampText truncates s to at most max runes, cutting at the last
// whitespace boundary strictly inside the limit so words never split.
// Without such a boundary it hard-truncates. A truncated result gets a
// terminal period unless it already ends punctuated.
func clampText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	window := string(runes[:max])
	cut := strings.LastIndexFunc(window, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n'
	})
	if cut <= 0 {
		return window
	}
	trimmed := strings.TrimSpace(window[:cut])
	if trimmed == "" {
		return window
	}
	if !strings.ContainsAny(trimmed[len(trimmed)-1:], ".!?") {
		// Drop a dangling comma or similar so the period doesn't stack.
		trimmed = strings.TrimRight(trimmed, ",;:-")
		if trimmed != "" && len([]rune(trimmed)) < max {
			trimmed += "."
		}
	}
	if trimmed == "" {
		return window
	}
	return trimmed
}

var amenitySeparators = regexp.MustCompile(`[|,\n]+`)

// normalizeAmenityItems accepts a list of values or a delimited string
// and yields trimmed items word-capped at MaxAmenityWords.
func normalizeAmenityItems(raw any) []string {
	var parts []string
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			switch s := item.(type) {
			case string:
				parts = append(parts, s)
			case nil, map[string]any, []any:
				// structured junk, not an amenity
			default:
				// scalars keep their textual form ("24", "true")
				parts = append(parts, fmt.Sprint(s))
			}
		}
	case []string:
		parts = v
	case string:
		parts = amenitySeparators.Split(v, -1)
	}

	out := []string{}
	for _, p := range parts {
		if t := trimWords(p, MaxAmenityWords); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func trimWords(s string, max int) string {
	words := strings.Fields(s)
	if len(words) > max {
		words = words[:max]
	}
	return strings.Join(words, " ")
}
