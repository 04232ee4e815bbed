package schema

import "strings"

// Patch is a partial update kept as a generic JSON tree until it has
// passed validation. Only the normalizer and validator deal with this
// stringly-typed shape; everything downstream sees the typed Document.
type Patch map[string]any

var allowedTopKeys = map[string]bool{
	"meta":     true,
	"assets":   true,
	"sections": true,
}

// wrapperKeys are conventional envelopes models wrap their output in.
var wrapperKeys = []string{"patch", "changes", "result", "data", "response", "output"}

// rewriteRule tries to rewrite raw into something closer to a canonical
// patch. It reports whether it fired; rules that do not apply must return
// the input unchanged.
type rewriteRule func(p Patch) (Patch, bool)

// Fixed priority order: exact JSON-Patch shape first, then envelope
// unwrapping, then minimal visibility intents, then nested-value
// unwrapping as a last resort.
var rewriteRules = []rewriteRule{
	fromJSONPatchOp,
	unwrapEnvelope,
	fromVisibilityIntent,
	unwrapNestedValue,
}

// Normalize rewrites an untrusted JSON value (typically model output)
// into a canonical patch restricted to the meta/assets/sections roots.
//
// A provider-issued verdict object ({"error": ..., "message": ...}) is
// passed through as the corresponding *Error. Objects with no
// recognizable content fail closed with needs_clarification. A mix of
// recognized and unrecognized top-level keys degrades by dropping the
// unrecognized ones.
func Normalize(raw any) (Patch, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, needsClarification("Invalid patch format.")
	}
	if verdict := passthroughVerdict(m); verdict != nil {
		return nil, verdict
	}
	if len(m) == 0 {
		return nil, noChanges()
	}

	p := Patch(m)
	for _, rule := range rewriteRules {
		p, _ = rule(p)
	}

	if !hasAllowedKey(p) {
		return nil, needsClarification("Invalid top-level keys. Allowed: meta, assets, sections.")
	}
	kept := Patch{}
	for k, v := range p {
		if allowedTopKeys[k] {
			kept[k] = v
		}
	}
	return kept, nil
}

// passthroughVerdict recognizes a provider's own refusal and forwards it
// unchanged instead of treating it as a patch.
func passthroughVerdict(m map[string]any) *Error {
	kind, ok := m["error"].(string)
	if !ok || kind == "" {
		return nil
	}
	msg, _ := m["message"].(string)
	if msg == "" {
		msg = "Instruction could not be applied."
	}
	if Kind(kind) == KindNoChanges {
		return &Error{Kind: KindNoChanges, Message: msg}
	}
	return &Error{Kind: KindNeedsClarification, Message: msg}
}

func hasAllowedKey(p Patch) bool {
	for k := range p {
		if allowedTopKeys[k] {
			return true
		}
	}
	return false
}

// fromJSONPatchOp decomposes a single {op, path, value} operation into a
// nested mapping rooted at the first path segment. Only add/replace ops
// over the meta/assets/sections roots qualify.
func fromJSONPatchOp(p Patch) (Patch, bool) {
	path, ok := p["path"].(string)
	if !ok || !strings.HasPrefix(path, "/") {
		return p, false
	}
	op, _ := p["op"].(string)
	switch strings.ToLower(op) {
	case "add", "replace":
	default:
		return p, false
	}

	var parts []string
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	if len(parts) < 2 || !allowedTopKeys[parts[0]] {
		return p, false
	}

	out := Patch{}
	node := out
	for _, key := range parts[:len(parts)-1] {
		next := map[string]any{}
		node[key] = next
		node = next
	}
	node[parts[len(parts)-1]] = p["value"]
	return out, true
}

// unwrapEnvelope peels one conventional wrapper level ({"patch": {...}}).
func unwrapEnvelope(p Patch) (Patch, bool) {
	for _, key := range wrapperKeys {
		if inner, ok := p[key].(map[string]any); ok {
			return Patch(inner), true
		}
	}
	return p, false
}

// fromVisibilityIntent rewrites a minimal intent object naming a section
// and an action (or an explicit visibility flag) into a canonical
// visibility patch.
func fromVisibilityIntent(p Patch) (Patch, bool) {
	if _, has := p["sections"]; has {
		return p, false
	}
	rawSection, has := p["section"]
	if !has {
		return p, false
	}
	section := strings.ToLower(strings.TrimSpace(str(rawSection)))
	if !allowedSections[section] {
		return p, false
	}

	visibility, ok := p["visibility"].(bool)
	if !ok {
		action := strings.ToLower(strings.TrimSpace(str(p["action"])))
		switch action {
		case "hide", "remove", "disable":
			visibility, ok = false, true
		case "show", "enable", "add":
			visibility, ok = true, true
		}
	}
	if !ok {
		return p, false
	}
	return Patch{"sections": map[string]any{section: map[string]any{"visibility": visibility}}}, true
}

// unwrapNestedValue handles an object with no recognized top-level keys
// where one of the values is itself a mapping that has one.
func unwrapNestedValue(p Patch) (Patch, bool) {
	if hasAllowedKey(p) {
		return p, false
	}
	for _, v := range p {
		if inner, ok := v.(map[string]any); ok && hasAllowedKey(Patch(inner)) {
			return Patch(inner), true
		}
	}
	return p, false
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
