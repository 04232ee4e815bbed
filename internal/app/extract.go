package app

import (
	"regexp"
	"strings"
)

// Heuristic extraction of hotel name and location from a free-text
// prompt. Best effort only; both fields fall back to defaults so
// generation never blocks on a vague prompt.

const (
	defaultHotelName = "Luxury Resort"
	defaultLocation  = "Amalfi Coast, Italy"
)

// Imperative verbs that show up in prompts ("design a brochure for...")
// and must never be mistaken for part of a hotel name.
var verbBlacklist = []string{"design", "create", "generate", "make", "build", "craft", "produce"}

var (
	reLocation     = regexp.MustCompile(`(?i)\b(?:in|at|near|on)\s+([A-Za-z ,.'\-]{3,60})`)
	reLocationStop = regexp.MustCompile(`(?i)\b(with|featuring|that|which|for|and)\b`)
	reForName      = regexp.MustCompile(`(?i)\bfor\s+([A-Za-z0-9'&\- ,]{3,80})`)
	reQuotedName   = regexp.MustCompile(`"([^"]{3,80})"`)
	reTrailingLoc  = regexp.MustCompile(`(?i)\s+\b(in|at|near|on)\b\s+.+$`)
	reCapWord      = regexp.MustCompile(`\b[A-Z][A-Za-z'&\-]+\b`)
	reToken        = regexp.MustCompile(`[A-Za-z'&\-]+`)
	reSpaces       = regexp.MustCompile(`\s{2,}`)

	reSuffixNames = []*regexp.Regexp{
		regexp.MustCompile(`([A-Z][A-Za-z0-9'&\- ]+\b(?:Hotel|Resort|Lodge|Suites|Inn|Retreat|Palace|Villas))`),
		regexp.MustCompile(`([A-Z][A-Za-z0-9'&\- ]+\b(?:Spa|Club|Estate))`),
	}
)

// ExtractHotelInfo pulls a plausible hotel name and location out of the
// prompt, defaulting both when nothing usable is found.
func ExtractHotelInfo(prompt string) (name, location string) {
	text := strings.TrimSpace(prompt)

	location = extractLocation(text)
	if location == "" {
		location = defaultLocation
	}
	name = extractName(text, location)
	if name == "" {
		name = fallbackName(text, location)
	}
	if name == "" {
		name = defaultHotelName
	}
	return name, location
}

func extractLocation(text string) string {
	m := reLocation.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	loc := m[1]
	if stop := reLocationStop.FindStringIndex(loc); stop != nil {
		loc = loc[:stop[0]]
	}
	return strings.Trim(loc, " ,.")
}

func cleanName(name, location string) string {
	name = strings.Trim(reTrailingLoc.ReplaceAllString(name, ""), " ,.-")
	if location != "" {
		reLoc := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(location))
		name = strings.Trim(reLoc.ReplaceAllString(name, ""), " ,.-")
	}
	return strings.TrimSpace(reSpaces.ReplaceAllString(name, " "))
}

func isValidName(name, location string) bool {
	if name == "" || len(strings.Fields(name)) > 6 {
		return false
	}
	lowered := strings.ToLower(name)
	for _, v := range verbBlacklist {
		if regexp.MustCompile(`\b` + v + `\b`).MatchString(lowered) {
			return false
		}
	}
	if location != "" && strings.Contains(lowered, strings.ToLower(location)) {
		return false
	}
	return true
}

func extractName(text, location string) string {
	if m := reForName.FindStringSubmatch(text); m != nil {
		if c := cleanName(m[1], location); isValidName(c, location) {
			return c
		}
	}
	if m := reQuotedName.FindStringSubmatch(text); m != nil {
		if c := cleanName(m[1], location); isValidName(c, location) {
			return c
		}
	}
	for _, re := range reSuffixNames {
		if m := re.FindStringSubmatch(text); m != nil {
			if c := cleanName(m[1], location); isValidName(c, location) {
				return c
			}
		}
	}
	return ""
}

// fallbackName strings together the prompt's capitalized words, skipping
// verbs and location tokens.
func fallbackName(text, location string) string {
	locationTokens := map[string]bool{}
	for _, tok := range reToken.FindAllString(location, -1) {
		locationTokens[tok] = true
	}
	blacklist := map[string]bool{}
	for _, v := range verbBlacklist {
		blacklist[v] = true
	}

	var kept []string
	for _, w := range reCapWord.FindAllString(text, -1) {
		if blacklist[strings.ToLower(w)] || locationTokens[w] {
			continue
		}
		kept = append(kept, w)
		if len(kept) == 5 {
			break
		}
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}
