// Package intent turns a free-text user utterance into an (origin,
// destination) pair. It is a best-effort pattern cascade, not a grammar:
// patterns are tried in a fixed priority order and the first one that yields
// two distinct non-empty places wins, with no backtracking across patterns.
package intent

import (
	"regexp"
	"strings"
)

// LocationPair is an extracted origin/destination candidate.
type LocationPair struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// Ordered phrase patterns. Each captures exactly two spans; the spans are
// lazy and stop at sentence-ending punctuation or end of input.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bfrom\s+(.+?)\s+(?:to|→|and)\s+(.+?)\s*(?:[.?!,;]|$)`),
	regexp.MustCompile(`(?i)\bbetween\s+(.+?)\s+(?:and|to)\s+(.+?)\s*(?:[.?!,;]|$)`),
	regexp.MustCompile(`(?i)\bhow\s+far(?:\s+is\s+it)?\s+(.+?)\s+(?:to|from)\s+(.+?)\s*(?:[.?!,;]|$)`),
	regexp.MustCompile(`(?i)(.+?)\s+(?:to|→|and)\s+(.+?)\s*(?:[.?!,;]|$)`),
}

// Reversed phrasing such as "airport from main gate". The segment after
// "from" is the origin. Unlike the primary cascade this fallback accepts its
// captures as-is; callers depend on that quirk, do not add the distinctness
// check here.
var reversedPattern = regexp.MustCompile(`(?i)(.+?)\s+from\s+(.+?)\s*(?:[.?!,;]|$)`)

// Two quoted spans anywhere in the text, e.g. `"SAC" to "station road"`.
var quotedPair = regexp.MustCompile(`["“'‘]([^"“”'’]+)["”'’][\s,;:]+["“'‘]([^"“”'’]+)["”'’]`)

// distanceIntent flags utterances that are asking about distance or travel
// time rather than general app questions.
var distanceIntent = regexp.MustCompile(`(?i)\b(distance|how\s+far|travel\s*time|route|directions|eta|reach|kilomet(?:er|re)s?|km|mins?|minutes?)\b`)

var (
	multiSpace = regexp.MustCompile(`\s{2,}`)
	edgePunct  = regexp.MustCompile(`^[\s,.;:]+|[\s,.;:]+$`)
)

// SanitizePlace collapses runs of whitespace and strips leading/trailing
// punctuation. Interior punctuation is kept; "Sector-2, Rourkela" must
// survive intact.
func SanitizePlace(raw string) string {
	s := multiSpace.ReplaceAllString(raw, " ")
	s = strings.TrimSpace(s)
	return edgePunct.ReplaceAllString(s, "")
}

// HasDistanceIntent reports whether text looks like a distance/travel-time
// question.
func HasDistanceIntent(text string) bool {
	return distanceIntent.MatchString(text)
}

// Extract pulls an origin/destination pair out of free text. It returns
// false only when every pattern, including the reversed "B from A" fallback,
// fails to produce a pair.
func Extract(text string) (LocationPair, bool) {
	t := strings.TrimSpace(text)

	for _, re := range patterns {
		m := re.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		a := SanitizePlace(m[1])
		b := SanitizePlace(m[2])
		if a != "" && b != "" && !strings.EqualFold(a, b) {
			return LocationPair{Origin: a, Destination: b}, true
		}
	}

	if m := reversedPattern.FindStringSubmatch(t); m != nil {
		return LocationPair{
			Origin:      SanitizePlace(m[2]),
			Destination: SanitizePlace(m[1]),
		}, true
	}

	return LocationPair{}, false
}

// ExtractQuoted is the lenient fallback for two quoted place names. Each
// span is sanitized and campus-alias expanded before being returned.
func ExtractQuoted(text string) (LocationPair, bool) {
	m := quotedPair.FindStringSubmatch(text)
	if m == nil {
		return LocationPair{}, false
	}
	return LocationPair{
		Origin:      ExpandCampusAlias(SanitizePlace(m[1])),
		Destination: ExpandCampusAlias(SanitizePlace(m[2])),
	}, true
}
