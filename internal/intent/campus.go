package intent

import "regexp"

// On-campus landmark names that geocode poorly without context. When a
// place mentions one of these but not the institution or city, the campus
// suffix is appended before the name reaches the geocoder.
var campusLandmark = regexp.MustCompile(`(?i)(main gate|front gate|back gate|sac|hostel|lecture avenue|tiir|tsg|dtp|sac building)`)

var campusMention = regexp.MustCompile(`(?i)nit|rourkela`)

// CampusSuffix disambiguates bare campus landmark names for the geocoder.
const CampusSuffix = ", NIT Rourkela, Odisha"

// ExpandCampusAlias appends the campus suffix to bare on-campus landmark
// names. Names that already mention the institution or city pass through
// unchanged.
func ExpandCampusAlias(name string) string {
	if campusLandmark.MatchString(name) && !campusMention.MatchString(name) {
		return name + CampusSuffix
	}
	return name
}
