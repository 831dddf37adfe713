package places

import (
	"regexp"
	"strings"
)

// Residence codes that always mean "on campus". A pickup naming one of
// these maps straight to the campus place token, no geocoder call needed.
var hostelCodes = []string{"HB", "MSS", "DBA", "GDB", "VS", "SD", "CVR", "KMS"}

// CampusPlaceID is the provider token for the campus main gate.
const CampusPlaceID = "ChIJw2HVu3IfIDoRWntq53BcqwA"

// CampusLabel is the formatted label used when the short-circuit fires.
const CampusLabel = "NIT Rourkela, Odisha, India"

// Generic residence suffixes people append to hostel codes.
var hostelSuffixes = []string{" HALL", " HOSTEL", " BLOCK", " BHAVAN", " HSE", " HOUSE"}

var (
	nonAlnum = regexp.MustCompile(`[^A-Z0-9 ]+`)
	spaceRun = regexp.MustCompile(`\s+`)
)

func normalizeCode(s string) string {
	s = strings.ToUpper(s)
	s = nonAlnum.ReplaceAllString(s, " ")
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// IsHostelCode reports whether input names an on-campus residence. Matching
// is deliberately broad: exact code, code as a leading/trailing/interior
// word, the code with spaces squeezed out ("S D" -> "SD"), and code plus a
// residence suffix ("SD HALL") all count.
func IsHostelCode(input string) bool {
	norm := normalizeCode(input)
	if norm == "" {
		return false
	}
	tight := strings.ReplaceAll(norm, " ", "")
	for _, code := range hostelCodes {
		if norm == code {
			return true
		}
		if strings.HasPrefix(norm, code+" ") || strings.HasSuffix(norm, " "+code) || strings.Contains(norm, " "+code+" ") {
			return true
		}
		if strings.Contains(tight, code) {
			return true
		}
		for _, suf := range hostelSuffixes {
			if strings.Contains(norm, code+suf) {
				return true
			}
		}
	}
	return false
}
