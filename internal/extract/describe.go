package extract

import (
	"regexp"
	"strings"
)

var (
	upiPayee = regexp.MustCompile(`UPI\s*/\s*([^/]+)/`)
	achPayee = regexp.MustCompile(`ACH\s*/\s*([^/]+)/`)

	refMarker = regexp.MustCompile(`UPI/|ACH/`)
)

// CleanDescription collapses UPI and ACH reference strings to their payee:
// "UPI/SWIGGY/4521/..." becomes "UPI - SWIGGY". Other descriptions are
// returned unchanged.
func CleanDescription(desc string) string {
	if m := upiPayee.FindStringSubmatch(desc); m != nil {
		return "UPI - " + strings.TrimSpace(m[1])
	}
	if m := achPayee.FindStringSubmatch(desc); m != nil {
		return "ACH - " + strings.TrimSpace(m[1])
	}
	return desc
}

func hasReferenceMarker(desc string) bool {
	return refMarker.MatchString(desc)
}

func isBroughtForward(s string) bool {
	return strings.Contains(s, "B/F") || strings.Contains(strings.ToUpper(s), "BROUGHT FORWARD")
}
