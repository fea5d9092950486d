package driver

import "strings"

// The site's busy banner text (the ru-kz portal serves it in Russian).
// Matched as substrings so markup changes around the banner don't break
// detection.
var busyMarkers = []string{
	"система занята",
	"повторите попытку позже",
}

// BusyMarkerPresent reports whether the page HTML contains the site's
// "system busy" banner. All markers must be present.
func BusyMarkerPresent(html string) bool {
	html = strings.ToLower(html)
	for _, m := range busyMarkers {
		if !strings.Contains(html, m) {
			return false
		}
	}
	return true
}
