package driver

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// English month names as rendered by the jQuery UI datepicker.
var monthsByName = map[string]time.Month{
	"january":   time.January,
	"february":  time.February,
	"march":     time.March,
	"april":     time.April,
	"may":       time.May,
	"june":      time.June,
	"july":      time.July,
	"august":    time.August,
	"september": time.September,
	"october":   time.October,
	"november":  time.November,
	"december":  time.December,
}

// ParseCalendarDate converts datepicker day/month/year text into an ISO
// date string ("YYYY-MM-DD").
func ParseCalendarDate(day, monthName, year string) (string, error) {
	m, ok := monthsByName[strings.ToLower(strings.TrimSpace(monthName))]
	if !ok {
		return "", fmt.Errorf("unknown month name: %q", monthName)
	}
	d, err := strconv.Atoi(strings.TrimSpace(day))
	if err != nil {
		return "", fmt.Errorf("invalid day %q: %w", day, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return "", fmt.Errorf("invalid year %q: %w", year, err)
	}
	if d < 1 || d > 31 {
		return "", fmt.Errorf("day out of range: %d", d)
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), nil
}
