// Package naming expands playlist name templates against a reference date.
package naming

import (
	"strconv"
	"strings"
	"time"
)

// Recognized template placeholders.
const (
	placeholderWeek  = "{week_of_year}"
	placeholderYear  = "{year}"
	placeholderMonth = "{month}"
)

// Format expands the recognized placeholders in template using ref.
// {week_of_year} and {year} follow the ISO-8601 week calendar, {month}
// is the calendar month number. Unrecognized placeholders pass through
// unchanged.
func Format(template string, ref time.Time) string {
	year, week := ref.ISOWeek()

	name := template
	name = strings.ReplaceAll(name, placeholderWeek, strconv.Itoa(week))
	name = strings.ReplaceAll(name, placeholderYear, strconv.Itoa(year))
	name = strings.ReplaceAll(name, placeholderMonth, strconv.Itoa(int(ref.Month())))
	return name
}
