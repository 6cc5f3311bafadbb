package match

import (
	"fmt"
	"strings"
	"time"
)

// dateParseLayouts are the layouts accepted for user-entered dates.
// time.Parse tolerates unpadded month/day digits against padded layouts, so
// this list covers both "03/20/2023" and "3/20/2023". Ambiguous numeric input
// is read month-first, matching how the rest of the app presents dates.
var dateParseLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"01-02-2006",
	"02.01.2006",
	"January 2, 2006",
	"January 2 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
}

// ExpandDateFormats turns one user-entered date into every string rendering
// the search engine should look for literally.
//
// Source documents format the same logical date inconsistently ("03/20/2023"
// on a lab report, "March 20, 2023" in a narrative, "2023-03-20" in a header),
// and normalizing extracted page text is not feasible with OCR noise. Recall
// therefore comes from generating the superset of plausible renderings and
// searching each as an exact word-boundary literal.
//
// The result is deduplicated; callers must not rely on its order. If the
// input does not parse as a calendar date the raw input is returned as the
// only element, so it is still searched literally.
//
// Example:
//
//	ExpandDateFormats("2023-03-20")
//	// Contains "03/20/2023", "20/03/2023", "2023-03-20", "March 20, 2023", "20 Mar 2023", ...
//
//	ExpandDateFormats("not a date") // Returns ["not a date"]
func ExpandDateFormats(input string) []string {
	trimmed := strings.TrimSpace(input)

	t, ok := parseDate(trimmed)
	if !ok {
		return []string{input}
	}

	year := t.Year()
	month := int(t.Month())
	day := t.Day()

	mm := fmt.Sprintf("%02d", month)
	m := fmt.Sprintf("%d", month)
	dd := fmt.Sprintf("%02d", day)
	d := fmt.Sprintf("%d", day)
	yyyy := fmt.Sprintf("%d", year)

	var formats []string

	// Slash-separated, month first and day first, including the mixed-padding
	// combinations that show up when a document pads one field but not the other.
	formats = append(formats,
		mm+"/"+dd+"/"+yyyy,
		m+"/"+d+"/"+yyyy,
		m+"/"+dd+"/"+yyyy,
		mm+"/"+d+"/"+yyyy,
		dd+"/"+mm+"/"+yyyy,
		d+"/"+m+"/"+yyyy,
		dd+"/"+m+"/"+yyyy,
		d+"/"+mm+"/"+yyyy,
	)

	// Dash-separated: ISO plus month-first and day-first equivalents.
	formats = append(formats,
		yyyy+"-"+mm+"-"+dd,
		mm+"-"+dd+"-"+yyyy,
		m+"-"+d+"-"+yyyy,
		dd+"-"+mm+"-"+yyyy,
		d+"-"+m+"-"+yyyy,
	)

	// European dot-separated and slash ISO.
	formats = append(formats,
		dd+"."+mm+"."+yyyy,
		d+"."+m+"."+yyyy,
		yyyy+"/"+mm+"/"+dd,
	)

	// Month-name forms, full and abbreviated, padded and unpadded day.
	full := t.Month().String()
	abbr := full[:3]
	for _, name := range []string{full, abbr} {
		for _, dayStr := range []string{dd, d} {
			formats = append(formats,
				name+" "+dayStr+", "+yyyy,
				name+" "+dayStr+" "+yyyy,
				dayStr+" "+name+" "+yyyy,
			)
		}
	}

	return dedupeStrings(formats)
}

// parseDate attempts each accepted layout in order.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateParseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// dedupeStrings removes duplicates, keeping first occurrence order.
func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
