package snowplot

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// timestampLayouts are tried in order against the page's date/time cell.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"Jan 2, 2006 15:04",
	"Jan 2 2006 15:04",
	"2006-01-02",
}

// zoneOffsets covers the abbreviations NWRFC appends to page times.
var zoneOffsets = map[string]int{
	"UTC": 0,
	"GMT": 0,
	"Z":   0,
	"PST": -8 * 3600,
	"PDT": -7 * 3600,
	"MST": -7 * 3600,
	"MDT": -6 * 3600,
}

func isDepthHeader(h string) bool {
	return strings.Contains(h, "snow depth")
}

func isTimeHeader(h string) bool {
	return strings.Contains(h, "date") || (strings.Contains(h, "time") && !strings.Contains(h, "hour"))
}

// lookupColumn finds the first table whose header row has a cell matching
// match and returns that column's text in the table's first data row.
func lookupColumn(doc *goquery.Document, match func(header string) bool) (string, bool) {
	var value string
	var found bool
	doc.Find("table").EachWithBreak(func(_ int, tbl *goquery.Selection) bool {
		rows := tbl.Find("tr")
		if rows.Length() < 2 {
			return true
		}
		col := -1
		rows.First().ChildrenFiltered("th, td").EachWithBreak(func(i int, cell *goquery.Selection) bool {
			if match(strings.ToLower(cellText(cell, " "))) {
				col = i
				return false
			}
			return true
		})
		if col < 0 {
			return true
		}
		row := findDataRow(tbl)
		if row == nil {
			return true
		}
		cells := row.ChildrenFiltered("th, td")
		if col >= cells.Length() {
			return true
		}
		value = cellText(cells.Eq(col), " ")
		found = value != ""
		return !found
	})
	return value, found
}

// parseTimestamp parses a page date/time string, honouring a trailing zone
// abbreviation when present. Times without a zone are taken as UTC.
func parseTimestamp(raw string) (time.Time, bool) {
	s := strings.Join(strings.Fields(raw), " ")
	loc := time.UTC
	if i := strings.LastIndexByte(s, ' '); i > 0 {
		if off, ok := zoneOffsets[strings.ToUpper(s[i+1:])]; ok {
			loc = time.FixedZone(strings.ToUpper(s[i+1:]), off)
			s = s[:i]
		}
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
