// Package snowplot extracts SWE change readings from the NOAA NWRFC snow plot
// HTML page.
//
// The page layout is not stable, so nothing here is positional: the data
// table is found by its text content and the data row by the presence of
// digits. Malformed markup is recovered best-effort by the HTML parser; only
// the content search can fail.
package snowplot

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/couchcryptid/swe-alert-service/internal/domain"
)

// minDataCells is the number of leading cells mapped onto the SWE windows.
const minDataCells = 5

// Extract parses document and returns the SWE change for each window. On
// failure it returns all-NaN values and a *ParseError.
func Extract(document string) (domain.WindowValues, error) {
	doc, err := parseDocument(document)
	if err != nil {
		return domain.NaNWindowValues(), err
	}
	return extractSWE(doc, len(document))
}

// ExtractObservation parses document into an Observation: the SWE change
// windows plus snow depth and observation time when the page carries them.
// Only the SWE change table is required; missing or unparseable ancillary
// fields fall back to NaN depth and an estimated timestamp.
func ExtractObservation(document string) (domain.Observation, error) {
	doc, err := parseDocument(document)
	if err != nil {
		return domain.Observation{}, err
	}
	swe, err := extractSWE(doc, len(document))
	if err != nil {
		return domain.Observation{}, err
	}

	obs := domain.NewObservation(swe)
	if raw, ok := lookupColumn(doc, isDepthHeader); ok {
		obs.SnowDepthIn = domain.Measurement(parseNumber(raw))
	}
	if raw, ok := lookupColumn(doc, isTimeHeader); ok {
		if ts, ok := parseTimestamp(raw); ok {
			obs.ObservedAt = ts
			obs.ObservedAtEstimated = false
		}
	}
	return obs, nil
}

// parseDocument builds the DOM. Input that is not valid UTF-8 is decoded
// first; empty input or input carrying NUL bytes is not a page.
func parseDocument(document string) (*goquery.Document, error) {
	if document == "" {
		return nil, &ParseError{Kind: ErrEmptyInput}
	}
	text := document
	if !utf8.ValidString(text) {
		decoded, err := Decode([]byte(document), "")
		if err != nil {
			return nil, &ParseError{Kind: ErrEmptyInput, DocumentBytes: len(document)}
		}
		text = decoded
	}
	if strings.IndexByte(text, 0) >= 0 {
		return nil, &ParseError{Kind: ErrEmptyInput, DocumentBytes: len(document)}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil, &ParseError{Kind: ErrEmptyInput, DocumentBytes: len(document)}
	}
	return doc, nil
}

func extractSWE(doc *goquery.Document, size int) (domain.WindowValues, error) {
	tables := doc.Find("table")
	perr := &ParseError{DocumentBytes: size, Tables: tables.Length()}

	table := findSWETable(tables)
	if table == nil {
		perr.Kind = ErrTableNotFound
		return domain.NaNWindowValues(), perr
	}

	perr.Rows = table.Find("tr").Length()
	row := findDataRow(table)
	if row == nil {
		perr.Kind = ErrNoDataRow
		return domain.NaNWindowValues(), perr
	}

	cells := row.Find("td")
	perr.Cells = cells.Length()
	if cells.Length() < minDataCells {
		perr.Kind = ErrInsufficientCells
		return domain.NaNWindowValues(), perr
	}

	var out domain.WindowValues
	for i, w := range domain.Windows {
		out[w] = parseNumber(cellText(cells.Eq(i), ""))
	}
	return out, nil
}

// findSWETable returns the first table whose cell text mentions "swe change"
// together with "6 hour" or "12 hour", or nil.
func findSWETable(tables *goquery.Selection) *goquery.Selection {
	var found *goquery.Selection
	tables.EachWithBreak(func(_ int, tbl *goquery.Selection) bool {
		var parts []string
		tbl.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			parts = append(parts, cellText(cell, " "))
		})
		text := strings.ToLower(strings.Join(parts, " "))
		if strings.Contains(text, "swe change") &&
			(strings.Contains(text, "6 hour") || strings.Contains(text, "12 hour")) {
			found = tbl
			return false
		}
		return true
	})
	return found
}

// findDataRow skips the header row and returns the first row with a
// non-empty cell and at least one digit, or nil.
func findDataRow(table *goquery.Selection) *goquery.Selection {
	rows := table.Find("tr")
	for i := 1; i < rows.Length(); i++ {
		row := rows.Eq(i)
		if rowHasData(row.Find("td")) {
			return row
		}
	}
	return nil
}

func rowHasData(cells *goquery.Selection) bool {
	nonEmpty, digit := false, false
	cells.Each(func(_ int, cell *goquery.Selection) {
		txt := cellText(cell, "")
		if txt != "" {
			nonEmpty = true
		}
		if strings.IndexFunc(txt, unicode.IsDigit) >= 0 {
			digit = true
		}
	})
	return nonEmpty && digit
}

// cellText joins the trimmed text fragments under sel with sep. Whitespace
// runs, including non-breaking spaces, collapse to a single space.
func cellText(sel *goquery.Selection, sep string) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, sep)
}

// parseNumber strips whitespace and thousands separators and parses a float.
// Anything unparseable is NaN.
func parseNumber(raw string) float64 {
	txt := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	v, err := strconv.ParseFloat(txt, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
