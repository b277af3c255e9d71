package snowplot

import (
	"errors"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/swe-alert-service/internal/domain"
)

const sweHeader = `<tr><th>6 Hour SWE Change</th><th>12 Hour SWE Change</th><th>24 Hour SWE Change</th><th>48 Hour SWE Change</th><th>1 Week SWE Change</th></tr>`

func page(tables ...string) string {
	return "<html><body>" + strings.Join(tables, "\n<p>filler</p>\n") + "</body></html>"
}

func sweTable(rows ...string) string {
	return "<table>" + sweHeader + strings.Join(rows, "") + "</table>"
}

func dataRow(cells ...string) string {
	return "<tr><td>" + strings.Join(cells, "</td><td>") + "</td></tr>"
}

func mustDoc(t *testing.T, document string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	require.NoError(t, err)
	return doc
}

func requireKind(t *testing.T, err error, kind error) *ParseError {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	return pe
}

func TestExtract_Fixture(t *testing.T) {
	data, err := os.ReadFile("testdata/snowplot.html")
	require.NoError(t, err)

	got, err := Extract(string(data))
	require.NoError(t, err)

	assert.Equal(t, domain.WindowValues{0.20, 0.50, 1.80, 2.00, 1003.0}, got)
}

func TestExtract_ValuesInOrder(t *testing.T) {
	doc := page(sweTable(dataRow("0.1", "0.2", "0.3", "0.4", "1,234.5", "extra")))

	got, err := Extract(doc)
	require.NoError(t, err)

	assert.Equal(t, 0.1, got[domain.Window6h])
	assert.Equal(t, 0.2, got[domain.Window12h])
	assert.Equal(t, 0.3, got[domain.Window24h])
	assert.Equal(t, 0.4, got[domain.Window48h])
	assert.Equal(t, 1234.5, got[domain.Window1w])
}

func TestExtract_TwelveHourHeaderOnly(t *testing.T) {
	doc := page(`<table><tr><th>12 hour swe change</th></tr>` + dataRow("1", "2", "3", "4", "5") + `</table>`)

	got, err := Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, domain.WindowValues{1, 2, 3, 4, 5}, got)
}

func TestExtract_NonNumericCellIsNaN(t *testing.T) {
	doc := page(sweTable(dataRow("0.1", "M", "0.3", "0.4", "0.5")))

	got, err := Extract(doc)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(got[domain.Window12h]))
	assert.Equal(t, 0.1, got[domain.Window6h])
	assert.Equal(t, 0.3, got[domain.Window24h])
	assert.Equal(t, 0.4, got[domain.Window48h])
	assert.Equal(t, 0.5, got[domain.Window1w])
}

func TestExtract_SkipsSecondaryHeaderRows(t *testing.T) {
	doc := page(sweTable(
		dataRow("(in)", "(in)", "(in)", "(in)", "(in)"),
		dataRow("", "", "", "", ""),
		dataRow("-0.1", "0", "0.2", "0.3", "0.9"),
		dataRow("9", "9", "9", "9", "9"),
	))

	got, err := Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, domain.WindowValues{-0.1, 0, 0.2, 0.3, 0.9}, got)
}

func TestExtract_EmptyInput(t *testing.T) {
	for _, doc := range []string{"", "\x00\x01\x02\x03", "<table>\x00</table>"} {
		got, err := Extract(doc)
		requireKind(t, err, ErrEmptyInput)
		assert.True(t, math.IsNaN(got[domain.Window6h]))
	}
}

func TestExtract_WhitespaceOnlyIsTableNotFound(t *testing.T) {
	_, err := Extract("   \n\t")
	pe := requireKind(t, err, ErrTableNotFound)
	assert.Equal(t, 0, pe.Tables)
}

func TestExtract_Latin1Page(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"meta charset", `<meta charset="iso-8859-1"><p>Temp 32` + "\xb0" + `F</p>` + sweTable(dataRow("0.10", "0.20", "0.30", "0.40", "0.50"))},
		{"undeclared", `<p>Temp 32` + "\xb0" + `F</p>` + sweTable(dataRow("0.10", "0.20", "0.30", "0.40", "0.50"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, domain.WindowValues{0.1, 0.2, 0.3, 0.4, 0.5}, got)
		})
	}
}

func TestDecode(t *testing.T) {
	got, err := Decode([]byte("<p>32\xb0F</p>"), "text/html; charset=iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "<p>32\u00b0F</p>", got)

	got, err = Decode([]byte("<p>32\u00b0F</p>"), "text/html; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, "<p>32\u00b0F</p>", got)

	got, err = Decode(nil, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExtract_NoTable(t *testing.T) {
	doc := "<html><body><p>6 hour SWE change is unavailable</p></body></html>"

	_, err := Extract(doc)
	pe := requireKind(t, err, ErrTableNotFound)
	assert.Equal(t, 0, pe.Tables)
	assert.Equal(t, len(doc), pe.DocumentBytes)
}

func TestExtract_TableWithoutPhrase(t *testing.T) {
	doc := page(`<table><tr><th>SWE Change</th><th>24 Hour</th></tr>` + dataRow("1", "2", "3", "4", "5") + `</table>`)

	_, err := Extract(doc)
	pe := requireKind(t, err, ErrTableNotFound)
	assert.Equal(t, 1, pe.Tables)
}

func TestExtract_HeaderOnly(t *testing.T) {
	_, err := Extract(page(sweTable()))
	pe := requireKind(t, err, ErrNoDataRow)
	assert.Equal(t, 1, pe.Rows)
}

func TestExtract_NoDigitRows(t *testing.T) {
	_, err := Extract(page(sweTable(dataRow("M", "M", "M", "M", "M"), dataRow("", "", "", "", ""))))
	pe := requireKind(t, err, ErrNoDataRow)
	assert.Equal(t, 3, pe.Rows)
}

func TestExtract_InsufficientCells(t *testing.T) {
	_, err := Extract(page(sweTable(dataRow("0.1", "0.2", "0.3"))))
	pe := requireKind(t, err, ErrInsufficientCells)
	assert.Equal(t, 3, pe.Cells)
}

func TestExtract_MalformedMarkupRecovers(t *testing.T) {
	doc := `<table><tr><th>6 Hour SWE Change<th>12 Hour SWE Change<tr><td>1<td>2<td>3<td>4<td>5`

	got, err := Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, domain.WindowValues{1, 2, 3, 4, 5}, got)
}

func TestExtract_OnlyDocumentedErrorKinds(t *testing.T) {
	docs := []string{
		"",
		"plain text with 6 hour swe change",
		"<table></table>",
		"<table><tr><td>swe change 6 hour</td></tr></table>",
		"<table><tr><td>swe change 6 hour</td></tr><tr><td>1</td></tr></table>",
		"<table><tr><td>swe change 6 hour</td></tr><tr><td>1</td><td>x</td><td></td><td>2</td><td>3</td></tr></table>",
		"<<<>>>",
	}
	kinds := []error{ErrEmptyInput, ErrTableNotFound, ErrNoDataRow, ErrInsufficientCells}

	for _, doc := range docs {
		got, err := Extract(doc)
		assert.Len(t, got, 5)
		if err == nil {
			continue
		}
		matched := false
		for _, k := range kinds {
			if errors.Is(err, k) {
				matched = true
			}
		}
		assert.True(t, matched, "undocumented error for %q: %v", doc, err)
	}
}

func TestFindSWETable_FirstMatchWins(t *testing.T) {
	doc := mustDoc(t, page(
		`<table id="nav"><tr><td>Home</td></tr></table>`,
		`<table id="first"><tr><th>6 Hour SWE Change</th></tr></table>`,
		`<table id="second"><tr><th>12 Hour SWE Change</th></tr></table>`,
	))

	tbl := findSWETable(doc.Find("table"))
	require.NotNil(t, tbl)
	id, _ := tbl.Attr("id")
	assert.Equal(t, "first", id)
}

func TestFindSWETable_CaseAndWhitespaceInsensitive(t *testing.T) {
	doc := mustDoc(t, page(`<table><tr><th>SWE&nbsp;CHANGE</th><th>6&nbsp;&nbsp;HOUR</th></tr></table>`))

	assert.NotNil(t, findSWETable(doc.Find("table")))
}

func TestFindSWETable_None(t *testing.T) {
	doc := mustDoc(t, page(`<table><tr><th>Snow Depth</th></tr></table>`))

	assert.Nil(t, findSWETable(doc.Find("table")))
}

func TestFindDataRow(t *testing.T) {
	tests := []struct {
		name  string
		rows  []string
		want  string
		found bool
	}{
		{"first data row", []string{dataRow("1", "2")}, "1", true},
		{"skips label row", []string{dataRow("in", "in"), dataRow("3", "4")}, "3", true},
		{"skips blank row", []string{dataRow("", ""), dataRow("5", "")}, "5", true},
		{"no rows", nil, "", false},
		{"no digits", []string{dataRow("n/a", "M")}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustDoc(t, page(sweTable(tt.rows...)))
			row := findDataRow(doc.Find("table").First())
			if !tt.found {
				assert.Nil(t, row)
				return
			}
			require.NotNil(t, row)
			assert.Equal(t, tt.want, cellText(row.Find("td").First(), ""))
		})
	}
}

func TestExtractObservation_Fixture(t *testing.T) {
	data, err := os.ReadFile("testdata/snowplot.html")
	require.NoError(t, err)

	obs, err := ExtractObservation(string(data))
	require.NoError(t, err)

	assert.Equal(t, domain.WindowValues{0.20, 0.50, 1.80, 2.00, 1003.0}, obs.SWEChange)
	assert.Equal(t, domain.Measurement(41.5), obs.SnowDepthIn)
	assert.False(t, obs.ObservedAtEstimated)
	assert.Equal(t, time.Date(2025, time.January, 12, 14, 0, 0, 0, time.UTC), obs.ObservedAt)
}

func TestExtractObservation_FallsBackToNow(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2025, time.February, 3, 12, 0, 0, 0, time.UTC))
	domain.SetClock(fakeClock)
	t.Cleanup(func() {
		domain.SetClock(nil)
	})

	tests := []struct {
		name string
		doc  string
	}{
		{"no ancillary table", page(sweTable(dataRow("1", "2", "3", "4", "5")))},
		{"unparseable time", page(
			`<table><tr><th>Date/Time</th><th>Snow Depth</th></tr><tr><td>sometime 2025</td><td>n/a</td></tr></table>`,
			sweTable(dataRow("1", "2", "3", "4", "5")),
		)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, err := ExtractObservation(tt.doc)
			require.NoError(t, err)
			assert.True(t, obs.ObservedAtEstimated)
			assert.Equal(t, fakeClock.Now(), obs.ObservedAt)
			assert.True(t, obs.SnowDepthIn.NaN())
			assert.Equal(t, domain.WindowValues{1, 2, 3, 4, 5}, obs.SWEChange)
		})
	}
}

func TestExtractObservation_PropagatesParseError(t *testing.T) {
	_, err := ExtractObservation(page(`<table><tr><th>Snow Depth</th></tr><tr><td>40</td></tr></table>`))
	requireKind(t, err, ErrTableNotFound)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
		ok   bool
	}{
		{"2025-01-12 06:00", time.Date(2025, 1, 12, 6, 0, 0, 0, time.UTC), true},
		{"2025-01-12 06:00 PST", time.Date(2025, 1, 12, 14, 0, 0, 0, time.UTC), true},
		{"07/04/2025 18:30 pdt", time.Date(2025, 7, 5, 1, 30, 0, 0, time.UTC), true},
		{"2025-01-12T06:00:00Z", time.Date(2025, 1, 12, 6, 0, 0, 0, time.UTC), true},
		{"Jan 12, 2025 06:00", time.Date(2025, 1, 12, 6, 0, 0, 0, time.UTC), true},
		{"2025-01-12", time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC), true},
		{"yesterday", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parseTimestamp(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestParseError_KindName(t *testing.T) {
	assert.Equal(t, "empty_input", (&ParseError{Kind: ErrEmptyInput}).KindName())
	assert.Equal(t, "table_not_found", (&ParseError{Kind: ErrTableNotFound}).KindName())
	assert.Equal(t, "no_data_row", (&ParseError{Kind: ErrNoDataRow}).KindName())
	assert.Equal(t, "insufficient_cells", (&ParseError{Kind: ErrInsufficientCells}).KindName())
	assert.Equal(t, "no_data_row", KindOf(&ParseError{Kind: ErrNoDataRow}))
	assert.Empty(t, KindOf(errors.New("boom")))
}
