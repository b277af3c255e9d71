// Package domain models snow-water-equivalent (SWE) change readings and the
// alert decision derived from them.
//
// # Data Source
//
// Readings come from the NOAA Northwest River Forecast Center (NWRFC) snow
// plot page for a single SNOTEL station, e.g.
// https://www.nwrfc.noaa.gov/snow/snowplot.cgi?SUNQ1=. The page is an HTML
// document whose layout is not contractually stable; the extractor in
// package snowplot turns it into the types defined here.
//
// # Windows
//
// The page reports SWE change over five fixed look-back windows, always in
// this order:
//
//	6h  12h  24h  48h  1w
//
// A [WindowValues] holds exactly one value per window, so a reading can never
// be missing a field. Values are inches of SWE change.
//
// # NaN
//
// NaN is a first-class domain value meaning "absent or unparseable". A
// non-numeric page cell becomes NaN for that window only, and an unset
// threshold becomes a NaN threshold. Every comparison checks for NaN
// explicitly; a NaN reading or threshold never triggers an alert.
//
// JSON encodes NaN as null and decodes null (or a missing key) back to NaN.
//
// # Units
//
// Thresholds are configured in centimeters and converted to inches by
// dividing by 2.54 before comparison:
//
//	3.81 cm / 2.54 = 1.50 in
//
// Comparison is inclusive: a reading equal to its threshold triggers.
package domain
