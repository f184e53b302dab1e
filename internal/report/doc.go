// Package report renders analysis results as a PDF document.
//
// The document has a logo and date header on every page, a description,
// the station map, one section per ranking (table and bar chart), trip
// distribution charts and the summary statistics table. Charts are drawn
// directly with fpdf primitives. The file is written only after the whole
// document has been produced; a missing logo is an error.
package report
