// Package dataset retrieves the trip dataset and loads it into an
// analytics.Table.
//
// Fetcher downloads the JSON trip feed, keeps the first rows up to the
// configured limit and stores them as an Excel workbook. Load reads such a
// workbook back, checks the trip columns and types the numeric ones; empty
// numeric cells become NaN.
package dataset
