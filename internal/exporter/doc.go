// Package exporter writes the analysis tables as CSV files next to the
// report.
//
// CSVWriter is the low-level writer, with a UTF-8 BOM so spreadsheet tools
// read station names correctly and a streaming mode for large tables.
// ArtifactExporter writes one file per ranking, the summary statistics and
// the cleaned trip table. Null values become empty cells.
//
//	w := exporter.NewCSVWriter(paths)
//	files, err := exporter.NewArtifactExporter(w, logger).Export(result)
package exporter
