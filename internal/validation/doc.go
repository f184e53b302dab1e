// Package validation checks files and directories before the report
// pipeline touches them: the user supplied dataset workbook and the
// directory the report is written to.
package validation
