// Package shared groups helpers used by more than one bikereport package.
//
// The testutil subpackage provides a capturing slog handler plus fixtures
// for trip datasets, workbooks and the report logo. It is imported by tests
// only and carries no domain logic.
package shared
