// Package errors turns failures from the bikereport layers into operator
// facing messages and process exit codes.
//
// Each layer keeps its own sentinel errors (auth.ErrInvalidCredentials,
// analytics.ErrInvalidCoordinate, ...). Classify inspects the chain with
// errors.Is and errors.As and wraps it in an AppError whose Type selects the
// exit code; the original error stays reachable through Unwrap.
package errors
