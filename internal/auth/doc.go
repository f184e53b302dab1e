// Package auth authenticates report operators.
//
// Users live in a SQL table (SQLite through modernc.org/sqlite, or
// PostgreSQL) with bcrypt password hashes. A successful Login returns a
// Session value holding a signed HS256 token; there is no hidden logged-in
// state. LoginWithRetry drives an interactive Prompter for a bounded number
// of attempts.
package auth
