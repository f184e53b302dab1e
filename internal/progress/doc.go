// Package progress shows console activity while a long pipeline stage runs.
//
// The spinner is a plain goroutine driven by a context: Track starts it,
// cancels it once the tracked function returns and waits for it to exit.
package progress
