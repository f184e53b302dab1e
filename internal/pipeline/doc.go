// Package pipeline runs one report: download, load, analyze, render and
// export, in that order.
//
// Each step is a Stage sharing a RunState. The Runner wraps every stage in a
// trace span, records its duration and stops at the first failure, which is
// returned as a *StageError wrapping the stage's own error so callers can
// still match sentinels such as analytics.ErrInvalidCoordinate with errors.Is.
// A stage that has nothing to do returns Skip and the run continues.
package pipeline
