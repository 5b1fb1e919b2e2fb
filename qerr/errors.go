// Package qerr collects the sentinel errors a caller of result or plan can
// match on with errors.Is, per the error taxonomy of spec.md §7. Every
// sentinel here is wrapped with github.com/pkg/errors at its call site so
// the returned error still carries a human-readable message and stack
// context without losing the ability to match the sentinel.
package qerr

import "errors"

var (
	// InvalidSortSpec is returned when a sortedBy column index does not
	// address an actual column of the table it describes. Always checked,
	// regardless of whether expensive checks are enabled.
	InvalidSortSpec = errors.New("qerr: sortedBy references a column index out of range")

	// NotSorted is returned when a column declared as sortedBy is not
	// actually non-decreasing across the rows observed so far. Only
	// checked when expensive checks are enabled.
	NotSorted = errors.New("qerr: rows are not sorted on the declared column")

	// DefinednessViolated is returned when a column declared AlwaysDefined
	// contains an id.Undefined value. Only checked when expensive checks
	// are enabled.
	DefinednessViolated = errors.New("qerr: column declared always-defined contains an undefined value")

	// LimitViolated is returned when a result emits more rows than its
	// declared limit allows. Always checked, regardless of whether
	// expensive checks are enabled (spec.md §4.1, §9).
	LimitViolated = errors.New("qerr: result emitted more rows than its limit allows")

	// ModeMismatch is returned when a caller invokes a materialized-only
	// accessor on a lazy Container or vice versa.
	ModeMismatch = errors.New("qerr: accessor does not match the container's mode")

	// AlreadyConsumed is returned on any access to a lazy Container's
	// chunk stream after it has been consumed once, including a second
	// call that itself never read any rows.
	AlreadyConsumed = errors.New("qerr: lazy result has already been consumed")

	// UnsortedInput is returned by GroupRunSplitter when the rows handed
	// to it are not actually sorted on the group-by columns it was told
	// to split on.
	UnsortedInput = errors.New("qerr: input rows are not sorted on the group-by columns")

	// ProducerFailed wraps an error surfaced by a ChunkProducer while a
	// lazy Container's stream is being consumed.
	ProducerFailed = errors.New("qerr: chunk producer failed")

	// MissingColumn is not itself fatal: AggregatePlan degrades to an
	// empty, well-shaped result and a logged warning rather than
	// returning this error to its caller. No function in this module
	// returns or logs this sentinel; it names the condition alongside the
	// rest of the taxonomy.
	MissingColumn = errors.New("qerr: referenced variable is missing from the input's column map")
)
