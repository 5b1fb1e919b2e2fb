// Package index declares the two external collaborators the aggregation
// core consumes but never implements: the read-only Index over the
// on-disk vocabulary, and the SubOperator that produces a result to group.
// Both are external per spec.md §1/§6; this package only carries their
// contracts. The typed-literal prefix helpers kernels use alongside them
// live in package id.
package index

import (
	"github.com/xiaobogaga/sparqlagg/id"
	"github.com/xiaobogaga/sparqlagg/result"
)

// Index exposes read-only access to the on-disk vocabulary. Kernels invoke
// it concurrently without synchronization (spec.md §5): implementations
// must be safe for concurrent read-only use.
type Index interface {
	// IdToString decodes a KB-typed Id to its vocabulary word.
	IdToString(v id.Id) (string, error)
	// GetTextExcerpt decodes a TEXT-typed Id to its text-record content.
	GetTextExcerpt(v id.Id) (string, error)
}

// SubOperator produces the sub-result an aggregation plan groups over. It
// declares enough shape information (column count, variable→column map,
// per-column result types, sort columns) for AggregatePlan to resolve
// aliases without ever inspecting query-planning internals.
type SubOperator interface {
	// Result returns the operator's output. May be materialized or lazy.
	Result() (*result.Container, error)
	ColumnCount() int
	VariableToColumnMap() result.VariableToColumnMap
	ColumnTypes() []id.ResultType
	SortedBy() []int
}
