package result

import (
	"sync/atomic"

	"github.com/xiaobogaga/sparqlagg/id"
)

// IdTable is an ordered sequence of fixed-width rows together with the
// per-column decoding discipline that governs them. NumCols is carried
// explicitly (rather than inferred from Rows) so an empty table still
// reports its declared shape, matching the "empty, well-shaped output"
// degradation spec.md §4.3 step 4 and §4.6 step 2 require.
type IdTable struct {
	NumCols     int
	ColumnTypes []id.ResultType
	Rows        [][]id.Id
}

// RowCount reports how many rows the table currently holds.
func (t *IdTable) RowCount() int { return len(t.Rows) }

// Definedness classifies whether a column may ever hold the id.Undefined
// marker.
type Definedness int

const (
	AlwaysDefined Definedness = iota
	PossiblyUndefined
)

// ColumnInfo is the value side of a VariableToColumnMap entry.
type ColumnInfo struct {
	Index       int
	Definedness Definedness
}

// VariableToColumnMap resolves a SPARQL variable name to the column that
// carries it and that column's definedness guarantee.
type VariableToColumnMap map[string]ColumnInfo

// LimitOffsetClause describes a LIMIT/OFFSET pair. A nil Limit means
// unlimited.
type LimitOffsetClause struct {
	Limit  *uint64
	Offset uint64
}

// ChunkProducer is the pull-iterator contract a lazy sub-result must
// satisfy: each call to Next returns the next chunk, or ok=false once the
// producer is exhausted. A non-nil error aborts consumption immediately
// and is surfaced to the caller wrapped in qerr.ProducerFailed.
//
// This mirrors the teacher's plan.Plan.Execute() contract (a nil
// *storage.RecordBatch signals EOF) but makes end-of-stream and failure
// distinguishable, which Execute()'s single nil-or-not return value cannot
// do.
type ChunkProducer interface {
	Next() (IdTable, bool, error)
}

// chunkProducerFunc adapts a plain function to ChunkProducer.
type chunkProducerFunc func() (IdTable, bool, error)

func (f chunkProducerFunc) Next() (IdTable, bool, error) { return f() }

var expensiveChecksEnabled atomic.Bool

// SetExpensiveChecks toggles the sortedness and definedness guards that
// spec.md §4.1 and §7 gate behind "if expensive checks are enabled". The
// limit guard (assertThatLimitWasRespected) is never gated by this switch;
// it always runs (spec.md §4.1, §9 open question notwithstanding — the
// asymmetry is intentional and preserved from the source engine).
func SetExpensiveChecks(enabled bool) {
	expensiveChecksEnabled.Store(enabled)
}

// ExpensiveChecksEnabled reports the current value of the toggle set by
// SetExpensiveChecks. Defaults to false, matching a production build of
// the source engine with assertions compiled out.
func ExpensiveChecksEnabled() bool {
	return expensiveChecksEnabled.Load()
}
