package result

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/xiaobogaga/sparqlagg/id"
	"github.com/xiaobogaga/sparqlagg/qerr"
	"github.com/xiaobogaga/sparqlagg/vocab"
)

// mode tags which half of the Materialized/Lazy union a Container holds.
type mode int

const (
	modeMaterialized mode = iota
	modeLazy
)

// Container is the tagged union of spec.md §4.1's ResultContainer:
// Materialized(IdTable, sortedBy, LocalVocab) or Lazy(ChunkStream, sortedBy,
// LocalVocab, consumed flag). Every Container carries a uuid purely for log
// correlation, the way a request/trace id is threaded through a
// distributed pipeline.
type Container struct {
	ID      uuid.UUID
	mode    mode
	numCols int
	sortedBy []int
	vocab    *vocab.LocalVocab

	table *IdTable // set iff mode == modeMaterialized

	producer ChunkProducer // set iff mode == modeLazy
	consumed bool          // set iff mode == modeLazy
}

// NewMaterialized constructs a materialized Container. It fails with
// qerr.InvalidSortSpec if any sortedBy index is out of range, and, when
// ExpensiveChecksEnabled is true, with qerr.NotSorted if the table is not
// actually non-decreasing on sortedBy.
func NewMaterialized(table IdTable, sortedBy []int, lv *vocab.LocalVocab) (*Container, error) {
	if err := validateSortSpec(sortedBy, table.NumCols); err != nil {
		return nil, err
	}
	if ExpensiveChecksEnabled() {
		if err := checkTableSorted(table.Rows, sortedBy); err != nil {
			return nil, err
		}
	}
	return &Container{
		ID:       uuid.New(),
		mode:     modeMaterialized,
		numCols:  table.NumCols,
		sortedBy: sortedBy,
		vocab:    lv,
		table:    &table,
	}, nil
}

// NewLazy constructs a lazy Container over producer. producer is stored but
// never pulled here: sort and definedness checks run per chunk on
// consumption, per spec.md §4.1. numCols is the declared column count every
// chunk the producer yields must match.
func NewLazy(producer ChunkProducer, numCols int, sortedBy []int, lv *vocab.LocalVocab) (*Container, error) {
	if err := validateSortSpec(sortedBy, numCols); err != nil {
		return nil, err
	}
	return &Container{
		ID:       uuid.New(),
		mode:     modeLazy,
		numCols:  numCols,
		sortedBy: sortedBy,
		vocab:    lv,
		producer: wrapWithSortCheck(producer, sortedBy),
	}, nil
}

func validateSortSpec(sortedBy []int, numCols int) error {
	for _, c := range sortedBy {
		if c < 0 || c >= numCols {
			return errors.Wrapf(qerr.InvalidSortSpec, "column %d, table has %d columns", c, numCols)
		}
	}
	return nil
}

// checkTableSorted validates that rows are non-decreasing under
// lexicographic order restricted to sortedBy.
func checkTableSorted(rows [][]id.Id, sortedBy []int) error {
	for i := 1; i < len(rows); i++ {
		if compareOnColumns(rows[i-1], rows[i], sortedBy) > 0 {
			return errors.Wrapf(qerr.NotSorted, "row %d violates declared order on columns %v", i, sortedBy)
		}
	}
	return nil
}

func compareOnColumns(a, b []id.Id, cols []int) int {
	for _, c := range cols {
		if a[c] < b[c] {
			return -1
		}
		if a[c] > b[c] {
			return 1
		}
	}
	return 0
}

// IsFullyMaterialized reports whether this Container holds a Materialized
// variant.
func (c *Container) IsFullyMaterialized() bool { return c.mode == modeMaterialized }

// IdTable returns the materialized table. Fails with qerr.ModeMismatch on a
// lazy Container.
func (c *Container) IdTable() (*IdTable, error) {
	if c.mode != modeMaterialized {
		return nil, errors.Wrap(qerr.ModeMismatch, "IdTable called on a lazy result")
	}
	return c.table, nil
}

// SortedBy returns the declared sort columns.
func (c *Container) SortedBy() []int {
	out := make([]int, len(c.sortedBy))
	copy(out, c.sortedBy)
	return out
}

// NumColumns returns the declared column count.
func (c *Container) NumColumns() int { return c.numCols }

// SharedLocalVocab returns the vocabulary handle backing this result's
// STRING columns, enabling zero-copy reuse by a successor result.
func (c *Container) SharedLocalVocab() *vocab.LocalVocab { return c.vocab }

// IdTables returns a single-use ChunkStream over the lazy producer. Fails
// with qerr.ModeMismatch on a materialized Container, and with
// qerr.AlreadyConsumed on any call after the first, even if that first call
// never actually pulled a row.
func (c *Container) IdTables() (*ChunkStream, error) {
	if c.mode != modeLazy {
		return nil, errors.Wrap(qerr.ModeMismatch, "IdTables called on a materialized result")
	}
	if c.consumed {
		return nil, errors.Wrap(qerr.AlreadyConsumed, "lazy result already iterated")
	}
	c.consumed = true
	return newChunkStream(c.producer), nil
}
