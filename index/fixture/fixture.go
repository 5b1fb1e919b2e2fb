// Package fixture provides in-memory stand-ins for the index.Index and
// index.SubOperator external collaborators, grounded on the teacher's
// storage.Storage/storage.RecordBatch test doubles (storage/storage_test.go,
// plan/executors_test.go): a small hand-built table plus a vocabulary map,
// enough to drive AggregatePlan and AggregateEngine tests without an actual
// on-disk index or query tree.
package fixture

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/xiaobogaga/sparqlagg/id"
	"github.com/xiaobogaga/sparqlagg/result"
	"github.com/xiaobogaga/sparqlagg/vocab"
)

// Vocabulary is a fixed, in-memory word list addressed by id.Id, standing in
// for the on-disk vocabulary an index.Index would normally decode against.
type Vocabulary struct {
	Words []string
}

// NewVocabulary builds a Vocabulary from words in id order: Words[i] is the
// word decoded for id.Id(i).
func NewVocabulary(words ...string) *Vocabulary {
	return &Vocabulary{Words: words}
}

// IdToString implements index.Index.
func (v *Vocabulary) IdToString(x id.Id) (string, error) {
	i := int(x)
	if i < 0 || i >= len(v.Words) {
		return "", errors.Errorf("fixture: id %d out of vocabulary range", x)
	}
	return v.Words[i], nil
}

// GetTextExcerpt implements index.Index. This fixture keeps text records in
// the same word list as KB entries; a real Index stores them separately.
func (v *Vocabulary) GetTextExcerpt(x id.Id) (string, error) {
	return v.IdToString(x)
}

// TableOperator is a SubOperator backed by a single fixed, already-sorted
// table, standing in for a real query-tree node.
type TableOperator struct {
	Columns  result.VariableToColumnMap
	Types    []id.ResultType
	Sorted   []int
	Table    result.IdTable
	IsLazy   bool
	ChunkLen int // when IsLazy, rows per yielded chunk (0 = one chunk)
	Vocab    *vocab.LocalVocab // backs any STRING-typed column; nil if the table has none
}

// Result implements index.SubOperator.
func (t *TableOperator) Result() (*result.Container, error) {
	if !t.IsLazy {
		return result.NewMaterialized(t.Table, t.Sorted, t.Vocab)
	}
	chunkLen := t.ChunkLen
	if chunkLen <= 0 {
		chunkLen = len(t.Table.Rows)
		if chunkLen == 0 {
			chunkLen = 1
		}
	}
	rows := t.Table.Rows
	pos := 0
	producer := producerFunc(func() (result.IdTable, bool, error) {
		if pos >= len(rows) {
			return result.IdTable{}, false, nil
		}
		end := pos + chunkLen
		if end > len(rows) {
			end = len(rows)
		}
		chunk := result.IdTable{NumCols: t.Table.NumCols, ColumnTypes: t.Table.ColumnTypes, Rows: rows[pos:end]}
		pos = end
		return chunk, true, nil
	})
	return result.NewLazy(producer, t.Table.NumCols, t.Sorted, t.Vocab)
}

func (t *TableOperator) ColumnCount() int                            { return t.Table.NumCols }
func (t *TableOperator) VariableToColumnMap() result.VariableToColumnMap { return t.Columns }
func (t *TableOperator) ColumnTypes() []id.ResultType                 { return t.Types }
func (t *TableOperator) SortedBy() []int                              { return t.Sorted }

type producerFunc func() (result.IdTable, bool, error)

func (f producerFunc) Next() (result.IdTable, bool, error) { return f() }

// Row is a convenience constructor for a fixture row of verbatim integers,
// used by tests that only care about VERBATIM columns.
func Row(vals ...int64) []id.Id {
	row := make([]id.Id, len(vals))
	for i, v := range vals {
		row[i] = id.EncodeVerbatim(v)
	}
	return row
}

// String renders a row for test failure messages.
func String(row []id.Id) string {
	return fmt.Sprintf("%v", row)
}
