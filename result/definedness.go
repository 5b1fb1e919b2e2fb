package result

import (
	"github.com/pkg/errors"

	"github.com/xiaobogaga/sparqlagg/id"
	"github.com/xiaobogaga/sparqlagg/qerr"
)

// CheckDefinedness installs the definedness guard of spec.md §4.1: for
// every column vtc declares AlwaysDefined, no row may hold id.Undefined in
// that column.
//
// On a materialized Container the whole table is checked immediately, when
// ExpensiveChecksEnabled is true, and any violation is returned right away;
// with expensive checks off it returns nil. On a lazy Container the guard is
// installed onto the not-yet-consumed producer chain and checked per chunk
// as consumption proceeds via IdTables/RunOnNewChunkComputed/
// CacheDuringConsumption; violations surface from that later call once
// ExpensiveChecksEnabled is true, mirroring the sortedness guard.
//
// Must be called before the stream has been consumed; calling it afterward
// fails with qerr.AlreadyConsumed since there is nothing left to guard.
func (c *Container) CheckDefinedness(vtc VariableToColumnMap) error {
	alwaysDefined := alwaysDefinedColumns(vtc)
	if len(alwaysDefined) == 0 {
		return nil
	}
	if c.mode == modeMaterialized {
		if !ExpensiveChecksEnabled() {
			return nil
		}
		return checkRowsDefined(c.table.Rows, alwaysDefined)
	}
	if c.consumed {
		return errors.Wrap(qerr.AlreadyConsumed, "CheckDefinedness installed after consumption began")
	}
	c.producer = wrapWithDefinednessCheck(c.producer, alwaysDefined)
	return nil
}

func alwaysDefinedColumns(vtc VariableToColumnMap) []int {
	var cols []int
	for _, info := range vtc {
		if info.Definedness == AlwaysDefined {
			cols = append(cols, info.Index)
		}
	}
	return cols
}

func checkRowsDefined(rows [][]id.Id, cols []int) error {
	for r, row := range rows {
		for _, c := range cols {
			if row[c] == id.Undefined {
				return errors.Wrapf(qerr.DefinednessViolated, "row %d column %d declared always-defined", r, c)
			}
		}
	}
	return nil
}

func wrapWithDefinednessCheck(producer ChunkProducer, cols []int) ChunkProducer {
	return chunkProducerFunc(func() (IdTable, bool, error) {
		chunk, ok, err := producer.Next()
		if err != nil || !ok {
			return chunk, ok, err
		}
		if ExpensiveChecksEnabled() {
			if err := checkRowsDefined(chunk.Rows, cols); err != nil {
				return IdTable{}, false, err
			}
		}
		return chunk, true, nil
	})
}
