package plan

import (
	"github.com/pkg/errors"

	"github.com/xiaobogaga/sparqlagg/id"
	"github.com/xiaobogaga/sparqlagg/qerr"
)

// Run is a maximal contiguous row-index range sharing one group-by key,
// expressed as an inclusive [Start, End] pair matching spec.md §4.4's
// wording.
type Run struct {
	Start, End int
}

// SplitRuns detects the maximal equal-key runs of rows, already sorted on
// groupByCols, per spec.md §4.4. An empty groupByCols list yields a single
// run over the whole input (no grouping columns means "group by nothing").
//
// SplitRuns never re-sorts; if rows are not actually sorted on
// groupByCols, it returns qerr.UnsortedInput rather than silently
// misgrouping. This is a caller error: the sub-result feeding GROUP BY must
// declare and honor sortedBy over exactly these columns.
func SplitRuns(rows [][]id.Id, groupByCols []int) ([]Run, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	if len(groupByCols) == 0 {
		return []Run{{Start: 0, End: len(rows) - 1}}, nil
	}

	var runs []Run
	runStart := 0
	currentKey := keyOf(rows[0], groupByCols)

	for i := 1; i < len(rows); i++ {
		key := keyOf(rows[i], groupByCols)
		cmp := compareKeys(currentKey, key)
		if cmp > 0 {
			return nil, errors.Wrapf(qerr.UnsortedInput, "row %d precedes row %d on group-by columns %v", i, i-1, groupByCols)
		}
		if cmp < 0 {
			runs = append(runs, Run{Start: runStart, End: i - 1})
			runStart = i
			currentKey = key
		}
	}
	runs = append(runs, Run{Start: runStart, End: len(rows) - 1})
	return runs, nil
}

func keyOf(row []id.Id, cols []int) []id.Id {
	key := make([]id.Id, len(cols))
	for i, c := range cols {
		key[i] = row[c]
	}
	return key
}

func compareKeys(a, b []id.Id) int {
	for i := range a {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}
