package plan

import (
	"github.com/xiaobogaga/sparqlagg/id"
	"github.com/xiaobogaga/sparqlagg/index"
	"github.com/xiaobogaga/sparqlagg/logger"
	"github.com/xiaobogaga/sparqlagg/result"
	"github.com/xiaobogaga/sparqlagg/vocab"
)

// Execute runs one GROUP BY over sub, per spec.md §4.6. A lazy sub-result
// is fully drained before aggregation begins: streaming aggregation is
// explicitly not required at this layer (spec.md §4.6 step 1).
//
// cache, when non-nil, is consulted for a previously resolved AggregatePlan
// under this GROUP BY's canonical signature (CacheKey) before falling back
// to Build, and is populated on a miss; pass nil to always resolve fresh,
// e.g. for a one-shot GROUP BY that will never repeat.
//
// When groupByVars or an alias references a variable missing from sub's
// schema, Execute degrades to an empty, well-shaped Materialized result
// (spec.md §4.3 step 4, §4.6 step 2) rather than returning an error; the
// degradation is logged as a warning through log.
func Execute(sub index.SubOperator, groupByVars []string, aliases []AliasDescriptor, idx index.Index, cache *Cache, log logger.Scope) (*result.Container, error) {
	vtc := sub.VariableToColumnMap()
	colTypes := sub.ColumnTypes()

	var agg *AggregatePlan
	var ok bool
	if cache != nil {
		agg, ok = cache.GetOrBuild(groupByVars, aliases, vtc, colTypes, log)
	} else {
		agg, ok = Build(groupByVars, aliases, vtc, colTypes, log)
	}
	if !ok {
		return emptyResult(groupByVars, aliases), nil
	}

	rows, inputVocab, err := drain(sub, log)
	if err != nil {
		return nil, err
	}

	// The plan's pass-through descriptors (group-by columns, and SAMPLE/
	// FIRST/LAST over a STRING column) copy the input Id unchanged;
	// a STRING cell copied that way is only resolvable against inputVocab,
	// so the published result's vocabulary must still reach it.
	outputVocab := vocab.NewChild(inputVocab)
	outTable := result.IdTable{NumCols: agg.Width(), ColumnTypes: agg.OutputTypes}

	runs, err := SplitRuns(rows, agg.GroupByColumns())
	if err != nil {
		return nil, err
	}

	for _, run := range runs {
		row := make([]id.Id, agg.Width())
		for _, desc := range agg.Descriptors {
			v, err := Reduce(desc, colTypes[desc.InCol], rows, run, idx, inputVocab, outputVocab)
			if err != nil {
				return nil, err
			}
			row[desc.OutCol] = v
		}
		outTable.Rows = append(outTable.Rows, row)
	}

	// The aggregation output is not claimed sorted (spec.md §4.6 step 5).
	out, err := result.NewMaterialized(outTable, nil, outputVocab)
	if err == nil {
		log.Infof("result %s: group by produced %d rows over %d runs", out.ID, len(outTable.Rows), len(runs))
	}
	return out, err
}

// drain fully materializes sub's result, returning its rows and the
// LocalVocab that any STRING-typed cell among them must be resolved
// against. Each chunk pulled off a lazy sub-result is logged against that
// sub-result's Container.ID, giving a trace of consumption progress that
// correlates back to whichever component logged that same id when it built
// the sub-result in the first place.
func drain(sub index.SubOperator, log logger.Scope) ([][]id.Id, *vocab.LocalVocab, error) {
	container, err := sub.Result()
	if err != nil {
		return nil, nil, err
	}
	if container.IsFullyMaterialized() {
		table, err := container.IdTable()
		if err != nil {
			return nil, nil, err
		}
		log.Infof("result %s: drained %d materialized rows", container.ID, table.RowCount())
		return table.Rows, container.SharedLocalVocab(), nil
	}
	stream, err := container.IdTables()
	if err != nil {
		return nil, nil, err
	}
	var rows [][]id.Id
	chunkNum := 0
	for {
		chunk, ok, err := stream.Next()
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			break
		}
		chunkNum++
		log.Infof("result %s: pulled chunk %d (%d rows)", container.ID, chunkNum, chunk.RowCount())
		rows = append(rows, chunk.Rows...)
	}
	return rows, container.SharedLocalVocab(), nil
}

// emptyResult builds a zero-row, correctly-shaped Materialized result when
// AggregatePlan.Build could not resolve every referenced variable. The
// exact output ResultType of each column cannot be known without a
// resolved plan, so every column is declared id.Undef; this is a best
// effort at "correct width" per spec.md §4.6 step 2, which does not specify
// column types for this degraded path.
func emptyResult(groupByVars []string, aliases []AliasDescriptor) *result.Container {
	width := len(groupByVars)
	for _, a := range aliases {
		if a.IsAggregate {
			width++
		}
	}
	types := make([]id.ResultType, width)
	for i := range types {
		types[i] = id.Undef
	}
	table := result.IdTable{NumCols: width, ColumnTypes: types}
	c, _ := result.NewMaterialized(table, nil, vocab.New())
	return c
}
