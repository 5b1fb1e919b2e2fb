package result

import (
	"time"

	"github.com/pkg/errors"

	"github.com/xiaobogaga/sparqlagg/id"
	"github.com/xiaobogaga/sparqlagg/qerr"
)

// AssertThatLimitWasRespected guards that the produced row count does not
// exceed clause.Limit. Unlike sortedness and definedness, this check always
// runs regardless of ExpensiveChecksEnabled (spec.md §4.1, §9).
//
// On a materialized Container the count is known immediately. On a lazy
// Container the guard is installed onto the not-yet-consumed producer chain
// and the violation surfaces once enough rows have actually been pulled.
func (c *Container) AssertThatLimitWasRespected(clause LimitOffsetClause) error {
	if clause.Limit == nil {
		return nil
	}
	if c.mode == modeMaterialized {
		if uint64(len(c.table.Rows)) > *clause.Limit {
			return errors.Wrapf(qerr.LimitViolated, "produced %d rows, limit is %d", len(c.table.Rows), *clause.Limit)
		}
		return nil
	}
	if c.consumed {
		return errors.Wrap(qerr.AlreadyConsumed, "AssertThatLimitWasRespected installed after consumption began")
	}
	limit := *clause.Limit
	var seen uint64
	c.producer = wrapChunkProducer(c.producer, func(chunk IdTable) (IdTable, error) {
		seen += uint64(len(chunk.Rows))
		if seen > limit {
			return IdTable{}, errors.Wrapf(qerr.LimitViolated, "produced at least %d rows, limit is %d", seen, limit)
		}
		return chunk, nil
	})
	return nil
}

// ApplyLimitOffset rewrites c to emit only rows [offset, offset+limit).
// A nil clause.Limit means unlimited; a limit of 0 produces no rows; an
// offset beyond the stream end produces no rows without error.
//
// For a materialized Container the slice is computed immediately and
// onChunkEmitted fires exactly once, synchronously, with the resulting
// table. For a lazy Container the transformation is layered onto the chunk
// stream and onChunkEmitted fires once per output chunk as consumption
// proceeds; c is consumed by this call (its producer moves to the returned
// Container) and must not be used directly afterward.
func (c *Container) ApplyLimitOffset(clause LimitOffsetClause, onChunkEmitted func(time.Duration, IdTable)) (*Container, error) {
	if c.mode == modeMaterialized {
		start := time.Now()
		rows := sliceLimitOffset(c.table.Rows, clause)
		out := IdTable{NumCols: c.table.NumCols, ColumnTypes: c.table.ColumnTypes, Rows: rows}
		if onChunkEmitted != nil {
			onChunkEmitted(time.Since(start), out)
		}
		return NewMaterialized(out, c.sortedBy, c.vocab)
	}
	if c.consumed {
		return nil, errors.Wrap(qerr.AlreadyConsumed, "ApplyLimitOffset called on an already-consumed result")
	}
	c.consumed = true
	remaining := clause.Offset
	var emitted uint64
	limitedProducer := c.producer
	transformed := chunkProducerFunc(func() (IdTable, bool, error) {
		for {
			if clause.Limit != nil && emitted >= *clause.Limit {
				return IdTable{}, false, nil
			}
			start := time.Now()
			chunk, ok, err := limitedProducer.Next()
			if err != nil || !ok {
				return IdTable{}, false, err
			}
			rows := chunk.Rows
			if remaining > 0 {
				if uint64(len(rows)) <= remaining {
					remaining -= uint64(len(rows))
					continue
				}
				rows = rows[remaining:]
				remaining = 0
			}
			if clause.Limit != nil {
				allowed := *clause.Limit - emitted
				if uint64(len(rows)) > allowed {
					rows = rows[:allowed]
				}
			}
			emitted += uint64(len(rows))
			out := IdTable{NumCols: chunk.NumCols, ColumnTypes: chunk.ColumnTypes, Rows: rows}
			if onChunkEmitted != nil {
				onChunkEmitted(time.Since(start), out)
			}
			if len(rows) == 0 {
				continue
			}
			return out, true, nil
		}
	})
	return NewLazy(transformed, c.numCols, c.sortedBy, c.vocab)
}

func sliceLimitOffset(rows [][]id.Id, clause LimitOffsetClause) [][]id.Id {
	n := uint64(len(rows))
	if clause.Offset >= n {
		return nil
	}
	end := n
	if clause.Limit != nil && clause.Offset+*clause.Limit < end {
		end = clause.Offset + *clause.Limit
	}
	return rows[clause.Offset:end]
}

// wrapChunkProducer layers a per-chunk transform onto producer, aborting the
// stream when the transform returns an error.
func wrapChunkProducer(producer ChunkProducer, transform func(IdTable) (IdTable, error)) ChunkProducer {
	return chunkProducerFunc(func() (IdTable, bool, error) {
		chunk, ok, err := producer.Next()
		if err != nil || !ok {
			return chunk, ok, err
		}
		chunk, err = transform(chunk)
		if err != nil {
			return IdTable{}, false, err
		}
		return chunk, true, nil
	})
}
