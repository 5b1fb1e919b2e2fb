package result

import (
	"time"

	"github.com/pkg/errors"

	"github.com/xiaobogaga/sparqlagg/qerr"
)

// RunOnNewChunkComputed attaches onChunk and onFinish onto c's not-yet-
// consumed producer chain and returns immediately; it does not itself pull
// any rows. The caller still drives consumption in the ordinary way, via
// c.IdTables() and repeated Next() calls (directly, or through another
// observer layered on afterward, e.g. CacheDuringConsumption).
//
// onChunk is invoked once per chunk actually pulled by the caller, with the
// wall-clock duration since the previous yield (or since the first pull,
// for the first chunk), and returns whether consumption should continue.
// onFinish fires exactly once: when the stream is exhausted normally, when
// the producer fails, or when onChunk itself returns false to abandon the
// stream early — matching the guarantee that a consumer may stop at any
// chunk boundary and still see onFinish(errored=false) exactly once.
//
// Fails with qerr.ModeMismatch on a materialized Container, and with
// qerr.AlreadyConsumed if installed after consumption has already begun.
func (c *Container) RunOnNewChunkComputed(onChunk func(chunk IdTable, sincePrevious time.Duration) bool, onFinish func(errored bool)) error {
	if c.mode != modeLazy {
		return errors.Wrap(qerr.ModeMismatch, "RunOnNewChunkComputed called on a materialized result")
	}
	if c.consumed {
		return errors.Wrap(qerr.AlreadyConsumed, "RunOnNewChunkComputed installed after consumption began")
	}
	c.producer = wrapWithChunkObserver(c.producer, onChunk, onFinish)
	return nil
}

// wrapWithChunkObserver layers onChunk/onFinish notifications onto producer,
// same pattern as wrapWithSortCheck and wrapWithDefinednessCheck: the
// wrapping producer only does work when the caller actually pulls from it.
func wrapWithChunkObserver(producer ChunkProducer, onChunk func(IdTable, time.Duration) bool, onFinish func(bool)) ChunkProducer {
	var last time.Time
	finished := false
	stopped := false
	fireFinish := func(errored bool) {
		if finished {
			return
		}
		finished = true
		if onFinish != nil {
			onFinish(errored)
		}
	}
	return chunkProducerFunc(func() (IdTable, bool, error) {
		if stopped {
			return IdTable{}, false, nil
		}
		if last.IsZero() {
			last = time.Now()
		}
		chunk, ok, err := producer.Next()
		if err != nil {
			fireFinish(true)
			return IdTable{}, false, err
		}
		if !ok {
			fireFinish(false)
			return IdTable{}, false, nil
		}
		now := time.Now()
		since := now.Sub(last)
		last = now
		keepGoing := true
		if onChunk != nil {
			keepGoing = onChunk(chunk, since)
		}
		if !keepGoing {
			stopped = true
			fireFinish(false)
		}
		return chunk, true, nil
	})
}

// CacheDuringConsumption drains a lazy Container itself, consuming it, and
// appends each chunk into an aggregator IdTable. The chunks are not passed on
// to any other consumer; the call returns once the stream has ended.
// predicate(aggregator, next) decides per chunk whether to keep aggregating;
// on the first false the aggregator is dropped for good and no cached
// result is ever emitted. On normal termination with the aggregator still
// alive, sink receives a fresh materialized Container built from it.
//
// Fails with qerr.ModeMismatch on a materialized Container.
func (c *Container) CacheDuringConsumption(predicate func(aggregator *IdTable, next IdTable) bool, sink func(*Container)) error {
	if c.mode != modeLazy {
		return errors.Wrap(qerr.ModeMismatch, "CacheDuringConsumption called on a materialized result")
	}
	stream, err := c.IdTables()
	if err != nil {
		return err
	}
	var aggregator *IdTable
	dropped := false
	for {
		chunk, ok, err := stream.Next()
		if err != nil {
			return nil
		}
		if !ok {
			break
		}
		if !dropped {
			if predicate == nil || predicate(aggregator, chunk) {
				if aggregator == nil {
					aggregator = &IdTable{NumCols: chunk.NumCols, ColumnTypes: chunk.ColumnTypes}
				}
				aggregator.Rows = append(aggregator.Rows, chunk.Rows...)
			} else {
				aggregator = nil
				dropped = true
			}
		}
	}
	if !dropped && aggregator != nil && sink != nil {
		cached, err := NewMaterialized(*aggregator, nil, c.vocab)
		if err == nil {
			sink(cached)
		}
	}
	return nil
}
