package result

import (
	"github.com/pkg/errors"

	"github.com/xiaobogaga/sparqlagg/id"
	"github.com/xiaobogaga/sparqlagg/qerr"
)

// ChunkStream is the single-use pull iterator returned by Container.IdTables.
// Each Next call advances the underlying producer by exactly one chunk.
type ChunkStream struct {
	producer ChunkProducer
	done     bool
}

func newChunkStream(p ChunkProducer) *ChunkStream {
	return &ChunkStream{producer: p}
}

// Next pulls the next chunk. ok is false once the stream is exhausted. A
// non-nil error is either one of the taxonomy's own guard errors —
// qerr.NotSorted, qerr.DefinednessViolated, qerr.LimitViolated — raised by a
// guard installed via wrapWithSortCheck/CheckDefinedness/
// AssertThatLimitWasRespected and passed through unchanged so callers can
// still errors.Is against the specific sentinel, or, for anything else, the
// underlying producer's own failure wrapped in qerr.ProducerFailed.
func (s *ChunkStream) Next() (IdTable, bool, error) {
	if s.done {
		return IdTable{}, false, nil
	}
	chunk, ok, err := s.producer.Next()
	if err != nil {
		s.done = true
		if isGuardError(err) {
			return IdTable{}, false, err
		}
		return IdTable{}, false, errors.Wrap(qerr.ProducerFailed, err.Error())
	}
	if !ok {
		s.done = true
		return IdTable{}, false, nil
	}
	return chunk, true, nil
}

// isGuardError reports whether err is (or wraps) one of the taxonomy's own
// guard sentinels, as opposed to an opaque failure surfaced by an upstream
// ChunkProducer. Guard errors are raised inside this package's own
// producer-wrapping helpers and must reach the caller matchable by
// errors.Is, not folded into qerr.ProducerFailed.
func isGuardError(err error) bool {
	return errors.Is(err, qerr.NotSorted) ||
		errors.Is(err, qerr.DefinednessViolated) ||
		errors.Is(err, qerr.LimitViolated)
}

// wrapWithSortCheck layers a running-sortedness guard onto producer, active
// only while ExpensiveChecksEnabled is true. The guard tracks the last row
// of the previous chunk so the check also covers the boundary between
// chunks, matching the invariant that the whole lazy result — not just each
// individual chunk — is sorted on sortedBy.
func wrapWithSortCheck(producer ChunkProducer, sortedBy []int) ChunkProducer {
	if len(sortedBy) == 0 {
		return producer
	}
	var prevLast []id.Id
	return chunkProducerFunc(func() (IdTable, bool, error) {
		chunk, ok, err := producer.Next()
		if err != nil || !ok {
			return chunk, ok, err
		}
		if ExpensiveChecksEnabled() {
			rows := chunk.Rows
			if prevLast != nil && len(rows) > 0 && compareOnColumns(prevLast, rows[0], sortedBy) > 0 {
				return IdTable{}, false, errors.Wrap(qerr.NotSorted, "chunk boundary violates declared order")
			}
			if err := checkTableSorted(rows, sortedBy); err != nil {
				return IdTable{}, false, err
			}
		}
		if len(chunk.Rows) > 0 {
			prevLast = chunk.Rows[len(chunk.Rows)-1]
		}
		return chunk, true, nil
	})
}
