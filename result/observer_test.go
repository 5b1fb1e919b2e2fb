package result

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaobogaga/sparqlagg/id"
	"github.com/xiaobogaga/sparqlagg/qerr"
	"github.com/xiaobogaga/sparqlagg/vocab"
)

func TestRunOnNewChunkComputedFiresPerChunkThenFinish(t *testing.T) {
	p := &sliceProducer{chunks: []IdTable{
		{NumCols: 1, Rows: [][]id.Id{row(1)}},
		{NumCols: 1, Rows: [][]id.Id{row(2)}},
	}}
	c, err := NewLazy(p, 1, nil, vocab.New())
	require.NoError(t, err)

	var chunkCount int
	var finished bool
	var erroredFlag bool
	err = c.RunOnNewChunkComputed(
		func(chunk IdTable, since time.Duration) bool { chunkCount++; return true },
		func(errored bool) { finished = true; erroredFlag = errored },
	)
	require.NoError(t, err)

	stream, err := c.IdTables()
	require.NoError(t, err)
	for {
		_, ok, err := stream.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
	}
	assert.Equal(t, 2, chunkCount)
	assert.True(t, finished)
	assert.False(t, erroredFlag)
}

func TestRunOnNewChunkComputedCallsFinishOnErrorWithZeroChunks(t *testing.T) {
	p := &sliceProducer{err: assert.AnError}
	c, err := NewLazy(p, 1, nil, vocab.New())
	require.NoError(t, err)

	var chunkCount int
	var erroredFlag bool
	err = c.RunOnNewChunkComputed(
		func(chunk IdTable, since time.Duration) bool { chunkCount++; return true },
		func(errored bool) { erroredFlag = errored },
	)
	require.NoError(t, err)

	stream, err := c.IdTables()
	require.NoError(t, err)
	_, _, err = stream.Next()
	assert.Error(t, err)
	assert.Equal(t, 0, chunkCount)
	assert.True(t, erroredFlag)
}

func TestRunOnNewChunkComputedStopsEarlyOnFalseAndFiresFinishOnce(t *testing.T) {
	p := &sliceProducer{chunks: []IdTable{
		{NumCols: 1, Rows: [][]id.Id{row(1)}},
		{NumCols: 1, Rows: [][]id.Id{row(2)}},
		{NumCols: 1, Rows: [][]id.Id{row(3)}},
	}}
	c, err := NewLazy(p, 1, nil, vocab.New())
	require.NoError(t, err)

	var chunkCount, finishCount int
	err = c.RunOnNewChunkComputed(
		func(chunk IdTable, since time.Duration) bool { chunkCount++; return chunkCount < 2 },
		func(errored bool) { finishCount++; assert.False(t, errored) },
	)
	require.NoError(t, err)

	stream, err := c.IdTables()
	require.NoError(t, err)
	// The caller itself stops pulling once the stream reports exhaustion,
	// which onChunk's early "false" return triggers well before the
	// underlying producer's third chunk would ever be reached.
	for {
		_, ok, err := stream.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
	}
	assert.Equal(t, 2, chunkCount)
	assert.Equal(t, 1, finishCount)
}

func TestRunOnNewChunkComputedModeMismatch(t *testing.T) {
	table := IdTable{NumCols: 1, Rows: [][]id.Id{row(1)}}
	c, err := NewMaterialized(table, nil, vocab.New())
	require.NoError(t, err)
	err = c.RunOnNewChunkComputed(nil, nil)
	assert.Error(t, err)
}

func TestRunOnNewChunkComputedAlreadyConsumed(t *testing.T) {
	p := &sliceProducer{chunks: []IdTable{{NumCols: 1, Rows: [][]id.Id{row(1)}}}}
	c, err := NewLazy(p, 1, nil, vocab.New())
	require.NoError(t, err)

	_, err = c.IdTables()
	require.NoError(t, err)

	err = c.RunOnNewChunkComputed(nil, nil)
	assert.ErrorIs(t, err, qerr.AlreadyConsumed)
}

func TestCacheDuringConsumptionAlwaysTrueYieldsConcatenation(t *testing.T) {
	p := &sliceProducer{chunks: []IdTable{
		{NumCols: 1, Rows: [][]id.Id{row(1), row(2)}},
		{NumCols: 1, Rows: [][]id.Id{row(3)}},
	}}
	c, err := NewLazy(p, 1, nil, vocab.New())
	require.NoError(t, err)

	var cached *Container
	err = c.CacheDuringConsumption(
		func(aggregator *IdTable, next IdTable) bool { return true },
		func(r *Container) { cached = r },
	)
	require.NoError(t, err)
	require.NotNil(t, cached)
	table, err := cached.IdTable()
	require.NoError(t, err)
	assert.Equal(t, [][]id.Id{row(1), row(2), row(3)}, table.Rows)
}

func TestCacheDuringConsumptionDropsOnFirstFalse(t *testing.T) {
	p := &sliceProducer{chunks: []IdTable{
		{NumCols: 1, Rows: [][]id.Id{row(1)}},
		{NumCols: 1, Rows: [][]id.Id{row(2)}},
	}}
	c, err := NewLazy(p, 1, nil, vocab.New())
	require.NoError(t, err)

	called := false
	err = c.CacheDuringConsumption(
		func(aggregator *IdTable, next IdTable) bool { return false },
		func(r *Container) { called = true },
	)
	require.NoError(t, err)
	assert.False(t, called)
}
