package result

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaobogaga/sparqlagg/id"
	"github.com/xiaobogaga/sparqlagg/qerr"
	"github.com/xiaobogaga/sparqlagg/vocab"
)

func row(vals ...int64) []id.Id {
	r := make([]id.Id, len(vals))
	for i, v := range vals {
		r[i] = id.EncodeVerbatim(v)
	}
	return r
}

type sliceProducer struct {
	chunks []IdTable
	pos    int
	err    error
}

func (p *sliceProducer) Next() (IdTable, bool, error) {
	if p.err != nil && p.pos >= len(p.chunks) {
		return IdTable{}, false, p.err
	}
	if p.pos >= len(p.chunks) {
		return IdTable{}, false, nil
	}
	c := p.chunks[p.pos]
	p.pos++
	return c, true, nil
}

func TestMaterializedBasics(t *testing.T) {
	defer SetExpensiveChecks(false)
	table := IdTable{NumCols: 1, ColumnTypes: []id.ResultType{id.Verbatim}, Rows: [][]id.Id{row(1), row(2)}}
	c, err := NewMaterialized(table, []int{0}, vocab.New())
	require.NoError(t, err)
	assert.True(t, c.IsFullyMaterialized())

	got, err := c.IdTable()
	require.NoError(t, err)
	assert.Equal(t, 2, got.RowCount())

	_, err = c.IdTables()
	assert.ErrorIs(t, err, qerr.ModeMismatch)
}

func TestMaterializedInvalidSortSpec(t *testing.T) {
	table := IdTable{NumCols: 1, Rows: [][]id.Id{row(1)}}
	_, err := NewMaterialized(table, []int{5}, vocab.New())
	assert.ErrorIs(t, err, qerr.InvalidSortSpec)
}

func TestMaterializedNotSortedOnlyCheckedWhenExpensive(t *testing.T) {
	table := IdTable{NumCols: 1, Rows: [][]id.Id{row(2), row(1)}}

	SetExpensiveChecks(false)
	_, err := NewMaterialized(table, []int{0}, vocab.New())
	assert.NoError(t, err)

	SetExpensiveChecks(true)
	defer SetExpensiveChecks(false)
	_, err = NewMaterialized(table, []int{0}, vocab.New())
	assert.ErrorIs(t, err, qerr.NotSorted)
}

func TestLazyAlreadyConsumed(t *testing.T) {
	p := &sliceProducer{chunks: []IdTable{{NumCols: 1, Rows: [][]id.Id{row(1)}}}}
	c, err := NewLazy(p, 1, nil, vocab.New())
	require.NoError(t, err)

	_, err = c.IdTables()
	require.NoError(t, err)

	_, err = c.IdTables()
	assert.ErrorIs(t, err, qerr.AlreadyConsumed)
}

func TestLazyAlreadyConsumedEvenIfNeverRead(t *testing.T) {
	p := &sliceProducer{chunks: []IdTable{{NumCols: 1, Rows: [][]id.Id{row(1)}}}}
	c, err := NewLazy(p, 1, nil, vocab.New())
	require.NoError(t, err)

	_, err = c.IdTables() // never call Next on the returned stream
	require.NoError(t, err)

	_, err = c.IdTables()
	assert.ErrorIs(t, err, qerr.AlreadyConsumed)
}

func TestLazyIdTableModeMismatch(t *testing.T) {
	p := &sliceProducer{}
	c, err := NewLazy(p, 1, nil, vocab.New())
	require.NoError(t, err)
	_, err = c.IdTable()
	assert.ErrorIs(t, err, qerr.ModeMismatch)
}

func TestLazySortCheckAcrossChunkBoundary(t *testing.T) {
	SetExpensiveChecks(true)
	defer SetExpensiveChecks(false)
	p := &sliceProducer{chunks: []IdTable{
		{NumCols: 1, Rows: [][]id.Id{row(2)}},
		{NumCols: 1, Rows: [][]id.Id{row(1)}},
	}}
	c, err := NewLazy(p, 1, []int{0}, vocab.New())
	require.NoError(t, err)
	stream, err := c.IdTables()
	require.NoError(t, err)

	_, ok, err := stream.Next()
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = stream.Next()
	assert.False(t, ok)
	assert.ErrorIs(t, err, qerr.NotSorted)
}

func TestLazyProducerFailurePropagates(t *testing.T) {
	p := &sliceProducer{err: assert.AnError}
	c, err := NewLazy(p, 1, nil, vocab.New())
	require.NoError(t, err)
	stream, err := c.IdTables()
	require.NoError(t, err)
	_, ok, err := stream.Next()
	assert.False(t, ok)
	assert.ErrorIs(t, err, qerr.ProducerFailed)
}
