package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaobogaga/sparqlagg/id"
	"github.com/xiaobogaga/sparqlagg/logger"
	"github.com/xiaobogaga/sparqlagg/result"
)

func testLog() logger.Scope {
	return logger.NewConsole().With("test")
}

func TestBuildCanonicalColumnOrder(t *testing.T) {
	vtc := result.VariableToColumnMap{
		"x": {Index: 0},
		"y": {Index: 1},
	}
	types := []id.ResultType{id.Verbatim, id.Verbatim}
	aliases := []AliasDescriptor{
		{OutVarName: "n", Function: "COUNT(?y)", IsAggregate: true},
		{OutVarName: "not-agg", Function: "?y", IsAggregate: false},
	}
	p, ok := Build([]string{"x"}, aliases, vtc, types, testLog())
	require.True(t, ok)
	require.Len(t, p.Descriptors, 2)
	assert.Equal(t, Sample, p.Descriptors[0].Kind)
	assert.Equal(t, 0, p.Descriptors[0].InCol)
	assert.Equal(t, Count, p.Descriptors[1].Kind)
	assert.Equal(t, []int{0}, p.GroupByColumns())
}

func TestBuildMissingGroupByVariable(t *testing.T) {
	vtc := result.VariableToColumnMap{"x": {Index: 0}}
	_, ok := Build([]string{"z"}, nil, vtc, []id.ResultType{id.Verbatim}, testLog())
	assert.False(t, ok)
}

func TestBuildMissingAliasVariable(t *testing.T) {
	vtc := result.VariableToColumnMap{"x": {Index: 0}}
	aliases := []AliasDescriptor{{OutVarName: "n", Function: "COUNT(?z)", IsAggregate: true}}
	_, ok := Build([]string{"x"}, aliases, vtc, []id.ResultType{id.Verbatim}, testLog())
	assert.False(t, ok)
}

func TestBuildUnknownFunctionSkipped(t *testing.T) {
	vtc := result.VariableToColumnMap{"x": {Index: 0}}
	aliases := []AliasDescriptor{{OutVarName: "n", Function: "BOGUS(?x)", IsAggregate: true}}
	p, ok := Build(nil, aliases, vtc, []id.ResultType{id.Verbatim}, testLog())
	require.True(t, ok)
	assert.Len(t, p.Descriptors, 0)
}

func TestParseAggregateFunctionDistinct(t *testing.T) {
	kind, argVar, distinct, sep, ok := parseAggregateFunction("COUNT(DISTINCT ?y)")
	require.True(t, ok)
	assert.Equal(t, Count, kind)
	assert.Equal(t, "y", argVar)
	assert.True(t, distinct)
	assert.Equal(t, " ", sep)
}

func TestParseGroupConcatSeparator(t *testing.T) {
	kind, argVar, distinct, sep, ok := parseAggregateFunction(`GROUP_CONCAT(DISTINCT ?y ; SEPARATOR=",")`)
	require.True(t, ok)
	assert.Equal(t, GroupConcat, kind)
	assert.Equal(t, "y", argVar)
	assert.True(t, distinct)
	assert.Equal(t, ",", sep)
}

func TestParseGroupConcatDefaultSeparator(t *testing.T) {
	_, _, _, sep, ok := parseAggregateFunction("GROUP_CONCAT(?y)")
	require.True(t, ok)
	assert.Equal(t, " ", sep)
}

func TestOutputTypes(t *testing.T) {
	assert.Equal(t, id.Float, outputType(Avg, id.Verbatim))
	assert.Equal(t, id.Float, outputType(Sum, id.KB))
	assert.Equal(t, id.Verbatim, outputType(Count, id.KB))
	assert.Equal(t, id.String, outputType(GroupConcat, id.KB))
	assert.Equal(t, id.KB, outputType(Min, id.KB))
	assert.Equal(t, id.Verbatim, outputType(Sample, id.Verbatim))
}
