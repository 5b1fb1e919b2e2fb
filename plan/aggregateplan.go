// Package plan implements the aggregate-resolution and grouped-reduction
// layer that sits on top of a sorted sub-result: AggregatePlan (this file),
// GroupRunSplitter, AggregateEngine, and the GROUP BY orchestration that
// wires them together. Grounded on the teacher's plan/aggr_plan.go
// (GroupByPlan / MakeAggrExprs / MakeAggrePlan), whose Plan-building shape
// this package keeps while replacing hash-map grouping with the
// run-splitting algorithm sorted input demands.
package plan

import (
	"sort"
	"strings"

	"github.com/xiaobogaga/sparqlagg/id"
	"github.com/xiaobogaga/sparqlagg/logger"
	"github.com/xiaobogaga/sparqlagg/result"
)

// Kind identifies which reduction kernel an AggregateDescriptor invokes.
type Kind int

const (
	Count Kind = iota
	Sum
	Avg
	Min
	Max
	Sample
	First
	Last
	GroupConcat
)

var kindNames = map[string]Kind{
	"COUNT":        Count,
	"SUM":          Sum,
	"AVG":          Avg,
	"MIN":          Min,
	"MAX":          Max,
	"SAMPLE":       Sample,
	"FIRST":        First,
	"LAST":         Last,
	"GROUP_CONCAT": GroupConcat,
}

func (k Kind) String() string {
	for name, kk := range kindNames {
		if kk == k {
			return name
		}
	}
	return "UNKNOWN"
}

// AggregateDescriptor is one output column's reduction recipe.
type AggregateDescriptor struct {
	Kind      Kind
	InCol     int
	OutCol    int
	Distinct  bool
	Separator string // GROUP_CONCAT only; default is a single space
}

// AliasDescriptor is the pre-classified aggregate-alias shape a SPARQL
// parser would hand this layer (spec.md §6): the original function text is
// parsed here rather than by the caller, matching where the source engine
// parses it, even though spec.md §9 flags this as belonging upstream in a
// future rewrite.
type AliasDescriptor struct {
	OutVarName  string
	Function    string
	IsAggregate bool
}

// AggregatePlan is the resolved, canonically-ordered recipe for one GROUP
// BY: group-by pass-through columns first (as SAMPLE pseudo-aggregates),
// then aggregate aliases, both sorted lexicographically by output name so
// the result shape — and therefore any cache key built from it — is
// independent of the order the caller listed them in.
type AggregatePlan struct {
	Descriptors []AggregateDescriptor
	OutputTypes []id.ResultType
	// numGroupByColumns counts the leading pass-through SAMPLE descriptors
	// Build emitted for the group-by variables, in canonical order — the
	// columns GroupRunSplitter must be told to split on.
	numGroupByColumns int
}

// Width reports the number of columns the plan's output rows will have.
func (p *AggregatePlan) Width() int { return len(p.Descriptors) }

// Build resolves groupByVars and aliases against vtc/colTypes into an
// AggregatePlan, per spec.md §4.3.
//
// It returns ok=false when any referenced variable (group-by or
// alias-argument) cannot be resolved against vtc: this is spec.md's
// MissingColumn condition, which degrades the caller to an empty,
// well-shaped result rather than propagating an error. Any alias whose
// function text does not start with a recognized aggregate keyword is
// itself skipped (with a warning), not treated as MissingColumn: an
// unrecognized alias limits the output, it does not abort it.
func Build(groupByVars []string, aliases []AliasDescriptor, vtc result.VariableToColumnMap, colTypes []id.ResultType, log logger.Scope) (*AggregatePlan, bool) {
	sortedGroupBy := append([]string{}, groupByVars...)
	sort.Strings(sortedGroupBy)

	aggregateAliases := make([]AliasDescriptor, 0, len(aliases))
	for _, a := range aliases {
		if a.IsAggregate {
			aggregateAliases = append(aggregateAliases, a)
		}
	}
	sort.Slice(aggregateAliases, func(i, j int) bool {
		return aggregateAliases[i].OutVarName < aggregateAliases[j].OutVarName
	})

	plan := &AggregatePlan{}
	nextCol := 0

	for _, v := range sortedGroupBy {
		info, ok := vtc[v]
		if !ok {
			log.Warnf("group-by variable %q is missing from the input's column map", v)
			return nil, false
		}
		plan.Descriptors = append(plan.Descriptors, AggregateDescriptor{
			Kind:   Sample,
			InCol:  info.Index,
			OutCol: nextCol,
		})
		plan.OutputTypes = append(plan.OutputTypes, colTypes[info.Index])
		nextCol++
	}
	plan.numGroupByColumns = nextCol

	for _, alias := range aggregateAliases {
		kind, argVar, distinct, separator, ok := parseAggregateFunction(alias.Function)
		if !ok {
			log.Warnf("alias %q has unrecognized aggregate function %q, skipping", alias.OutVarName, alias.Function)
			continue
		}
		info, ok := vtc[argVar]
		if !ok {
			log.Warnf("alias %q references missing variable %q", alias.OutVarName, argVar)
			return nil, false
		}
		desc := AggregateDescriptor{
			Kind:      kind,
			InCol:     info.Index,
			OutCol:    nextCol,
			Distinct:  distinct,
			Separator: separator,
		}
		plan.Descriptors = append(plan.Descriptors, desc)
		plan.OutputTypes = append(plan.OutputTypes, outputType(kind, colTypes[info.Index]))
		nextCol++
	}

	return plan, true
}

// outputType implements spec.md §4.3 step 5.
func outputType(k Kind, inputType id.ResultType) id.ResultType {
	switch k {
	case Avg, Sum:
		return id.Float
	case Count:
		return id.Verbatim
	case GroupConcat:
		return id.String
	default: // Min, Max, Sample, First, Last, and group-by pass-through
		return inputType
	}
}

// GroupByColumns returns the input columns backing the plan's leading
// SAMPLE pseudo-aggregates, in canonical order — the columns
// GroupRunSplitter must be told to split on.
func (p *AggregatePlan) GroupByColumns() []int {
	cols := make([]int, p.numGroupByColumns)
	for i := 0; i < p.numGroupByColumns; i++ {
		cols[i] = p.Descriptors[i].InCol
	}
	return cols
}

// parseAggregateFunction extracts kind, argument variable, DISTINCT flag,
// and (for GROUP_CONCAT) separator from a raw SPARQL aggregate call, per
// spec.md §4.3 step 4.
func parseAggregateFunction(fn string) (kind Kind, argVar string, distinct bool, separator string, ok bool) {
	open := strings.IndexByte(fn, '(')
	if open < 0 {
		return 0, "", false, "", false
	}
	head := strings.ToUpper(strings.TrimSpace(fn[:open]))
	kind, known := kindNames[head]
	if !known {
		return 0, "", false, "", false
	}

	depth := 0
	closeIdx := -1
	for i := open; i < len(fn); i++ {
		switch fn[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				closeIdx = i
			}
		}
		if closeIdx >= 0 {
			break
		}
	}
	if closeIdx < 0 {
		return 0, "", false, "", false
	}
	arg := strings.TrimSpace(fn[open+1 : closeIdx])

	separator = " "
	if kind == GroupConcat {
		if semi := strings.IndexByte(arg, ';'); semi >= 0 {
			sepPart := arg[semi+1:]
			arg = strings.TrimSpace(arg[:semi])
			first := strings.IndexByte(sepPart, '"')
			last := strings.LastIndexByte(sepPart, '"')
			if first >= 0 && last > first {
				separator = sepPart[first+1 : last]
			}
		}
	}

	upperArg := strings.ToUpper(arg)
	if strings.HasPrefix(upperArg, "DISTINCT") {
		distinct = true
		arg = strings.TrimSpace(arg[len("DISTINCT"):])
	}

	argVar = strings.TrimPrefix(strings.TrimSpace(arg), "?")
	return kind, argVar, distinct, separator, true
}
