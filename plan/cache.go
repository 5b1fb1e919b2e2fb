package plan

import (
	"sort"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/xiaobogaga/sparqlagg/id"
	"github.com/xiaobogaga/sparqlagg/logger"
	"github.com/xiaobogaga/sparqlagg/result"
)

// Cache is a bounded cache from a canonical GROUP BY signature to its
// resolved AggregatePlan. spec.md §4.3 motivates a cache key that is
// independent of the order the caller listed group-by variables or
// aliases in; CacheKey builds exactly that, and Cache avoids re-running
// Build's parsing/sorting work for a signature it has already resolved.
type Cache struct {
	inner *lru.Cache[string, *AggregatePlan]
}

// NewCache returns a Cache holding at most size resolved plans, evicting
// least-recently-used entries beyond that.
func NewCache(size int) (*Cache, error) {
	inner, err := lru.New[string, *AggregatePlan](size)
	if err != nil {
		return nil, err
	}
	return &Cache{inner: inner}, nil
}

// GetOrBuild resolves an AggregatePlan for this GROUP BY, reusing a cached
// plan when the canonical signature (see CacheKey) has already been seen,
// and caching a newly built plan otherwise. ok mirrors Build's ok: false
// means a referenced variable was missing and the caller should degrade to
// an empty result.
func (c *Cache) GetOrBuild(groupByVars []string, aliases []AliasDescriptor, vtc result.VariableToColumnMap, colTypes []id.ResultType, log logger.Scope) (*AggregatePlan, bool) {
	key := CacheKey(groupByVars, aliases, vtc, colTypes)
	if cached, hit := c.inner.Get(key); hit {
		return cached, true
	}
	agg, ok := Build(groupByVars, aliases, vtc, colTypes, log)
	if !ok {
		return nil, false
	}
	c.inner.Add(key, agg)
	return agg, true
}

// CacheKey builds the canonical, input-order-independent signature spec.md
// §4.3 calls for: sorted group-by variable names, sorted aliases by output
// variable name, and a schema fingerprint (so the same GROUP BY clause over
// a differently-shaped sub-result never hits a stale cache entry).
func CacheKey(groupByVars []string, aliases []AliasDescriptor, vtc result.VariableToColumnMap, colTypes []id.ResultType) string {
	sortedGroupBy := append([]string{}, groupByVars...)
	sort.Strings(sortedGroupBy)

	sortedAliases := append([]AliasDescriptor{}, aliases...)
	sort.Slice(sortedAliases, func(i, j int) bool {
		return sortedAliases[i].OutVarName < sortedAliases[j].OutVarName
	})

	var b strings.Builder
	b.WriteString("gb:")
	b.WriteString(strings.Join(sortedGroupBy, ","))
	b.WriteString("|al:")
	for _, a := range sortedAliases {
		b.WriteString(a.OutVarName)
		b.WriteByte('=')
		b.WriteString(a.Function)
		if a.IsAggregate {
			b.WriteByte('+')
		}
		b.WriteByte(';')
	}
	b.WriteString("|schema:")
	var varNames []string
	for v := range vtc {
		varNames = append(varNames, v)
	}
	sort.Strings(varNames)
	for _, v := range varNames {
		info := vtc[v]
		b.WriteString(v)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(info.Index))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(int(info.Definedness)))
		if info.Index < len(colTypes) {
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(int(colTypes[info.Index])))
		}
		b.WriteByte(';')
	}
	return b.String()
}
