package mapping

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/toto9820/rateless-reconcile/cell"
)

// Cache memoizes RowsForSymbol results across reconciliations that share
// the same (method, n) pair, per spec §3/§9: mapping rows are a
// legitimate read-mostly cache, not shared mutable session state. The
// key is widened from the spec's (method, n, i) to (method, n, i,
// symbol): the generators in this package compute a single symbol's
// rows analytically rather than materializing a whole dense row, so
// caching at row-batch granularity would force an O(n) sweep per
// iteration that the sparse encoders never need. Caching per symbol
// keeps the memoization genuinely cheap for the common case (owner sets
// far smaller than n) while still collapsing repeated work for BCH's
// field exponentiation and IDM's combinatorial rows.
//
// Concurrent readers are safe (golang-lru/v2 is internally locked);
// concurrent first-time generation for the same key is collapsed to one
// call via singleflight, satisfying the at-most-one guarantee.
type Cache struct {
	rows  *lru.Cache[rowKey, []int]
	group singleflight.Group
}

type rowKey struct {
	method    Method
	n         int
	iteration int
	symbol    cell.Symbol
}

func (k rowKey) String() string {
	return fmt.Sprintf("%d|%d|%d|%d", k.method, k.n, k.iteration, k.symbol)
}

// NewCache constructs a Cache holding up to size entries. size <= 0
// falls back to a small sane default.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = 4096
	}
	rows, err := lru.New[rowKey, []int](size)
	if err != nil {
		// Only returned for size <= 0, which we've already guarded.
		panic(fmt.Sprintf("mapping: unreachable lru.New error: %v", err))
	}
	return &Cache{rows: rows}
}

// RowsForSymbol returns the cached (or freshly computed and cached)
// local row indices for symbol in iteration, generated by g.
func (c *Cache) RowsForSymbol(g Generator, symbol cell.Symbol, iteration int) []int {
	key := rowKey{method: g.Method(), n: g.N(), iteration: iteration, symbol: symbol}
	if rows, ok := c.rows.Get(key); ok {
		return rows
	}

	v, _, _ := c.group.Do(key.String(), func() (any, error) {
		if rows, ok := c.rows.Get(key); ok {
			return rows, nil
		}
		rows := g.RowsForSymbol(symbol, iteration)
		c.rows.Add(key, rows)
		return rows, nil
	})
	return v.([]int)
}

// cachedGenerator decorates a Generator so that RowsForSymbol consults a
// shared Cache before delegating to the underlying generation rule.
type cachedGenerator struct {
	Generator
	cache *Cache
}

// WithCache wraps g so its RowsForSymbol calls are memoized in c. All
// other Generator methods delegate unchanged.
func WithCache(g Generator, c *Cache) Generator {
	return &cachedGenerator{Generator: g, cache: c}
}

func (cg *cachedGenerator) RowsForSymbol(symbol cell.Symbol, iteration int) []int {
	return cg.cache.RowsForSymbol(cg.Generator, symbol, iteration)
}
