package mapping_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toto9820/rateless-reconcile/cell"
	"github.com/toto9820/rateless-reconcile/mapping"
)

func TestCache_ReturnsConsistentRows(t *testing.T) {
	g := mapping.NewEGH(100)
	cached := mapping.WithCache(g, mapping.NewCache(0))

	want := g.RowsForSymbol(cell.Symbol(7), 2)
	got := cached.RowsForSymbol(cell.Symbol(7), 2)
	assert.Equal(t, want, got)

	// Second call should hit the cache and still agree.
	got2 := cached.RowsForSymbol(cell.Symbol(7), 2)
	assert.Equal(t, want, got2)
}

func TestCache_ConcurrentAccessIsRace_Free(t *testing.T) {
	g := mapping.NewBCH(63)
	cached := mapping.WithCache(g, mapping.NewCache(16))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			for iter := 1; iter <= 3; iter++ {
				_ = cached.RowsForSymbol(cell.Symbol(s%63+1), iter)
			}
		}(i)
	}
	wg.Wait()
}

func TestCache_DelegatesOtherMethods(t *testing.T) {
	g := mapping.NewOLS(40)
	cached := mapping.WithCache(g, mapping.NewCache(0))

	assert.Equal(t, g.Method(), cached.Method())
	assert.Equal(t, g.N(), cached.N())
	assert.Equal(t, g.MaxIterations(), cached.MaxIterations())
}
