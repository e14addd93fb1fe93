package mapping

import (
	"math"

	"github.com/toto9820/rateless-reconcile/cell"
)

// ExtendedHammingGenerator implements the Extended Hamming mapping rule.
// Iteration 1 emits a single all-ones row. Iteration i >= 2 emits two
// rows of period P = 2^(i-2): block1 alternates 0^P 1^P ... truncated to
// n columns, block2 is its complement. Exactly one of the two rows is 1
// for any given column, so RowsForSymbol always returns a single-element
// slice. Guarantees |Δ| <= 3.
type ExtendedHammingGenerator struct {
	n int
}

var _ Generator = (*ExtendedHammingGenerator)(nil)

// NewExtendedHamming constructs an Extended Hamming mapping generator
// over universe size n.
func NewExtendedHamming(n int) *ExtendedHammingGenerator {
	return &ExtendedHammingGenerator{n: n}
}

func (g *ExtendedHammingGenerator) Method() Method { return ExtendedHamming }
func (g *ExtendedHammingGenerator) N() int         { return g.n }

func (g *ExtendedHammingGenerator) RowsInIteration(i int) int {
	if i == 1 {
		return 1
	}
	return 2
}

func (g *ExtendedHammingGenerator) RowsForSymbol(symbol cell.Symbol, iteration int) []int {
	if iteration == 1 {
		return []int{0}
	}
	col := int(symbol) - 1
	period := 1 << (iteration - 2)
	// block1[col] == 1 iff the col/period-th block is odd-indexed.
	block1IsOne := (col/period)%2 == 1
	if block1IsOne {
		return []int{0}
	}
	return []int{1}
}

// requiredIterations returns 1 + ceil(log2(n)): the number of iterations
// needed for the alternating-block rows to uniquely address every
// column, which is when the |Δ|<=3 guarantee takes effect.
func (g *ExtendedHammingGenerator) requiredIterations() int {
	if g.n <= 1 {
		return 1
	}
	return 1 + int(math.Ceil(math.Log2(float64(g.n))))
}

func (g *ExtendedHammingGenerator) Decodability(k int) Guarantee {
	if k < g.requiredIterations() {
		zero := 0
		return Guarantee{MaxDelta: &zero}
	}
	three := 3
	return Guarantee{MaxDelta: &three, HighProbability: false}
}

func (g *ExtendedHammingGenerator) ExpectedRowsPerSymbol(k int) float64 {
	if k <= 0 {
		return 0
	}
	// 1 row in iteration 1, exactly 1 of 2 rows per later iteration.
	return float64(k)
}

func (g *ExtendedHammingGenerator) MaxIterations() int {
	// Enough periods to exceed n by a wide margin.
	i := 2
	for (1 << (i - 2)) <= g.n {
		i++
	}
	return i + 1
}
