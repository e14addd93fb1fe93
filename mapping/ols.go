package mapping

import (
	"math"

	"github.com/toto9820/rateless-reconcile/cell"
)

// OLSGenerator implements the Orthogonal Latin Squares mapping rule.
// The universe is arranged into an s x s grid, s = ceil(sqrt(n)).
// Iteration i emits s rows encoding the i-th Latin square L_i[r,c] =
// (r + (i-1)*c) mod s; a symbol at grid position (r,c) maps to the
// single row L_i[r,c] of iteration i's batch. The decoding guarantee is
// empirical (not a closed-form bound), per spec.
type OLSGenerator struct {
	n int
	s int
}

var _ Generator = (*OLSGenerator)(nil)

// NewOLS constructs an OLS mapping generator over universe size n.
func NewOLS(n int) *OLSGenerator {
	return &OLSGenerator{n: n, s: int(math.Ceil(math.Sqrt(float64(n))))}
}

func (g *OLSGenerator) Method() Method { return OLS }
func (g *OLSGenerator) N() int         { return g.n }

func (g *OLSGenerator) RowsInIteration(i int) int {
	return g.s
}

func (g *OLSGenerator) RowsForSymbol(symbol cell.Symbol, iteration int) []int {
	idx := int(symbol) - 1
	r := idx / g.s
	c := idx % g.s
	latinSquareNum := iteration - 1
	row := (r + latinSquareNum*c) % g.s
	return []int{row}
}

// Decodability is empirical for OLS; the spec leaves the exact threshold
// to the source paper rather than inferring it, so no bound is claimed
// until the caller has independent evidence (e.g. measured success
// rate). A nil MaxDelta signals "unknown, use the measured progress
// fraction instead".
func (g *OLSGenerator) Decodability(k int) Guarantee {
	return Guarantee{MaxDelta: nil, HighProbability: true}
}

func (g *OLSGenerator) ExpectedRowsPerSymbol(k int) float64 {
	return float64(k)
}

func (g *OLSGenerator) MaxIterations() int {
	return g.s
}
