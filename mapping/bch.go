package mapping

import (
	"math"

	"github.com/toto9820/rateless-reconcile/cell"
)

// BCHGenerator implements the BCH mapping rule. The universe is embedded
// in GF(2^m), m = ceil(log2(n+1)); iteration i contributes m rows, one
// per bit of alpha^{(2(i-1)+1)*idx}, where alpha is a primitive element
// and idx is the symbol's zero-based position. Decoding is guaranteed
// for |Δ| < 2^(m-1); beyond that many iterations the exponents begin to
// repeat modulo the field's multiplicative order and no longer carry
// new information (original_source/IBLTWithBCH.py raises past this
// point — here the caller is expected to stop at MaxIterations()
// instead, since Generator has no error channel of its own).
type BCHGenerator struct {
	n     int
	m     int
	field *gf2m
}

var _ Generator = (*BCHGenerator)(nil)

// NewBCH constructs a BCH mapping generator over universe size n.
func NewBCH(n int) *BCHGenerator {
	m := bchFieldDegree(n)
	return &BCHGenerator{n: n, m: m, field: newGF2m(m)}
}

func bchFieldDegree(n int) int {
	if n < 1 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(n + 1))))
}

func (g *BCHGenerator) Method() Method { return BCH }
func (g *BCHGenerator) N() int         { return g.n }

func (g *BCHGenerator) RowsInIteration(i int) int {
	return g.m
}

func (g *BCHGenerator) RowsForSymbol(symbol cell.Symbol, iteration int) []int {
	idx := uint64(int(symbol) - 1)
	exp := uint64(2*(iteration-1)+1) * idx
	value := g.field.Pow(exp)

	rows := make([]int, 0, g.m)
	for bit := 0; bit < g.m; bit++ {
		if value&(1<<uint(bit)) != 0 {
			rows = append(rows, bit)
		}
	}
	return rows
}

// maxIterations is the largest iteration count before exponents start
// repeating modulo the field's multiplicative order: 2^(m-1) - 1.
func (g *BCHGenerator) maxIterations() int {
	limit := (1 << uint(g.m-1)) - 1
	if limit < 1 {
		return 1
	}
	return limit
}

func (g *BCHGenerator) Decodability(k int) Guarantee {
	maxDelta := (1 << uint(g.m-1)) - 1
	return Guarantee{MaxDelta: &maxDelta, HighProbability: false}
}

func (g *BCHGenerator) ExpectedRowsPerSymbol(k int) float64 {
	// Average Hamming weight of an m-bit field element is m/2.
	return float64(k) * float64(g.m) / 2
}

func (g *BCHGenerator) MaxIterations() int {
	return g.maxIterations()
}
