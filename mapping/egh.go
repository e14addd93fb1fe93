package mapping

import (
	"math"
	"sync"

	"github.com/toto9820/rateless-reconcile/cell"
)

// EGHGenerator implements the EGH mapping rule: iteration i contributes
// p_i rows, where p_1=2, p_2=3, ... is the sequence of primes. Symbol s
// maps to row (s mod p_i) of iteration i's batch. Decoding a symmetric
// difference of size d is guaranteed once ∏_{i<=k} p_i > n^d (the "free
// zone").
type EGHGenerator struct {
	n int

	mu     sync.Mutex
	primes []int // primes[i-1] == p_i, extended lazily
}

var _ Generator = (*EGHGenerator)(nil)

// NewEGH constructs an EGH mapping generator over universe size n.
func NewEGH(n int) *EGHGenerator {
	return &EGHGenerator{n: n}
}

func (g *EGHGenerator) Method() Method { return EGH }
func (g *EGHGenerator) N() int         { return g.n }

func (g *EGHGenerator) primeAt(i int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	for len(g.primes) < i {
		after := 1
		if len(g.primes) > 0 {
			after = g.primes[len(g.primes)-1]
		}
		g.primes = append(g.primes, nextPrimes(after, 1)...)
	}
	return g.primes[i-1]
}

func (g *EGHGenerator) RowsInIteration(i int) int {
	return g.primeAt(i)
}

func (g *EGHGenerator) RowsForSymbol(symbol cell.Symbol, iteration int) []int {
	p := g.primeAt(iteration)
	return []int{int(uint64(symbol) % uint64(p))}
}

// Decodability reports the free zone: the largest d for which decoding
// is provably successful given ∏_{i<=k} p_i > n^d.
func (g *EGHGenerator) Decodability(k int) Guarantee {
	product := 1.0
	for i := 1; i <= k; i++ {
		product *= float64(g.primeAt(i))
	}
	if product <= 1 || g.n <= 1 {
		zero := 0
		return Guarantee{MaxDelta: &zero}
	}
	// Largest d such that product > n^d, i.e. d < log(product)/log(n).
	d := int(math.Log(product) / math.Log(float64(g.n)))
	if d > 0 && math.Pow(float64(g.n), float64(d)) >= product {
		// An integral ratio means product == n^d, which is not > n^d.
		d--
	}
	if d < 0 {
		d = 0
	}
	return Guarantee{MaxDelta: &d, HighProbability: false}
}

func (g *EGHGenerator) ExpectedRowsPerSymbol(k int) float64 {
	// Each iteration contributes exactly one row per symbol.
	return float64(k)
}

func (g *EGHGenerator) MaxIterations() int {
	return 64
}
