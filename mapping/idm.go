package mapping

import (
	"math"
	"sync"

	"github.com/toto9820/rateless-reconcile/cell"
)

// combinationTables memoizes combinationsLex results keyed by (total,
// choose): every symbol queried at the same iteration shares the same
// subset list, and recomputing it per-symbol would make a full pass over
// an n-symbol universe quadratic in the combination count.
var combinationTables sync.Map // map[[2]int][][]int

func combinationsLexCached(total, choose int) [][]int {
	key := [2]int{total, choose}
	if v, ok := combinationTables.Load(key); ok {
		return v.([][]int)
	}
	combos := combinationsLex(total, choose)
	actual, _ := combinationTables.LoadOrStore(key, combos)
	return actual.([][]int)
}

// IDMGenerator implements the Identity-Matrix-Derived mapping rule. Let
// k = ceil(log2 n). Each symbol is assigned a 2k-bit membership vector:
// the low k bits are the binary expansion of the symbol's own 1-based
// value (iteration 1's rows), the high k bits are the one-hot position
// of its zero-based idx within a tiled k x k identity block (iteration
// 2's rows). Iteration
// i >= 3 emits C(2k, i) rows, one per size-i subset of the 2k positions
// in lexicographic order (mirroring Python's itertools.combinations);
// a symbol maps to row j of iteration i iff the XOR parity of its
// membership bits within the j-th combination is 1.
type IDMGenerator struct {
	n int
	k int
}

var _ Generator = (*IDMGenerator)(nil)

// NewIDM constructs an IDM mapping generator over universe size n.
func NewIDM(n int) *IDMGenerator {
	k := idmK(n)
	return &IDMGenerator{n: n, k: k}
}

func idmK(n int) int {
	if n < 1 {
		return 1
	}
	k := int(math.Ceil(math.Log2(float64(n))))
	if k < 1 {
		k = 1
	}
	return k
}

func (g *IDMGenerator) Method() Method { return IDM }
func (g *IDMGenerator) N() int         { return g.n }

func (g *IDMGenerator) RowsInIteration(i int) int {
	switch i {
	case 1, 2:
		return g.k
	default:
		return combinationCount(2*g.k, i)
	}
}

// membershipVector returns symbol's 2k-bit membership vector: low k
// bits are the symbol's own binary expansion (iteration 1 indexes
// columns 1..n by the symbol's value itself, not a 0-based index —
// see original_source/IBLTWithIDM.py's `format(i, f'0{k}b')` for i in
// range(1, n+1)), high k bits are its one-hot tile position within the
// 0-based tiled identity block (iteration 2's columns are tiled
// 0-based, so the tile row uses symbol-1).
func (g *IDMGenerator) membershipVector(symbol cell.Symbol) uint64 {
	binary := uint64(symbol) & ((1 << uint(g.k)) - 1)
	tileRow := (int(symbol) - 1) % g.k
	oneHot := uint64(1) << uint(tileRow)
	return binary | (oneHot << uint(g.k))
}

func (g *IDMGenerator) RowsForSymbol(symbol cell.Symbol, iteration int) []int {
	idx := int(symbol) - 1
	vec := g.membershipVector(symbol)

	switch iteration {
	case 1:
		var rows []int
		for b := 0; b < g.k; b++ {
			if vec&(1<<uint(b)) != 0 {
				rows = append(rows, b)
			}
		}
		return rows
	case 2:
		tileRow := idx % g.k
		return []int{tileRow}
	default:
		var rows []int
		for j, combo := range combinationsLexCached(2*g.k, iteration) {
			parity := 0
			for _, pos := range combo {
				if vec&(1<<uint(pos)) != 0 {
					parity ^= 1
				}
			}
			if parity == 1 {
				rows = append(rows, j)
			}
		}
		return rows
	}
}

// Decodability has no known closed-form bound for IDM beyond the trivial
// cases; like OLS, the spec leaves the exact threshold to the source
// material rather than inferring one here.
func (g *IDMGenerator) Decodability(k int) Guarantee {
	return Guarantee{MaxDelta: nil, HighProbability: true}
}

func (g *IDMGenerator) ExpectedRowsPerSymbol(k int) float64 {
	total := 0.0
	for i := 1; i <= k; i++ {
		rows := float64(g.RowsInIteration(i))
		switch {
		case i == 1:
			total += rows / 2 // average popcount of a k-bit value is k/2
		case i == 2:
			total += 1 // exactly one tile row set
		default:
			total += rows / 2 // combination parity is 1 for roughly half the subsets
		}
	}
	return total
}

// MaxIterations bounds IDM at 2k: beyond that, combination counts grow
// combinatorially without adding meaningfully to the decoding guarantee.
func (g *IDMGenerator) MaxIterations() int {
	return 2 * g.k
}

// combinationCount returns C(total, choose), guarding against overflow
// for the modest values (total <= ~64) IDM ever uses.
func combinationCount(total, choose int) int {
	if choose < 0 || choose > total {
		return 0
	}
	if choose > total-choose {
		choose = total - choose
	}
	result := 1
	for i := 0; i < choose; i++ {
		result = result * (total - i) / (i + 1)
	}
	return result
}

// combinationsLex enumerates all size-choose subsets of {0,...,total-1}
// in lexicographic order, matching Python's itertools.combinations.
func combinationsLex(total, choose int) [][]int {
	if choose < 0 || choose > total {
		return nil
	}
	combos := make([][]int, 0, combinationCount(total, choose))
	indices := make([]int, choose)
	for i := range indices {
		indices[i] = i
	}
	for {
		combo := make([]int, choose)
		copy(combo, indices)
		combos = append(combos, combo)

		pos := choose - 1
		for pos >= 0 && indices[pos] == total-choose+pos {
			pos--
		}
		if pos < 0 {
			break
		}
		indices[pos]++
		for j := pos + 1; j < choose; j++ {
			indices[j] = indices[j-1] + 1
		}
	}
	return combos
}
