// Package mapping implements the method-parameterized mapping generator:
// the lazily-extended sparse 0/1 assignment of universe symbols to IBLT
// cells. Each method (EGH, ExtendedHamming, OLS, BCH, IDM) supplies only
// the row rule; IBLT encoding and peeling decoding are method-agnostic
// and live in sibling packages.
package mapping

import "github.com/toto9820/rateless-reconcile/cell"

// Method names the combinatorial mapping rule a Generator implements.
type Method uint8

const (
	EGH Method = iota
	ExtendedHamming
	OLS
	BCH
	IDM
)

func (m Method) String() string {
	switch m {
	case EGH:
		return "EGH"
	case ExtendedHamming:
		return "ExtendedHamming"
	case OLS:
		return "OLS"
	case BCH:
		return "BCH"
	case IDM:
		return "IDM"
	default:
		return "unknown"
	}
}

// Guarantee describes what a Generator promises about decodability at a
// given iteration. MaxDelta is nil when the method has no closed-form
// bound (OLS, IDM); a method whose bound is not yet met reports 0.
type Guarantee struct {
	MaxDelta        *int
	HighProbability bool // false => guarantee holds with probability 1 (EGH, ExtendedHamming)
}

// Generator produces the iteration-indexed rows of an (unbounded) sparse
// 0/1 matrix M over n columns. Implementations MUST be pure with respect
// to (method, n, iteration): the same inputs always produce the same
// rows, so memoization (see Cache) is a legitimate optimization rather
// than shared mutable state.
type Generator interface {
	Method() Method
	N() int
	// RowsInIteration reports r_i, the number of rows iteration i adds.
	RowsInIteration(i int) int
	// RowsForSymbol reports the local (0-based, within-iteration) row
	// indices where M[row, symbol-1] == 1 for the batch iteration i
	// alone. Implementations MUST compute this without materializing
	// rows unrelated to symbol.
	RowsForSymbol(symbol cell.Symbol, iteration int) []int
	// Decodability reports the decoding guarantee known to hold once
	// iterations 1..k have been emitted.
	Decodability(k int) Guarantee
	// ExpectedRowsPerSymbol estimates the replication factor (average
	// number of rows a universe symbol touches) through iteration k,
	// used only as a progress signal by the peeling decoder.
	ExpectedRowsPerSymbol(k int) float64
	// MaxIterations is a method-specific sane cap past which
	// iblt.ExtendTo refuses to encode more iterations
	// (ErrMethodLimitExceeded).
	MaxIterations() int
}

// TotalRows returns the number of rows emitted across iterations 1..k.
func TotalRows(g Generator, k int) int {
	total := 0
	for i := 1; i <= k; i++ {
		total += g.RowsInIteration(i)
	}
	return total
}

// ColumnSupport returns every global row index in [0, TotalRows(g,k))
// where symbol is mapped, by walking each iteration's local rows and
// translating them into the cumulative row space. It never materializes
// rows unrelated to symbol.
func ColumnSupport(g Generator, symbol cell.Symbol, k int) []int {
	var support []int
	offset := 0
	for i := 1; i <= k; i++ {
		for _, local := range g.RowsForSymbol(symbol, i) {
			support = append(support, offset+local)
		}
		offset += g.RowsInIteration(i)
	}
	return support
}
