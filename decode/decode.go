// Package decode implements the peeling decoder: it consumes a
// difference digest and the mapping generator that produced it, and
// iteratively extracts symbols from pure cells until either every cell
// empties (success) or no pure cell remains (a normal, expected outcome
// early in the rateless loop — not an error).
package decode

import (
	"errors"
	"fmt"

	"github.com/toto9820/rateless-reconcile/cell"
	"github.com/toto9820/rateless-reconcile/mapping"
)

// Sign distinguishes which peer exclusively holds a recovered symbol:
// +1 means "in B only", -1 means "in A only", matching the diff
// convention where diff = B - A.
type Sign int8

const (
	SignInB Sign = 1
	SignInA Sign = -1
)

// Signed pairs a recovered symbol with the peer that exclusively holds
// it.
type Signed struct {
	Symbol cell.Symbol
	Sign   Sign
}

// Outcome is the result of one peeling attempt.
type Outcome struct {
	Symbols []Signed
	// Success is true iff every cell emptied: Δ was fully recovered.
	Success bool
	// ProgressFraction estimates |recovered| / |recoverable_estimate|
	// when Success is false; a signal for the rateless driver loop, not
	// a correctness measure.
	ProgressFraction float64
}

// ErrDuplicateSymbol indicates the decoder extracted the same symbol
// twice — a decoder or mapping-generator bug, since spec's column
// support for a symbol is supposed to make repeat extraction impossible.
var ErrDuplicateSymbol = errors.New("decode: symbol recovered more than once")

// Peel runs the peeling decoder over diffCells (typically diff.Compute's
// output) at iteration level k, using gen to resolve each recovered
// symbol's column support. diffCells is not mutated; Peel works on an
// internal copy.
func Peel(diffCells []cell.Cell, gen mapping.Generator, hasher cell.Hasher, checksummed bool, k int) (Outcome, error) {
	cells := make([]cell.Cell, len(diffCells))
	copy(cells, diffCells)

	initialAbsCounter := int64(0)
	for _, c := range cells {
		initialAbsCounter += abs64(c.Counter)
	}

	seen := make(map[cell.Symbol]struct{})
	rejected := make(map[int]struct{}) // cell indices known to be false-pure
	var recovered []Signed

	for {
		idx := findPureCell(cells, gen.N(), hasher, checksummed, rejected)
		if idx < 0 {
			break
		}

		s := cell.Symbol(cells[idx].XorSum)
		if int(s) < 1 || int(s) > gen.N() {
			// A false-pure cell (hash collision on the checksum, or a
			// corrupted counter): not usable, never revisit it.
			rejected[idx] = struct{}{}
			continue
		}

		if _, dup := seen[s]; dup {
			return Outcome{}, fmt.Errorf("%w: %d", ErrDuplicateSymbol, s)
		}
		seen[s] = struct{}{}

		sign := SignInB
		if cells[idx].Counter < 0 {
			sign = SignInA
		}
		recovered = append(recovered, Signed{Symbol: s, Sign: sign})

		for _, row := range mapping.ColumnSupport(gen, s, k) {
			cells[row].Counter -= int64(sign)
			cells[row].XorSum ^= uint64(s)
			if checksummed {
				cells[row].Checksum ^= hasher.Hash(s)
			}
		}
	}

	success := true
	for _, c := range cells {
		if !c.IsEmpty() {
			success = false
			break
		}
	}

	if success {
		return Outcome{Symbols: recovered, Success: true, ProgressFraction: 1}, nil
	}

	expected := gen.ExpectedRowsPerSymbol(k)
	recoverableEstimate := 0.0
	if expected > 0 {
		recoverableEstimate = float64(initialAbsCounter) / expected
	}
	fraction := 0.0
	if recoverableEstimate > 0 {
		fraction = float64(len(recovered)) / recoverableEstimate
		if fraction > 1 {
			fraction = 1
		}
	}
	return Outcome{Symbols: recovered, Success: false, ProgressFraction: fraction}, nil
}

// findPureCell scans ascending by index (the spec's permitted
// deterministic tie-break) for the first pure, non-rejected cell.
func findPureCell(cells []cell.Cell, n int, hasher cell.Hasher, checksummed bool, rejected map[int]struct{}) int {
	for i := range cells {
		if _, skip := rejected[i]; skip {
			continue
		}
		if cells[i].IsPure(hasher, checksummed) {
			return i
		}
	}
	return -1
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
