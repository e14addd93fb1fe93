// Package iblt encodes a symbol set into the growing cell vector a
// mapping method defines: an Invertible Bloom Lookup Table built batch
// by batch as the generator's iterations are consumed.
package iblt

import (
	"errors"
	"fmt"

	"github.com/toto9820/rateless-reconcile/cell"
	"github.com/toto9820/rateless-reconcile/mapping"
)

// ErrResourceExhausted is returned by ExtendTo when a requested
// iteration count would allocate more rows than the caller is willing
// to accept; fatal per spec.
var ErrResourceExhausted = errors.New("iblt: resource exhausted extending iterations")

// ErrMethodLimitExceeded is returned by ExtendTo when k exceeds the
// generator's MaxIterations, past which the method's mapping rule no
// longer carries new decoding information.
var ErrMethodLimitExceeded = errors.New("iblt: method iteration limit exceeded")

// IBLT holds a snapshot of its owner's set and the cells produced by
// encoding that set under a mapping.Generator, one batch per iteration.
// Cells grow monotonically: ExtendTo(k) only ever appends.
type IBLT struct {
	gen         mapping.Generator
	hasher      cell.Hasher
	checksummed bool
	maxRows     int // 0 == unbounded

	symbols map[cell.Symbol]struct{}
	cells   []cell.Cell
	k       int
}

// New constructs an empty IBLT over gen's universe. checksummed selects
// whether cells maintain the xor-checksum accumulator (omit it when the
// superset assumption holds). maxRows bounds total row count; 0 means
// unbounded.
func New(gen mapping.Generator, hasher cell.Hasher, checksummed bool, maxRows int) *IBLT {
	return &IBLT{
		gen:         gen,
		hasher:      hasher,
		checksummed: checksummed,
		maxRows:     maxRows,
		symbols:     make(map[cell.Symbol]struct{}),
	}
}

// Method reports the mapping method this IBLT encodes under.
func (t *IBLT) Method() mapping.Method { return t.gen.Method() }

// N reports the universe size.
func (t *IBLT) N() int { return t.gen.N() }

// K reports the number of iterations encoded so far.
func (t *IBLT) K() int { return t.k }

// Add inserts s into the owner's set. It does not retroactively touch
// already-encoded cells: iterations encoded before the change keep the
// old set, and only iterations encoded afterwards include s. Streaming
// insertion once reconciliation has begun is not supported; Add is
// intended for set construction prior to the first ExtendTo call.
func (t *IBLT) Add(s cell.Symbol) {
	t.symbols[s] = struct{}{}
}

// Remove deletes s from the owner's set, mirroring Add's pre-encoding
// contract.
func (t *IBLT) Remove(s cell.Symbol) {
	delete(t.symbols, s)
}

// ExtendTo ensures iterations 1..k have been encoded locally. Idempotent
// and monotonic: calling with a k already reached is a no-op.
func (t *IBLT) ExtendTo(k int) error {
	if k <= t.k {
		return nil
	}
	if k > t.gen.MaxIterations() {
		return fmt.Errorf("%w: iteration %d exceeds method limit %d", ErrMethodLimitExceeded, k, t.gen.MaxIterations())
	}

	for i := t.k + 1; i <= k; i++ {
		rowCount := t.gen.RowsInIteration(i)
		if t.maxRows > 0 && len(t.cells)+rowCount > t.maxRows {
			return fmt.Errorf("%w: iteration %d would grow cells past %d", ErrResourceExhausted, i, t.maxRows)
		}

		offset := len(t.cells)
		t.cells = append(t.cells, make([]cell.Cell, rowCount)...)

		// Column-major support: for each symbol currently in the set,
		// ask the generator for its rows within this iteration's batch
		// and accumulate directly, never materializing the dense
		// iteration x n matrix.
		for s := range t.symbols {
			for _, row := range t.gen.RowsForSymbol(s, i) {
				t.cells[offset+row].Add(t.hasher, t.checksummed, s)
			}
		}
	}
	t.k = k
	return nil
}

// Cells returns the encoded cells over iterations 1..k. k must not
// exceed the iteration count already reached via ExtendTo.
func (t *IBLT) Cells(k int) []cell.Cell {
	total := mapping.TotalRows(t.gen, k)
	if total > len(t.cells) {
		total = len(t.cells)
	}
	return t.cells[:total]
}

// Digest returns the on-wire projection of Cells(k): the same cell
// values, ready for the caller to frame per the wire format (see
// reconcile/wire.go). Checksums are present iff this IBLT was
// constructed with checksummed=true.
func (t *IBLT) Digest(k int) []cell.Cell {
	return t.Cells(k)
}

// Checksummed reports whether this IBLT's cells carry the xor-checksum
// accumulator.
func (t *IBLT) Checksummed() bool { return t.checksummed }
