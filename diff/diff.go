// Package diff computes the cell-wise difference between two peers'
// IBLT digests, the input to the peeling decoder.
package diff

import (
	"errors"
	"fmt"

	"github.com/toto9820/rateless-reconcile/cell"
)

// ErrLengthMismatch is returned when the two digests being differenced
// do not cover the same number of cells — a programmer error (mismatched
// method, n, or iteration count between peers), fatal per spec §4.7.
var ErrLengthMismatch = errors.New("diff: digest length mismatch")

// Compute produces a difference digest whose cells satisfy:
//
//	diff[i].Counter  = b[i].Counter  - a[i].Counter
//	diff[i].XorSum   = b[i].XorSum   XOR a[i].XorSum
//	diff[i].Checksum = b[i].Checksum XOR a[i].Checksum
//
// a and b MUST cover the same (method, n, k); a length mismatch is
// reported as a fatal error rather than silently truncated.
func Compute(a, b []cell.Cell) ([]cell.Cell, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: %d cells vs %d cells", ErrLengthMismatch, len(a), len(b))
	}

	out := make([]cell.Cell, len(a))
	for i := range out {
		out[i] = cell.Cell{
			Counter:  b[i].Counter - a[i].Counter,
			XorSum:   b[i].XorSum ^ a[i].XorSum,
			Checksum: b[i].Checksum ^ a[i].Checksum,
		}
	}
	return out, nil
}
