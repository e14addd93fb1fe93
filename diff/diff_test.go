package diff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toto9820/rateless-reconcile/cell"
	"github.com/toto9820/rateless-reconcile/diff"
)

func TestCompute_LengthMismatchIsFatal(t *testing.T) {
	a := make([]cell.Cell, 3)
	b := make([]cell.Cell, 4)
	_, err := diff.Compute(a, b)
	require.ErrorIs(t, err, diff.ErrLengthMismatch)
}

func TestCompute_FieldwiseCombination(t *testing.T) {
	h := cell.NewHasher(cell.VariantXXH64)

	var a, b cell.Cell
	a.Add(h, true, 5)
	b.Add(h, true, 5)
	b.Add(h, true, 9)

	out, err := diff.Compute([]cell.Cell{a}, []cell.Cell{b})
	require.NoError(t, err)
	require.Len(t, out, 1)

	want := cell.Cell{
		Counter:  b.Counter - a.Counter,
		XorSum:   b.XorSum ^ a.XorSum,
		Checksum: b.Checksum ^ a.Checksum,
	}
	assert.Equal(t, want, out[0])
}

// TestCompute_Linearity encodes spec property 5: Differ(encode(X),
// encode(Y)) == Differ(encode(X u Z), encode(Y u Z)) for any Z, since
// the shared part cancels under XOR and counter subtraction.
func TestCompute_Linearity(t *testing.T) {
	h := cell.NewHasher(cell.VariantXXH64)

	var x, y, z cell.Cell
	x.Add(h, true, 1)
	y.Add(h, true, 2)
	z.Add(h, true, 3)

	baseline, err := diff.Compute([]cell.Cell{x}, []cell.Cell{y})
	require.NoError(t, err)

	var xz, yz cell.Cell
	xz = x
	xz.MergeXor(z)
	yz = y
	yz.MergeXor(z)

	withShared, err := diff.Compute([]cell.Cell{xz}, []cell.Cell{yz})
	require.NoError(t, err)

	assert.Equal(t, baseline, withShared)
}
