package iblt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toto9820/rateless-reconcile/cell"
	"github.com/toto9820/rateless-reconcile/iblt"
	"github.com/toto9820/rateless-reconcile/mapping"
)

func buildIBLT(t *testing.T, n int, symbols []cell.Symbol) *iblt.IBLT {
	t.Helper()
	gen := mapping.NewEGH(n)
	hasher := cell.NewHasher(cell.VariantXXH64)
	b := iblt.New(gen, hasher, true, 0)
	for _, s := range symbols {
		b.Add(s)
	}
	return b
}

func TestIBLT_MonotoneCellsPrefix(t *testing.T) {
	b := buildIBLT(t, 100, []cell.Symbol{1, 2, 3, 50, 99})

	require.NoError(t, b.ExtendTo(2))
	k2 := append([]cell.Cell(nil), b.Cells(2)...)

	require.NoError(t, b.ExtendTo(4))
	k4 := b.Cells(4)

	require.GreaterOrEqual(t, len(k4), len(k2))
	assert.Equal(t, k2, k4[:len(k2)])
}

func TestIBLT_ExtendToIsIdempotent(t *testing.T) {
	b := buildIBLT(t, 50, []cell.Symbol{7, 8})
	require.NoError(t, b.ExtendTo(3))
	first := append([]cell.Cell(nil), b.Cells(3)...)

	require.NoError(t, b.ExtendTo(3))
	assert.Equal(t, first, b.Cells(3))
}

func TestIBLT_EmptySetProducesEmptyCells(t *testing.T) {
	b := buildIBLT(t, 30, nil)
	require.NoError(t, b.ExtendTo(2))
	for _, c := range b.Cells(2) {
		assert.True(t, c.IsEmpty())
	}
}

func TestIBLT_ExtendToRejectsBeyondMethodLimit(t *testing.T) {
	gen := mapping.NewBCH(15) // m = 4, MaxIterations = 7
	hasher := cell.NewHasher(cell.VariantXXH64)
	b := iblt.New(gen, hasher, true, 0)
	b.Add(3)

	err := b.ExtendTo(gen.MaxIterations() + 1)
	require.ErrorIs(t, err, iblt.ErrMethodLimitExceeded)
}

func TestIBLT_ResourceExhaustionOnTightRowBudget(t *testing.T) {
	gen := mapping.NewEGH(100)
	hasher := cell.NewHasher(cell.VariantXXH64)
	b := iblt.New(gen, hasher, true, 1) // only 1 row allowed; iteration 1 alone needs 2

	err := b.ExtendTo(1)
	require.ErrorIs(t, err, iblt.ErrResourceExhausted)
}
