package cell_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toto9820/rateless-reconcile/cell"
)

func TestCell_AddRemove_RestoresPriorState(t *testing.T) {
	h := cell.NewHasher(cell.VariantXXH64)
	var c cell.Cell
	before := c
	c.Add(h, true, 42)
	assert.False(t, c.IsEmpty())
	c.Remove(h, true, 42)
	assert.Equal(t, before, c)
}

func TestCell_AddMany_MatchesRepeatedAdd(t *testing.T) {
	h := cell.NewHasher(cell.VariantXXH64)
	symbols := []cell.Symbol{1, 2, 3, 4, 5}

	var bulk cell.Cell
	bulk.AddMany(h, true, symbols)

	var sequential cell.Cell
	for _, s := range symbols {
		sequential.Add(h, true, s)
	}

	assert.Equal(t, sequential, bulk)
}

func TestCell_IsPure(t *testing.T) {
	h := cell.NewHasher(cell.VariantXXH64)
	var c cell.Cell
	assert.False(t, c.IsPure(h, true))

	c.Add(h, true, 7)
	assert.True(t, c.IsPure(h, true))

	c.Add(h, true, 9)
	assert.False(t, c.IsPure(h, true), "two symbols should not be pure")
}

func TestCell_IsPure_WithoutChecksum(t *testing.T) {
	h := cell.NewHasher(cell.VariantXXH64)
	var c cell.Cell
	c.Add(h, false, 7)
	assert.True(t, c.IsPure(h, false))
	assert.Zero(t, c.Checksum, "checksum must stay unused under the superset assumption")
}

func TestCell_IsPure_RejectsCorruptedChecksum(t *testing.T) {
	h := cell.NewHasher(cell.VariantXXH64)
	var c cell.Cell
	c.Add(h, true, 7)
	c.Checksum ^= 1 // simulate a colliding third symbol's partial contribution
	assert.False(t, c.IsPure(h, true))
}

func TestCell_RemoveFromEmpty_SignConvention(t *testing.T) {
	h := cell.NewHasher(cell.VariantXXH64)
	var c cell.Cell
	c.Remove(h, true, 5)
	assert.Equal(t, int64(1), c.Counter, "first removal of an empty cell starts a positive run")

	var d cell.Cell
	d.Counter = -1
	d.Remove(h, true, 5)
	assert.Equal(t, int64(0), d.Counter, "removal moves a negative counter toward zero")
}

func TestCell_MergeXor_Commutative(t *testing.T) {
	h := cell.NewHasher(cell.VariantXXH64)
	var a, b cell.Cell
	a.Add(h, true, 3)
	b.Add(h, true, 11)

	ab := a
	ab.MergeXor(b)

	ba := b
	ba.MergeXor(a)

	assert.Equal(t, ab, ba)
}

func TestCell_IsEmpty(t *testing.T) {
	var c cell.Cell
	assert.True(t, c.IsEmpty())
	c.Add(cell.NewHasher(cell.VariantXXH64), true, 1)
	assert.False(t, c.IsEmpty())
}
