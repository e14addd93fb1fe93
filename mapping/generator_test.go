package mapping_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toto9820/rateless-reconcile/cell"
	"github.com/toto9820/rateless-reconcile/mapping"
)

func allGenerators(n int) map[string]mapping.Generator {
	return map[string]mapping.Generator{
		"EGH":             mapping.NewEGH(n),
		"ExtendedHamming": mapping.NewExtendedHamming(n),
		"OLS":             mapping.NewOLS(n),
		"BCH":             mapping.NewBCH(n),
		"IDM":             mapping.NewIDM(n),
	}
}

func TestGenerators_RowsForSymbolWithinIterationBounds(t *testing.T) {
	const n = 50
	for name, g := range allGenerators(n) {
		g := g
		t.Run(name, func(t *testing.T) {
			for iter := 1; iter <= 3; iter++ {
				rowCount := g.RowsInIteration(iter)
				require.Greater(t, rowCount, 0)
				for s := 1; s <= n; s++ {
					rows := g.RowsForSymbol(cell.Symbol(s), iter)
					for _, r := range rows {
						assert.GreaterOrEqual(t, r, 0)
						assert.Less(t, r, rowCount)
					}
				}
			}
		})
	}
}

func TestGenerators_MethodIdentity(t *testing.T) {
	g := allGenerators(10)
	assert.Equal(t, mapping.EGH, g["EGH"].Method())
	assert.Equal(t, mapping.ExtendedHamming, g["ExtendedHamming"].Method())
	assert.Equal(t, mapping.OLS, g["OLS"].Method())
	assert.Equal(t, mapping.BCH, g["BCH"].Method())
	assert.Equal(t, mapping.IDM, g["IDM"].Method())
}

func TestEGH_FreeZoneGrowsWithIterations(t *testing.T) {
	g := mapping.NewEGH(1000)
	early := g.Decodability(1)
	later := g.Decodability(10)
	require.NotNil(t, early.MaxDelta)
	require.NotNil(t, later.MaxDelta)
	assert.GreaterOrEqual(t, *later.MaxDelta, *early.MaxDelta)
}

func TestExtendedHamming_GuaranteeActivatesAtRequiredIterations(t *testing.T) {
	g := mapping.NewExtendedHamming(16)
	before := g.Decodability(1)
	require.NotNil(t, before.MaxDelta)
	assert.Equal(t, 0, *before.MaxDelta)

	after := g.Decodability(g.MaxIterations())
	require.NotNil(t, after.MaxDelta)
	assert.Equal(t, 3, *after.MaxDelta)
}

func TestExtendedHamming_ExactlyOneRowPerIteration(t *testing.T) {
	g := mapping.NewExtendedHamming(32)
	for iter := 1; iter <= 6; iter++ {
		for s := 1; s <= 32; s++ {
			rows := g.RowsForSymbol(cell.Symbol(s), iter)
			require.Len(t, rows, 1)
		}
	}
}

func TestOLS_DecodabilityIsEmpirical(t *testing.T) {
	g := mapping.NewOLS(100)
	guarantee := g.Decodability(5)
	assert.Nil(t, guarantee.MaxDelta)
	assert.True(t, guarantee.HighProbability)
}

func TestBCH_DecodabilityBound(t *testing.T) {
	g := mapping.NewBCH(15) // m = 4
	guarantee := g.Decodability(1)
	require.NotNil(t, guarantee.MaxDelta)
	assert.Equal(t, (1<<3)-1, *guarantee.MaxDelta)
}

func TestBCH_RowsForSymbolDeterministic(t *testing.T) {
	g := mapping.NewBCH(31)
	a := g.RowsForSymbol(cell.Symbol(5), 2)
	b := g.RowsForSymbol(cell.Symbol(5), 2)
	assert.Equal(t, a, b)
}

func TestIDM_IterationOneMatchesBinaryExpansion(t *testing.T) {
	g := mapping.NewIDM(16) // k = 4
	rows := g.RowsForSymbol(cell.Symbol(6), 1)
	// symbol value 6 = 0b0110 -> bits 1 and 2 set.
	assert.ElementsMatch(t, []int{1, 2}, rows)
}

func TestIDM_IterationTwoIsOneHotTile(t *testing.T) {
	g := mapping.NewIDM(16)
	rows := g.RowsForSymbol(cell.Symbol(6), 2)
	require.Len(t, rows, 1)
}

func TestColumnSupportAndTotalRows(t *testing.T) {
	g := mapping.NewEGH(20)
	support := mapping.ColumnSupport(g, cell.Symbol(3), 3)
	assert.Len(t, support, 3)

	total := mapping.TotalRows(g, 3)
	expected := g.RowsInIteration(1) + g.RowsInIteration(2) + g.RowsInIteration(3)
	assert.Equal(t, expected, total)
}
