package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toto9820/rateless-reconcile/cell"
	"github.com/toto9820/rateless-reconcile/config"
	"github.com/toto9820/rateless-reconcile/mapping"
)

func TestNew_Defaults(t *testing.T) {
	c := config.New(100)
	assert.Equal(t, mapping.EGH, c.Method)
	assert.Equal(t, 100, c.N)
	assert.False(t, c.SupersetAssumption)
	assert.Equal(t, cell.VariantXXH64, c.HashVariant)
}

func TestNew_PanicsOnNonPositiveN(t *testing.T) {
	assert.Panics(t, func() { config.New(0) })
	assert.Panics(t, func() { config.New(-5) })
}

func TestWithMaxIterations_PanicsOnNonPositive(t *testing.T) {
	assert.Panics(t, func() { config.New(10, config.WithMaxIterations(0)) })
}

func TestCompatible_DetectsMismatch(t *testing.T) {
	a := config.New(100, config.WithMethod(mapping.EGH))
	b := config.New(100, config.WithMethod(mapping.BCH))
	err := a.Compatible(b)
	require.Error(t, err)

	c := config.New(100, config.WithMethod(mapping.EGH))
	require.NoError(t, a.Compatible(c))
}

func TestNewGenerator_MatchesMethod(t *testing.T) {
	c := config.New(50, config.WithMethod(mapping.OLS))
	gen := c.NewGenerator()
	assert.Equal(t, mapping.OLS, gen.Method())
}

func TestNewGenerator_UsesRowCacheWhenSet(t *testing.T) {
	cache := mapping.NewCache(16)
	c := config.New(50, config.WithMethod(mapping.EGH), config.WithRowCache(cache))
	gen := c.NewGenerator()

	rows := gen.RowsForSymbol(7, 1)
	cached := cache.RowsForSymbol(mapping.NewEGH(50), 7, 1)
	assert.Equal(t, cached, rows)

	bare := config.New(50, config.WithMethod(mapping.EGH)).NewGenerator()
	assert.Equal(t, mapping.EGH, bare.Method())
}

func TestEffectiveMaxIterations_FallsBackToGenerator(t *testing.T) {
	c := config.New(50, config.WithMethod(mapping.BCH))
	gen := c.NewGenerator()
	assert.Equal(t, gen.MaxIterations(), c.EffectiveMaxIterations(gen))

	withCap := config.New(50, config.WithMethod(mapping.BCH), config.WithMaxIterations(2))
	assert.Equal(t, 2, withCap.EffectiveMaxIterations(gen))
}
