// Package config holds the per-session reconciliation configuration:
// the options both peers must agree on before a reconciliation can
// begin (method, universe size, checksum mode, hash variant, iteration
// cap).
package config

import (
	"fmt"

	"github.com/toto9820/rateless-reconcile/cell"
	"github.com/toto9820/rateless-reconcile/mapping"
)

// Config is immutable per reconciliation session once built; there is
// no mutable global configuration (spec §9: replace the original's
// process-wide universe list with per-session configuration).
type Config struct {
	Method             mapping.Method
	N                  int
	SupersetAssumption bool
	HashVariant        cell.Variant
	MaxIterations      int // 0 == use the method's own MaxIterations()

	// RowCache, when set, is consulted by NewGenerator to memoize
	// RowsForSymbol across reconciliations that share (method, n) —
	// the read-mostly service object of spec §5/§9, owned by the
	// caller and shared across as many Configs/sessions as it likes.
	// Nil means no memoization: each session generates rows fresh.
	RowCache *mapping.Cache
}

// Option customizes a Config by mutating it before validation.
// Complexity: applying N options costs O(N) time, O(1) space.
type Option func(*Config)

// WithMethod selects the mapping method. Default: EGH.
func WithMethod(m mapping.Method) Option {
	return func(c *Config) { c.Method = m }
}

// WithSupersetAssumption declares whether one peer's set is guaranteed
// to contain the other's; when true, checksums are omitted from cells.
func WithSupersetAssumption(v bool) Option {
	return func(c *Config) { c.SupersetAssumption = v }
}

// WithHashVariant selects the checksum hash variant. Both peers MUST
// agree; mismatch is a ConfigMismatch error at session start.
func WithHashVariant(v cell.Variant) Option {
	return func(c *Config) { c.HashVariant = v }
}

// WithRowCache shares a mapping.Cache across this Config's sessions, so
// repeated reconciliations over the same (method, n) reuse previously
// generated rows instead of recomputing them (spec §5: "Mapping-row
// memoization is read-mostly shared state... MUST be safe for
// concurrent readers"). Build one Cache per (method, n) pair the
// caller expects to reuse and pass it to every Config that shares it.
func WithRowCache(c *mapping.Cache) Option {
	return func(cfg *Config) { cfg.RowCache = c }
}

// WithMaxIterations caps the iteration count the driver loop will
// attempt before giving up. Panics on a non-positive value: an option
// constructor validates and fails fast, per the "options panic, the
// algorithm itself never does" convention.
func WithMaxIterations(k int) Option {
	if k <= 0 {
		panic("config: WithMaxIterations(k<=0)")
	}
	return func(c *Config) { c.MaxIterations = k }
}

// New builds a Config for universe size n, applying opts over the
// defaults (method=EGH, superset=false, hash=XXH64, max_iterations=
// method-specific). n must be positive; New panics otherwise, since an
// invalid universe size is a construction-time programmer error, not a
// runtime condition a caller should need to check for.
func New(n int, opts ...Option) *Config {
	if n <= 0 {
		panic("config: New(n<=0)")
	}
	c := &Config{
		Method:      mapping.EGH,
		N:           n,
		HashVariant: cell.VariantXXH64,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewGenerator builds the mapping.Generator this Config selects. When
// RowCache is set, the returned Generator memoizes RowsForSymbol
// through it (mapping.WithCache), satisfying spec §5's "at-most-one"
// guarantee for concurrent first-time row generation.
func (c *Config) NewGenerator() mapping.Generator {
	gen := c.newBareGenerator()
	if c.RowCache != nil {
		return mapping.WithCache(gen, c.RowCache)
	}
	return gen
}

func (c *Config) newBareGenerator() mapping.Generator {
	switch c.Method {
	case mapping.ExtendedHamming:
		return mapping.NewExtendedHamming(c.N)
	case mapping.OLS:
		return mapping.NewOLS(c.N)
	case mapping.BCH:
		return mapping.NewBCH(c.N)
	case mapping.IDM:
		return mapping.NewIDM(c.N)
	default:
		return mapping.NewEGH(c.N)
	}
}

// EffectiveMaxIterations returns MaxIterations if set, else gen's own
// method-specific cap.
func (c *Config) EffectiveMaxIterations(gen mapping.Generator) int {
	if c.MaxIterations > 0 {
		return c.MaxIterations
	}
	return gen.MaxIterations()
}

// Compatible reports whether two peers' configs agree on the fields
// that must match for reconciliation to proceed (spec §7:
// ConfigMismatch is fatal).
func (c *Config) Compatible(other *Config) error {
	if c.Method != other.Method {
		return fmt.Errorf("config: method mismatch: %s vs %s", c.Method, other.Method)
	}
	if c.N != other.N {
		return fmt.Errorf("config: universe size mismatch: %d vs %d", c.N, other.N)
	}
	if c.SupersetAssumption != other.SupersetAssumption {
		return fmt.Errorf("config: checksum mode mismatch: superset=%v vs %v", c.SupersetAssumption, other.SupersetAssumption)
	}
	if c.HashVariant != other.HashVariant {
		return fmt.Errorf("config: hash variant mismatch: %v vs %v", c.HashVariant, other.HashVariant)
	}
	return nil
}
