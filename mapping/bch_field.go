package mapping

import "math/bits"

// gf2m is a table-driven GF(2^m) implementation: a primitive element
// alpha generates every nonzero field element, so multiplication and
// exponentiation reduce to integer addition/subtraction mod (2^m - 1)
// via log/antilog tables, the same technique the reference RLNC
// material (other_examples/...swarna1101-RLNC-demo.../main.go,
// type GF struct{ mulTable [][]byte }) and original_source's use of the
// `galois` package both rely on, generalized here to an arbitrary field
// degree m (picked at runtime, since BCH's m varies with n) rather than
// a single fixed GF(256).
type gf2m struct {
	m         int
	size      uint64 // 2^m
	fieldPoly uint64 // reduction polynomial, low m bits: x^m == fieldPoly (mod 2)
	expTable  []uint64
	logTable  []int
}

// newGF2m builds the field GF(2^m) with a primitive polynomial found by
// searching low-weight candidates and verifying primitivity directly,
// rather than trusting a hardcoded table that may not match the field
// size actually requested.
func newGF2m(m int) *gf2m {
	size := uint64(1) << uint(m)
	fieldPoly := findPrimitivePoly(m)

	g := &gf2m{m: m, size: size, fieldPoly: fieldPoly}
	g.expTable = make([]uint64, size) // one extra slot wraps for convenience
	g.logTable = make([]int, size)

	e := uint64(1)
	for i := 0; i < int(size)-1; i++ {
		g.expTable[i] = e
		g.logTable[e] = i
		e = g.mulNoTable(e, 2)
	}
	g.expTable[size-1] = g.expTable[0]
	return g
}

// mulNoTable multiplies two field elements via carry-less multiply and
// reduction by fieldPoly; used only while building the log/antilog
// tables themselves.
func (g *gf2m) mulNoTable(a, b uint64) uint64 {
	var result uint64
	for b != 0 {
		if b&1 != 0 {
			result ^= a
		}
		b >>= 1
		a <<= 1
		if a&g.size != 0 {
			a = (a ^ (g.size | g.fieldPoly)) & (g.size - 1)
		}
	}
	return result
}

// Pow returns alpha^e in GF(2^m), where e may be any non-negative
// exponent (reduced modulo the multiplicative order 2^m - 1).
func (g *gf2m) Pow(e uint64) uint64 {
	order := g.size - 1
	if order == 0 {
		return 0
	}
	return g.expTable[e%order]
}

// --- primitive polynomial search -------------------------------------------------

// findPrimitivePoly returns the low-m-bit reduction pattern of a
// primitive polynomial of degree m over GF(2), verified by direct
// irreducibility and primitive-root testing rather than table lookup.
func findPrimitivePoly(m int) uint64 {
	if m <= 1 {
		return 1 // x + 1 is the (trivial) primitive polynomial for GF(2)
	}
	full := uint64(1) << uint(m) // leading term x^m
	order := (uint64(1) << uint(m)) - 1
	orderFactors := primeFactors(order)
	mFactors := primeFactors(uint64(m))

	for candidate := uint64(1); candidate < uint64(1)<<uint(m); candidate++ {
		f := full | candidate
		if !isIrreducible(f, m, mFactors) {
			continue
		}
		if isPrimitiveRoot(f, order, orderFactors) {
			return candidate
		}
	}
	// Unreachable for any m >= 1: a primitive polynomial always exists.
	panic("mapping: no primitive polynomial found for degree")
}

// isIrreducible applies Rabin's irreducibility test: f (degree m) is
// irreducible over GF(2) iff x^(2^m) == x (mod f) and, for every prime
// divisor q of m, gcd(x^(2^(m/q)) - x, f) == 1.
func isIrreducible(f uint64, m int, mFactors []uint64) bool {
	xPow2ToM := polyPow2Tower(2, m, f)
	if xPow2ToM != 2 {
		return false
	}
	for _, q := range mFactors {
		xPow2ToMQ := polyPow2Tower(2, m/int(q), f)
		diff := xPow2ToMQ ^ 2 // x^(2^(m/q)) - x, GF(2) subtraction == XOR
		if diff == 0 {
			return false
		}
		if polyGCD(diff, f) != 1 {
			return false
		}
	}
	return true
}

// isPrimitiveRoot checks that x has multiplicative order exactly order
// in GF(2)[x]/(f), i.e. x^(order/q) != 1 for every prime factor q.
func isPrimitiveRoot(f uint64, order uint64, orderFactors []uint64) bool {
	for _, q := range orderFactors {
		if polyPowMod(2, order/q, f) == 1 {
			return false
		}
	}
	return true
}

// polyPow2Tower computes x^(2^k) mod f by repeated squaring k times,
// starting from x itself (val=2).
func polyPow2Tower(val uint64, k int, f uint64) uint64 {
	v := polyMod(val, f)
	for i := 0; i < k; i++ {
		v = polyMulMod(v, v, f)
	}
	return v
}

func polyDeg(p uint64) int {
	if p == 0 {
		return -1
	}
	return bits.Len64(p) - 1
}

func polyMulNoReduce(a, b uint64) uint64 {
	var r uint64
	for b != 0 {
		if b&1 != 0 {
			r ^= a
		}
		a <<= 1
		b >>= 1
	}
	return r
}

func polyMod(a, m uint64) uint64 {
	dm := polyDeg(m)
	for polyDeg(a) >= dm && dm >= 0 {
		a ^= m << uint(polyDeg(a)-dm)
	}
	return a
}

func polyMulMod(a, b, m uint64) uint64 {
	return polyMod(polyMulNoReduce(a, b), m)
}

func polyPowMod(base, e, m uint64) uint64 {
	result := uint64(1)
	b := polyMod(base, m)
	for e > 0 {
		if e&1 == 1 {
			result = polyMulMod(result, b, m)
		}
		b = polyMulMod(b, b, m)
		e >>= 1
	}
	return result
}

func polyGCD(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, polyMod(a, b)
	}
	return a
}

// primeFactors returns the distinct prime factors of n via trial
// division; n is always small here (m, or 2^m-1 for m <= ~24).
func primeFactors(n uint64) []uint64 {
	var factors []uint64
	for p := uint64(2); p*p <= n; p++ {
		if n%p == 0 {
			factors = append(factors, p)
			for n%p == 0 {
				n /= p
			}
		}
	}
	if n > 1 {
		factors = append(factors, n)
	}
	return factors
}
