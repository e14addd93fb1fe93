package cell

// Cell is a three-accumulator record: a signed membership counter, an
// XOR running sum of inserted-minus-removed symbols, and an XOR
// checksum of per-symbol hashes (only meaningful when checksummed).
//
// Invariants (see package doc for the encoding rationale):
//   - Pure  iff |Counter| == 1 AND XorSum != 0 AND (checksum off OR
//     Checksum == H(XorSum)).
//   - Empty iff Counter == 0 AND XorSum == 0.
type Cell struct {
	Counter  int64
	XorSum   uint64
	Checksum uint64
}

// Add inserts symbol s into the cell. checksummed controls whether the
// checksum accumulator is maintained; it is false under the superset
// assumption, where structural detection alone suffices.
func (c *Cell) Add(h Hasher, checksummed bool, s Symbol) {
	c.XorSum ^= uint64(s)
	c.Counter++
	if checksummed {
		c.Checksum ^= h.Hash(s)
	}
}

// AddMany is equivalent to calling Add for every symbol in ss, but
// reduces the XOR and checksum accumulation over the whole slice in one
// pass so callers can batch a row's membership instead of looping one
// symbol at a time.
func (c *Cell) AddMany(h Hasher, checksummed bool, ss []Symbol) {
	if len(ss) == 0 {
		return
	}
	var xorAcc uint64
	var checksumAcc uint64
	for _, s := range ss {
		xorAcc ^= uint64(s)
		if checksummed {
			checksumAcc ^= h.Hash(s)
		}
	}
	c.XorSum ^= xorAcc
	c.Counter += int64(len(ss))
	if checksummed {
		c.Checksum ^= checksumAcc
	}
}

// Remove deletes one occurrence of symbol s from the cell. A nonzero
// Counter moves one step toward zero (a positive counter decrements, a
// negative one increments), so a removal never flips its sign; the first
// removal from a zero counter makes it +1. Negative counters arise only
// on the differencing path, where a difference cell's counter
// legitimately starts negative.
func (c *Cell) Remove(h Hasher, checksummed bool, s Symbol) {
	c.XorSum ^= uint64(s)
	if checksummed {
		c.Checksum ^= h.Hash(s)
	}
	if c.Counter > 0 {
		c.Counter--
	} else {
		// Counter <= 0: move toward zero from a negative run, or
		// start a positive run on the first removal of an
		// otherwise-empty cell.
		c.Counter++
	}
}

// MergeXor folds other into c: counters add, XOR accumulators combine.
// Associative and commutative, so cells may be merged in any order.
func (c *Cell) MergeXor(other Cell) {
	c.Counter += other.Counter
	c.XorSum ^= other.XorSum
	c.Checksum ^= other.Checksum
}

// IsPure reports whether the cell holds exactly one symbol.
func (c *Cell) IsPure(h Hasher, checksummed bool) bool {
	if c.Counter != 1 && c.Counter != -1 {
		return false
	}
	if c.XorSum == 0 {
		return false
	}
	if !checksummed {
		return true
	}
	return c.Checksum == h.Hash(Symbol(c.XorSum))
}

// IsEmpty reports whether the cell holds no symbols.
func (c *Cell) IsEmpty() bool {
	return c.Counter == 0 && c.XorSum == 0
}
