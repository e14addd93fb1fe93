package cell

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Variant selects the keyed 64-bit hash family negotiated at session
// start (spec: hash_variant). All three variants are backed by
// github.com/cespare/xxhash/v2 behind distinct mixing salts so that a
// mismatched variant between peers reliably produces disagreeing
// checksums rather than silently aliasing.
type Variant uint8

const (
	VariantXXH64 Variant = iota
	VariantXXH32
	VariantXXH3_64
)

// salts keep the three variants from colliding even though they share
// one underlying digest routine; they are not a cryptographic device,
// only a label-to-behavior mapping so VariantXXH32 != VariantXXH64.
var salts = [3]uint64{
	VariantXXH64:   0x9E3779B97F4A7C15,
	VariantXXH32:   0x85EBCA6B,
	VariantXXH3_64: 0xC2B2AE3D27D4EB4F,
}

type xxHasher struct {
	salt uint64
	fold bool // true narrows the digest the way a 32-bit hash would
}

// NewHasher returns the Hasher for a negotiated Variant.
func NewHasher(v Variant) Hasher {
	return &xxHasher{salt: salts[v], fold: v == VariantXXH32}
}

func (h *xxHasher) Hash(s Symbol) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(s)^h.salt)
	sum := xxhash.Sum64(buf[:])
	if h.fold {
		sum = (sum >> 32) ^ (sum & 0xFFFFFFFF)
	}
	return sum
}
