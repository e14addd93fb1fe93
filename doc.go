// Package rateless_reconcile documents
// github.com/toto9820/rateless-reconcile, a library for rateless set
// reconciliation between two parties over a shared universe of integer
// symbols.
//
// Party A (sender) and party B (receiver) each hold a subset of
// U = {1,...,n}. A streams successively larger batches of fixed-size
// cells derived from its set under a chosen mapping method; B decodes
// the symmetric difference once it has consumed enough cells for the
// method's decodability guarantee to hold. Neither side needs to know
// |Δ| in advance.
//
// Subpackages, leaves first:
//
//	cell/       — the three-accumulator Cell (counter, xor-sum, checksum)
//	              and the pluggable Hasher used for checksums.
//	mapping/    — the Generator contract and its five implementations
//	              (EGH, ExtendedHamming, OLS, BCH, IDM), plus a
//	              concurrency-safe row cache.
//	iblt/       — IBLT: a set encoded as a growing Cell vector under a
//	              Generator.
//	diff/       — cell-wise differencing of two IBLT digests.
//	decode/     — the peeling decoder that recovers Δ from a difference.
//	config/     — session configuration shared by both peers.
//	telemetry/  — structured logging setup.
//	reconcile/  — the driver loop, session transports, and wire codec
//	              tying the above into the two-party protocol.
//	cmd/reconcile-demo/ — a minimal in-process demonstration.
//
//	go get github.com/toto9820/rateless-reconcile
package rateless_reconcile
