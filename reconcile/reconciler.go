// Package reconcile drives the rateless set-reconciliation protocol:
// it wires together cell, mapping, iblt, diff, and decode into the
// two-party driver loop (spec §4.6), plus the session transports and
// wire codec those two parties exchange batches over.
package reconcile

import (
	"context"
	"errors"

	"github.com/toto9820/rateless-reconcile/cell"
	"github.com/toto9820/rateless-reconcile/config"
	"github.com/toto9820/rateless-reconcile/decode"
	"github.com/toto9820/rateless-reconcile/diff"
	"github.com/toto9820/rateless-reconcile/iblt"
	"github.com/toto9820/rateless-reconcile/mapping"
)

// Result is the output of a successful B-side reconciliation.
type Result struct {
	Symbols    []decode.Signed
	Iterations int
}

// checksummedFor reports whether cells carry the checksum accumulator for
// a given config: omitted exactly when the superset assumption holds.
func checksummedFor(cfg *config.Config) bool {
	return !cfg.SupersetAssumption
}

// ReconcileB runs the receiver side of the protocol contract in spec
// §4.6: receive A's batches, extend the local encoding to match,
// difference, and peel; request more batches on failure, stop on
// success.
func ReconcileB(ctx context.Context, cfg *config.Config, bSet []cell.Symbol, recv Receiver, opts ...Option) (Result, error) {
	s := newSettings(opts)
	log := s.log

	gen := cfg.NewGenerator()
	hasher := cell.NewHasher(cfg.HashVariant)
	checksummed := checksummedFor(cfg)
	maxIter := cfg.EffectiveMaxIterations(gen)

	bIBLT := iblt.New(gen, hasher, checksummed, 0)
	for _, sym := range bSet {
		bIBLT.Add(sym)
	}

	var aCells []cell.Cell
	k := 0

	for {
		batch, err := recv.RecvBatch(ctx)
		if err != nil {
			log.Error().Err(err).Msg("reconcile: recv batch failed")
			return Result{}, err
		}
		if batch.Iteration != k+1 {
			err := newError(KindProtocolViolation, nil)
			log.Error().Int("got_iteration", batch.Iteration).Int("want_iteration", k+1).Msg("reconcile: out-of-order batch")
			return Result{}, err
		}
		if batch.Iteration > maxIter {
			err := newError(KindMethodLimitExceeded, nil)
			log.Error().Int("iteration", batch.Iteration).Int("max_iterations", maxIter).Msg("reconcile: method limit exceeded")
			return Result{}, err
		}

		if err := bIBLT.ExtendTo(batch.Iteration); err != nil {
			err := translateIBLTError(err)
			log.Error().Err(err).Int("iteration", batch.Iteration).Msg("reconcile: extend_to failed")
			return Result{}, err
		}
		aCells = append(aCells, batch.Cells...)

		diffCells, err := diff.Compute(aCells, bIBLT.Digest(batch.Iteration))
		if err != nil {
			err := newError(KindProtocolViolation, err)
			log.Error().Err(err).Msg("reconcile: diff compute failed")
			return Result{}, err
		}

		k = batch.Iteration
		log.Debug().Int("iteration", k).Int("cells", len(diffCells)).Msg("reconcile: extended and differenced")

		if shortCircuitSkipsPeel(gen, diffCells, k) {
			log.Debug().Int("iteration", k).Msg("reconcile: short-circuiting peel, free zone not yet reached")
			if err := recv.SendAck(ctx, ContinueByte); err != nil {
				return Result{}, err
			}
			continue
		}

		outcome, err := decode.Peel(diffCells, gen, hasher, checksummed, k)
		if err != nil {
			err := newError(KindProtocolViolation, err)
			log.Error().Err(err).Int("iteration", k).Msg("reconcile: peel failed")
			return Result{}, err
		}

		if outcome.Success {
			log.Info().Int("iteration", k).Int("recovered", len(outcome.Symbols)).Msg("reconcile: decode succeeded")
			if err := recv.SendAck(ctx, StopByte); err != nil {
				return Result{}, err
			}
			return Result{Symbols: outcome.Symbols, Iterations: k}, nil
		}

		log.Warn().Int("iteration", k).Float64("progress_fraction", outcome.ProgressFraction).
			Msg("reconcile: decode incomplete, requesting next batch")
		if err := recv.SendAck(ctx, ContinueByte); err != nil {
			return Result{}, err
		}
	}
}

// ReconcileA runs the sender side: emit successively larger batches
// until B signals STOP.
func ReconcileA(ctx context.Context, cfg *config.Config, aSet []cell.Symbol, send Sender, opts ...Option) error {
	s := newSettings(opts)
	log := s.log

	gen := cfg.NewGenerator()
	hasher := cell.NewHasher(cfg.HashVariant)
	checksummed := checksummedFor(cfg)
	maxIter := cfg.EffectiveMaxIterations(gen)

	aIBLT := iblt.New(gen, hasher, checksummed, 0)
	for _, sym := range aSet {
		aIBLT.Add(sym)
	}

	iteration := 0
	for {
		iteration++
		if iteration > maxIter {
			err := newError(KindMethodLimitExceeded, nil)
			log.Error().Int("iteration", iteration).Int("max_iterations", maxIter).Msg("reconcile: sender hit method limit")
			return err
		}

		if err := aIBLT.ExtendTo(iteration); err != nil {
			err := translateIBLTError(err)
			log.Error().Err(err).Int("iteration", iteration).Msg("reconcile: sender extend_to failed")
			return err
		}

		offset := mapping.TotalRows(gen, iteration-1)
		full := aIBLT.Cells(iteration)
		incremental := append([]cell.Cell(nil), full[offset:]...)

		log.Debug().Int("iteration", iteration).Int("rows", len(incremental)).Msg("reconcile: sending batch")
		if err := send.SendBatch(ctx, Batch{Iteration: iteration, Cells: incremental}); err != nil {
			log.Error().Err(err).Int("iteration", iteration).Msg("reconcile: send batch failed")
			return err
		}

		ack, err := send.RecvAck(ctx)
		if err != nil {
			log.Error().Err(err).Msg("reconcile: recv ack failed")
			return err
		}
		if ack == StopByte {
			log.Info().Int("iterations", iteration).Msg("reconcile: sender stopped")
			return nil
		}
	}
}

// shortCircuitSkipsPeel implements spec §4.6 step d: when the
// generator reports a known, not-yet-met deterministic decodability
// bound and the estimated |Δ| exceeds it, skip the (expensive) peel
// attempt this round — its success is not guaranteed — and request the
// next batch directly. This
// generalizes the spec's EGH-specific free-zone check to any method
// reporting a deterministic (non-probabilistic) guarantee.
func shortCircuitSkipsPeel(gen mapping.Generator, diffCells []cell.Cell, k int) bool {
	guarantee := gen.Decodability(k)
	if guarantee.MaxDelta == nil || guarantee.HighProbability {
		return false
	}
	estimated := estimateDelta(diffCells, gen, k)
	return estimated > *guarantee.MaxDelta
}

// estimateDelta approximates |Δ| from a diff digest as Σ|counter| over
// the expected replication factor, the same estimator spec §4.5 uses
// for the progress fraction.
func estimateDelta(diffCells []cell.Cell, gen mapping.Generator, k int) int {
	var sum int64
	for _, c := range diffCells {
		if c.Counter < 0 {
			sum -= c.Counter
		} else {
			sum += c.Counter
		}
	}
	expected := gen.ExpectedRowsPerSymbol(k)
	if expected <= 0 {
		return 0
	}
	return int(float64(sum) / expected)
}

// BidirectionalResult holds the outcome of running the one-directional
// driver in each direction. Each Result carries the signed Δ decoded by
// that session's receiver; signs are relative to the session's roles
// (decode.SignInB marks the receiver's exclusive elements, decode.SignInA
// the sender's).
type BidirectionalResult struct {
	// BOnlyFromA is the session with B as receiver and A as sender:
	// SignInB marks B's exclusive elements, SignInA marks A's.
	BOnlyFromA Result
	// AOnlyFromB is the mirrored session with A as receiver and B as
	// sender: SignInB marks A's exclusive elements, SignInA marks B's.
	AOnlyFromB Result
}

// RunBidirectional implements spec §4.6's "the same driver runs on A
// in mirror for the other direction", supplementing the
// original_source/IBLT.py TODO ("later - should calc symmetric
// difference by doing what I did above also with the receiver"): it
// runs the one-directional protocol twice, once with each peer acting
// as receiver, over two independent transport pairs, so each side
// decodes Δ itself without an out-of-band step.
func RunBidirectional(ctx context.Context, cfg *config.Config, aSet, bSet []cell.Symbol, opts ...Option) (BidirectionalResult, error) {
	sendAB, recvAB := NewChanPair()
	sendBA, recvBA := NewChanPair()

	type outcome struct {
		result Result
		err    error
	}

	forward := make(chan outcome, 1)
	reverse := make(chan outcome, 1)
	sendErrs := make(chan error, 2)

	go func() {
		sendErrs <- ReconcileA(ctx, cfg, aSet, sendAB, opts...)
	}()
	go func() {
		r, err := ReconcileB(ctx, cfg, bSet, recvAB, opts...)
		forward <- outcome{r, err}
	}()

	go func() {
		sendErrs <- ReconcileA(ctx, cfg, bSet, sendBA, opts...)
	}()
	go func() {
		r, err := ReconcileB(ctx, cfg, aSet, recvBA, opts...)
		reverse <- outcome{r, err}
	}()

	fwd := <-forward
	rev := <-reverse
	for i := 0; i < 2; i++ {
		if err := <-sendErrs; err != nil {
			return BidirectionalResult{}, err
		}
	}
	if fwd.err != nil {
		return BidirectionalResult{}, fwd.err
	}
	if rev.err != nil {
		return BidirectionalResult{}, rev.err
	}

	return BidirectionalResult{BOnlyFromA: fwd.result, AOnlyFromB: rev.result}, nil
}

func translateIBLTError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, iblt.ErrMethodLimitExceeded) {
		return newError(KindMethodLimitExceeded, err)
	}
	return newError(KindResourceExhaustion, err)
}
