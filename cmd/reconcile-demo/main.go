// Command reconcile-demo runs one in-process reconciliation between
// two parties over the channel transport, to illustrate wiring the
// cell/mapping/iblt/diff/decode/reconcile packages together. It is not
// a production CLI: no persistence, no network, no plotting.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/toto9820/rateless-reconcile/cell"
	"github.com/toto9820/rateless-reconcile/config"
	"github.com/toto9820/rateless-reconcile/mapping"
	"github.com/toto9820/rateless-reconcile/reconcile"
	"github.com/toto9820/rateless-reconcile/telemetry"
)

func main() {
	var (
		n        = flag.Int("n", 1000, "universe size")
		delta    = flag.Int("delta", 3, "number of symbols B holds that A does not")
		method   = flag.String("method", "egh", "mapping method: egh|hamming|ols|bch|idm")
		superset = flag.Bool("superset", true, "assert the superset assumption (B ⊇ A)")
		seed     = flag.Int64("seed", 1, "PRNG seed for set selection")
		verbose  = flag.Bool("v", false, "debug-level logging")
		useCache = flag.Bool("cache", false, "memoize mapping rows across this process's reconciliations")
	)
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := telemetry.NewLogger(os.Stderr, level)

	m, err := parseMethod(*method)
	if err != nil {
		log.Error().Err(err).Msg("invalid method")
		os.Exit(1)
	}

	bSet, aSet := splitUniverse(*n, *delta, *seed)
	log.Info().Int("n", *n).Int("delta", *delta).Str("method", *method).
		Bool("superset", *superset).Msg("starting reconciliation")

	cfgOpts := []config.Option{config.WithMethod(m), config.WithSupersetAssumption(*superset)}
	if *useCache {
		cfgOpts = append(cfgOpts, config.WithRowCache(mapping.NewCache(0)))
	}
	cfg := config.New(*n, cfgOpts...)
	send, recv := reconcile.NewChanPair()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- reconcile.ReconcileA(ctx, cfg, aSet, send, reconcile.WithLogger(log))
	}()

	result, err := reconcile.ReconcileB(ctx, cfg, bSet, recv, reconcile.WithLogger(log))
	if err != nil {
		log.Error().Err(err).Msg("reconciliation failed")
		os.Exit(1)
	}
	if err := <-errCh; err != nil {
		log.Error().Err(err).Msg("sender failed")
		os.Exit(1)
	}

	log.Info().Int("iterations", result.Iterations).Int("recovered", len(result.Symbols)).
		Msg("reconciliation complete")

	for _, s := range result.Symbols {
		owner := "B"
		if s.Sign < 0 {
			owner = "A"
		}
		fmt.Printf("symbol=%d owner=%s\n", s.Symbol, owner)
	}
}

func parseMethod(s string) (mapping.Method, error) {
	switch s {
	case "egh":
		return mapping.EGH, nil
	case "hamming":
		return mapping.ExtendedHamming, nil
	case "ols":
		return mapping.OLS, nil
	case "bch":
		return mapping.BCH, nil
	case "idm":
		return mapping.IDM, nil
	default:
		return 0, fmt.Errorf("unknown method %q", s)
	}
}

// splitUniverse builds B as the full universe [1,n] and A as B with
// delta randomly chosen symbols removed, so A ⊆ B (the superset
// assumption's shape) and Δ = those delta symbols, all owned by B.
func splitUniverse(n, delta int, seed int64) (bSet, aSet []cell.Symbol) {
	bSet = make([]cell.Symbol, n)
	for i := 0; i < n; i++ {
		bSet[i] = cell.Symbol(i + 1)
	}

	r := rand.New(rand.NewSource(seed))
	excluded := make(map[cell.Symbol]struct{}, delta)
	for len(excluded) < delta && len(excluded) < n {
		excluded[cell.Symbol(r.Intn(n)+1)] = struct{}{}
	}

	aSet = make([]cell.Symbol, 0, n-len(excluded))
	for _, s := range bSet {
		if _, skip := excluded[s]; !skip {
			aSet = append(aSet, s)
		}
	}
	return bSet, aSet
}
