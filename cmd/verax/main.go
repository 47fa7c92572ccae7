package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/verax-verifier/verax/pkg/metrics"
	"github.com/verax-verifier/verax/pkg/verifier/engine"
	"github.com/verax-verifier/verax/pkg/verifier/heap"
	"github.com/verax-verifier/verax/pkg/verifier/prover"
	"github.com/verax-verifier/verax/pkg/verifier/state"
	"github.com/verax-verifier/verax/pkg/verifier/term"
)

const defaultQueryTimeout = time.Second

var (
	debug = pflag.Bool(
		"debug", false, "use debug log level")

	queryTimeout = pflag.Duration(
		"query-timeout", defaultQueryTimeout, "time budget for a single prover feasibility query")

	metricsAddr = pflag.String(
		"metrics-addr", "", "address to serve prometheus metrics on, set to \"\" to disable")

	retry = pflag.Bool(
		"retry", false, "mark the run as a retry, enabling speculative heap compression")
)

func init() {
	metrics.RegisterEngine()
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	pflag.Parse()

	logger := logrus.New()
	if *debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.WithError(err).Warn("metrics listener stopped")
			}
		}()
	}

	session := prover.New(logger, prover.WithQueryTimeout(*queryTimeout))
	brancher := engine.NewBrancher(session, logger,
		engine.WithCompressor(engine.CompressorFunc(func(s *state.State, _ *state.PathContext) {
			heap.Compact(s.Heap)
		})),
	)
	joiner := engine.NewJoiner(brancher, nil, logger)

	result, err := verifyDemonstration(ctx, brancher, joiner, *retry)
	if err != nil {
		logger.WithError(err).Fatal("verification aborted by structural violation")
	}

	stats := brancher.Statistics()
	proverStats := session.Statistics()
	logger.WithFields(logrus.Fields{
		"result":       result.String(),
		"branches":     stats.Branches,
		"bifurcations": stats.Bifurcations,
		"queries":      proverStats.Queries,
		"timeouts":     proverStats.Timeouts,
	}).Info("verification finished")

	if result.IsFailure() {
		os.Exit(1)
	}
}

// verifyDemonstration runs a small built-in obligation: a conditional
// sub-expression is elaborated per branch, joined into a single value and a
// single fact set, and the surrounding computation then relies on a fact
// both branches established. The final branch point is pruned through the
// join's synthesized conditional fact.
func verifyDemonstration(ctx context.Context, brancher *engine.Brancher, joiner *engine.Joiner, retrying bool) (engine.Result, error) {
	owner := term.Var("owner", term.Bool)
	balance := term.Var("balance", term.Int)
	settled := term.Var("settled", term.Bool)

	s := state.New(heap.New(
		&heap.Chunk{
			Resource: "account",
			Args:     []term.Term{term.Var("a", term.Int)},
			Snap:     balance,
			Perm:     term.Integer(1),
		},
	))
	pc := state.NewPathContext()
	pc.Retrying = retrying

	session := brancher.Prover()
	session.Assume(term.AtMost(term.Integer(0), balance))
	defer brancher.Reset()

	return joiner.BranchAndJoin(ctx, s, owner, pc,
		func(pc *state.PathContext, complete engine.Completion) (engine.Result, error) {
			session.Assume(settled)
			return complete(balance, pc.WithBinding("limit", term.Integer(100)))
		},
		func(pc *state.PathContext, complete engine.Completion) (engine.Result, error) {
			session.Assume(settled)
			return complete(term.Integer(0), pc.WithBinding("limit", term.Integer(100)))
		},
		func(trueTerm, falseTerm term.Term, merged *state.PathContext) (engine.Result, error) {
			// Both branches settled the account, so the unsettled side
			// below is infeasible and gets pruned.
			return brancher.Branch(ctx, s, []term.Term{term.Not(settled)}, merged,
				func(pc *state.PathContext) (engine.Result, error) {
					return engine.Failure(fmt.Errorf("account left unsettled on path %v", pc.BranchConditions())), nil
				},
				func(pc *state.PathContext) (engine.Result, error) {
					return engine.Success(), nil
				},
			)
		},
	)
}
