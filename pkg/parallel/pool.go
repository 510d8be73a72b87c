// Package parallel implements Lazy-SMP search: a pool of workers that
// each run an independent instance of the sequential search over one
// shared transposition table, converging on a best root move via a
// shared, mutex-guarded best-root record rather than explicit tree
// division.
// Grounded on the teacher's own concurrency idioms: launcher.go's
// goroutine-per-search-plus-bounded-join shape and transposition.go's
// compare-and-swap retry loop, generalized from "one search, one
// cancel" to "N searches, one shared stop flag and best-root record."
package parallel

import (
	"context"
	"time"

	"github.com/lavantien/caroengine/pkg/board"
	"github.com/lavantien/caroengine/pkg/eval"
	"github.com/lavantien/caroengine/pkg/search"
	"github.com/seekerror/logw"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

// JoinTimeout bounds how long Search waits for workers to notice the
// stop flag and return, per this engine's "abandon slow workers"
// cancellation contract.
const JoinTimeout = 500 * time.Millisecond

// Pool runs Lazy-SMP search: Threads workers share TT and Eval; every
// worker after the first adds its own move-ordering jitter.
type Pool struct {
	TT      search.TranspositionTable
	Eval    eval.Evaluator
	Threads int
}

// Search runs the pool against b, returning the authoritative best
// root result once every worker has returned or JoinTimeout elapses,
// whichever comes first. The returned moves are the table's principal
// variation when it starts with the best-root move, else just that move.
func (p Pool) Search(ctx context.Context, b board.Board, toMove board.Player, opt search.Options) search.PV {
	threads := p.Threads
	if threads <= 0 {
		threads = 1
	}

	generation := p.TT.NewGeneration()
	best := newBestRoot()
	stop := atomic.NewBool(false)

	joinCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(joinCtx)
	for i := 0; i < threads; i++ {
		i := i
		g.Go(func() error {
			sctx := search.NewContext(p.TT, jitteredEval(p.Eval, i))
			sctx.Stop = stop
			sctx.Generation = generation

			workerOpt := opt
			workerOpt.OnDepth = func(pv search.PV) {
				best.update(pv)
			}
			search.RunIterative(gctx, b, toMove, sctx, workerOpt)
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	// Wait for the workers to finish on their own (depth limit reached,
	// or they observe opt's own soft/hard deadlines) or for this call's
	// hard deadline/context to expire. JoinTimeout is not raced here: per
	// §4.H it bounds only the join *after* stop has been requested, not
	// the overall search, so a multi-second time-manager allocation is
	// never truncated to 500ms.
	select {
	case <-done:
	case <-hardDeadlineChan(opt.HardDeadline):
		stop.Store(true)
		logw.Infof(ctx, "parallel search: hard deadline reached, requesting stop")
	case <-ctx.Done():
		stop.Store(true)
	}

	select {
	case <-done:
	case <-time.After(JoinTimeout):
		logw.Infof(ctx, "parallel search: abandoning workers after join timeout")
	}

	pv, score, depth := best.snapshot()
	moves := search.ReconstructPV(p.TT, b, toMove)
	if len(moves) == 0 || (len(pv) > 0 && !moves[0].Equals(pv[0])) {
		moves = pv
	}
	return search.PV{Moves: moves, Score: score, Depth: depth}
}

// hardDeadlineChan returns a channel that fires once at deadline, or a
// nil channel (blocks forever) if deadline is zero, i.e. no hard
// deadline was requested for this call.
func hardDeadlineChan(deadline time.Time) <-chan time.Time {
	if deadline.IsZero() {
		return nil
	}
	d := time.Until(deadline)
	if d <= 0 {
		fired := make(chan time.Time, 1)
		fired <- time.Now()
		return fired
	}
	return time.After(d)
}

// jitteredEval gives each worker thread after the first its own Noise
// instance (wrapping base) seeded by thread index, so workers diverge in
// move ordering even when every other input is identical, per the
// Lazy-SMP "per-thread ordering jitter" requirement. Thread 0 uses base
// unchanged.
func jitteredEval(base eval.Evaluator, thread int) eval.Evaluator {
	if thread == 0 {
		return base
	}
	return eval.NewNoise(base, 15, int64(thread)*104729+1)
}
