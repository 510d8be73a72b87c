package search

import (
	"context"
	"fmt"
	"time"

	"github.com/lavantien/caroengine/pkg/board"
	"github.com/lavantien/caroengine/pkg/eval"
	"github.com/lavantien/caroengine/pkg/vcf"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/contextx"
)

// aspirationDelta is the initial half-width of the aspiration window,
// per the widening-then-full-window schedule this engine commits to.
const aspirationDelta = eval.Score(30)

// PV represents the principal variation found at some completed
// search depth, mirroring the teacher's search.PV.
type PV struct {
	Moves []board.Position
	Score eval.Score
	Nodes uint64
	Depth int
	Time  time.Duration
}

func (p PV) String() string {
	return fmt.Sprintf("depth=%v score=%v nodes=%v time=%v pv=%v", p.Depth, p.Score, p.Nodes, p.Time, p.Moves)
}

// Options hold the per-call search limits.
type Options struct {
	MaxDepth     int // 0 == no limit
	SoftDeadline time.Time
	HardDeadline time.Time

	// OnDepth, if set, is invoked after every completed depth with the
	// PV found so far. Used by the parallel pool to publish incremental
	// updates toward the shared best-root record without needing a
	// separate merge phase.
	OnDepth func(PV)
}

func (o Options) deadlinePassed(soft bool) bool {
	d := o.HardDeadline
	if soft {
		d = o.SoftDeadline
	}
	return !d.IsZero() && time.Now().After(d)
}

// RunIterative runs iterative deepening alpha-beta over b, returning
// the best principal variation found before MaxDepth, a deadline, or
// cancellation stops it. Grounded on the teacher's Iterative harness
// (pkg/search/iterative.go), collapsed from a channel-based async
// handle into a synchronous call since this engine's parallel pool
// (see pkg/parallel) is the layer that owns concurrency, not each
// individual worker's depth loop.
func RunIterative(ctx context.Context, b board.Board, toMove board.Player, sctx *Context, opt Options) PV {
	var best PV

	if sctx.VCFPreCheckEnabled {
		if result := vcf.Solve(b, toMove, vcf.Options{MaxNodes: sctx.VCFBudgetNodes}); result.Outcome == vcf.Win {
			logw.Infof(ctx, "VCF pre-check found a forced win: %v", result.Move)
			win := PV{
				Moves: []board.Position{result.Move},
				Score: eval.Won(len(result.PV)),
				Depth: len(result.PV),
			}
			if opt.OnDepth != nil {
				opt.OnDepth(win)
			}
			return win
		}
	}

	ab := AlphaBeta{Ctx: sctx}

	prevScore := eval.ZeroScore
	for depth := 1; opt.MaxDepth == 0 || depth <= opt.MaxDepth; depth++ {
		if contextx.IsCancelled(ctx) || sctx.Stop.Load() {
			break
		}
		if best.Depth > 0 && opt.deadlinePassed(true) {
			break
		}

		start := time.Now()
		score, pv, ok := searchDepth(ab, b, toMove, depth, prevScore, sctx)
		if !ok {
			break // cancelled mid-depth: keep the last completed result
		}

		best = PV{
			Moves: pv,
			Score: score,
			Nodes: sctx.Nodes.Load(),
			Depth: depth,
			Time:  time.Since(start),
		}
		logw.Debugf(ctx, "Searched depth=%v: %v", depth, best)
		if opt.OnDepth != nil {
			opt.OnDepth(best)
		}

		prevScore = score
		if score.IsMate() {
			break // proven forced result: deepening further cannot improve it
		}
		if opt.deadlinePassed(false) {
			break
		}
	}
	return best
}

// searchDepth runs one depth with an aspiration window when enabled,
// widening on fail-high/fail-low up to twice before falling back to a
// full window, per this engine's widening-schedule decision.
func searchDepth(ab AlphaBeta, b board.Board, toMove board.Player, depth int, prevScore eval.Score, sctx *Context) (eval.Score, []board.Position, bool) {
	if !sctx.UseAspiration || depth < 4 {
		score, pv := ab.Search(b, toMove, depth, eval.NegInfScore, eval.InfScore)
		return score, pv, !score.IsInvalid()
	}

	delta := aspirationDelta
	alpha, beta := prevScore-delta, prevScore+delta

	for attempt := 0; attempt < 3; attempt++ {
		score, pv := ab.Search(b, toMove, depth, alpha, beta)
		if score.IsInvalid() {
			return score, pv, false
		}
		if score > alpha && score < beta {
			return score, pv, true
		}
		delta *= 2
		if score <= alpha {
			alpha = prevScore - delta
		}
		if score >= beta {
			beta = prevScore + delta
		}
	}

	score, pv := ab.Search(b, toMove, depth, eval.NegInfScore, eval.InfScore)
	return score, pv, !score.IsInvalid()
}
