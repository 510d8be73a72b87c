package parallel

import (
	"sync"

	"github.com/lavantien/caroengine/pkg/board"
	"github.com/lavantien/caroengine/pkg/eval"
	"github.com/lavantien/caroengine/pkg/search"
)

// bestRoot is the shared record workers race to update: monotone on
// (depth, score) per the Lazy-SMP voting contract. Realized as a
// mutex-guarded struct rather than a packed-word CAS loop -- the
// "short critical section" alternative this engine's concurrency model
// explicitly allows alongside true lock-free word tricks, since the
// record's fields (a move, a score, a depth) do not fit one
// lock-free-friendly machine word the way the TT's entry does.
type bestRoot struct {
	mu    sync.Mutex
	move  board.Position
	score eval.Score
	depth int
}

func newBestRoot() *bestRoot {
	return &bestRoot{move: board.Invalid}
}

// update publishes pv as the new best root result iff (pv.Depth,
// pv.Score) is lexicographically > the currently published result,
// matching the worker-finishing-depth-d CAS rule: "succeeds only if
// d > best_depth, or d == best_depth and score > best_score."
func (b *bestRoot) update(pv search.PV) {
	if len(pv.Moves) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if pv.Depth > b.depth || (pv.Depth == b.depth && pv.Score > b.score) {
		b.depth = pv.Depth
		b.score = pv.Score
		b.move = pv.Moves[0]
	}
}

func (b *bestRoot) snapshot() ([]board.Position, eval.Score, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.move.IsValid() {
		return nil, eval.ZeroScore, 0
	}
	return []board.Position{b.move}, b.score, b.depth
}
