package eval

import (
	"math/rand"

	"github.com/lavantien/caroengine/pkg/board"
)

// Noise wraps an Evaluator and adds small uniform jitter to its score,
// so that otherwise-tied lines are broken differently across runs or
// threads instead of always favoring whichever move sorts first. Not
// safe for concurrent use by multiple goroutines; each search worker
// should own its own Noise instance.
type Noise struct {
	Eval Evaluator
	Amp  int32
	rnd  *rand.Rand
}

// NewNoise builds a Noise evaluator with the given amplitude (the
// maximum absolute jitter added to each score) and seed.
func NewNoise(e Evaluator, amp int32, seed int64) *Noise {
	return &Noise{Eval: e, Amp: amp, rnd: rand.New(rand.NewSource(seed))}
}

func (n *Noise) Evaluate(b board.Board, toMove board.Player) Score {
	s := n.Eval.Evaluate(b, toMove)
	if s.IsMate() || s.IsInvalid() || n.Amp <= 0 {
		return s
	}
	jitter := n.rnd.Int31n(2*n.Amp+1) - n.Amp
	return HeuristicScore(int32(s) + jitter)
}
