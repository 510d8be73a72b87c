package eval

import (
	"github.com/lavantien/caroengine/pkg/board"
	"github.com/lavantien/caroengine/pkg/threat"
)

// Evaluator assigns a heuristic Score to a position from the
// perspective of the side to move. Implementations must be fast: they
// run at every leaf of the search tree.
type Evaluator interface {
	Evaluate(b board.Board, toMove board.Player) Score
}

// Weights maps each threat.Kind to its nominal contribution to a
// position's static score, the same "sum of nominal values" idiom the
// teacher chess engine uses for material counting, generalized here to
// line-threat counting instead of piece counting.
type Weights map[threat.Kind]int32

// DefaultWeights favors forcing shapes heavily: each four weighs more
// than ten threes, and each three more than ten twos. A Five has no
// weight here.
var DefaultWeights = Weights{
	threat.StraightFour: 5000,
	threat.BrokenFour:    4000,
	threat.StraightThree: 400,
	threat.BrokenThree:   250,
	threat.StraightTwo:   20,
	threat.BrokenTwo:     10,
}

// Threat is a threat-count evaluator: it detects every threat for the
// side to move and its opponent and scores the position as the weighted
// difference, the Caro analogue of the teacher's Material evaluator.
type Threat struct {
	Weights Weights
}

// NewThreat builds a Threat evaluator with DefaultWeights.
func NewThreat() Threat {
	return Threat{Weights: DefaultWeights}
}

func (e Threat) Evaluate(b board.Board, toMove board.Player) Score {
	w := e.Weights
	if w == nil {
		w = DefaultWeights
	}

	own := sumWeighted(threat.Detect(b, toMove), w)
	opp := sumWeighted(threat.Detect(b, toMove.Opponent()), w)

	return HeuristicScore(own - opp)
}

func sumWeighted(ts []threat.Threat, w Weights) int32 {
	var total int32
	for _, t := range ts {
		total += w[t.Kind]
	}
	return total
}
