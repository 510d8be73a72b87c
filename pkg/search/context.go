// Package search implements iterative-deepening alpha-beta search over
// Caro positions: candidate generation, the shared transposition table,
// and the sequential searcher itself. Grounded throughout on the
// teacher's pkg/search (alphabeta.go, exploration.go, transposition.go,
// iterative.go), generalized from chess moves to Caro placements and
// from a single terminal-result type to threat-driven move ordering.
package search

import (
	"github.com/lavantien/caroengine/pkg/board"
	"github.com/lavantien/caroengine/pkg/eval"
	"go.uber.org/atomic"
)

// DefaultRadius is the default neighborhood radius used by the move
// generator's final, history-ordered candidate tier.
const DefaultRadius = 2

// Context carries the per-search (not per-node) state a running
// negamax walk needs: the shared table, the evaluator, ordering
// heuristics, and cancellation. Window bounds are not stored here; they
// are passed as parameters at each recursive call. One Context is built
// per root search; the heuristic tables are shared pointers since they
// accumulate across the whole tree.
type Context struct {
	TT     TranspositionTable
	Eval   eval.Evaluator
	Stop   *atomic.Bool
	Nodes  *atomic.Uint64
	Radius int

	Killers   *KillerTable
	History   *HistoryTable
	Butterfly *HistoryTable

	Generation uint8

	UseAspiration       bool
	UseNullMoveOrdering bool
	VCFPreCheckEnabled  bool
	VCFBudgetNodes      uint64

	// PonderMove, if valid, forces the first explored move at
	// the root to this predicted move regardless of ordering, mirroring
	// the teacher's ponder-move override in its own alpha-beta runner.
	PonderMove board.Position
}

// NewContext builds a Context with fresh ordering tables, suitable for
// one root search. Heuristic tables are reset per search per the
// reproducibility decision recorded for this engine (history/butterfly
// do not persist across moves).
func NewContext(tt TranspositionTable, evaluator eval.Evaluator) *Context {
	return &Context{
		TT:                  tt,
		Eval:                evaluator,
		Stop:                atomic.NewBool(false),
		Nodes:               atomic.NewUint64(0),
		Radius:              DefaultRadius,
		PonderMove:          board.Invalid,
		Killers:             NewKillerTable(),
		History:             NewHistoryTable(),
		Butterfly:           NewHistoryTable(),
		UseAspiration:       true,
		UseNullMoveOrdering: true,
		VCFPreCheckEnabled:  true,
		VCFBudgetNodes:      20_000,
	}
}

// KillerTable stores up to two killer moves per ply.
type KillerTable struct {
	slots [][2]board.Position
}

func NewKillerTable() *KillerTable {
	return &KillerTable{}
}

// At returns the two killer-move slots for ply, invalid positions if unset.
func (k *KillerTable) At(ply int) [2]board.Position {
	if ply >= len(k.slots) {
		return [2]board.Position{board.Invalid, board.Invalid}
	}
	return k.slots[ply]
}

// Update installs move as the newest killer at ply, shifting the old
// killer down, per the teacher's "shift old killer down, install new"
// beta-cutoff bookkeeping.
func (k *KillerTable) Update(ply int, move board.Position) {
	for len(k.slots) <= ply {
		k.slots = append(k.slots, [2]board.Position{board.Invalid, board.Invalid})
	}
	cur := k.slots[ply]
	if cur[0].Equals(move) {
		return
	}
	k.slots[ply] = [2]board.Position{move, cur[0]}
}

// HistoryTable accumulates a per-move weight, used for both the
// history heuristic (cutoff weight) and the butterfly heuristic
// (considered-but-not-cut weight).
type HistoryTable struct {
	scores map[board.Position]int64
}

func NewHistoryTable() *HistoryTable {
	return &HistoryTable{scores: make(map[board.Position]int64)}
}

func (h *HistoryTable) Add(move board.Position, delta int64) {
	h.scores[move] += delta
}

func (h *HistoryTable) Score(move board.Position) int64 {
	return h.scores[move]
}
