package search

import (
	"github.com/lavantien/caroengine/pkg/board"
	"github.com/lavantien/caroengine/pkg/eval"
	"github.com/lavantien/caroengine/pkg/threat"
)

// AlphaBeta implements negamax alpha-beta pruning with transposition
// lookups and threat-driven move ordering, grounded on the teacher's
// own AlphaBeta (pkg/search/alphabeta.go) but restructured around
// board.Position placements and eval.Score's mate-distance arithmetic
// instead of chess's PseudoLegalMoves/board.Result model.
//
//	function alphabeta(node, depth, α, β) is
//	    if depth = 0 or node is terminal then return static evaluation
//	    value := −∞
//	    for each child of node do
//	        value := max(value, −alphabeta(child, depth−1, −β, −α))
//	        α := max(α, value)
//	        if α ≥ β then break (cutoff)
//	    return value
type AlphaBeta struct {
	Ctx *Context
}

// Search runs negamax to depth d from b with toMove to play, returning
// the score from toMove's perspective and the principal variation. Nodes
// visited are counted in Ctx.Nodes.
func (ab AlphaBeta) Search(b board.Board, toMove board.Player, depth int, alpha, beta eval.Score) (eval.Score, []board.Position) {
	return ab.search(b, toMove, depth, 0, alpha, beta)
}

func (ab AlphaBeta) search(b board.Board, toMove board.Player, depth, ply int, alpha, beta eval.Score) (eval.Score, []board.Position) {
	ctx := ab.Ctx
	if ctx.Stop.Load() {
		return eval.InvalidScore, nil
	}

	if hasFive(b, toMove.Opponent()) {
		return eval.Lost(ply), nil
	}
	if b.IsFull() {
		return eval.ZeroScore, nil
	}

	var ttMove board.Position = board.Invalid
	if e, ok := ctx.TT.Lookup(b.Hash()); ok {
		ttMove = e.Move
		if e.Depth >= depth {
			switch e.Bound {
			case ExactBound:
				return e.Score, nil
			case LowerBound:
				if e.Score >= beta {
					return e.Score, nil
				}
			case UpperBound:
				if e.Score <= alpha {
					return e.Score, nil
				}
			}
		}
	}

	if depth <= 0 {
		s := ctx.Eval.Evaluate(b, toMove)
		ctx.Nodes.Add(1)
		return s, nil
	}
	ctx.Nodes.Add(1)
	if n := ctx.Nodes.Load(); n%4096 == 0 && ctx.Stop.Load() {
		return eval.InvalidScore, nil
	}

	candidates := Candidates(b, toMove, ttMove, ctx, ply)
	if ply == 0 && ctx.PonderMove.IsValid() {
		candidates = moveToFront(candidates, ctx.PonderMove)
	}

	origAlpha := alpha
	var pv []board.Position
	var bestMove board.Position = board.Invalid
	explored := false

	for _, move := range candidates {
		next, err := b.Place(move, toMove)
		if err != nil {
			continue
		}
		explored = true

		childScore, childPV := ab.search(next, toMove.Opponent(), depth-1, ply+1, beta.Negate(), alpha.Negate())
		if childScore.IsInvalid() {
			return eval.InvalidScore, nil
		}
		score := eval.IncrementMateDistance(childScore).Negate()

		if score > alpha {
			alpha = score
			bestMove = move
			pv = append([]board.Position{move}, childPV...)
		}
		if alpha >= beta {
			ctx.Killers.Update(ply, move)
			ctx.History.Add(move, int64(depth)*int64(depth))
			break
		}
		ctx.Butterfly.Add(move, int64(depth))
	}

	if !explored {
		return eval.ZeroScore, nil
	}

	bound := ExactBound
	switch {
	case alpha <= origAlpha:
		bound = UpperBound
	case alpha >= beta:
		bound = LowerBound
	}
	ctx.TT.Store(b.Hash(), Entry{
		Bound:      bound,
		Depth:      depth,
		Score:      alpha,
		Move:       bestMove,
		Generation: ctx.Generation,
	})

	return alpha, pv
}

func hasFive(b board.Board, p board.Player) bool {
	for _, t := range threat.Detect(b, p) {
		if t.Kind == threat.Five {
			return true
		}
	}
	return false
}

func moveToFront(moves []board.Position, m board.Position) []board.Position {
	for i, x := range moves {
		if x.Equals(m) {
			out := append([]board.Position{m}, moves[:i]...)
			return append(out, moves[i+1:]...)
		}
	}
	return append([]board.Position{m}, moves...)
}
