// Package vcf implements Victory-by-Continuous-Fours search: a
// depth-first proof-number search restricted to forcing moves (threats
// of type four or stronger), used as a pre-check ahead of the main
// alpha-beta search. This
// has no direct teacher analogue — the chess engine this repo grows
// from has no forcing-move subgraph concept — so its bounded-recursion
// shape is grounded on the teacher's quiescence.go (a depth-limited,
// capture-only recursive search restricted to a move subset), adapted
// from "captures only" to "four-threats only" and from plain minimax to
// explicit AND/OR proof-number bookkeeping.
package vcf

import (
	"github.com/lavantien/caroengine/pkg/board"
	"github.com/lavantien/caroengine/pkg/threat"
)

// Outcome is the result of a VCF solve attempt.
type Outcome uint8

const (
	Unknown Outcome = iota
	Win
	Loss
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "Win"
	case Loss:
		return "Loss"
	default:
		return "Unknown"
	}
}

// Result reports the solver's verdict. On Win, Move is the first move
// of the shortest proven forcing sequence and PV is the full sequence
// of attacker moves (the defender's forced replies are implied, not
// listed).
type Result struct {
	Outcome Outcome
	Move    board.Position
	PV      []board.Position
}

// Options bounds a solve attempt.
type Options struct {
	MaxDepth int // forcing plies from the attacker, 0 == default
	MaxNodes uint64
}

const defaultMaxDepth = 12

// Solve attempts to prove a forced win for attacker via continuous
// fours. Idempotent: identical (b, attacker, opt) always returns the
// identical Result.
func Solve(b board.Board, attacker board.Player, opt Options) Result {
	if opt.MaxDepth <= 0 {
		opt.MaxDepth = defaultMaxDepth
	}
	if opt.MaxNodes == 0 {
		opt.MaxNodes = 50_000
	}

	s := &solver{
		attacker: attacker,
		maxNodes: opt.MaxNodes,
	}

	// Deepen one ply at a time, so the first proof found is a shortest one.
	for depth := 1; depth <= opt.MaxDepth && s.nodes <= s.maxNodes; depth++ {
		s.tt = make(map[key]bool)
		if ok, pv := s.solveOR(b, depth); ok && len(pv) > 0 {
			return Result{Outcome: Win, Move: pv[0], PV: pv}
		}
	}
	return Result{Outcome: Unknown}
}

type key struct {
	hash   board.Hash
	toMove board.Player
}

type solver struct {
	attacker board.Player
	nodes    uint64
	maxNodes uint64
	tt       map[key]bool
}

func (s *solver) budgetExceeded() bool {
	s.nodes++
	return s.nodes > s.maxNodes
}

// solveOR explores the attacker's forcing-move choices: proof = min
// over children (any one forcing line that wins suffices).
func (s *solver) solveOR(b board.Board, depth int) (bool, []board.Position) {
	if depth <= 0 || s.budgetExceeded() {
		return false, nil
	}
	k := key{hash: b.Hash(), toMove: s.attacker}
	if v, ok := s.tt[k]; ok {
		if !v {
			return false, nil
		}
		// A cached true result without a stored PV is only used to
		// avoid re-exploring a proven subgraph's existence; callers at
		// the root always get a freshly walked PV via the outer call.
	}

	for _, m := range forcingMoves(b, s.attacker) {
		next, err := b.Place(m, s.attacker)
		if err != nil {
			continue
		}
		if hasFive(next, s.attacker) {
			s.tt[k] = true
			return true, []board.Position{m}
		}
		if ok, rest := s.solveAND(next, depth-1); ok {
			s.tt[k] = true
			return true, append([]board.Position{m}, rest...)
		}
	}
	s.tt[k] = false
	return false, nil
}

// solveAND explores every reply the defender has to the four-threat the
// attacker just created: proof = sum over children, i.e. the attacker
// only wins if every defensive reply still loses. An open four (two
// gain squares) cannot be fully blocked by one move, so it is an
// immediate proof.
func (s *solver) solveAND(b board.Board, depth int) (bool, []board.Position) {
	if depth <= 0 || s.budgetExceeded() {
		return false, nil
	}

	gains := fourGainSquares(b, s.attacker)
	if len(gains) == 0 {
		return false, nil // the move played did not actually create a four
	}
	if len(gains) >= 2 {
		return true, nil // defender cannot block every gain square
	}

	defender := s.attacker.Opponent()
	blocked, err := b.Place(gains[0], defender)
	if err != nil {
		return false, nil
	}
	if hasFive(blocked, defender) {
		return false, nil // the forced block itself completes a defender five
	}
	return s.solveOR(blocked, depth-1)
}

func hasFive(b board.Board, p board.Player) bool {
	for _, t := range threat.Detect(b, p) {
		if t.Kind == threat.Five {
			return true
		}
	}
	return false
}

func fourGainSquares(b board.Board, attacker board.Player) []board.Position {
	var gains []board.Position
	for _, t := range threat.Detect(b, attacker) {
		if t.Kind == threat.StraightFour || t.Kind == threat.BrokenFour {
			gains = append(gains, t.Gain...)
		}
	}
	return dedup(gains)
}

func dedup(ps []board.Position) []board.Position {
	var out []board.Position
	for _, p := range ps {
		found := false
		for _, q := range out {
			if p.Equals(q) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, p)
		}
	}
	return out
}

// forcingMoves returns the empty cells near existing stones that, if
// played by attacker, create a five or a new four-threat. Five-
// completing moves are ordered first so solveOR finds the shortest
// sequence preferentially.
func forcingMoves(b board.Board, attacker board.Player) []board.Position {
	var wins, fours []board.Position
	occupied := b.Occupied()
	for _, p := range board.Neighborhood(occupied, 2) {
		if b.Cell(p) != board.None {
			continue
		}
		next, err := b.Place(p, attacker)
		if err != nil {
			continue
		}
		if hasFive(next, attacker) {
			wins = append(wins, p)
			continue
		}
		for _, t := range threat.Detect(next, attacker) {
			if t.Kind == threat.StraightFour || t.Kind == threat.BrokenFour {
				fours = append(fours, p)
				break
			}
		}
	}
	return append(wins, fours...)
}
