// Package threat implements the Caro line-pattern classifier: a pure
// function over a board and player that enumerates the threats (runs of
// stones and their gain squares) along the four board directions. It has
// no teacher analogue in the chess engine this repo is grown from —
// chess has no concept of a graded "threat" — so it is grounded on the
// teacher's raytracing idiom (board/bitboard.go's per-direction
// scan-with-break for sliding pieces) applied to Caro's four line
// directions, and its ordered-priority idiom (search/exploration.go's
// MovePriority) for Kind ordering.
package threat

import (
	"fmt"

	"github.com/lavantien/caroengine/pkg/board"
)

// Kind is a threat type, ordered from weakest to strongest so that
// Kind comparison (>) is a priority comparison.
type Kind uint8

const (
	None Kind = iota
	BrokenTwo
	StraightTwo
	BrokenThree
	StraightThree
	BrokenFour
	StraightFour
	Five
)

func (k Kind) String() string {
	switch k {
	case Five:
		return "Five"
	case StraightFour:
		return "StraightFour"
	case BrokenFour:
		return "BrokenFour"
	case StraightThree:
		return "StraightThree"
	case BrokenThree:
		return "BrokenThree"
	case StraightTwo:
		return "StraightTwo"
	case BrokenTwo:
		return "BrokenTwo"
	default:
		return "None"
	}
}

// Threat represents one detected pattern: its kind, the stones that form
// it, the empty "gain" squares that would strengthen it, and the line
// direction it runs along.
type Threat struct {
	Kind   Kind
	Player board.Player
	Stones []board.Position
	Gain   []board.Position
	Dir    board.Direction
}

func (t Threat) String() string {
	return fmt.Sprintf("%v{%v, stones=%v, gain=%v, dir=%v}", t.Kind, t.Player, t.Stones, t.Gain, t.Dir)
}

// Detect enumerates all threats for player p on b, across all four
// directions, ordered strongest-first. A Five threat is included iff it
// is an actual win under Caro rules: exactly five contiguous stones, not
// part of a six-or-longer overline, and not blocked by the opponent at
// both ends.
func Detect(b board.Board, p board.Player) []Threat {
	var out []Threat
	for d := board.Direction(0); d < board.NumDirections; d++ {
		for _, line := range lines(d) {
			out = append(out, scanLine(b, p, d, line)...)
		}
	}
	sortByKind(out)
	return out
}

func sortByKind(ts []Threat) {
	// Stable insertion sort: threat counts per line are small, and this
	// keeps discovery order within a Kind stable, the same property
	// sort.SliceStable gives move ordering elsewhere in this engine.
	for i := 1; i < len(ts); i++ {
		for j := i; j > 0 && ts[j].Kind > ts[j-1].Kind; j-- {
			ts[j], ts[j-1] = ts[j-1], ts[j]
		}
	}
}

// lines returns every maximal line of cells (length >= 5) running along d.
func lines(d board.Direction) [][]board.Position {
	const n = board.Size
	var out [][]board.Position

	switch d {
	case board.Horizontal:
		for y := 0; y < n; y++ {
			var line []board.Position
			for x := 0; x < n; x++ {
				line = append(line, board.NewPosition(x, y))
			}
			out = append(out, line)
		}
	case board.Vertical:
		for x := 0; x < n; x++ {
			var line []board.Position
			for y := 0; y < n; y++ {
				line = append(line, board.NewPosition(x, y))
			}
			out = append(out, line)
		}
	case board.DiagUp:
		for c := -(n - 1); c <= n-1; c++ {
			var line []board.Position
			x := 0
			if c < 0 {
				x = -c
			}
			for y := x + c; x < n && y < n; x, y = x+1, y+1 {
				line = append(line, board.NewPosition(x, y))
			}
			if len(line) >= 5 {
				out = append(out, line)
			}
		}
	case board.DiagDown:
		for c := 0; c <= 2*(n-1); c++ {
			var line []board.Position
			x := 0
			if c >= n {
				x = c - (n - 1)
			}
			for y := c - x; x < n && y >= 0; x, y = x+1, y-1 {
				line = append(line, board.NewPosition(x, y))
			}
			if len(line) >= 5 {
				out = append(out, line)
			}
		}
	}

	if d == board.Horizontal || d == board.Vertical {
		// Horizontal/vertical lines are always length Size (>=5 for any
		// sane board), so no length filter needed there.
	}
	return out
}

// scanLine classifies the given line (a slice of positions in order) for
// player p's threats and returns them.
func scanLine(b board.Board, p board.Player, d board.Direction, line []board.Position) []Threat {
	opp := p.Opponent()
	n := len(line)
	tok := make([]board.Player, n)
	for i, pos := range line {
		tok[i] = b.Cell(pos)
	}

	var out []Threat

	// (1) Maximal runs of p's stones: Five/overline and contiguous Fours/Threes.
	for i := 0; i < n; {
		if tok[i] != p {
			i++
			continue
		}
		j := i
		for j < n && tok[j] == p {
			j++
		}
		runLen := j - i

		leftOpen := i > 0 && tok[i-1] == board.None
		rightOpen := j < n && tok[j] == board.None
		leftBlocked := i > 0 && tok[i-1] == opp
		rightBlocked := j < n && tok[j] == opp

		switch {
		case runLen == 5:
			if !(leftBlocked && rightBlocked) {
				out = append(out, Threat{Kind: Five, Player: p, Stones: append([]board.Position{}, line[i:j]...), Dir: d})
			}
		case runLen > 5:
			// Overline: not a win under Caro rules: no threat emitted.
		case runLen == 4:
			var gain []board.Position
			if leftOpen {
				gain = append(gain, line[i-1])
			}
			if rightOpen {
				gain = append(gain, line[j])
			}
			if len(gain) > 0 {
				out = append(out, Threat{Kind: StraightFour, Player: p, Stones: append([]board.Position{}, line[i:j]...), Gain: gain, Dir: d})
			}
		case runLen == 3:
			if leftOpen && rightOpen {
				out = append(out, Threat{Kind: StraightThree, Player: p, Stones: append([]board.Position{}, line[i:j]...), Gain: []board.Position{line[i-1], line[j]}, Dir: d})
			}
		case runLen == 2:
			if leftOpen && rightOpen {
				out = append(out, Threat{Kind: StraightTwo, Player: p, Stones: append([]board.Position{}, line[i:j]...), Gain: []board.Position{line[i-1], line[j]}, Dir: d})
			}
		}
		i = j
	}

	// (2) Broken patterns: windows with exactly one gap.
	out = append(out, scanBrokenWindows(tok, line, p, d, 5, BrokenFour, 4)...)
	out = append(out, scanBrokenWindows(tok, line, p, d, 4, BrokenThree, 3)...)
	out = append(out, scanBrokenWindows(tok, line, p, d, 3, BrokenTwo, 2)...)

	return out
}

// scanBrokenWindows finds windows of the given size containing exactly
// `stones` of player p and a single empty gap (the rest), emitting a
// threat of kind k with the gap as the sole gain square. Used for
// "broken" four/three/two patterns like X.XXX or XX.X.
func scanBrokenWindows(tok []board.Player, line []board.Position, p board.Player, d board.Direction, size int, k Kind, stones int) []Threat {
	var out []Threat
	n := len(tok)
	for i := 0; i+size <= n; i++ {
		w := tok[i : i+size]
		count, gaps := 0, 0
		gapIdx := -1
		ok := true
		for j, t := range w {
			switch t {
			case p:
				count++
			case board.None:
				gaps++
				gapIdx = j
			default:
				ok = false
			}
		}
		if !ok || count != stones || gaps != 1 {
			continue
		}
		// Require the gap strictly interior (not the window's own edges
		// being the "broken" point trivially equal to a contiguous run,
		// which the run-scan above already reports).
		if gapIdx == 0 || gapIdx == size-1 {
			continue
		}

		var stonesOut []board.Position
		for j, t := range w {
			if t == p {
				stonesOut = append(stonesOut, line[i+j])
			}
		}
		out = append(out, Threat{
			Kind:   k,
			Player: p,
			Stones: stonesOut,
			Gain:   []board.Position{line[i+gapIdx]},
			Dir:    d,
		})
	}
	return out
}
