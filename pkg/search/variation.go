package search

import "github.com/lavantien/caroengine/pkg/board"

// maxVariationLength bounds PV reconstruction against a TT cycle
// (two positions whose stored best-moves point back to each other).
const maxVariationLength = 128

// ReconstructPV walks the transposition table's best-moves from b
// until an entry is missing or a repeated hash is detected, per the
// teacher's own PV-reconstruction contract (pkg/search/variation.go):
// "reconstructed from the TT by walking best-moves from the root
// position until an entry is missing or a cycle is detected."
func ReconstructPV(tt TranspositionTable, b board.Board, toMove board.Player) []board.Position {
	var pv []board.Position
	seen := map[board.Hash]bool{}

	for len(pv) < maxVariationLength {
		if seen[b.Hash()] {
			break
		}
		seen[b.Hash()] = true

		e, ok := tt.Lookup(b.Hash())
		if !ok || !e.Move.IsValid() {
			break
		}
		next, err := b.Place(e.Move, toMove)
		if err != nil {
			break
		}
		pv = append(pv, e.Move)
		b = next
		toMove = toMove.Opponent()
	}
	return pv
}
