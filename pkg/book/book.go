// Package book defines the opening-book collaborator: a single probe
// method the core calls once at the root before search. Storage format
// is intentionally out of the core's scope; book.go defines the
// contract, badgerbook.go an optional persistent implementation.
package book

import (
	"github.com/lavantien/caroengine/pkg/board"
)

// MoveWithMetadata is a book-recommended move plus provenance useful
// for logging or UI display.
type MoveWithMetadata struct {
	Move   board.Position
	Weight int
	Source string
}

// Book is the opening-book contract consumed by the search core: probe
// once at the root, and if it returns a move, the root search may be
// skipped entirely.
type Book interface {
	Probe(b board.Board, side board.Player) (MoveWithMetadata, bool)
}

// None is the no-op Book used when no persistent book is configured.
type None struct{}

func (None) Probe(board.Board, board.Player) (MoveWithMetadata, bool) {
	return MoveWithMetadata{}, false
}
