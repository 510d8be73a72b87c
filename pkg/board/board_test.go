package board_test

import (
	"testing"

	"github.com/lavantien/caroengine/pkg/board"
	"github.com/stretchr/testify/assert"
)

func TestBoardImmutability(t *testing.T) {
	b := board.New(nil)
	pos := board.NewPosition(7, 7)

	next, err := b.Place(pos, board.Red)
	assert.NoError(t, err)

	// b itself must be observably unchanged.
	assert.Equal(t, board.None, b.Cell(pos))
	assert.Equal(t, 0, b.MoveCount())
	assert.Equal(t, board.Red, next.Cell(pos))
	assert.Equal(t, 1, next.MoveCount())
}

func TestBoardDisjointStones(t *testing.T) {
	b := board.New(nil)
	b, err := b.Place(board.NewPosition(0, 0), board.Red)
	assert.NoError(t, err)
	b, err = b.Place(board.NewPosition(1, 0), board.Blue)
	assert.NoError(t, err)

	assert.Equal(t, 0, b.Bitboard(board.Red).And(b.Bitboard(board.Blue)).PopCount())
	assert.Equal(t, b.MoveCount(), b.Bitboard(board.Red).PopCount()+b.Bitboard(board.Blue).PopCount())
}

func TestBoardCellOccupiedError(t *testing.T) {
	b := board.New(nil)
	pos := board.NewPosition(3, 3)

	b, err := b.Place(pos, board.Red)
	assert.NoError(t, err)

	_, err = b.Place(pos, board.Blue)
	assert.ErrorIs(t, err, board.ErrCellOccupied)
}

func TestBoardInvalidCoordinateError(t *testing.T) {
	b := board.New(nil)

	_, err := b.Place(board.NewPosition(-1, 0), board.Red)
	assert.ErrorIs(t, err, board.ErrInvalidCoordinate)

	_, err = b.Place(board.NewPosition(board.Size, 0), board.Red)
	assert.ErrorIs(t, err, board.ErrInvalidCoordinate)
}

func TestHashConsistencyAcrossMoveOrder(t *testing.T) {
	zt := board.NewZobristTable(42)

	a := board.New(zt)
	a, _ = a.Place(board.NewPosition(1, 1), board.Red)
	a, _ = a.Place(board.NewPosition(2, 2), board.Blue)

	b := board.New(zt)
	b, _ = b.Place(board.NewPosition(2, 2), board.Blue)
	b, _ = b.Place(board.NewPosition(1, 1), board.Red)

	assert.Equal(t, a.Hash(), b.Hash())
}

func TestPositionParseRoundTrip(t *testing.T) {
	for _, s := range []string{"a1", "h8", "p16"} {
		pos, err := board.ParsePosition(s)
		assert.NoError(t, err)
		assert.Equal(t, s, pos.String())
	}
}
