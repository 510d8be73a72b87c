package board_test

import (
	"testing"

	"github.com/lavantien/caroengine/pkg/board"
	"github.com/stretchr/testify/assert"
)

func TestBitboard(t *testing.T) {

	t.Run("set and clear", func(t *testing.T) {
		bb := board.EmptyBitboard
		p := board.NewPosition(3, 4)

		assert.False(t, bb.IsSet(p))
		bb = bb.Set(p)
		assert.True(t, bb.IsSet(p))
		assert.Equal(t, 1, bb.PopCount())

		bb = bb.Clear(p)
		assert.False(t, bb.IsSet(p))
		assert.True(t, bb.IsEmpty())
	})

	t.Run("popcount", func(t *testing.T) {
		bb := board.EmptyBitboard.Set(board.NewPosition(0, 0)).Set(board.NewPosition(1, 1)).Set(board.NewPosition(2, 2))
		assert.Equal(t, 3, bb.PopCount())
	})

	t.Run("boolean ops", func(t *testing.T) {
		a := board.EmptyBitboard.Set(board.NewPosition(1, 1)).Set(board.NewPosition(2, 2))
		b := board.EmptyBitboard.Set(board.NewPosition(2, 2)).Set(board.NewPosition(3, 3))

		assert.Equal(t, 1, a.And(b).PopCount())
		assert.Equal(t, 3, a.Or(b).PopCount())
		assert.Equal(t, 2, a.Xor(b).PopCount())
	})

	t.Run("shift within bounds", func(t *testing.T) {
		bb := board.EmptyBitboard.Set(board.NewPosition(5, 5))
		shifted := bb.Shift(1, 2)

		assert.True(t, shifted.IsSet(board.NewPosition(6, 7)))
		assert.Equal(t, 1, shifted.PopCount())
	})

	t.Run("shift off edge discards bit", func(t *testing.T) {
		bb := board.EmptyBitboard.Set(board.NewPosition(board.Size-1, board.Size-1))
		shifted := bb.Shift(1, 1)

		assert.True(t, shifted.IsEmpty())
	})

	t.Run("string", func(t *testing.T) {
		bb := board.EmptyBitboard.Set(board.NewPosition(0, 0))
		s := bb.String()
		assert.Contains(t, s, "X")
	})
}
