package book_test

import (
	"testing"

	"github.com/lavantien/caroengine/pkg/board"
	"github.com/lavantien/caroengine/pkg/book"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoneBookAlwaysMisses(t *testing.T) {
	var n book.None
	_, ok := n.Probe(board.New(nil), board.Red)
	assert.False(t, ok)
}

func TestBadgerBookRoundTrips(t *testing.T) {
	dir := t.TempDir()
	b, err := book.OpenBadgerBook(dir)
	require.NoError(t, err)
	defer b.Close()

	bd := board.New(nil)
	move := board.NewPosition(7, 7)

	_, ok := b.Probe(bd, board.Red)
	assert.False(t, ok)

	require.NoError(t, b.Put(bd.Hash(), board.Red, book.MoveWithMetadata{Move: move, Weight: 10, Source: "test"}))

	got, ok := b.Probe(bd, board.Red)
	require.True(t, ok)
	assert.Equal(t, move, got.Move)
	assert.Equal(t, 10, got.Weight)
	assert.Equal(t, "test", got.Source)
}
