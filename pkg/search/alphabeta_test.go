package search_test

import (
	"context"
	"testing"

	"github.com/lavantien/caroengine/pkg/board"
	"github.com/lavantien/caroengine/pkg/eval"
	"github.com/lavantien/caroengine/pkg/search"
	"github.com/stretchr/testify/assert"
)

func place(t *testing.T, b board.Board, p board.Player, coords [][2]int) board.Board {
	t.Helper()
	for _, c := range coords {
		var err error
		b, err = b.Place(board.NewPosition(c[0], c[1]), p)
		assert.NoError(t, err)
	}
	return b
}

func newSearchContext() *search.Context {
	ctx := context.Background()
	return search.NewContext(search.NewTable(ctx, 1<<20), eval.NewThreat())
}

// TestS1ImmediateFive covers scenario S1: Red has an open four and
// must find the winning completion.
func TestS1ImmediateFive(t *testing.T) {
	b := board.New(nil)
	b = place(t, b, board.Red, [][2]int{{7, 7}, {8, 7}, {9, 7}, {10, 7}})

	sctx := newSearchContext()
	ab := search.AlphaBeta{Ctx: sctx}
	score, pv := ab.Search(b, board.Red, 5, eval.NegInfScore, eval.InfScore)

	assert.NotEmpty(t, pv)
	assert.True(t, pv[0].Equals(board.NewPosition(6, 7)) || pv[0].Equals(board.NewPosition(11, 7)))
	assert.True(t, score >= eval.Won(2))
}

// TestS2MustBlockSemiOpenFour covers scenario S2: Blue must block the
// only open end of Red's semi-open four.
func TestS2MustBlockSemiOpenFour(t *testing.T) {
	b := board.New(nil)
	b = place(t, b, board.Red, [][2]int{{7, 7}, {8, 7}, {9, 7}, {10, 7}})
	b = place(t, b, board.Blue, [][2]int{{6, 7}})

	sctx := newSearchContext()
	ab := search.AlphaBeta{Ctx: sctx}
	_, pv := ab.Search(b, board.Blue, 4, eval.NegInfScore, eval.InfScore)

	assert.NotEmpty(t, pv)
	assert.True(t, pv[0].Equals(board.NewPosition(11, 7)))
}

// TestS3OverlineIsNotReportedAsTerminal covers scenario S3: playing the
// sixth stone in a line must not be scored as a mate.
func TestS3OverlineIsNotReportedAsTerminal(t *testing.T) {
	b := board.New(nil)
	b = place(t, b, board.Red, [][2]int{{5, 7}, {6, 7}, {7, 7}, {8, 7}, {9, 7}})
	b, err := b.Place(board.NewPosition(10, 7), board.Red)
	assert.NoError(t, err)

	sctx := newSearchContext()
	ab := search.AlphaBeta{Ctx: sctx}
	score, _ := ab.Search(b, board.Blue, 2, eval.NegInfScore, eval.InfScore)
	assert.False(t, score.IsMate(), "an overline must never be reported as a terminal win")
}

// TestS4DoubleBlockRequired covers scenario S4: Red must block the
// single open end of Blue's semi-open four.
func TestS4DoubleBlockRequired(t *testing.T) {
	b := board.New(nil)
	b = place(t, b, board.Blue, [][2]int{{3, 4}, {4, 4}, {5, 4}, {6, 4}})
	b = place(t, b, board.Red, [][2]int{{7, 4}})

	sctx := newSearchContext()
	ab := search.AlphaBeta{Ctx: sctx}
	_, pv := ab.Search(b, board.Red, 4, eval.NegInfScore, eval.InfScore)

	assert.NotEmpty(t, pv)
	assert.True(t, pv[0].Equals(board.NewPosition(2, 4)))
}

// TestSearchStabilityUnderTT covers testable property #7: running the
// sequential search twice on the same position with a freshly
// initialized TT returns the same best move at each completed depth.
func TestSearchStabilityUnderTT(t *testing.T) {
	b := board.New(nil)
	b = place(t, b, board.Red, [][2]int{{6, 6}, {7, 7}})
	b = place(t, b, board.Blue, [][2]int{{6, 7}, {7, 6}})

	run := func() (eval.Score, []board.Position) {
		sctx := newSearchContext()
		ab := search.AlphaBeta{Ctx: sctx}
		return ab.Search(b, board.Red, 3, eval.NegInfScore, eval.InfScore)
	}

	s1, pv1 := run()
	s2, pv2 := run()

	assert.Equal(t, s1, s2)
	assert.Equal(t, pv1, pv2)
}
