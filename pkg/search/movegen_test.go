package search_test

import (
	"testing"

	"github.com/lavantien/caroengine/pkg/board"
	"github.com/lavantien/caroengine/pkg/search"
	"github.com/stretchr/testify/assert"
)

func TestCandidatesEmptyBoardYieldsCenter(t *testing.T) {
	b := board.New(nil)
	cs := search.Candidates(b, board.Red, board.Invalid, nil, 0)
	assert.Equal(t, []board.Position{board.Center()}, cs)
}

func TestCandidatesRankImmediateWinFirst(t *testing.T) {
	b := board.New(nil)
	b = place(t, b, board.Red, [][2]int{{7, 7}, {8, 7}, {9, 7}, {10, 7}})
	b = place(t, b, board.Blue, [][2]int{{0, 0}, {0, 1}})

	cs := search.Candidates(b, board.Red, board.Invalid, nil, 0)
	assert.Contains(t, cs[:2], board.NewPosition(6, 7))
	assert.Contains(t, cs[:2], board.NewPosition(11, 7))
}

func TestCandidatesNeverIncludesOccupiedCell(t *testing.T) {
	b := board.New(nil)
	b = place(t, b, board.Red, [][2]int{{7, 7}})
	b = place(t, b, board.Blue, [][2]int{{8, 8}})

	cs := search.Candidates(b, board.Red, board.Invalid, nil, 0)
	for _, c := range cs {
		assert.NotEqual(t, board.Red, b.Cell(c))
		assert.NotEqual(t, board.Blue, b.Cell(c))
	}
}

func TestCandidatesPutsTTMoveFirst(t *testing.T) {
	b := board.New(nil)
	b = place(t, b, board.Red, [][2]int{{5, 5}})

	ttMove := board.NewPosition(9, 9)
	cs := search.Candidates(b, board.Blue, ttMove, nil, 0)
	assert.Equal(t, ttMove, cs[0])
}

func TestPriorityQueueOrdersHighestFirst(t *testing.T) {
	moves := []board.Position{board.NewPosition(0, 0), board.NewPosition(1, 1), board.NewPosition(2, 2)}
	priority := map[board.Position]int64{
		board.NewPosition(0, 0): 1,
		board.NewPosition(1, 1): 5,
		board.NewPosition(2, 2): 3,
	}
	q := search.NewPriorityQueue(moves, func(p board.Position) int64 { return priority[p] })

	var order []board.Position
	for {
		p, ok := q.Next()
		if !ok {
			break
		}
		order = append(order, p)
	}
	assert.Equal(t, []board.Position{board.NewPosition(1, 1), board.NewPosition(2, 2), board.NewPosition(0, 0)}, order)
}
