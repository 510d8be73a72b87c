package search_test

import (
	"context"
	"testing"

	"github.com/lavantien/caroengine/pkg/board"
	"github.com/lavantien/caroengine/pkg/eval"
	"github.com/lavantien/caroengine/pkg/search"
	"github.com/stretchr/testify/assert"
)

func TestReconstructPVWalksStoredBestMoves(t *testing.T) {
	ctx := context.Background()
	tt := search.NewTable(ctx, 1<<16)

	b := board.New(nil)
	m1 := board.NewPosition(5, 5)
	b1, err := b.Place(m1, board.Red)
	assert.NoError(t, err)
	m2 := board.NewPosition(6, 6)

	tt.Store(b.Hash(), search.Entry{Bound: search.ExactBound, Depth: 2, Score: eval.HeuristicScore(10), Move: m1})
	tt.Store(b1.Hash(), search.Entry{Bound: search.ExactBound, Depth: 1, Score: eval.HeuristicScore(5), Move: m2})

	pv := search.ReconstructPV(tt, b, board.Red)
	assert.Equal(t, []board.Position{m1, m2}, pv)
}

func TestReconstructPVStopsOnMissingEntry(t *testing.T) {
	ctx := context.Background()
	tt := search.NewTable(ctx, 1<<16)
	b := board.New(nil)

	pv := search.ReconstructPV(tt, b, board.Red)
	assert.Empty(t, pv)
}
