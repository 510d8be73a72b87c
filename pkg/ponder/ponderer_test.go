package ponder_test

import (
	"context"
	"testing"
	"time"

	"github.com/lavantien/caroengine/pkg/board"
	"github.com/lavantien/caroengine/pkg/eval"
	"github.com/lavantien/caroengine/pkg/parallel"
	"github.com/lavantien/caroengine/pkg/ponder"
	"github.com/lavantien/caroengine/pkg/search"
	"github.com/stretchr/testify/assert"
)

func newPool() parallel.Pool {
	return parallel.Pool{TT: search.NewTable(context.Background(), 1 << 20), Eval: eval.NewThreat(), Threads: 1}
}

// TestPonderStartIsIdempotentWhileActive covers testable property #9:
// a second Start while already Pondering must not spawn a competing
// search or disturb the in-flight one.
func TestPonderStartIsIdempotentWhileActive(t *testing.T) {
	p := ponder.New(newPool())
	b := board.New(nil)

	p.Start(b, board.Blue, board.NewPosition(7, 8), board.Red, search.Options{MaxDepth: 6})
	assert.Equal(t, ponder.Pondering, p.State())

	p.Start(b, board.Blue, board.NewPosition(3, 3), board.Red, search.Options{MaxDepth: 6})
	assert.Equal(t, ponder.Pondering, p.State())

	p.Stop()
}

// TestPonderHitTransitionsAndMergesTime covers scenario S5 and testable
// property #11: when the opponent plays the predicted move, the
// ponderer reports PonderHit and a non-zero elapsed time to merge into
// the main search's clock.
func TestPonderHitTransitionsAndMergesTime(t *testing.T) {
	p := ponder.New(newPool())
	b := board.New(nil)
	predicted := board.NewPosition(7, 8)

	p.Start(b, board.Blue, predicted, board.Red, search.Options{MaxDepth: 8})
	time.Sleep(5 * time.Millisecond)

	state, res := p.HandleOpponentMove(predicted)
	assert.Equal(t, ponder.PonderHit, state)
	assert.True(t, res.PonderHit)
	assert.Greater(t, res.TimeSpent, time.Duration(0))

	stats := p.Stats()
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 0, stats.Misses)
}

// TestPonderMissStopsSearch covers scenario S6: an unpredicted opponent
// move must resolve to PonderMiss and cancel the background search.
func TestPonderMissStopsSearch(t *testing.T) {
	p := ponder.New(newPool())
	b := board.New(nil)
	predicted := board.NewPosition(7, 8)
	actual := board.NewPosition(3, 3)

	p.Start(b, board.Blue, predicted, board.Red, search.Options{MaxDepth: 8})
	time.Sleep(5 * time.Millisecond)

	state, res := p.HandleOpponentMove(actual)
	assert.Equal(t, ponder.PonderMiss, state)
	assert.False(t, res.PonderHit)

	stats := p.Stats()
	assert.Equal(t, 0, stats.Hits)
	assert.Equal(t, 1, stats.Misses)
}

func TestPonderHandleOpponentMoveWhenIdleIsANoop(t *testing.T) {
	p := ponder.New(newPool())
	state, res := p.HandleOpponentMove(board.NewPosition(0, 0))
	assert.Equal(t, ponder.Idle, state)
	assert.Equal(t, ponder.Result{}, res)
}

func TestPonderResetReturnsToIdle(t *testing.T) {
	p := ponder.New(newPool())
	b := board.New(nil)

	p.Start(b, board.Blue, board.NewPosition(7, 8), board.Red, search.Options{MaxDepth: 6})
	assert.Equal(t, ponder.Pondering, p.State())

	p.Stop()
	assert.Equal(t, ponder.Cancelled, p.State())

	p.Reset()
	assert.Equal(t, ponder.Idle, p.State())
}

func TestPonderStopBeforeStartIsSafe(t *testing.T) {
	p := ponder.New(newPool())
	res := p.Stop()
	assert.False(t, res.BestMove.IsValid())
}
